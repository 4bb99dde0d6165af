package checkout

// Method is a payment method offered on the payment page.
type Method struct {
	ID          string
	Name        string
	Description string
	// Redirect methods hand the user to an external provider page.
	Redirect bool
}

const (
	MethodStripe = "stripe"
	MethodPayPal = "paypal"
	MethodESewa  = "esewa"
	MethodCOD    = "cod"
)

// Methods in display order.
var Methods = []Method{
	{ID: MethodStripe, Name: "Stripe", Description: "Pay securely with credit/debit card", Redirect: true},
	{ID: MethodPayPal, Name: "PayPal", Description: "Pay with your PayPal account"},
	{ID: MethodESewa, Name: "eSewa", Description: "Pay with eSewa wallet"},
	{ID: MethodCOD, Name: "Cash on Delivery", Description: "Pay when you receive your order"},
}

func LookupMethod(id string) (Method, bool) {
	for _, m := range Methods {
		if m.ID == id {
			return m, true
		}
	}
	return Method{}, false
}
