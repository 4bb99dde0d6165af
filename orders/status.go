package orders

import "github.com/jrsteele09/go-storefront/commerce"

// Tone is how a status is presented.
type Tone string

const (
	TonePositive Tone = "positive"
	ToneCaution  Tone = "caution"
	ToneNegative Tone = "negative"
)

// StatusTone maps an order or payment status to its presentation.
func StatusTone(status string) Tone {
	switch status {
	case commerce.StatusCompleted, commerce.StatusPlaced:
		return TonePositive
	case commerce.StatusPending:
		return ToneCaution
	}
	return ToneNegative
}

// CanPay reports whether the order still offers "Pay Now".
func CanPay(order commerce.Order) bool {
	return order.PaymentStatus != commerce.StatusCompleted
}
