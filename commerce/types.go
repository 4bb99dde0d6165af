package commerce

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Order and payment statuses reported by the commerce API.
const (
	StatusPlaced    = "PLACED"
	StatusPending   = "PENDING"
	StatusCompleted = "COMPLETED"
)

type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"` // available stock
	Category    string          `json:"category,omitempty"`
	ImageURL    string          `json:"imageUrl,omitempty"`
}

func (p Product) MarshalJSON() ([]byte, error) {
	type product Product
	return json.Marshal(struct {
		product
		Price json.Number `json:"price"`
	}{product(p), number(p.Price)})
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ProductPage is one page of the paginated product listing.
type ProductPage struct {
	Content       []Product `json:"content"`
	TotalPages    int       `json:"totalPages"`
	TotalElements int64     `json:"totalElements"`
}

type CartItem struct {
	ID       int64   `json:"id,omitempty"`
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// LineTotal is price × quantity for the item.
func (ci CartItem) LineTotal() decimal.Decimal {
	return ci.Product.Price.Mul(decimal.NewFromInt(int64(ci.Quantity)))
}

type cartContents struct {
	CartItems []CartItem `json:"cartItems"`
}

type Address struct {
	ID      int64  `json:"id,omitempty"`
	Street  string `json:"street" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	ZipCode string `json:"zipCode" validate:"required"`
	Country string `json:"country" validate:"required"`
}

type OrderItem struct {
	ID       int64           `json:"id,omitempty"`
	Product  Product         `json:"product"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

func (oi OrderItem) MarshalJSON() ([]byte, error) {
	type orderItem OrderItem
	return json.Marshal(struct {
		orderItem
		Price json.Number `json:"price"`
	}{orderItem(oi), number(oi.Price)})
}

// Order is read-only to the storefront; the commerce API is its source of truth.
type Order struct {
	ID              int64           `json:"id"`
	Status          string          `json:"status"`
	PaymentStatus   string          `json:"paymentStatus"`
	PaymentMethod   string          `json:"paymentMethod,omitempty"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	ShippingAddress *Address        `json:"shippingAddress,omitempty"`
	OrderItems      []OrderItem     `json:"orderItems,omitempty"`
	OrderDate       string          `json:"orderDate,omitempty"`
}

func (o Order) MarshalJSON() ([]byte, error) {
	type order Order
	return json.Marshal(struct {
		order
		TotalAmount json.Number `json:"totalAmount"`
	}{order(o), number(o.TotalAmount)})
}

type PlaceOrderRequest struct {
	AddressID  int64   `json:"addressId"`
	ProductIDs []int64 `json:"productIds"`
}

type PlaceOrderResult struct {
	OrderID     int64           `json:"orderId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

func (r PlaceOrderResult) MarshalJSON() ([]byte, error) {
	type placeOrderResult PlaceOrderResult
	return json.Marshal(struct {
		placeOrderResult
		TotalAmount json.Number `json:"totalAmount"`
	}{placeOrderResult(r), number(r.TotalAmount)})
}

type GatewaySessionRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	OrderID  string          `json:"orderId"`
}

func (r GatewaySessionRequest) MarshalJSON() ([]byte, error) {
	type gatewaySessionRequest GatewaySessionRequest
	return json.Marshal(struct {
		gatewaySessionRequest
		Amount json.Number `json:"amount"`
	}{gatewaySessionRequest(r), number(r.Amount)})
}

type GatewaySession struct {
	SessionURL string `json:"sessionUrl"`
}

type ProcessPaymentRequest struct {
	OrderID       int64  `json:"orderId"`
	PaymentMethod string `json:"paymentMethod"`
}

type CartUpdate struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResult struct {
	RefreshToken string `json:"refreshToken"`
}

type Registration struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	Phone     string `json:"phone,omitempty"`
}

type Profile struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}

// FullName joins first and last name.
func (p Profile) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}
