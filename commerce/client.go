// Package commerce is the storefront's contract with the remote commerce API and its HTTP
// implementation.
package commerce

import "context"

// Client is every remote operation the storefront consumes.
type Client interface {
	ListProducts(ctx context.Context, pageNumber, pageSize int) (*ProductPage, error)
	GetProduct(ctx context.Context, id int64) (*Product, error)
	FeaturedProducts(ctx context.Context) ([]Product, error)
	ListCategories(ctx context.Context) ([]Category, error)

	GetCart(ctx context.Context) ([]CartItem, error)
	AddToCart(ctx context.Context, update CartUpdate) error
	UpdateCartItem(ctx context.Context, update CartUpdate) error
	RemoveCartItem(ctx context.Context, productID int64) error

	ListAddresses(ctx context.Context) ([]Address, error)
	AddAddress(ctx context.Context, address Address) (*Address, string, error)

	PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*PlaceOrderResult, error)
	ListOrders(ctx context.Context) ([]Order, error)
	GetOrder(ctx context.Context, orderID int64) (*Order, error)

	CreateGatewaySession(ctx context.Context, req GatewaySessionRequest) (*GatewaySession, error)
	ProcessPayment(ctx context.Context, req ProcessPaymentRequest) error

	Login(ctx context.Context, creds Credentials) (*LoginResult, error)
	Logout(ctx context.Context) error
	Register(ctx context.Context, registration Registration) error
	GetProfile(ctx context.Context) (*Profile, error)
}
