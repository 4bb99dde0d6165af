package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	RouteHome  = "/"
	RouteAbout = "/about"

	// Session
	RouteLogin    = "/login"
	RouteLogout   = "/logout"
	RouteRegister = "/register"
	RouteProfile  = "/profile"

	// Catalog
	RouteProducts      = "/products"
	RouteProduct       = "/products/{id}"
	RouteProductToCart = "/products/{id}/cart"

	// Cart and address selection
	RouteCart             = "/cart"
	RouteCartItemQuantity = "/cart/items/{id}/quantity"
	RouteCartItemRemove   = "/cart/items/{id}/remove"
	RouteCartCheckout     = "/cart/checkout"
	RouteAddresses        = "/addresses"
	RouteOrdersPlace      = "/orders/place"

	// Payment
	RoutePayment        = "/payment"
	RoutePaymentSuccess = "/payment-success"
	RoutePaymentFailed  = "/payment-failed"

	// Orders
	RouteOrders   = "/orders"
	RouteOrder    = "/orders/{id}"
	RouteOrderPay = "/orders/{id}/pay"

	// Static Asset Routes (patterns)
	RouteStaticCSS = "/css/{file}"
	RouteStaticJS  = "/js/{file}"
)
