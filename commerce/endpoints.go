package commerce

// Remote API paths, relative to the configured API base URL. Every call is a JSON POST.
const (
	PathProductsGetAll   = "/products/get-all"
	PathProductsGetByID  = "/products/get-by-id"
	PathProductsFeatured = "/products/featured"
	PathCategoriesGetAll = "/categories/get-all"

	PathCartGet    = "/cart/get"
	PathCartAdd    = "/cart/add"
	PathCartUpdate = "/cart/update"
	PathCartRemove = "/cart/remove"

	PathAddressesGetAll = "/addresses/get-all"
	PathAddressesAdd    = "/addresses/add"

	PathOrdersPlace         = "/orders/place"
	PathOrdersGetUserOrders = "/orders/get-user-orders"
	PathOrdersGetByID       = "/orders/get-by-id"
	PathOrdersProcessPay    = "/orders/process-payment"
	PathStripeCheckout      = "/stripe/checkout"

	PathAuthLogin    = "/auth/login"
	PathAuthLogout   = "/auth/logout"
	PathAuthRegister = "/auth/register"
	PathUsersProfile = "/users/profile"
)
