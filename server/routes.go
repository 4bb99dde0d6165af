package server

import (
	"net/http"
	"strings"
)

func (s *Server) initRoutes() {
	public := s.HTMLMiddleWare()
	private := s.HTMLMiddleWare(s.RequireSessionAuth())

	s.RegisterRouteHandler("GET /{$}", ChainMiddleware(s.IndexHandler(), public...))
	s.RegisterRouteHandler("GET "+RouteAbout, ChainMiddleware(s.AboutHandler(), public...))

	// SESSION
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginPageHandler(), public...))
	s.RegisterRouteHandler("POST "+RouteLogin, ChainMiddleware(s.LoginSubmissionHandler(), public...))
	s.RegisterRouteHandler("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(), public...))
	s.RegisterRouteHandler("GET "+RouteRegister, ChainMiddleware(s.RegisterGetHandler(), public...))
	s.RegisterRouteHandler("POST "+RouteRegister, ChainMiddleware(s.RegisterPostHandler(), public...))
	s.RegisterRouteHandler("GET "+RouteProfile, ChainMiddleware(s.ProfileHandler(), private...))

	// CATALOG
	s.RegisterRouteHandler("GET "+RouteProducts, ChainMiddleware(s.ProductListHandler(), public...))
	s.RegisterRouteHandler("GET "+RouteProduct, ChainMiddleware(s.ProductDetailHandler(), public...))
	// Anonymous adds reach the API and come back as a 401, which sends the browser to login.
	s.RegisterRouteHandler("POST "+RouteProductToCart, ChainMiddleware(s.AddToCartHandler(), public...))

	// CART
	s.RegisterRouteHandler("GET "+RouteCart, ChainMiddleware(s.CartHandler(), private...))
	s.RegisterRouteHandler("POST "+RouteCartItemQuantity, ChainMiddleware(s.CartQuantityHandler(), private...))
	s.RegisterRouteHandler("POST "+RouteCartItemRemove, ChainMiddleware(s.CartRemoveHandler(), private...))
	s.RegisterRouteHandler("POST "+RouteCartCheckout, ChainMiddleware(s.CartCheckoutHandler(), private...))
	s.RegisterRouteHandler("POST "+RouteAddresses, ChainMiddleware(s.AddAddressHandler(), private...))
	s.RegisterRouteHandler("POST "+RouteOrdersPlace, ChainMiddleware(s.PlaceOrderHandler(), private...))

	// PAYMENT
	s.RegisterRouteHandler("GET "+RoutePayment, ChainMiddleware(s.PaymentPageHandler(), private...))
	s.RegisterRouteHandler("POST "+RoutePayment, ChainMiddleware(s.PaymentSubmitHandler(), private...))
	s.RegisterRouteHandler("GET "+RoutePaymentSuccess, ChainMiddleware(s.PaymentSuccessHandler(), public...))
	s.RegisterRouteHandler("GET "+RoutePaymentFailed, ChainMiddleware(s.PaymentFailedHandler(), public...))

	// ORDERS
	s.RegisterRouteHandler("GET "+RouteOrders, ChainMiddleware(s.OrdersHandler(), private...))
	s.RegisterRouteHandler("GET "+RouteOrder, ChainMiddleware(s.OrderDetailHandler(), private...))
	s.RegisterRouteHandler("POST "+RouteOrderPay, ChainMiddleware(s.PayNowHandler(), private...))

	s.RegisterRouteHandler("GET "+RouteStaticCSS, ChainMiddleware(s.serveFileHandler(), s.StaticMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteStaticJS, ChainMiddleware(s.serveFileHandler(), s.StaticMiddleware()...))

	s.RegisterRouteHandler("/", ChainMiddleware(s.NotFoundHandler(), public...))
}

func (s *Server) serveFileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filePath := strings.TrimPrefix(r.URL.Path, "/")
		if filePath == "" {
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
		err := StreamFile(w, r, filePath)
		if err != nil {
			logError("GET", filePath, err.Error())
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
	}
}
