package commercefake

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jrsteele09/go-storefront/commerce"
	apperrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/rs/zerolog/log"
)

// APIPrefix is where NewAPIServer mounts the commerce endpoints.
const APIPrefix = "/api/v1"

type envelope struct {
	HTTPStatus string `json:"httpStatus"`
	Code       int    `json:"code"`
	Message    string `json:"message"`
	Data       any    `json:"data,omitempty"`
}

type ctxKey string

const userEmailKey ctxKey = "user_email"

// NewAPIServer exposes f over HTTP using the commerce API's wire protocol.
func NewAPIServer(f *Fake) http.Handler {
	a := &apiServer{fake: f}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route(APIPrefix, func(r chi.Router) {
		r.Post(commerce.PathProductsGetAll, a.listProducts)
		r.Post(commerce.PathProductsGetByID, a.getProduct)
		r.Post(commerce.PathProductsFeatured, a.featured)
		r.Post(commerce.PathCategoriesGetAll, a.categories)
		r.Post(commerce.PathAuthLogin, a.login)
		r.Post(commerce.PathAuthRegister, a.register)

		r.Group(func(r chi.Router) {
			r.Use(a.requireToken)
			r.Post(commerce.PathAuthLogout, a.logout)
			r.Post(commerce.PathCartGet, a.getCart)
			r.Post(commerce.PathCartAdd, a.addToCart)
			r.Post(commerce.PathCartUpdate, a.updateCart)
			r.Post(commerce.PathCartRemove, a.removeFromCart)
			r.Post(commerce.PathAddressesGetAll, a.listAddresses)
			r.Post(commerce.PathAddressesAdd, a.addAddress)
			r.Post(commerce.PathOrdersPlace, a.placeOrder)
			r.Post(commerce.PathOrdersGetUserOrders, a.listOrders)
			r.Post(commerce.PathOrdersGetByID, a.getOrder)
			r.Post(commerce.PathOrdersProcessPay, a.processPayment)
			r.Post(commerce.PathStripeCheckout, a.gatewaySession)
			r.Post(commerce.PathUsersProfile, a.profile)
		})
	})
	return r
}

type apiServer struct {
	fake *Fake
}

func (a *apiServer) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		email, ok := a.fake.userForToken(token)
		if token == "" || !ok {
			respondError(w, apperrors.ErrUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), userEmailKey, email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

func userEmail(r *http.Request) string {
	email, _ := r.Context().Value(userEmailKey).(string)
	return email
}

func (a *apiServer) listProducts(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PageNumber int `json:"pageNumber"`
		PageSize   int `json:"pageSize"`
	}
	if !decode(w, r, &req) {
		return
	}
	page, err := a.fake.ListProducts(r.Context(), req.PageNumber, req.PageSize)
	respond(w, "", page, err)
}

func (a *apiServer) getProduct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID int64 `json:"id"`
	}
	if !decode(w, r, &req) {
		return
	}
	product, err := a.fake.GetProduct(r.Context(), req.ID)
	respond(w, "", product, err)
}

func (a *apiServer) featured(w http.ResponseWriter, r *http.Request) {
	products, err := a.fake.FeaturedProducts(r.Context())
	respond(w, "", products, err)
}

func (a *apiServer) categories(w http.ResponseWriter, r *http.Request) {
	categories, err := a.fake.ListCategories(r.Context())
	respond(w, "", categories, err)
}

func (a *apiServer) login(w http.ResponseWriter, r *http.Request) {
	var creds commerce.Credentials
	if !decode(w, r, &creds) {
		return
	}
	result, err := a.fake.Login(r.Context(), creds)
	respond(w, "Login successful", result, err)
}

func (a *apiServer) register(w http.ResponseWriter, r *http.Request) {
	var registration commerce.Registration
	if !decode(w, r, &registration) {
		return
	}
	respond(w, "Registration successful", nil, a.fake.Register(r.Context(), registration))
}

func (a *apiServer) logout(w http.ResponseWriter, r *http.Request) {
	respond(w, "Logged out", nil, a.fake.logoutToken(bearerToken(r)))
}

func (a *apiServer) getCart(w http.ResponseWriter, r *http.Request) {
	items, err := a.fake.getCart(userEmail(r))
	respond(w, "", map[string]any{"cartItems": items}, err)
}

func (a *apiServer) addToCart(w http.ResponseWriter, r *http.Request) {
	var update commerce.CartUpdate
	if !decode(w, r, &update) {
		return
	}
	respond(w, "Product added to cart successfully", nil, a.fake.addToCart(userEmail(r), update))
}

func (a *apiServer) updateCart(w http.ResponseWriter, r *http.Request) {
	var update commerce.CartUpdate
	if !decode(w, r, &update) {
		return
	}
	respond(w, "Cart updated", nil, a.fake.updateCartItem(userEmail(r), update))
}

func (a *apiServer) removeFromCart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID int64 `json:"id"`
	}
	if !decode(w, r, &req) {
		return
	}
	respond(w, "Item removed from cart", nil, a.fake.removeCartItem(userEmail(r), req.ID))
}

func (a *apiServer) listAddresses(w http.ResponseWriter, r *http.Request) {
	addresses, err := a.fake.listAddresses(userEmail(r))
	respond(w, "", addresses, err)
}

func (a *apiServer) addAddress(w http.ResponseWriter, r *http.Request) {
	var address commerce.Address
	if !decode(w, r, &address) {
		return
	}
	created, message, err := a.fake.addAddress(userEmail(r), address)
	respond(w, message, created, err)
}

func (a *apiServer) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req commerce.PlaceOrderRequest
	if !decode(w, r, &req) {
		return
	}
	result, err := a.fake.placeOrder(userEmail(r), req)
	respond(w, "Order placed", result, err)
}

func (a *apiServer) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := a.fake.listOrders(userEmail(r))
	respond(w, "", orders, err)
}

func (a *apiServer) getOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID int64 `json:"orderId"`
	}
	if !decode(w, r, &req) {
		return
	}
	order, err := a.fake.getOrder(userEmail(r), req.OrderID)
	respond(w, "", order, err)
}

func (a *apiServer) processPayment(w http.ResponseWriter, r *http.Request) {
	var req commerce.ProcessPaymentRequest
	if !decode(w, r, &req) {
		return
	}
	respond(w, "Payment processed", nil, a.fake.processPayment(userEmail(r), req))
}

func (a *apiServer) gatewaySession(w http.ResponseWriter, r *http.Request) {
	var req commerce.GatewaySessionRequest
	if !decode(w, r, &req) {
		return
	}
	session, err := a.fake.createGatewaySession(userEmail(r), req)
	respond(w, "", session, err)
}

func (a *apiServer) profile(w http.ResponseWriter, r *http.Request) {
	profile, err := a.fake.getProfile(userEmail(r))
	respond(w, "", profile, err)
}

func decode(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		respondJSON(w, http.StatusBadRequest, envelope{HTTPStatus: "BAD_REQUEST", Code: http.StatusBadRequest, Message: "invalid JSON body"})
		return false
	}
	return true
}

func respond(w http.ResponseWriter, message string, data any, err error) {
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, envelope{HTTPStatus: "OK", Code: http.StatusOK, Message: message, Data: data})
}

func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := err.Error()
	var remote *commerce.RemoteError
	switch {
	case apperrors.As(err, &remote):
		status = remote.StatusCode
	case apperrors.Is(err, apperrors.ErrUnauthorized):
		status = http.StatusUnauthorized
		message = "Unauthorized"
	}
	respondJSON(w, status, envelope{
		HTTPStatus: strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_")),
		Code:       status,
		Message:    message,
	})
}

func respondJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Err(err).Msg("failed to encode response")
	}
}
