package server

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/jrsteele09/go-storefront/cart"
	"github.com/jrsteele09/go-storefront/commerce"
	apperrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/jrsteele09/go-storefront/storage"
	"github.com/shopspring/decimal"
)

// navPaymentKey is the flash entry carrying the checkout context to the payment page.
const navPaymentKey = "nav:payment"

type cartLine struct {
	commerce.CartItem
	Selected bool
}

type cartData struct {
	Lines         []cartLine
	AllSelected   bool
	SelectedCount int
	SelectedTotal decimal.Decimal
}

type checkoutData struct {
	Items           []commerce.CartItem
	SelectedIDs     []int64
	Total           decimal.Decimal
	Addresses       []commerce.Address
	SelectedAddress int64
	Address         commerce.Address // new address form values
}

// CartHandler renders the cart. Selection changes arrive as a GET with apply=1 and the checked
// ids, so recomputing the selected total never touches the server-side cart.
func (s *Server) CartHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctrl := cart.NewController(scopeFrom(r).client)
		if err := ctrl.Fetch(r.Context()); err != nil {
			s.renderCartError(w, r, ctrl, err)
			return
		}
		query := r.URL.Query()
		if query.Get("apply") != "" {
			if err := r.ParseForm(); err != nil {
				http.Error(w, "Invalid form data", http.StatusBadRequest)
				return
			}
			ctrl.Select(formIDs(r, "selected"))
			if query.Get("toggleAll") != "" {
				ctrl.SelectAll()
			}
		}
		s.renderCart(w, r, ctrl, nil)
	}
}

// CartQuantityHandler changes one item's quantity. The posted selection is carried over unchanged.
func (s *Server) CartQuantityHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, quantity, ok := s.parseCartItemForm(w, r)
		if !ok {
			return
		}
		ctrl, ok := s.selectedCart(w, r)
		if !ok {
			return
		}
		if err := ctrl.UpdateQuantity(r.Context(), id, quantity); err != nil {
			s.renderCartError(w, r, ctrl, err)
			return
		}
		redirectSuccess(w, r, cartLocation(ctrl))
	}
}

// CartRemoveHandler removes one item; only that item leaves the posted selection.
func (s *Server) CartRemoveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _, ok := s.parseCartItemForm(w, r)
		if !ok {
			return
		}
		ctrl, ok := s.selectedCart(w, r)
		if !ok {
			return
		}
		if err := ctrl.Remove(r.Context(), id); err != nil {
			s.renderCartError(w, r, ctrl, err)
			return
		}
		redirectSuccess(w, r, cartLocation(ctrl))
	}
}

// cartLocation is the cart page showing ctrl's current selection.
func cartLocation(ctrl *cart.Controller) string {
	query := url.Values{"apply": {"1"}}
	for _, id := range ctrl.Selected() {
		query.Add("selected", strconv.FormatInt(id, 10))
	}
	return RouteCart + "?" + query.Encode()
}

// CartCheckoutHandler moves the selected items on to address selection.
func (s *Server) CartCheckoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctrl, ok := s.selectedCart(w, r)
		if !ok {
			return
		}
		if len(ctrl.Selected()) == 0 {
			s.renderCart(w, r, ctrl, alertFor(apperrors.ErrEmptySelection))
			return
		}
		if err := ctrl.FetchAddresses(r.Context()); err != nil {
			s.renderCheckoutError(w, r, ctrl, commerce.Address{}, err)
			return
		}
		s.renderCheckout(w, r, ctrl, commerce.Address{}, nil)
	}
}

func (s *Server) AddAddressHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctrl, ok := s.selectedCart(w, r)
		if !ok {
			return
		}
		address := commerce.Address{
			Street:  r.FormValue("street"),
			City:    r.FormValue("city"),
			State:   r.FormValue("state"),
			ZipCode: r.FormValue("zipCode"),
			Country: r.FormValue("country"),
		}
		message, err := ctrl.AddAddress(r.Context(), address)
		if err != nil {
			if ferr := ctrl.FetchAddresses(r.Context()); ferr != nil && s.handleGlobalError(w, r, ferr) {
				return
			}
			s.renderCheckoutError(w, r, ctrl, address, err)
			return
		}
		if message == "" {
			message = "Address added successfully"
		}
		s.renderCheckout(w, r, ctrl, commerce.Address{}, successAlert("Success", message))
	}
}

// PlaceOrderHandler places the order and hands its checkout context to the payment page, both as
// navigation state and in durable storage.
func (s *Server) PlaceOrderHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctrl, ok := s.selectedCart(w, r)
		if !ok {
			return
		}
		if len(ctrl.Selected()) == 0 {
			s.renderCart(w, r, ctrl, alertFor(apperrors.ErrEmptySelection))
			return
		}
		if err := ctrl.FetchAddresses(r.Context()); err != nil {
			s.renderCheckoutError(w, r, ctrl, commerce.Address{}, err)
			return
		}
		addressID, _ := strconv.ParseInt(r.FormValue("addressId"), 10, 64)
		if err := ctrl.SelectAddress(addressID); err != nil {
			s.renderCheckoutError(w, r, ctrl, commerce.Address{}, err)
			return
		}

		checkoutContext, err := ctrl.PlaceOrder(r.Context())
		if err != nil {
			s.renderCheckoutError(w, r, ctrl, commerce.Address{}, err)
			return
		}

		scope := scopeFrom(r)
		if err := scope.checkoutStore().Save(r.Context(), *checkoutContext); err != nil {
			s.renderCheckoutError(w, r, ctrl, commerce.Address{}, err)
			return
		}
		if err := storage.SetJSON(r.Context(), scope.flash, navPaymentKey, checkoutContext); err != nil {
			s.renderCheckoutError(w, r, ctrl, commerce.Address{}, err)
			return
		}
		redirectSuccess(w, r, RoutePayment)
	}
}

// selectedCart fetches the cart and applies the posted selection.
func (s *Server) selectedCart(w http.ResponseWriter, r *http.Request) (*cart.Controller, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return nil, false
	}
	ctrl := cart.NewController(scopeFrom(r).client)
	if err := ctrl.Fetch(r.Context()); err != nil {
		s.renderCartError(w, r, ctrl, err)
		return nil, false
	}
	ctrl.Select(formIDs(r, "selected"))
	return ctrl, true
}

func (s *Server) parseCartItemForm(w http.ResponseWriter, r *http.Request) (int64, int, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return 0, 0, false
	}
	id, err := pathID(r)
	if err != nil {
		s.renderNotFound(w, r, "That item is not in your cart.")
		return 0, 0, false
	}
	quantity, _ := strconv.Atoi(r.FormValue("quantity"))
	return id, quantity, true
}

func (s *Server) renderCart(w http.ResponseWriter, r *http.Request, ctrl *cart.Controller, result *alert) {
	data := cartData{
		AllSelected:   ctrl.AllSelected(),
		SelectedCount: len(ctrl.Selected()),
		SelectedTotal: ctrl.SelectedTotal(),
	}
	for _, item := range ctrl.Items() {
		data.Lines = append(data.Lines, cartLine{CartItem: item, Selected: ctrl.IsSelected(item.Product.ID)})
	}
	page := s.newPage(r, "Shopping Cart", data)
	if result != nil {
		page.Alert = result
	}
	s.render(w, r, http.StatusOK, "cart.html", page)
}

func (s *Server) renderCartError(w http.ResponseWriter, r *http.Request, ctrl *cart.Controller, err error) {
	if s.handleGlobalError(w, r, err) {
		return
	}
	s.renderCart(w, r, ctrl, alertFor(err))
}

func (s *Server) checkoutPage(r *http.Request, ctrl *cart.Controller, address commerce.Address) pageData {
	data := checkoutData{
		SelectedIDs:     ctrl.Selected(),
		Total:           ctrl.SelectedTotal(),
		Addresses:       ctrl.Addresses(),
		SelectedAddress: ctrl.SelectedAddress(),
		Address:         address,
	}
	for _, item := range ctrl.Items() {
		if ctrl.IsSelected(item.Product.ID) {
			data.Items = append(data.Items, item)
		}
	}
	return s.newPage(r, "Checkout", data)
}

func (s *Server) renderCheckout(w http.ResponseWriter, r *http.Request, ctrl *cart.Controller, address commerce.Address, result *alert) {
	page := s.checkoutPage(r, ctrl, address)
	if result != nil {
		page.Alert = result
	}
	s.render(w, r, http.StatusOK, "checkout.html", page)
}

// renderCheckoutError shows err on the address step, keeping the typed address and its field
// errors.
func (s *Server) renderCheckoutError(w http.ResponseWriter, r *http.Request, ctrl *cart.Controller, address commerce.Address, err error) {
	if s.handleGlobalError(w, r, err) {
		return
	}
	page := s.checkoutPage(r, ctrl, address)
	page.Alert = alertFor(err)
	page.Fields = fieldErrors(err)
	s.render(w, r, http.StatusOK, "checkout.html", page)
}
