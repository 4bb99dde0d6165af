package server

import (
	"fmt"
	"net/http"

	"github.com/jrsteele09/go-storefront/commerce"
	apperrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/jrsteele09/go-storefront/orders"
	"github.com/jrsteele09/go-storefront/storage"
)

func (s *Server) OrdersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		history, err := orders.NewView(scopeFrom(r).client).History(r.Context())
		if s.handleGlobalError(w, r, err) {
			return
		}
		page := s.newPage(r, "My Orders", history)
		if err != nil {
			page.Alert = alertFor(err)
		}
		s.render(w, r, http.StatusOK, "orders.html", page)
	}
}

func (s *Server) OrderDetailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, err := s.loadOrder(r)
		if s.handleGlobalError(w, r, err) {
			return
		}
		page := s.newPage(r, "Order Details", order)
		if err != nil {
			page.Alert = alertFor(err)
		}
		s.render(w, r, http.StatusOK, "order.html", page)
	}
}

// PayNowHandler re-enters checkout for an unpaid order, without any cart selection.
func (s *Server) PayNowHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if s.handleGlobalError(w, r, err) {
			return
		}
		scope := scopeFrom(r)
		handoff := s.newHandoff(scope)
		_, err = orders.NewView(scope.client).PayNow(r.Context(), id, handoff)
		if s.handleGlobalError(w, r, err) {
			return
		}
		orderPath := fmt.Sprintf("%s/%d", RouteOrders, id)
		if apperrors.Is(err, apperrors.ErrOrderAlreadyPaid) {
			redirectWithError(w, r, orderPath, "This order has already been paid")
			return
		}
		if err == nil {
			err = storage.SetJSON(r.Context(), scope.flash, navPaymentKey, handoff.Context())
		}
		if err != nil {
			redirectWithError(w, r, orderPath, alertFor(err).Text)
			return
		}
		redirectSuccess(w, r, RoutePayment)
	}
}

func (s *Server) loadOrder(r *http.Request) (*commerce.Order, error) {
	id, err := pathID(r)
	if err != nil {
		return nil, err
	}
	return orders.NewView(scopeFrom(r).client).Detail(r.Context(), id)
}
