package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/go-storefront/checkout"
	apperrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/jrsteele09/go-storefront/storage"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type paymentData struct {
	Invalid    bool // no usable checkout context: only "return to cart" is offered
	Context    *checkout.Context
	Methods    []checkout.Method
	Selected   string
	Submitting bool
	Currency   string
}

func (s *Server) newHandoff(scope *requestScope) *checkout.Handoff {
	return checkout.NewHandoff(scope.checkoutStore(), scope.client, s.guard, scope.sid,
		checkout.WithCurrency(s.config.GetCurrency()),
	)
}

// popNavContext consumes the checkout context handed over by the previous page, if any.
func popNavContext(ctx context.Context, flash storage.Store) (*checkout.Context, error) {
	raw, err := storage.Pop(ctx, flash, navPaymentKey)
	if apperrors.Is(err, apperrors.ErrStorageMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var c checkout.Context
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, errors.Wrap(err, "[popNavContext] decode")
	}
	return &c, nil
}

// PaymentPageHandler shows the payment methods for the current checkout, or the invalid-order
// guard when there is no checkout to pay for.
func (s *Server) PaymentPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope := scopeFrom(r)
		nav, err := popNavContext(r.Context(), scope.flash)
		if err != nil {
			// Stale navigation state is not fatal, durable storage still applies.
			log.Err(err).Msg("failed to read navigation state")
		}

		handoff := s.newHandoff(scope)
		if err := handoff.Load(r.Context(), nav); err != nil {
			s.renderPaymentError(w, r, handoff, "", err)
			return
		}
		s.renderPayment(w, r, handoff, "", nil)
	}
}

// PaymentSubmitHandler pays with the posted method. Redirect methods leave for the provider; the
// others finish on the success page.
func (s *Server) PaymentSubmitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		method := r.FormValue("method")
		handoff := s.newHandoff(scopeFrom(r))
		if err := handoff.Load(r.Context(), nil); err != nil {
			s.renderPaymentError(w, r, handoff, method, err)
			return
		}
		if err := handoff.Select(method); err != nil {
			s.renderPaymentError(w, r, handoff, method, err)
			return
		}

		outcome, err := handoff.Submit(r.Context())
		if err != nil {
			s.renderPaymentError(w, r, handoff, method, err)
			return
		}
		if outcome.RedirectURL != "" {
			redirectSuccess(w, r, outcome.RedirectURL)
			return
		}
		redirectSuccess(w, r, RoutePaymentSuccess)
	}
}

func (s *Server) PaymentSuccessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, http.StatusOK, "payment-success.html", s.newPage(r, "Payment Successful", nil))
	}
}

func (s *Server) PaymentFailedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, http.StatusOK, "payment-failed.html", s.newPage(r, "Payment Failed", nil))
	}
}

func (s *Server) renderPayment(w http.ResponseWriter, r *http.Request, handoff *checkout.Handoff, selected string, result *alert) {
	data := paymentData{
		Context:    handoff.Context(),
		Methods:    checkout.Methods,
		Selected:   selected,
		Submitting: handoff.Submitting(),
		Currency:   s.config.GetCurrency(),
	}
	data.Invalid = !data.Context.Valid()
	page := s.newPage(r, "Payment", data)
	if result != nil {
		page.Alert = result
	}
	s.render(w, r, http.StatusOK, "payment.html", page)
}

// renderPaymentError keeps the user on the payment page. A missing or already cleared context
// shows the guard; anything else is reported inline with the method form still usable.
func (s *Server) renderPaymentError(w http.ResponseWriter, r *http.Request, handoff *checkout.Handoff, selected string, err error) {
	if s.handleGlobalError(w, r, err) {
		return
	}
	switch {
	case apperrors.Is(err, apperrors.ErrInvalidOrder), apperrors.Is(err, apperrors.ErrContextCleared):
		s.renderPayment(w, r, handoff, "", nil)
	case apperrors.IsValidation(err):
		s.renderPayment(w, r, handoff, selected, alertFor(err))
	default:
		result := alertFor(err)
		result.Title = "Payment Failed"
		s.renderPayment(w, r, handoff, selected, result)
	}
}
