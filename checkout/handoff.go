// Package checkout carries an order from the cart to a payment outcome. The hand-off survives page
// reloads through the durable checkout context and is cleared exactly once, when payment reaches an
// outcome or control is handed to an external provider.
package checkout

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-storefront/commerce"
	apperrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Payments is the payment side of the commerce API.
type Payments interface {
	CreateGatewaySession(ctx context.Context, req commerce.GatewaySessionRequest) (*commerce.GatewaySession, error)
	ProcessPayment(ctx context.Context, req commerce.ProcessPaymentRequest) error
}

// Outcome is the result of a successful submission: either a provider URL to redirect to, or a
// completed payment.
type Outcome struct {
	RedirectURL string
	Completed   bool
}

// Handoff drives one browser's checkout. It is built per request; state that must outlive the
// request lives in the ContextStore.
type Handoff struct {
	store    *ContextStore
	payments Payments
	guard    *Guard
	guardKey string
	currency string
	newKey   func() string

	state   State
	current *Context
	method  Method
}

type HandoffOption func(*Handoff)

func WithCurrency(currency string) HandoffOption {
	return func(h *Handoff) {
		h.currency = currency
	}
}

// WithIdempotencyKeys overrides how submission keys are generated.
func WithIdempotencyKeys(newKey func() string) HandoffOption {
	return func(h *Handoff) {
		h.newKey = newKey
	}
}

// NewHandoff builds a hand-off over store. guardKey identifies the browser for the
// single-submission guard.
func NewHandoff(store *ContextStore, payments Payments, guard *Guard, guardKey string, options ...HandoffOption) *Handoff {
	h := &Handoff{
		store:    store,
		payments: payments,
		guard:    guard,
		guardKey: guardKey,
		currency: "NPR",
		newKey:   uuid.NewString,
		state:    NoContext,
	}
	for _, opt := range options {
		opt(h)
	}
	return h
}

func (h *Handoff) State() State {
	return h.state
}

// Context is the loaded checkout context, nil before Load.
func (h *Handoff) Context() *Context {
	return h.current
}

// Method is the selected payment method.
func (h *Handoff) Method() (Method, bool) {
	return h.method, h.state == MethodSelected || h.state == AwaitingProviderRedirect
}

// Submitting reports whether a submission for this browser is in flight.
func (h *Handoff) Submitting() bool {
	return h.guard.InFlight(h.guardKey)
}

func (h *Handoff) transition(next State) error {
	if !h.state.CanTransitionTo(next) {
		return errors.Wrapf(apperrors.ErrIllegalTransition, "%s -> %s", h.state, next)
	}
	h.state = next
	return nil
}

// Load reads the checkout context, preferring nav (the state handed over by the previous page)
// over durable storage. A missing or incomplete context is ErrInvalidOrder.
func (h *Handoff) Load(ctx context.Context, nav *Context) error {
	c, err := h.store.Read(ctx, nav)
	if err != nil {
		return errors.Wrap(err, "[Handoff.Load]")
	}
	if !c.Valid() {
		h.state, h.current = NoContext, nil
		return apperrors.ErrInvalidOrder
	}
	if err := h.transition(ContextLoaded); err != nil {
		return err
	}
	h.current = c
	return nil
}

// ReEnter starts a fresh checkout for an existing unpaid order, without any cart selection.
func (h *Handoff) ReEnter(ctx context.Context, order commerce.Order) error {
	if order.PaymentStatus == commerce.StatusCompleted {
		return apperrors.ErrOrderAlreadyPaid
	}
	c := Context{OrderID: order.ID, TotalAmount: order.TotalAmount}
	if !c.Valid() {
		return apperrors.ErrInvalidOrder
	}
	if err := h.store.Save(ctx, c); err != nil {
		return errors.Wrap(err, "[Handoff.ReEnter]")
	}
	h.state, h.current = ContextLoaded, &c
	return nil
}

// Select picks the payment method. It does not touch the checkout context.
func (h *Handoff) Select(methodID string) error {
	if methodID == "" {
		return apperrors.ErrNoMethodSelected
	}
	m, ok := LookupMethod(methodID)
	if !ok {
		return errors.Wrapf(apperrors.ErrUnknownMethod, "%q", methodID)
	}
	if h.state == NoContext {
		return apperrors.ErrInvalidOrder
	}
	if err := h.transition(MethodSelected); err != nil {
		return err
	}
	h.method = m
	return nil
}

// Submit pays with the selected method. On failure the context is kept and the hand-off stays at
// MethodSelected so the user can retry. On success the context is cleared before the outcome is
// returned, so a redirect can never redrive it.
func (h *Handoff) Submit(ctx context.Context) (Outcome, error) {
	switch h.state {
	case NoContext:
		return Outcome{}, apperrors.ErrInvalidOrder
	case ContextLoaded:
		return Outcome{}, apperrors.ErrNoMethodSelected
	case MethodSelected:
	default:
		return Outcome{}, errors.Wrapf(apperrors.ErrIllegalTransition, "submit in %s", h.state)
	}

	if !h.guard.TryAcquire(h.guardKey) {
		return Outcome{}, apperrors.ErrSubmissionInFlight
	}
	defer h.guard.Release(h.guardKey)

	// Another tab may have finished this checkout since it was loaded.
	stored, err := h.store.Load(ctx)
	if err != nil {
		return Outcome{}, errors.Wrap(err, "[Handoff.Submit]")
	}
	if stored == nil || stored.OrderID != h.current.OrderID {
		h.state, h.current = NoContext, nil
		return Outcome{}, apperrors.ErrContextCleared
	}

	key := h.newKey()
	ctx = commerce.WithIdempotencyKey(ctx, key)
	logger := log.With().Int64("order_id", h.current.OrderID).Str("method", h.method.ID).Str("idempotency_key", key).Logger()

	if h.method.Redirect {
		return h.submitRedirect(ctx, logger)
	}
	return h.submitDirect(ctx, logger)
}

func (h *Handoff) submitRedirect(ctx context.Context, logger zerolog.Logger) (Outcome, error) {
	session, err := h.payments.CreateGatewaySession(ctx, commerce.GatewaySessionRequest{
		Amount:   h.current.TotalAmount,
		Currency: h.currency,
		OrderID:  strconv.FormatInt(h.current.OrderID, 10),
	})
	if err != nil {
		logger.Warn().Err(err).Msg("gateway session failed")
		return Outcome{}, errors.Wrap(err, "[Handoff.Submit] gateway session")
	}
	if session == nil || session.SessionURL == "" {
		return Outcome{}, errors.Wrap(apperrors.ErrRemote, "[Handoff.Submit] gateway session without URL")
	}

	if err := h.store.Clear(ctx); err != nil {
		return Outcome{}, errors.Wrap(err, "[Handoff.Submit]")
	}
	if err := h.transition(AwaitingProviderRedirect); err != nil {
		return Outcome{}, err
	}
	logger.Info().Msg("redirecting to payment provider")
	return Outcome{RedirectURL: session.SessionURL}, nil
}

func (h *Handoff) submitDirect(ctx context.Context, logger zerolog.Logger) (Outcome, error) {
	err := h.payments.ProcessPayment(ctx, commerce.ProcessPaymentRequest{
		OrderID:       h.current.OrderID,
		PaymentMethod: h.method.ID,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("payment failed")
		return Outcome{}, errors.Wrap(err, "[Handoff.Submit] process payment")
	}

	if err := h.store.Clear(ctx); err != nil {
		return Outcome{}, errors.Wrap(err, "[Handoff.Submit]")
	}
	if err := h.transition(Succeeded); err != nil {
		return Outcome{}, err
	}
	logger.Info().Msg("payment completed")
	return Outcome{Completed: true}, nil
}

// Complete records the provider's verdict after a redirect.
func (h *Handoff) Complete(success bool) error {
	if success {
		return h.transition(Succeeded)
	}
	return h.transition(Failed)
}
