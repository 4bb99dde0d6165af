package checkout_test

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/jrsteele09/go-storefront/checkout"
	"github.com/jrsteele09/go-storefront/commerce"
	"github.com/jrsteele09/go-storefront/commerce/commercefake"
	apperrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/jrsteele09/go-storefront/storage/repofake"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	api     *commercefake.Fake
	store   *checkout.ContextStore
	guard   *checkout.Guard
	order   commerce.Order
	context checkout.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	api := commercefake.New()
	order := api.AddOrder(commerce.Order{
		Status:        commerce.StatusPlaced,
		PaymentStatus: commerce.StatusPending,
		TotalAmount:   decimal.RequireFromString("25.00"),
	})
	return &fixture{
		api:     api,
		store:   checkout.NewContextStore(repofake.NewMemoryStore()),
		guard:   checkout.NewGuard(),
		order:   order,
		context: checkout.Context{OrderID: order.ID, TotalAmount: order.TotalAmount, SelectedItems: []int64{1, 2}, SelectedAddress: 9},
	}
}

func (f *fixture) handoff(options ...checkout.HandoffOption) *checkout.Handoff {
	return checkout.NewHandoff(f.store, f.api, f.guard, "browser-1", options...)
}

// reload simulates the payment page being requested again with no navigation state.
func (f *fixture) reload(t *testing.T) (*checkout.Handoff, error) {
	t.Helper()
	h := f.handoff()
	return h, h.Load(context.Background(), nil)
}

func TestHandoff_GuardWithoutContext(t *testing.T) {
	f := newFixture(t)
	h, err := f.reload(t)
	require.ErrorIs(t, err, apperrors.ErrInvalidOrder)
	require.Equal(t, checkout.NoContext, h.State())
	require.Nil(t, h.Context())

	require.ErrorIs(t, h.Select(checkout.MethodCOD), apperrors.ErrInvalidOrder)
	_, err = h.Submit(context.Background())
	require.ErrorIs(t, err, apperrors.ErrInvalidOrder)
	require.Zero(t, f.api.TotalCalls())
}

func TestHandoff_GuardRejectsZeroAmount(t *testing.T) {
	f := newFixture(t)
	h := f.handoff()
	err := h.Load(context.Background(), &checkout.Context{OrderID: 5, TotalAmount: decimal.Zero})
	require.ErrorIs(t, err, apperrors.ErrInvalidOrder)
	require.Equal(t, checkout.NoContext, h.State())
}

func TestHandoff_ReloadKeepsContext(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	h := f.handoff()
	require.NoError(t, h.Load(ctx, &f.context))
	require.Equal(t, checkout.ContextLoaded, h.State())

	reloaded, err := f.reload(t)
	require.NoError(t, err)
	require.Equal(t, f.context.OrderID, reloaded.Context().OrderID)
}

func TestHandoff_Selection(t *testing.T) {
	f := newFixture(t)
	h := f.handoff()
	require.NoError(t, h.Load(context.Background(), &f.context))

	_, err := h.Submit(context.Background())
	require.ErrorIs(t, err, apperrors.ErrNoMethodSelected)

	require.ErrorIs(t, h.Select(""), apperrors.ErrNoMethodSelected)
	require.ErrorIs(t, h.Select("bitcoin"), apperrors.ErrUnknownMethod)
	require.Equal(t, checkout.ContextLoaded, h.State())

	require.NoError(t, h.Select(checkout.MethodPayPal))
	require.NoError(t, h.Select(checkout.MethodStripe))
	m, ok := h.Method()
	require.True(t, ok)
	require.Equal(t, checkout.MethodStripe, m.ID)
	require.Equal(t, checkout.MethodSelected, h.State())

	stored, err := f.store.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, f.context.OrderID, stored.OrderID, "selection does not touch the context")
	require.Zero(t, f.api.TotalCalls())
}

func TestHandoff_RedirectClearsContextBeforeRedirect(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	h := f.handoff(checkout.WithCurrency("USD"))
	require.NoError(t, h.Load(ctx, &f.context))
	require.NoError(t, h.Select(checkout.MethodStripe))

	outcome, err := h.Submit(ctx)
	require.NoError(t, err)
	require.False(t, outcome.Completed)
	require.Contains(t, outcome.RedirectURL, "https://checkout.stripe.test/pay")
	require.Contains(t, outcome.RedirectURL, "currency=USD")
	require.Equal(t, checkout.AwaitingProviderRedirect, h.State())
	require.Equal(t, 1, f.api.Calls("CreateGatewaySession"))

	_, err = f.reload(t)
	require.ErrorIs(t, err, apperrors.ErrInvalidOrder)

	// The provider's verdict ends the hand-off.
	require.NoError(t, h.Complete(false))
	require.Equal(t, checkout.Failed, h.State())
	require.ErrorIs(t, h.Complete(true), apperrors.ErrIllegalTransition)
}

func TestHandoff_RedirectFailureRetainsContext(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	h := f.handoff()
	require.NoError(t, h.Load(ctx, &f.context))
	require.NoError(t, h.Select(checkout.MethodStripe))

	f.api.FailNext("CreateGatewaySession", &commerce.RemoteError{StatusCode: http.StatusBadGateway, Message: "Stripe unavailable"})
	_, err := h.Submit(ctx)
	require.Error(t, err)
	require.Equal(t, "Stripe unavailable", commerce.ErrorMessage(err, ""))
	require.Equal(t, checkout.MethodSelected, h.State())

	reloaded, err := f.reload(t)
	require.NoError(t, err)
	require.Equal(t, f.context.OrderID, reloaded.Context().OrderID)

	// Retry on the same hand-off succeeds.
	outcome, err := h.Submit(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, outcome.RedirectURL)
}

func TestHandoff_DirectPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	h := f.handoff()
	require.NoError(t, h.Load(ctx, &f.context))
	require.NoError(t, h.Select(checkout.MethodCOD))

	f.api.FailNext("ProcessPayment", &commerce.RemoteError{StatusCode: http.StatusBadRequest, Message: "Payment declined"})
	_, err := h.Submit(ctx)
	require.Equal(t, "Payment declined", commerce.ErrorMessage(err, ""))
	require.Equal(t, checkout.MethodSelected, h.State())
	_, err = f.reload(t)
	require.NoError(t, err)

	outcome, err := h.Submit(ctx)
	require.NoError(t, err)
	require.True(t, outcome.Completed)
	require.Empty(t, outcome.RedirectURL)
	require.Equal(t, checkout.Succeeded, h.State())

	order, ok := f.api.Order(f.order.ID)
	require.True(t, ok)
	require.Equal(t, commerce.StatusCompleted, order.PaymentStatus)
	require.Equal(t, checkout.MethodCOD, order.PaymentMethod)

	_, err = f.reload(t)
	require.ErrorIs(t, err, apperrors.ErrInvalidOrder)

	_, err = h.Submit(ctx)
	require.ErrorIs(t, err, apperrors.ErrIllegalTransition)
	require.Equal(t, 2, f.api.Calls("ProcessPayment"))
}

func TestHandoff_ClearedContextIsNeverRedriven(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	h := f.handoff()
	require.NoError(t, h.Load(ctx, &f.context))
	require.NoError(t, h.Select(checkout.MethodESewa))

	// Another tab completes the checkout.
	require.NoError(t, f.store.Clear(ctx))

	_, err := h.Submit(ctx)
	require.ErrorIs(t, err, apperrors.ErrContextCleared)
	require.Equal(t, checkout.NoContext, h.State())
	require.Zero(t, f.api.Calls("ProcessPayment"))
}

func TestHandoff_SingleSubmission(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	h := f.handoff()
	require.NoError(t, h.Load(ctx, &f.context))
	require.NoError(t, h.Select(checkout.MethodCOD))

	require.True(t, f.guard.TryAcquire("browser-1"))
	require.True(t, h.Submitting())
	_, err := h.Submit(ctx)
	require.ErrorIs(t, err, apperrors.ErrSubmissionInFlight)
	require.Zero(t, f.api.Calls("ProcessPayment"))
	require.Equal(t, checkout.MethodSelected, h.State())

	f.guard.Release("browser-1")
	_, err = h.Submit(ctx)
	require.NoError(t, err)
	require.False(t, h.Submitting())
}

// blockingPayments holds ProcessPayment open until released.
type blockingPayments struct {
	*commercefake.Fake
	entered chan struct{}
	release chan struct{}
}

func (b *blockingPayments) ProcessPayment(ctx context.Context, req commerce.ProcessPaymentRequest) error {
	close(b.entered)
	<-b.release
	return b.Fake.ProcessPayment(ctx, req)
}

func TestHandoff_ConcurrentSubmitsFromOneBrowser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	payments := &blockingPayments{Fake: f.api, entered: make(chan struct{}), release: make(chan struct{})}

	require.NoError(t, f.store.Save(ctx, f.context))
	first := checkout.NewHandoff(f.store, payments, f.guard, "browser-1")
	second := checkout.NewHandoff(f.store, payments, f.guard, "browser-1")
	for _, h := range []*checkout.Handoff{first, second} {
		require.NoError(t, h.Load(ctx, nil))
		require.NoError(t, h.Select(checkout.MethodCOD))
	}

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = first.Submit(ctx)
	}()

	<-payments.entered
	_, err := second.Submit(ctx)
	require.ErrorIs(t, err, apperrors.ErrSubmissionInFlight)

	close(payments.release)
	wg.Wait()
	require.NoError(t, firstErr)
	require.Equal(t, 1, f.api.Calls("ProcessPayment"))
}

func TestHandoff_ReEnter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("unpaid order starts a fresh checkout", func(t *testing.T) {
		h := f.handoff()
		require.NoError(t, h.ReEnter(ctx, f.order))
		require.Equal(t, checkout.ContextLoaded, h.State())
		require.Empty(t, h.Context().SelectedItems)

		reloaded, err := f.reload(t)
		require.NoError(t, err)
		require.Equal(t, f.order.ID, reloaded.Context().OrderID)
		require.True(t, reloaded.Context().TotalAmount.Equal(f.order.TotalAmount))
	})

	t.Run("paid order is refused", func(t *testing.T) {
		paid := f.order
		paid.PaymentStatus = commerce.StatusCompleted
		require.ErrorIs(t, f.handoff().ReEnter(ctx, paid), apperrors.ErrOrderAlreadyPaid)
	})

	t.Run("zero amount is refused", func(t *testing.T) {
		free := f.order
		free.TotalAmount = decimal.Zero
		require.ErrorIs(t, f.handoff().ReEnter(ctx, free), apperrors.ErrInvalidOrder)
	})
}

func TestHandoff_SendsIdempotencyKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var header string
	client := commerce.NewHTTPClient("http://api.test/api/v1", commerce.WithBaseTransport(commerce.RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		header = r.Header.Get(commerce.HeaderIdempotencyKey)
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{"httpStatus":"OK","code":200}`)),
			Header:     http.Header{},
			Request:    r,
		}, nil
	})))

	h := checkout.NewHandoff(f.store, client, f.guard, "browser-1", checkout.WithIdempotencyKeys(func() string { return "key-1" }))
	require.NoError(t, h.Load(ctx, &f.context))
	require.NoError(t, h.Select(checkout.MethodPayPal))
	_, err := h.Submit(ctx)
	require.NoError(t, err)
	require.Equal(t, "key-1", header)
}
