package checkout

import (
	"context"

	"github.com/jrsteele09/go-storefront/storage"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ContextKey is the durable storage key of the in-progress checkout.
const ContextKey = "orderDetails"

// Context identifies the order being paid for. It is written when an order is placed and
// cleared once payment reaches an outcome.
type Context struct {
	OrderID         int64           `json:"orderId"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	SelectedItems   []int64         `json:"selectedItems,omitempty"`
	SelectedAddress int64           `json:"selectedAddress,omitempty"`
}

// Valid reports whether c can be paid: it needs an order and a positive amount.
func (c *Context) Valid() bool {
	return c != nil && c.OrderID != 0 && c.TotalAmount.IsPositive()
}

// ContextStore persists the checkout context in a browser's durable storage.
type ContextStore struct {
	durable storage.Store
}

func NewContextStore(durable storage.Store) *ContextStore {
	return &ContextStore{durable: durable}
}

func (cs *ContextStore) Save(ctx context.Context, c Context) error {
	if err := storage.SetJSON(ctx, cs.durable, ContextKey, c); err != nil {
		return errors.Wrap(err, "[ContextStore.Save]")
	}
	return nil
}

// Load returns the persisted context, or nil when there is none.
func (cs *ContextStore) Load(ctx context.Context) (*Context, error) {
	var c Context
	found, err := storage.GetJSON(ctx, cs.durable, ContextKey, &c)
	if err != nil {
		return nil, errors.Wrap(err, "[ContextStore.Load]")
	}
	if !found {
		return nil, nil
	}
	return &c, nil
}

func (cs *ContextStore) Clear(ctx context.Context) error {
	if err := cs.durable.Delete(ctx, ContextKey); err != nil {
		return errors.Wrap(err, "[ContextStore.Clear]")
	}
	return nil
}

// Read resolves the context for the payment page. State handed over by the previous page wins
// and is persisted so a reload finds it; otherwise the durable copy is used.
func (cs *ContextStore) Read(ctx context.Context, nav *Context) (*Context, error) {
	if nav != nil {
		if err := cs.Save(ctx, *nav); err != nil {
			return nil, err
		}
		c := *nav
		return &c, nil
	}
	return cs.Load(ctx)
}
