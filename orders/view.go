// Package orders presents previously placed orders and lets unpaid ones re-enter checkout.
package orders

import (
	"context"

	"github.com/jrsteele09/go-storefront/checkout"
	"github.com/jrsteele09/go-storefront/commerce"
	apperrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/pkg/errors"
)

// Source is the order side of the commerce API.
type Source interface {
	ListOrders(ctx context.Context) ([]commerce.Order, error)
	GetOrder(ctx context.Context, orderID int64) (*commerce.Order, error)
}

// Reentrant is the part of the checkout hand-off used by "Pay Now".
type Reentrant interface {
	ReEnter(ctx context.Context, order commerce.Order) error
}

type View struct {
	source Source
}

func NewView(source Source) *View {
	return &View{source: source}
}

// History lists the user's orders.
func (v *View) History(ctx context.Context) ([]commerce.Order, error) {
	list, err := v.source.ListOrders(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "[View.History]")
	}
	return list, nil
}

// Detail fetches one order. A missing order is ErrNotFound.
func (v *View) Detail(ctx context.Context, orderID int64) (*commerce.Order, error) {
	order, err := v.source.GetOrder(ctx, orderID)
	if apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "[View.Detail]")
	}
	return order, nil
}

// PayNow re-enters checkout for an unpaid order with a context built from the order itself.
func (v *View) PayNow(ctx context.Context, orderID int64, handoff Reentrant) (*commerce.Order, error) {
	order, err := v.Detail(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !CanPay(*order) {
		return nil, apperrors.ErrOrderAlreadyPaid
	}
	if err := handoff.ReEnter(ctx, *order); err != nil {
		return nil, errors.Wrap(err, "[View.PayNow]")
	}
	return order, nil
}

var _ Reentrant = (*checkout.Handoff)(nil)
