package cart_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/jrsteele09/go-storefront/cart"
	"github.com/jrsteele09/go-storefront/commerce"
	"github.com/jrsteele09/go-storefront/commerce/commercefake"
	apperrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/jrsteele09/go-storefront/internal/validation"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var validAddress = commerce.Address{Street: "1 Main St", City: "Pokhara", State: "Gandaki", ZipCode: "33700", Country: "Nepal"}

// newCart returns a fake holding A (qty 2 @ 10.00) and B (qty 1 @ 5.00) and a fetched controller.
func newCart(t *testing.T) (*commercefake.Fake, *cart.Controller) {
	t.Helper()
	api := commercefake.New()
	a, err := api.GetProduct(context.Background(), 1)
	require.NoError(t, err)
	b, err := api.GetProduct(context.Background(), 2)
	require.NoError(t, err)
	api.SetCart(
		commerce.CartItem{ID: 11, Product: *a, Quantity: 2},
		commerce.CartItem{ID: 12, Product: *b, Quantity: 1},
	)

	c := cart.NewController(api)
	require.NoError(t, c.Fetch(context.Background()))
	return api, c
}

func TestController_SelectedTotal(t *testing.T) {
	api, c := newCart(t)
	calls := api.TotalCalls()

	require.True(t, c.AllSelected())
	require.Equal(t, "25.00", commerce.FormatAmount(c.SelectedTotal()))

	c.Toggle(2)
	require.Equal(t, "20.00", commerce.FormatAmount(c.SelectedTotal()))
	require.False(t, c.IsSelected(2))
	require.Equal(t, []int64{1}, c.Selected())

	c.Toggle(2)
	require.Equal(t, "25.00", commerce.FormatAmount(c.SelectedTotal()))

	require.Equal(t, calls, api.TotalCalls(), "selection never reaches the server")
	cartItems, err := api.GetCart(context.Background())
	require.NoError(t, err)
	require.Len(t, cartItems, 2)
}

func TestController_SelectAllToggles(t *testing.T) {
	_, c := newCart(t)

	c.SelectAll()
	require.Empty(t, c.Selected())
	require.True(t, c.SelectedTotal().IsZero())

	c.SelectAll()
	require.Equal(t, []int64{1, 2}, c.Selected())

	c.Toggle(1)
	c.SelectAll()
	require.True(t, c.AllSelected())
}

func TestController_SelectIgnoresUnknownIDs(t *testing.T) {
	_, c := newCart(t)
	c.Select([]int64{2, 99})
	require.Equal(t, []int64{2}, c.Selected())

	c.Toggle(99)
	require.Equal(t, []int64{2}, c.Selected())
}

func TestController_FetchResetsSelection(t *testing.T) {
	_, c := newCart(t)
	c.Select(nil)
	require.Empty(t, c.Selected())

	require.NoError(t, c.Fetch(context.Background()))
	require.True(t, c.AllSelected())
}

func TestController_UpdateQuantity(t *testing.T) {
	ctx := context.Background()

	t.Run("decrement below one is a no-op without a call", func(t *testing.T) {
		api, c := newCart(t)
		require.NoError(t, c.UpdateQuantity(ctx, 2, 0))
		require.Equal(t, 1, c.Items()[1].Quantity)
		require.Zero(t, api.Calls("UpdateCartItem"))
	})

	t.Run("update mirrors locally", func(t *testing.T) {
		api, c := newCart(t)
		require.NoError(t, c.UpdateQuantity(ctx, 2, 3))
		require.Equal(t, 3, c.Items()[1].Quantity)
		require.Equal(t, 1, api.Calls("UpdateCartItem"))
		require.Equal(t, "35.00", commerce.FormatAmount(c.SelectedTotal()))
	})

	t.Run("server rejects beyond stock", func(t *testing.T) {
		_, c := newCart(t)
		err := c.UpdateQuantity(ctx, 2, 4)
		require.ErrorIs(t, err, apperrors.ErrRemote)
		require.Equal(t, http.StatusBadRequest, commerce.ErrorStatus(err))
		require.Equal(t, 1, c.Items()[1].Quantity)
	})
}

func TestController_RemoveDeselects(t *testing.T) {
	api, c := newCart(t)
	require.NoError(t, c.Remove(context.Background(), 1))
	require.Len(t, c.Items(), 1)
	require.False(t, c.IsSelected(1))
	require.Equal(t, []int64{2}, c.Selected())
	require.Equal(t, "5.00", commerce.FormatAmount(c.SelectedTotal()))
	require.Equal(t, 1, api.Calls("RemoveCartItem"))

	api.FailNext("RemoveCartItem", apperrors.ErrRemote)
	require.Error(t, c.Remove(context.Background(), 2))
	require.Len(t, c.Items(), 1)
	require.True(t, c.IsSelected(2))
}

func TestController_Addresses(t *testing.T) {
	ctx := context.Background()
	api, c := newCart(t)

	t.Run("missing fields are rejected locally", func(t *testing.T) {
		incomplete := validAddress
		incomplete.ZipCode = ""
		_, err := c.AddAddress(ctx, incomplete)
		require.ErrorIs(t, err, apperrors.ErrValidation)
		var verr *validation.Error
		require.ErrorAs(t, err, &verr)
		require.Contains(t, verr.Map(), "zipCode")
		require.Zero(t, api.Calls("AddAddress"))
	})

	t.Run("add refreshes the list", func(t *testing.T) {
		message, err := c.AddAddress(ctx, validAddress)
		require.NoError(t, err)
		require.Equal(t, "Address added successfully", message)
		require.Len(t, c.Addresses(), 1)
		require.Equal(t, 1, api.Calls("ListAddresses"))
	})

	t.Run("only listed addresses can be selected", func(t *testing.T) {
		require.ErrorIs(t, c.SelectAddress(404), apperrors.ErrNoAddressSelected)
		require.NoError(t, c.SelectAddress(c.Addresses()[0].ID))
		require.Equal(t, c.Addresses()[0].ID, c.SelectedAddress())
	})
}

func TestController_PlaceOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("empty selection is rejected before any call", func(t *testing.T) {
		api, c := newCart(t)
		c.SelectAll()
		calls := api.TotalCalls()
		_, err := c.PlaceOrder(ctx)
		require.ErrorIs(t, err, apperrors.ErrEmptySelection)
		require.Equal(t, calls, api.TotalCalls())
	})

	t.Run("address is required", func(t *testing.T) {
		api, c := newCart(t)
		_, err := c.PlaceOrder(ctx)
		require.ErrorIs(t, err, apperrors.ErrNoAddressSelected)
		require.Zero(t, api.Calls("PlaceOrder"))
	})

	t.Run("places the selected subset", func(t *testing.T) {
		api, c := newCart(t)
		_, err := c.AddAddress(ctx, validAddress)
		require.NoError(t, err)
		require.NoError(t, c.SelectAddress(c.Addresses()[0].ID))
		c.Toggle(2)

		checkoutCtx, err := c.PlaceOrder(ctx)
		require.NoError(t, err)
		require.True(t, checkoutCtx.Valid())
		require.True(t, checkoutCtx.TotalAmount.Equal(decimal.NewFromInt(20)))
		require.Equal(t, []int64{1}, checkoutCtx.SelectedItems)
		require.Equal(t, c.SelectedAddress(), checkoutCtx.SelectedAddress)

		order, ok := api.Order(checkoutCtx.OrderID)
		require.True(t, ok)
		require.Equal(t, commerce.StatusPending, order.PaymentStatus)

		remaining, err := api.GetCart(ctx)
		require.NoError(t, err)
		require.Len(t, remaining, 1)
	})

	t.Run("remote failure keeps the server status", func(t *testing.T) {
		api, c := newCart(t)
		_, err := c.AddAddress(ctx, validAddress)
		require.NoError(t, err)
		require.NoError(t, c.SelectAddress(c.Addresses()[0].ID))

		api.FailNext("PlaceOrder", &commerce.RemoteError{StatusCode: http.StatusConflict, Message: "Out of stock"})
		_, err = c.PlaceOrder(ctx)
		require.Equal(t, http.StatusConflict, commerce.ErrorStatus(err))
		require.Equal(t, "Out of stock", commerce.ErrorMessage(err, ""))
	})
}
