// Package cart mirrors the remote cart for one page view and drives it to an order: quantity
// changes, removal, the local item selection and the delivery address.
package cart

import (
	"context"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/jrsteele09/go-storefront/checkout"
	"github.com/jrsteele09/go-storefront/commerce"
	apperrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/jrsteele09/go-storefront/internal/validation"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Client is the cart, address and order side of the commerce API.
type Client interface {
	GetCart(ctx context.Context) ([]commerce.CartItem, error)
	UpdateCartItem(ctx context.Context, update commerce.CartUpdate) error
	RemoveCartItem(ctx context.Context, productID int64) error
	ListAddresses(ctx context.Context) ([]commerce.Address, error)
	AddAddress(ctx context.Context, address commerce.Address) (*commerce.Address, string, error)
	PlaceOrder(ctx context.Context, req commerce.PlaceOrderRequest) (*commerce.PlaceOrderResult, error)
}

// Controller holds the local cart mirror and selection. Selection is never persisted: every
// successful Fetch selects all items again.
type Controller struct {
	client   Client
	validate *validatorv10.Validate

	items    []commerce.CartItem
	selected map[int64]bool // product ID -> selected

	addresses       []commerce.Address
	selectedAddress int64
}

func NewController(client Client) *Controller {
	return &Controller{
		client:   client,
		validate: validation.New(),
		selected: make(map[int64]bool),
	}
}

// Fetch replaces the local mirror with the remote cart and selects every item.
func (c *Controller) Fetch(ctx context.Context) error {
	items, err := c.client.GetCart(ctx)
	if err != nil {
		return errors.Wrap(err, "[Controller.Fetch]")
	}
	c.items = items
	c.selected = make(map[int64]bool, len(items))
	for _, item := range items {
		c.selected[item.Product.ID] = true
	}
	return nil
}

func (c *Controller) Items() []commerce.CartItem {
	return c.items
}

func (c *Controller) item(productID int64) (int, bool) {
	for i, item := range c.items {
		if item.Product.ID == productID {
			return i, true
		}
	}
	return -1, false
}

// UpdateQuantity sets the quantity of one item. Quantities below 1 are ignored without a call;
// the server enforces the stock limit.
func (c *Controller) UpdateQuantity(ctx context.Context, productID int64, quantity int) error {
	if quantity < 1 {
		return nil
	}
	if err := c.client.UpdateCartItem(ctx, commerce.CartUpdate{ProductID: productID, Quantity: quantity}); err != nil {
		return errors.Wrap(err, "[Controller.UpdateQuantity]")
	}
	if i, ok := c.item(productID); ok {
		c.items[i].Quantity = quantity
	}
	return nil
}

// Remove deletes one item from the cart and from the selection.
func (c *Controller) Remove(ctx context.Context, productID int64) error {
	if err := c.client.RemoveCartItem(ctx, productID); err != nil {
		return errors.Wrap(err, "[Controller.Remove]")
	}
	if i, ok := c.item(productID); ok {
		c.items = append(c.items[:i:i], c.items[i+1:]...)
	}
	delete(c.selected, productID)
	return nil
}

// Toggle flips the selection of one item.
func (c *Controller) Toggle(productID int64) {
	if _, ok := c.item(productID); !ok {
		return
	}
	if c.selected[productID] {
		delete(c.selected, productID)
		return
	}
	c.selected[productID] = true
}

// SelectAll selects every item, or clears the selection when everything is already selected.
func (c *Controller) SelectAll() {
	if c.AllSelected() {
		c.selected = make(map[int64]bool)
		return
	}
	for _, item := range c.items {
		c.selected[item.Product.ID] = true
	}
}

// Select replaces the selection with ids; ids not in the cart are ignored.
func (c *Controller) Select(ids []int64) {
	c.selected = make(map[int64]bool, len(ids))
	for _, id := range ids {
		if _, ok := c.item(id); ok {
			c.selected[id] = true
		}
	}
}

func (c *Controller) IsSelected(productID int64) bool {
	return c.selected[productID]
}

func (c *Controller) AllSelected() bool {
	return len(c.items) > 0 && len(c.selected) == len(c.items)
}

// Selected returns the selected product IDs in cart order.
func (c *Controller) Selected() []int64 {
	ids := make([]int64, 0, len(c.selected))
	for _, item := range c.items {
		if c.selected[item.Product.ID] {
			ids = append(ids, item.Product.ID)
		}
	}
	return ids
}

// SelectedTotal is Σ price × quantity over the selected items.
func (c *Controller) SelectedTotal() decimal.Decimal {
	var selected []commerce.CartItem
	for _, item := range c.items {
		if c.selected[item.Product.ID] {
			selected = append(selected, item)
		}
	}
	return commerce.SumLines(selected)
}

// FetchAddresses loads the user's saved addresses. A previously selected address that no longer
// exists is deselected.
func (c *Controller) FetchAddresses(ctx context.Context) error {
	addresses, err := c.client.ListAddresses(ctx)
	if err != nil {
		return errors.Wrap(err, "[Controller.FetchAddresses]")
	}
	c.addresses = addresses
	if c.selectedAddress != 0 && !c.hasAddress(c.selectedAddress) {
		c.selectedAddress = 0
	}
	return nil
}

func (c *Controller) Addresses() []commerce.Address {
	return c.addresses
}

func (c *Controller) hasAddress(id int64) bool {
	for _, a := range c.addresses {
		if a.ID == id {
			return true
		}
	}
	return false
}

// AddAddress validates and creates an address, then refreshes the address list. It returns the
// server's confirmation message.
func (c *Controller) AddAddress(ctx context.Context, address commerce.Address) (string, error) {
	if err := validation.Struct(c.validate, address); err != nil {
		return "", err
	}
	_, message, err := c.client.AddAddress(ctx, address)
	if err != nil {
		return "", errors.Wrap(err, "[Controller.AddAddress]")
	}
	if err := c.FetchAddresses(ctx); err != nil {
		return message, err
	}
	return message, nil
}

// SelectAddress picks the delivery address from the fetched list.
func (c *Controller) SelectAddress(id int64) error {
	if !c.hasAddress(id) {
		return apperrors.ErrNoAddressSelected
	}
	c.selectedAddress = id
	return nil
}

func (c *Controller) SelectedAddress() int64 {
	return c.selectedAddress
}

// PlaceOrder orders the selected items for the selected address and returns the checkout context
// for the payment page. An empty selection or missing address is rejected without a call.
func (c *Controller) PlaceOrder(ctx context.Context) (*checkout.Context, error) {
	ids := c.Selected()
	if len(ids) == 0 {
		return nil, apperrors.ErrEmptySelection
	}
	if c.selectedAddress == 0 {
		return nil, apperrors.ErrNoAddressSelected
	}

	result, err := c.client.PlaceOrder(ctx, commerce.PlaceOrderRequest{AddressID: c.selectedAddress, ProductIDs: ids})
	if err != nil {
		return nil, errors.Wrap(err, "[Controller.PlaceOrder]")
	}
	return &checkout.Context{
		OrderID:         result.OrderID,
		TotalAmount:     result.TotalAmount,
		SelectedItems:   ids,
		SelectedAddress: c.selectedAddress,
	}, nil
}
