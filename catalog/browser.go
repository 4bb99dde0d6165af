// Package catalog serves product browsing: the paginated list, product detail and the home page
// listings.
package catalog

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-storefront/commerce"
	apperrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Source is the read side of the commerce API used for browsing.
type Source interface {
	ListProducts(ctx context.Context, pageNumber, pageSize int) (*commerce.ProductPage, error)
	GetProduct(ctx context.Context, id int64) (*commerce.Product, error)
	FeaturedProducts(ctx context.Context) ([]commerce.Product, error)
	ListCategories(ctx context.Context) ([]commerce.Category, error)
}

// CartAdder adds products to the signed-in user's cart.
type CartAdder interface {
	AddToCart(ctx context.Context, update commerce.CartUpdate) error
}

// Browser reads the catalog. It is shared by all requests: identical concurrent fetches are
// collapsed into one call.
type Browser struct {
	source Source
	sfg    singleflight.Group
}

func NewBrowser(source Source) *Browser {
	return &Browser{source: source}
}

// Home is the home page content.
type Home struct {
	Featured   []commerce.Product
	Categories []commerce.Category
}

// List fetches the page described by pager and returns it with pager updated to the reported
// totals. A page past the end, such as a bookmark on a catalog that has since shrunk, is served
// as the last page.
func (b *Browser) List(ctx context.Context, pager Pager) ([]commerce.Product, Pager, error) {
	products, pager, err := b.list(ctx, pager)
	if err != nil || pager.Page <= pager.Last() {
		return products, pager, err
	}
	if pager.TotalPages == 0 {
		return products, pager.WithPage(0), nil
	}
	return b.list(ctx, pager.WithPage(pager.Page))
}

func (b *Browser) list(ctx context.Context, pager Pager) ([]commerce.Product, Pager, error) {
	key := fmt.Sprintf("products:%d:%d", pager.Page, pager.Size)
	v, err := b.do(ctx, key, func(ctx context.Context) (any, error) {
		return b.source.ListProducts(ctx, pager.Page, pager.Size)
	})
	if err != nil {
		return nil, pager, errors.Wrap(err, "[Browser.List]")
	}
	page := v.(*commerce.ProductPage)
	return append([]commerce.Product(nil), page.Content...), pager.WithTotals(page.TotalPages, page.TotalElements), nil
}

// Product fetches one product. A missing product is ErrNotFound.
func (b *Browser) Product(ctx context.Context, id int64) (*commerce.Product, error) {
	v, err := b.do(ctx, fmt.Sprintf("product:%d", id), func(ctx context.Context) (any, error) {
		return b.source.GetProduct(ctx, id)
	})
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, errors.Wrap(err, "[Browser.Product]")
	}
	product := *v.(*commerce.Product)
	return &product, nil
}

// Home fetches featured products and categories concurrently.
func (b *Browser) Home(ctx context.Context) (*Home, error) {
	var home Home
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := b.do(gctx, "featured", func(ctx context.Context) (any, error) {
			return b.source.FeaturedProducts(ctx)
		})
		if err != nil {
			return errors.Wrap(err, "[Browser.Home] featured")
		}
		home.Featured = append([]commerce.Product(nil), v.([]commerce.Product)...)
		return nil
	})
	g.Go(func() error {
		v, err := b.do(gctx, "categories", func(ctx context.Context) (any, error) {
			return b.source.ListCategories(ctx)
		})
		if err != nil {
			return errors.Wrap(err, "[Browser.Home] categories")
		}
		home.Categories = append([]commerce.Category(nil), v.([]commerce.Category)...)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &home, nil
}

// do runs fn once per key across concurrent callers. The shared call is not cancelled when one
// caller goes away; a caller whose ctx ends stops waiting and gets ctx.Err().
func (b *Browser) do(ctx context.Context, key string, fn func(ctx context.Context) (any, error)) (any, error) {
	detached := context.WithoutCancel(ctx)
	ch := b.sfg.DoChan(key, func() (any, error) {
		return fn(detached)
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// AddToCart adds quantity of product to the cart. Quantities outside 1..stock are rejected
// locally.
func AddToCart(ctx context.Context, cart CartAdder, product commerce.Product, quantity int) error {
	if quantity < 1 || quantity > product.Quantity {
		return errors.Wrapf(apperrors.ErrInvalidQuantity, "quantity %d outside 1..%d", quantity, product.Quantity)
	}
	if err := cart.AddToCart(ctx, commerce.CartUpdate{ProductID: product.ID, Quantity: quantity}); err != nil {
		return errors.Wrap(err, "[catalog.AddToCart]")
	}
	return nil
}

// ClampQuantity bounds a requested quantity to 1..stock, or 0 when out of stock.
func ClampQuantity(quantity, stock int) int {
	if stock < 1 {
		return 0
	}
	return min(max(quantity, 1), stock)
}
