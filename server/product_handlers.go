package server

import (
	"net/http"
	"strconv"

	"github.com/jrsteele09/go-storefront/catalog"
	"github.com/jrsteele09/go-storefront/commerce"
)

type productListData struct {
	Products    []commerce.Product
	Pager       catalog.Pager
	Window      []int
	SizeOptions []int
}

type productDetailData struct {
	Product  commerce.Product
	Quantity int
	BackPage int // list page to return to
}

// ProductListHandler renders one page of products. Page (zero-based) and size come from the query
// string so the list position survives a round trip through a product page.
func (s *Server) ProductListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pager := catalog.NewPager(queryInt(r, "page", 0), queryInt(r, "size", catalog.DefaultPageSize))
		products, pager, err := s.catalog.List(r.Context(), pager)
		if s.handleGlobalError(w, r, err) {
			return
		}
		page := s.newPage(r, "Products", productListData{
			Products:    products,
			Pager:       pager,
			Window:      pager.Window(1),
			SizeOptions: catalog.PageSizeOptions,
		})
		if err != nil {
			page.Alert = alertFor(err)
		}
		s.render(w, r, http.StatusOK, "products.html", page)
	}
}

func (s *Server) ProductDetailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		product, ok := s.loadProduct(w, r)
		if !ok {
			return
		}
		s.renderProduct(w, r, *product, catalog.ClampQuantity(1, product.Quantity), nil)
	}
}

// AddToCartHandler adds the chosen quantity. An anonymous browser gets a 401 from the API and is
// sent to the login page like any other unauthorized call.
func (s *Server) AddToCartHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		product, ok := s.loadProduct(w, r)
		if !ok {
			return
		}
		quantity, err := strconv.Atoi(r.FormValue("quantity"))
		if err != nil {
			quantity = 0
		}

		err = catalog.AddToCart(r.Context(), scopeFrom(r).client, *product, quantity)
		if s.handleGlobalError(w, r, err) {
			return
		}
		result := successAlert("Success!", "Product added to cart successfully")
		if err != nil {
			result = alertFor(err)
		}
		s.renderProduct(w, r, *product, catalog.ClampQuantity(quantity, product.Quantity), result)
	}
}

func (s *Server) loadProduct(w http.ResponseWriter, r *http.Request) (*commerce.Product, bool) {
	id, err := pathID(r)
	if err == nil {
		var product *commerce.Product
		product, err = s.catalog.Product(r.Context(), id)
		if err == nil {
			return product, true
		}
	}
	if s.handleGlobalError(w, r, err) {
		return nil, false
	}
	page := s.newPage(r, "Product", nil)
	page.Alert = alertFor(err)
	s.render(w, r, http.StatusBadGateway, "not-found.html", page)
	return nil, false
}

func (s *Server) renderProduct(w http.ResponseWriter, r *http.Request, product commerce.Product, quantity int, result *alert) {
	page := s.newPage(r, product.Name, productDetailData{
		Product:  product,
		Quantity: quantity,
		BackPage: max(queryInt(r, "page", 0), 0),
	})
	if result != nil {
		page.Alert = result
	}
	s.render(w, r, http.StatusOK, "product.html", page)
}
