// Package commercefake is an in-memory commerce API: a commerce.Client for unit tests and an HTTP
// server speaking the real wire protocol for end-to-end tests and local development.
package commercefake

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-storefront/commerce"
	apperrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/jrsteele09/go-storefront/internal/utils"
	"github.com/shopspring/decimal"
)

var _ commerce.Client = (*Fake)(nil)

const (
	DemoEmail    = "demo@example.com"
	DemoPassword = "Password1"

	// TokenTTL is the lifetime of the tokens issued by Login.
	TokenTTL = time.Hour
)

type account struct {
	password  string
	profile   commerce.Profile
	cart      []commerce.CartItem
	addresses []commerce.Address
	orderIDs  []int64
}

// Fake holds catalog, accounts and orders in memory. Exported commerce.Client methods act as the
// demo user; the HTTP server resolves the user from the bearer token.
type Fake struct {
	lock sync.RWMutex

	products   map[int64]commerce.Product
	featured   []int64
	categories []commerce.Category
	accounts   map[string]*account // email -> account
	tokens     map[string]string   // token -> email
	orders     map[int64]*commerce.Order
	nextID     int64

	gatewayURL string
	signingKey []byte
	calls      map[string]int
	failures   map[string]error
}

// New returns a fake seeded with a small catalog and the demo account.
func New() *Fake {
	f := &Fake{
		products:   make(map[int64]commerce.Product),
		accounts:   make(map[string]*account),
		tokens:     make(map[string]string),
		orders:     make(map[int64]*commerce.Order),
		nextID:     1000,
		gatewayURL: "https://checkout.stripe.test/pay",
		signingKey: []byte(uuid.NewString()),
		calls:      make(map[string]int),
		failures:   make(map[string]error),
	}
	f.categories = []commerce.Category{{ID: 1, Name: "Books"}, {ID: 2, Name: "Games"}}
	f.AddProduct(commerce.Product{ID: 1, Name: "Go Programming", Price: decimal.RequireFromString("10.00"), Quantity: 5, Category: "Books", ImageURL: "uploads/go.png"})
	f.AddProduct(commerce.Product{ID: 2, Name: "Chess Set", Price: decimal.RequireFromString("5.00"), Quantity: 3, Category: "Games", ImageURL: "uploads/chess.png"})
	f.AddProduct(commerce.Product{ID: 3, Name: "Puzzle", Price: decimal.RequireFromString("7.50"), Quantity: 0, Category: "Games"})
	f.featured = []int64{1, 2}
	f.accounts[DemoEmail] = &account{
		password: DemoPassword,
		profile:  commerce.Profile{ID: 1, FirstName: "Demo", LastName: "User", Email: DemoEmail},
	}
	return f
}

// AddProduct inserts or replaces a catalog product.
func (f *Fake) AddProduct(p commerce.Product) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.products[p.ID] = p
}

// SetCart replaces the demo user's cart.
func (f *Fake) SetCart(items ...commerce.CartItem) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.accounts[DemoEmail].cart = append([]commerce.CartItem(nil), items...)
}

// AddOrder stores an order for the demo user, assigning an ID when zero.
func (f *Fake) AddOrder(order commerce.Order) commerce.Order {
	f.lock.Lock()
	defer f.lock.Unlock()
	if order.ID == 0 {
		order.ID = f.newID()
	}
	f.orders[order.ID] = &order
	acc := f.accounts[DemoEmail]
	acc.orderIDs = append(acc.orderIDs, order.ID)
	return order
}

// IssueToken logs the demo user in without a call and returns the token.
func (f *Fake) IssueToken() string {
	f.lock.Lock()
	defer f.lock.Unlock()
	token := f.newToken(DemoEmail)
	f.tokens[token] = DemoEmail
	return token
}

// RevokeTokens invalidates every issued token, so the next authenticated call answers 401.
func (f *Fake) RevokeTokens() {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.tokens = make(map[string]string)
}

// SetGatewayURL sets the base of the session URLs handed out by CreateGatewaySession.
func (f *Fake) SetGatewayURL(url string) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.gatewayURL = url
}

// FailNext makes the next call to method return err.
func (f *Fake) FailNext(method string, err error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.failures[method] = err
}

// Calls is how many times method was invoked, including failed calls.
func (f *Fake) Calls(method string) int {
	f.lock.RLock()
	defer f.lock.RUnlock()
	return f.calls[method]
}

// TotalCalls is the number of calls across all methods.
func (f *Fake) TotalCalls() int {
	f.lock.RLock()
	defer f.lock.RUnlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

// Order returns a copy of a stored order.
func (f *Fake) Order(id int64) (commerce.Order, bool) {
	f.lock.RLock()
	defer f.lock.RUnlock()
	order, ok := f.orders[id]
	if !ok {
		return commerce.Order{}, false
	}
	return *order, true
}

// record counts the call and returns any injected failure. Callers hold the write lock.
// newToken signs a short-lived JWT for email, so clients can read its expiry the way they would
// from the real API. Callers hold the lock.
func (f *Fake) newToken(email string) string {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": email,
		"iat": now.Unix(),
		"exp": now.Add(TokenTTL).Unix(),
		"jti": uuid.NewString(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(f.signingKey)
	if err != nil {
		// Opaque tokens are still accepted, they just carry no expiry.
		return uuid.NewString()
	}
	return signed
}

func (f *Fake) record(method string) error {
	f.calls[method]++
	if err, ok := f.failures[method]; ok {
		delete(f.failures, method)
		return err
	}
	return nil
}

func (f *Fake) newID() int64 {
	f.nextID++
	return f.nextID
}

func (f *Fake) account(email string) (*account, error) {
	acc, ok := f.accounts[email]
	if !ok {
		return nil, apperrors.ErrUnauthorized
	}
	return acc, nil
}

func notFound(what string) error {
	return &commerce.RemoteError{StatusCode: http.StatusNotFound, Message: what + " not found"}
}

func badRequest(message string) error {
	return &commerce.RemoteError{StatusCode: http.StatusBadRequest, Message: message}
}

func (f *Fake) ListProducts(_ context.Context, pageNumber, pageSize int) (*commerce.ProductPage, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if err := f.record("ListProducts"); err != nil {
		return nil, err
	}
	if pageSize < 1 {
		return nil, badRequest("pageSize must be positive")
	}

	ids := make([]int64, 0, len(f.products))
	for id := range f.products {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	page := &commerce.ProductPage{
		Content:       []commerce.Product{},
		TotalElements: int64(len(ids)),
		TotalPages:    (len(ids) + pageSize - 1) / pageSize,
	}
	start := pageNumber * pageSize
	for i := start; i >= 0 && i < len(ids) && i < start+pageSize; i++ {
		page.Content = append(page.Content, f.products[ids[i]])
	}
	return page, nil
}

func (f *Fake) GetProduct(_ context.Context, id int64) (*commerce.Product, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if err := f.record("GetProduct"); err != nil {
		return nil, err
	}
	p, ok := f.products[id]
	if !ok {
		return nil, notFound("product")
	}
	return &p, nil
}

func (f *Fake) FeaturedProducts(_ context.Context) ([]commerce.Product, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if err := f.record("FeaturedProducts"); err != nil {
		return nil, err
	}
	out := make([]commerce.Product, 0, len(f.featured))
	for _, id := range f.featured {
		if p, ok := f.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *Fake) ListCategories(_ context.Context) ([]commerce.Category, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if err := f.record("ListCategories"); err != nil {
		return nil, err
	}
	return append([]commerce.Category(nil), f.categories...), nil
}

func (f *Fake) GetCart(ctx context.Context) ([]commerce.CartItem, error) {
	return f.getCart(DemoEmail)
}

func (f *Fake) getCart(email string) ([]commerce.CartItem, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if err := f.record("GetCart"); err != nil {
		return nil, err
	}
	acc, err := f.account(email)
	if err != nil {
		return nil, err
	}
	return append([]commerce.CartItem{}, acc.cart...), nil
}

func (f *Fake) AddToCart(_ context.Context, update commerce.CartUpdate) error {
	return f.addToCart(DemoEmail, update)
}

func (f *Fake) addToCart(email string, update commerce.CartUpdate) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	if err := f.record("AddToCart"); err != nil {
		return err
	}
	acc, err := f.account(email)
	if err != nil {
		return err
	}
	product, ok := f.products[update.ProductID]
	if !ok {
		return notFound("product")
	}
	for i := range acc.cart {
		if acc.cart[i].Product.ID == update.ProductID {
			if acc.cart[i].Quantity+update.Quantity > product.Quantity {
				return badRequest("not enough stock")
			}
			acc.cart[i].Quantity += update.Quantity
			return nil
		}
	}
	if update.Quantity < 1 || update.Quantity > product.Quantity {
		return badRequest("not enough stock")
	}
	acc.cart = append(acc.cart, commerce.CartItem{ID: f.newID(), Product: product, Quantity: update.Quantity})
	return nil
}

func (f *Fake) UpdateCartItem(_ context.Context, update commerce.CartUpdate) error {
	return f.updateCartItem(DemoEmail, update)
}

func (f *Fake) updateCartItem(email string, update commerce.CartUpdate) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	if err := f.record("UpdateCartItem"); err != nil {
		return err
	}
	acc, err := f.account(email)
	if err != nil {
		return err
	}
	for i := range acc.cart {
		if acc.cart[i].Product.ID != update.ProductID {
			continue
		}
		if update.Quantity < 1 || update.Quantity > f.products[update.ProductID].Quantity {
			return badRequest("requested quantity exceeds available stock")
		}
		acc.cart[i].Quantity = update.Quantity
		return nil
	}
	return notFound("cart item")
}

func (f *Fake) RemoveCartItem(_ context.Context, productID int64) error {
	return f.removeCartItem(DemoEmail, productID)
}

func (f *Fake) removeCartItem(email string, productID int64) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	if err := f.record("RemoveCartItem"); err != nil {
		return err
	}
	acc, err := f.account(email)
	if err != nil {
		return err
	}
	for i := range acc.cart {
		if acc.cart[i].Product.ID == productID {
			acc.cart = append(acc.cart[:i], acc.cart[i+1:]...)
			return nil
		}
	}
	return notFound("cart item")
}

func (f *Fake) ListAddresses(_ context.Context) ([]commerce.Address, error) {
	return f.listAddresses(DemoEmail)
}

func (f *Fake) listAddresses(email string) ([]commerce.Address, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if err := f.record("ListAddresses"); err != nil {
		return nil, err
	}
	acc, err := f.account(email)
	if err != nil {
		return nil, err
	}
	return append([]commerce.Address{}, acc.addresses...), nil
}

func (f *Fake) AddAddress(_ context.Context, address commerce.Address) (*commerce.Address, string, error) {
	return f.addAddress(DemoEmail, address)
}

func (f *Fake) addAddress(email string, address commerce.Address) (*commerce.Address, string, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if err := f.record("AddAddress"); err != nil {
		return nil, "", err
	}
	acc, err := f.account(email)
	if err != nil {
		return nil, "", err
	}
	address.ID = f.newID()
	acc.addresses = append(acc.addresses, address)
	return utils.Ptr(address), "Address added successfully", nil
}

func (f *Fake) PlaceOrder(_ context.Context, req commerce.PlaceOrderRequest) (*commerce.PlaceOrderResult, error) {
	return f.placeOrder(DemoEmail, req)
}

func (f *Fake) placeOrder(email string, req commerce.PlaceOrderRequest) (*commerce.PlaceOrderResult, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if err := f.record("PlaceOrder"); err != nil {
		return nil, err
	}
	acc, err := f.account(email)
	if err != nil {
		return nil, err
	}
	if len(req.ProductIDs) == 0 {
		return nil, badRequest("no products selected")
	}

	var address *commerce.Address
	for i := range acc.addresses {
		if acc.addresses[i].ID == req.AddressID {
			address = utils.Ptr(acc.addresses[i])
		}
	}
	if address == nil {
		return nil, notFound("address")
	}

	selected := make(map[int64]bool, len(req.ProductIDs))
	for _, id := range req.ProductIDs {
		selected[id] = true
	}

	order := &commerce.Order{
		ID:              f.newID(),
		Status:          commerce.StatusPlaced,
		PaymentStatus:   commerce.StatusPending,
		ShippingAddress: address,
		TotalAmount:     decimal.Zero,
	}
	remaining := acc.cart[:0:0]
	for _, item := range acc.cart {
		if !selected[item.Product.ID] {
			remaining = append(remaining, item)
			continue
		}
		order.OrderItems = append(order.OrderItems, commerce.OrderItem{
			ID: f.newID(), Product: item.Product, Quantity: item.Quantity, Price: item.Product.Price,
		})
		order.TotalAmount = order.TotalAmount.Add(item.LineTotal())
	}
	if len(order.OrderItems) == 0 {
		return nil, badRequest("selected products are not in the cart")
	}
	acc.cart = remaining
	f.orders[order.ID] = order
	acc.orderIDs = append(acc.orderIDs, order.ID)

	return &commerce.PlaceOrderResult{OrderID: order.ID, TotalAmount: order.TotalAmount}, nil
}

func (f *Fake) ListOrders(_ context.Context) ([]commerce.Order, error) {
	return f.listOrders(DemoEmail)
}

func (f *Fake) listOrders(email string) ([]commerce.Order, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if err := f.record("ListOrders"); err != nil {
		return nil, err
	}
	acc, err := f.account(email)
	if err != nil {
		return nil, err
	}
	out := make([]commerce.Order, 0, len(acc.orderIDs))
	for _, id := range acc.orderIDs {
		out = append(out, utils.Value(f.orders[id]))
	}
	return out, nil
}

func (f *Fake) GetOrder(_ context.Context, orderID int64) (*commerce.Order, error) {
	return f.getOrder(DemoEmail, orderID)
}

func (f *Fake) getOrder(email string, orderID int64) (*commerce.Order, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if err := f.record("GetOrder"); err != nil {
		return nil, err
	}
	order, err := f.ownedOrder(email, orderID)
	if err != nil {
		return nil, err
	}
	return utils.Ptr(utils.Value(order)), nil
}

func (f *Fake) ownedOrder(email string, orderID int64) (*commerce.Order, error) {
	acc, err := f.account(email)
	if err != nil {
		return nil, err
	}
	for _, id := range acc.orderIDs {
		if id == orderID {
			return f.orders[id], nil
		}
	}
	return nil, notFound("order")
}

func (f *Fake) CreateGatewaySession(_ context.Context, req commerce.GatewaySessionRequest) (*commerce.GatewaySession, error) {
	return f.createGatewaySession(DemoEmail, req)
}

func (f *Fake) createGatewaySession(email string, req commerce.GatewaySessionRequest) (*commerce.GatewaySession, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if err := f.record("CreateGatewaySession"); err != nil {
		return nil, err
	}
	orderID, err := strconv.ParseInt(req.OrderID, 10, 64)
	if err != nil {
		return nil, badRequest("invalid order id")
	}
	order, err := f.ownedOrder(email, orderID)
	if err != nil {
		return nil, err
	}
	if !order.TotalAmount.Equal(req.Amount) {
		return nil, badRequest("amount does not match order total")
	}
	return &commerce.GatewaySession{
		SessionURL: fmt.Sprintf("%s?orderId=%d&currency=%s", f.gatewayURL, orderID, req.Currency),
	}, nil
}

func (f *Fake) ProcessPayment(_ context.Context, req commerce.ProcessPaymentRequest) error {
	return f.processPayment(DemoEmail, req)
}

func (f *Fake) processPayment(email string, req commerce.ProcessPaymentRequest) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	if err := f.record("ProcessPayment"); err != nil {
		return err
	}
	order, err := f.ownedOrder(email, req.OrderID)
	if err != nil {
		return err
	}
	if order.PaymentStatus == commerce.StatusCompleted {
		return badRequest("order already paid")
	}
	order.PaymentMethod = req.PaymentMethod
	order.PaymentStatus = commerce.StatusCompleted
	return nil
}

// Login checks the credentials and issues a token, but the exported method does not bind it to any
// transport: it exists so the in-process fake satisfies commerce.Client.
func (f *Fake) Login(_ context.Context, creds commerce.Credentials) (*commerce.LoginResult, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if err := f.record("Login"); err != nil {
		return nil, err
	}
	acc, ok := f.accounts[creds.Email]
	if !ok || acc.password != creds.Password {
		return nil, &commerce.RemoteError{StatusCode: http.StatusBadRequest, Message: "Invalid email or password"}
	}
	token := f.newToken(creds.Email)
	f.tokens[token] = creds.Email
	return &commerce.LoginResult{RefreshToken: token}, nil
}

func (f *Fake) Logout(_ context.Context) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.record("Logout")
}

func (f *Fake) logoutToken(token string) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	if err := f.record("Logout"); err != nil {
		return err
	}
	delete(f.tokens, token)
	return nil
}

func (f *Fake) Register(_ context.Context, registration commerce.Registration) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	if err := f.record("Register"); err != nil {
		return err
	}
	if _, exists := f.accounts[registration.Email]; exists {
		return &commerce.RemoteError{StatusCode: http.StatusConflict, Message: "Email already registered"}
	}
	f.accounts[registration.Email] = &account{
		password: registration.Password,
		profile: commerce.Profile{
			ID:        f.newID(),
			FirstName: registration.FirstName,
			LastName:  registration.LastName,
			Email:     registration.Email,
			Phone:     registration.Phone,
		},
	}
	return nil
}

func (f *Fake) GetProfile(_ context.Context) (*commerce.Profile, error) {
	return f.getProfile(DemoEmail)
}

func (f *Fake) getProfile(email string) (*commerce.Profile, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if err := f.record("GetProfile"); err != nil {
		return nil, err
	}
	acc, err := f.account(email)
	if err != nil {
		return nil, err
	}
	profile := acc.profile
	return &profile, nil
}

// userForToken resolves a bearer token to an account email.
func (f *Fake) userForToken(token string) (string, bool) {
	f.lock.RLock()
	defer f.lock.RUnlock()
	email, ok := f.tokens[token]
	return email, ok
}
