package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	apperrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

var _ Client = (*HTTPClient)(nil)

const (
	statusOK      = "OK"
	statusCreated = "CREATED"
	maxBodyBytes  = 4 << 20
)

// envelope is the commerce API's response wrapper.
type envelope struct {
	HTTPStatus string          `json:"httpStatus"`
	Code       int             `json:"code"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

func (e envelope) ok() bool {
	switch e.HTTPStatus {
	case statusOK, statusCreated:
		return true
	case "":
		return e.Code >= 200 && e.Code < 300
	}
	return false
}

// HTTPClient calls the commerce API over HTTP.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// HTTPClientOption configures an HTTPClient.
type HTTPClientOption func(*httpClientOptions)

type httpClientOptions struct {
	base           http.RoundTripper
	tokens         oauth2.TokenSource
	onUnauthorized func(ctx context.Context)
	timeout        time.Duration
}

// WithBaseTransport sets the innermost round tripper (defaults to http.DefaultTransport).
func WithBaseTransport(rt http.RoundTripper) HTTPClientOption {
	return func(o *httpClientOptions) {
		o.base = rt
	}
}

// WithTokenSource attaches the session token to every call.
func WithTokenSource(src oauth2.TokenSource) HTTPClientOption {
	return func(o *httpClientOptions) {
		o.tokens = src
	}
}

// WithUnauthorizedHandler registers the teardown run when any call answers 401.
func WithUnauthorizedHandler(fn func(ctx context.Context)) HTTPClientOption {
	return func(o *httpClientOptions) {
		o.onUnauthorized = fn
	}
}

func WithTimeout(timeout time.Duration) HTTPClientOption {
	return func(o *httpClientOptions) {
		o.timeout = timeout
	}
}

// NewHTTPClient builds a client for the API rooted at baseURL (e.g. "https://host/api/v1").
func NewHTTPClient(baseURL string, options ...HTTPClientOption) *HTTPClient {
	opts := httpClientOptions{timeout: 10 * time.Second}
	for _, opt := range options {
		opt(&opts)
	}

	transport := ChainTransport(opts.base,
		RequestIDTransport(),
		LoggingTransport(),
		UnauthorizedTransport(opts.onUnauthorized),
		BearerTransport(opts.tokens),
		TracingTransport(),
	)

	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Transport: transport, Timeout: opts.timeout},
	}
}

func (c *HTTPClient) ListProducts(ctx context.Context, pageNumber, pageSize int) (*ProductPage, error) {
	var page ProductPage
	body := map[string]int{"pageNumber": pageNumber, "pageSize": pageSize}
	if _, err := c.post(ctx, PathProductsGetAll, body, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *HTTPClient) GetProduct(ctx context.Context, id int64) (*Product, error) {
	var product Product
	if _, err := c.post(ctx, PathProductsGetByID, map[string]int64{"id": id}, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *HTTPClient) FeaturedProducts(ctx context.Context) ([]Product, error) {
	var products []Product
	if _, err := c.post(ctx, PathProductsFeatured, struct{}{}, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *HTTPClient) ListCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if _, err := c.post(ctx, PathCategoriesGetAll, struct{}{}, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *HTTPClient) GetCart(ctx context.Context) ([]CartItem, error) {
	var contents cartContents
	if _, err := c.post(ctx, PathCartGet, struct{}{}, &contents); err != nil {
		return nil, err
	}
	if contents.CartItems == nil {
		return []CartItem{}, nil
	}
	return contents.CartItems, nil
}

func (c *HTTPClient) AddToCart(ctx context.Context, update CartUpdate) error {
	_, err := c.post(ctx, PathCartAdd, update, nil)
	return err
}

func (c *HTTPClient) UpdateCartItem(ctx context.Context, update CartUpdate) error {
	_, err := c.post(ctx, PathCartUpdate, update, nil)
	return err
}

func (c *HTTPClient) RemoveCartItem(ctx context.Context, productID int64) error {
	_, err := c.post(ctx, PathCartRemove, map[string]int64{"id": productID}, nil)
	return err
}

func (c *HTTPClient) ListAddresses(ctx context.Context) ([]Address, error) {
	var addresses []Address
	if _, err := c.post(ctx, PathAddressesGetAll, struct{}{}, &addresses); err != nil {
		return nil, err
	}
	return addresses, nil
}

// AddAddress creates an address and returns it with the server's confirmation message.
func (c *HTTPClient) AddAddress(ctx context.Context, address Address) (*Address, string, error) {
	var created Address
	env, err := c.post(ctx, PathAddressesAdd, address, &created)
	if err != nil {
		return nil, "", err
	}
	return &created, env.Message, nil
}

func (c *HTTPClient) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*PlaceOrderResult, error) {
	var result PlaceOrderResult
	if _, err := c.post(ctx, PathOrdersPlace, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) ListOrders(ctx context.Context) ([]Order, error) {
	var orders []Order
	if _, err := c.post(ctx, PathOrdersGetUserOrders, struct{}{}, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *HTTPClient) GetOrder(ctx context.Context, orderID int64) (*Order, error) {
	var order Order
	if _, err := c.post(ctx, PathOrdersGetByID, map[string]int64{"orderId": orderID}, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *HTTPClient) CreateGatewaySession(ctx context.Context, req GatewaySessionRequest) (*GatewaySession, error) {
	var session GatewaySession
	if _, err := c.post(ctx, PathStripeCheckout, req, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *HTTPClient) ProcessPayment(ctx context.Context, req ProcessPaymentRequest) error {
	_, err := c.post(ctx, PathOrdersProcessPay, req, nil)
	return err
}

func (c *HTTPClient) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	var result LoginResult
	if _, err := c.post(ctx, PathAuthLogin, creds, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	_, err := c.post(ctx, PathAuthLogout, struct{}{}, nil)
	return err
}

func (c *HTTPClient) Register(ctx context.Context, registration Registration) error {
	_, err := c.post(ctx, PathAuthRegister, registration, nil)
	return err
}

func (c *HTTPClient) GetProfile(ctx context.Context) (*Profile, error) {
	var profile Profile
	if _, err := c.post(ctx, PathUsersProfile, struct{}{}, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// post sends body as JSON to path and decodes the envelope's data into out (when non-nil).
func (c *HTTPClient) post(ctx context.Context, path string, body any, out any) (*envelope, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrapf(err, "[HTTPClient.post] encode %s", path)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrapf(err, "[HTTPClient.post] new request %s", path)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if key := idempotencyKeyFrom(ctx); key != "" {
		req.Header.Set(HeaderIdempotencyKey, key)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrUnauthorized) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, errors.Wrapf(err, "[HTTPClient.post] %s", path)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.Wrapf(err, "[HTTPClient.post] read %s", path)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RemoteError{Path: path, StatusCode: resp.StatusCode, Message: env.Message}
	}
	if decodeErr != nil {
		return nil, errors.Wrapf(decodeErr, "[HTTPClient.post] decode %s", path)
	}
	if !env.ok() {
		status := env.Code
		if status == 0 {
			status = statusFromName(env.HTTPStatus)
		}
		return nil, &RemoteError{Path: path, StatusCode: status, Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, errors.Wrapf(err, "[HTTPClient.post] decode data %s", path)
		}
	}
	return &env, nil
}

var statusNames = map[string]int{
	"BAD_REQUEST":           http.StatusBadRequest,
	"UNAUTHORIZED":          http.StatusUnauthorized,
	"FORBIDDEN":             http.StatusForbidden,
	"NOT_FOUND":             http.StatusNotFound,
	"CONFLICT":              http.StatusConflict,
	"INTERNAL_SERVER_ERROR": http.StatusInternalServerError,
}

// statusFromName maps a Spring-style status name ("NOT_FOUND") to its code.
func statusFromName(name string) int {
	if code, ok := statusNames[name]; ok {
		return code
	}
	if code, err := strconv.Atoi(name); err == nil {
		return code
	}
	return http.StatusBadGateway
}
