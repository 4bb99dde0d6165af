// Package sessions holds the storefront's authentication state: the token issued by the commerce
// API and the authenticated flag derived from it.
package sessions

import (
	"context"
	"sync"
	"time"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-storefront/commerce"
	apperrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/jrsteele09/go-storefront/internal/validation"
	"github.com/jrsteele09/go-storefront/storage"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// TokenKey is the durable storage key holding the session token.
const TokenKey = "refreshToken"

// Authenticator is the part of the commerce API that creates and destroys sessions.
type Authenticator interface {
	Login(ctx context.Context, creds commerce.Credentials) (*commerce.LoginResult, error)
	Logout(ctx context.Context) error
}

var _ oauth2.TokenSource = (*Store)(nil)

// Store is one browser's session. It is created per request over that browser's durable storage
// namespace; Init must be called before use.
type Store struct {
	lock     sync.RWMutex
	durable  storage.Store
	validate *validatorv10.Validate
	nowFunc  func() time.Time

	token  string
	expiry time.Time
}

type StoreOption func(*Store)

func WithNowTime(nowFunc func() time.Time) StoreOption {
	return func(s *Store) {
		s.nowFunc = nowFunc
	}
}

func New(durable storage.Store, options ...StoreOption) *Store {
	s := &Store{
		durable:  durable,
		validate: validation.New(),
		nowFunc:  time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Init loads the token persisted by a previous request. An expired JWT is discarded.
func (s *Store) Init(ctx context.Context) error {
	raw, err := s.durable.Get(ctx, TokenKey)
	if apperrors.Is(err, apperrors.ErrStorageMiss) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "[Store.Init] load token")
	}

	s.lock.Lock()
	s.setToken(string(raw))
	authenticated := s.authenticated()
	s.lock.Unlock()

	if !authenticated {
		return s.Clear(ctx)
	}
	return nil
}

// Authenticated is true while a token is held and, when the token carries an expiry, it has not
// passed.
func (s *Store) Authenticated() bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.authenticated()
}

func (s *Store) authenticated() bool {
	if s.token == "" {
		return false
	}
	return s.expiry.IsZero() || s.nowFunc().Before(s.expiry)
}

// Token implements oauth2.TokenSource for the commerce client's bearer transport.
func (s *Store) Token() (*oauth2.Token, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if !s.authenticated() {
		return nil, apperrors.ErrUnauthorized
	}
	return &oauth2.Token{AccessToken: s.token, TokenType: "Bearer", Expiry: s.expiry}, nil
}

// Login validates creds, exchanges them for a token and persists it. It reports false without an
// error when the API answers successfully but issues no token.
func (s *Store) Login(ctx context.Context, auth Authenticator, creds commerce.Credentials) (bool, error) {
	if err := validation.Struct(s.validate, creds); err != nil {
		return false, err
	}

	result, err := auth.Login(ctx, creds)
	if err != nil {
		return false, errors.Wrap(err, "[Store.Login]")
	}
	if result == nil || result.RefreshToken == "" {
		return false, nil
	}

	if err := s.durable.Set(ctx, TokenKey, []byte(result.RefreshToken)); err != nil {
		return false, errors.Wrap(err, "[Store.Login] persist token")
	}

	s.lock.Lock()
	s.setToken(result.RefreshToken)
	s.lock.Unlock()
	return true, nil
}

// Logout ends the session remotely, then locally. When the remote call fails the local session is
// kept and the error returned.
func (s *Store) Logout(ctx context.Context, auth Authenticator) (bool, error) {
	if err := auth.Logout(ctx); err != nil {
		return false, errors.Wrap(err, "[Store.Logout]")
	}
	if err := s.Clear(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Clear drops the token from memory and durable storage.
func (s *Store) Clear(ctx context.Context) error {
	s.lock.Lock()
	s.setToken("")
	s.lock.Unlock()

	if err := s.durable.Delete(ctx, TokenKey); err != nil {
		return errors.Wrap(err, "[Store.Clear] delete token")
	}
	return nil
}

// OnUnauthorized is the teardown hook for commerce.WithUnauthorizedHandler.
func (s *Store) OnUnauthorized(ctx context.Context) {
	if err := s.Clear(ctx); err != nil {
		log.Err(err).Msg("failed to clear session after 401")
		return
	}
	log.Info().Msg("session cleared after 401")
}

// setToken stores token and derives its expiry. Callers hold the write lock.
func (s *Store) setToken(token string) {
	s.token = token
	s.expiry = tokenExpiry(token)
}

// tokenExpiry reads the exp claim of a JWT without verifying it. Opaque tokens have no expiry.
func tokenExpiry(token string) time.Time {
	if token == "" {
		return time.Time{}
	}
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
