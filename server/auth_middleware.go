package server

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-storefront/checkout"
	"github.com/jrsteele09/go-storefront/commerce"
	"github.com/jrsteele09/go-storefront/sessions"
	"github.com/jrsteele09/go-storefront/storage"
	"github.com/rs/zerolog/log"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyScope stores the browser's requestScope
const ContextKeyScope ContextKey = "scope"

// requestScope is everything one request needs to act for its browser: the browser's slice of
// durable storage, its session and a commerce client authenticated as that session.
type requestScope struct {
	sid     string
	durable storage.Store
	flash   storage.Store
	session *sessions.Store
	client  *commerce.HTTPClient
}

// scopeFrom returns the scope installed by BrowserSessionMiddleware.
func scopeFrom(r *http.Request) *requestScope {
	scope, _ := r.Context().Value(ContextKeyScope).(*requestScope)
	return scope
}

func (rs *requestScope) checkoutStore() *checkout.ContextStore {
	return checkout.NewContextStore(rs.durable)
}

// BrowserSessionMiddleware identifies the browser by its session cookie, issuing one on first
// visit, and loads that browser's session.
func (s *Server) BrowserSessionMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid := ""
		if cookie, err := r.Cookie(s.config.GetSessionCookieName()); err == nil {
			if _, err := uuid.Parse(cookie.Value); err == nil {
				sid = cookie.Value
			}
		}
		if sid == "" {
			sid = uuid.NewString()
		}
		// Refresh on every visit so an active browser keeps its state.
		s.SetBrowserSessionCookie(w, r, sid)

		scope, err := s.newRequestScope(r.Context(), sid)
		if err != nil {
			log.Err(err).Str("path", r.URL.Path).Msg("failed to load browser session")
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
			return
		}

		ctx := context.WithValue(r.Context(), ContextKeyScope, scope)
		next(w, r.WithContext(ctx))
	}
}

func (s *Server) newRequestScope(ctx context.Context, sid string) (*requestScope, error) {
	durable := storage.Namespace(s.durable, "sid:"+sid)
	session := sessions.New(durable)
	if err := session.Init(ctx); err != nil {
		return nil, err
	}

	client := commerce.NewHTTPClient(s.apiBaseURL,
		commerce.WithBaseTransport(s.transport),
		commerce.WithTimeout(s.config.GetRequestTimeout()),
		commerce.WithTokenSource(session),
		commerce.WithUnauthorizedHandler(session.OnUnauthorized),
	)

	return &requestScope{
		sid:     sid,
		durable: durable,
		flash:   storage.Namespace(s.flash, "sid:"+sid),
		session: session,
		client:  client,
	}, nil
}

// RequireSessionAuth is middleware for pages that need a signed-in user. Anonymous browsers are
// sent to the login page.
func (s *Server) RequireSessionAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			scope := scopeFrom(r)
			if scope == nil || !scope.session.Authenticated() {
				redirectSuccess(w, r, RouteLogin)
				return
			}
			next(w, r)
		}
	}
}
