package commerce

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"
)

const (
	HeaderRequestID      = "X-Request-ID"
	HeaderIdempotencyKey = "Idempotency-Key"
)

// RoundTripperFunc adapts a function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// TransportMiddleware decorates an outbound round tripper.
type TransportMiddleware func(http.RoundTripper) http.RoundTripper

// ChainTransport wraps base with mw; the first middleware sees the request first.
func ChainTransport(base http.RoundTripper, mw ...TransportMiddleware) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	chained := base
	// Apply middleware in reverse order
	for i := len(mw) - 1; i >= 0; i-- {
		chained = mw[i](chained)
	}
	return chained
}

// RequestIDTransport stamps every call with an X-Request-ID, reusing one already present.
func RequestIDTransport() TransportMiddleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if r.Header.Get(HeaderRequestID) != "" {
				return next.RoundTrip(r)
			}
			r = r.Clone(r.Context())
			r.Header.Set(HeaderRequestID, uuid.NewString())
			return next.RoundTrip(r)
		})
	}
}

// BearerTransport attaches the session token as "Authorization: Bearer". Calls made without a
// usable token (anonymous browsing) pass through unchanged.
func BearerTransport(src oauth2.TokenSource) TransportMiddleware {
	return func(next http.RoundTripper) http.RoundTripper {
		authorised := &oauth2.Transport{Source: src, Base: next}
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if src == nil {
				return next.RoundTrip(r)
			}
			if tok, err := src.Token(); err != nil || !tok.Valid() {
				return next.RoundTrip(r)
			}
			return authorised.RoundTrip(r)
		})
	}
}

// UnauthorizedTransport intercepts 401 responses: onUnauthorized runs once (the session teardown)
// and the call fails with ErrUnauthorized so the page layer redirects to login. A 401 from the
// login endpoint itself is a credential rejection and reaches the caller with its message intact.
func UnauthorizedTransport(onUnauthorized func(ctx context.Context)) TransportMiddleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			resp, err := next.RoundTrip(r)
			if err != nil || resp.StatusCode != http.StatusUnauthorized {
				return resp, err
			}
			if strings.HasSuffix(r.URL.Path, PathAuthLogin) {
				return resp, nil
			}
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			if onUnauthorized != nil {
				onUnauthorized(r.Context())
			}
			return nil, apperrors.ErrUnauthorized
		})
	}
}

// TracingTransport records a client span per call.
func TracingTransport() TransportMiddleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return otelhttp.NewTransport(next)
	}
}

// LoggingTransport logs every call at debug level.
func LoggingTransport() TransportMiddleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(r)
			event := log.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("request_id", r.Header.Get(HeaderRequestID)).
				Dur("elapsed", time.Since(start))
			if err != nil {
				event.Err(err).Msg("commerce call failed")
				return resp, err
			}
			event.Int("status", resp.StatusCode).Msg("commerce call")
			return resp, nil
		})
	}
}

type idempotencyKey struct{}

// WithIdempotencyKey attaches key to ctx; calls made with ctx send it as Idempotency-Key.
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, idempotencyKey{}, key)
}

func idempotencyKeyFrom(ctx context.Context) string {
	key, _ := ctx.Value(idempotencyKey{}).(string)
	return key
}
