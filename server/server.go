package server

import (
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-storefront/catalog"
	"github.com/jrsteele09/go-storefront/checkout"
	"github.com/jrsteele09/go-storefront/commerce"
	"github.com/jrsteele09/go-storefront/internal/config"
	"github.com/jrsteele09/go-storefront/storage"
	"github.com/jrsteele09/go-storefront/storage/repofake"
)

type Server struct {
	env        string // Environment (e.g., "DEV", "PROD")
	mux        *http.ServeMux
	routes     []string
	config     config.Config
	apiBaseURL string
	transport  http.RoundTripper // base transport for commerce calls, nil for the default

	durable storage.Store // per-browser "local storage", namespaced by browser session
	flash   storage.Store // one-shot navigation state between pages
	guard   *checkout.Guard
	catalog *catalog.Browser
	pages   map[string]*template.Template
}

type ServerOption func(*Server)

// WithAPIBaseURL overrides the configured commerce API root.
func WithAPIBaseURL(url string) ServerOption {
	return func(s *Server) {
		s.apiBaseURL = strings.TrimRight(url, "/")
	}
}

// WithTransport sets the base round tripper used for commerce API calls.
func WithTransport(rt http.RoundTripper) ServerOption {
	return func(s *Server) {
		s.transport = rt
	}
}

func WithFlashStore(flash storage.Store) ServerOption {
	return func(s *Server) {
		s.flash = flash
	}
}

func New(config config.Config, durable storage.Store, options ...ServerOption) (*Server, error) {
	s := &Server{
		env:        config.GetEnv(),
		mux:        http.NewServeMux(),
		config:     config,
		apiBaseURL: config.GetAPIBaseURL(),
		durable:    durable,
		flash:      repofake.NewMemoryStore(),
		guard:      checkout.NewGuard(),
	}
	for _, opt := range options {
		opt(s)
	}

	// Catalog reads are anonymous and shared by every browser.
	s.catalog = catalog.NewBrowser(commerce.NewHTTPClient(s.apiBaseURL,
		commerce.WithBaseTransport(s.transport),
		commerce.WithTimeout(config.GetRequestTimeout()),
	))

	pages, err := parsePages(s.templateFuncs())
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to parse templates: %w", err)
	}
	s.pages = pages

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func colouredMethod(method string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		return color + paddedMethod + ResetColor
	}
	return Gray + paddedMethod + ResetColor
}

func logRoute(method, path string) {
	log.Printf("[%-19s] %s\n", colouredMethod(method), path)
}

func logError(method, path, error string) {
	log.Printf("[%-19s] %s %s\n", colouredMethod(method), path, Red+error+ResetColor)
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
