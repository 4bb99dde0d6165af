package server

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/jrsteele09/go-storefront/commerce"
	apperrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/jrsteele09/go-storefront/internal/validation"
	"github.com/rs/zerolog/log"
)

const contentTypeHTML = "text/html; charset=utf-8"

// navData feeds the navigation shell.
type navData struct {
	Authenticated bool
	Path          string
}

// alert is a page-local message.
type alert struct {
	Tone  string // "success", "warning" or "error"
	Title string
	Text  string
}

type pageData struct {
	AppName string
	Title   string
	Nav     navData
	Alert   *alert
	Fields  map[string]string // inline field errors
	Data    any
}

func (s *Server) newPage(r *http.Request, title string, data any) pageData {
	nav := navData{Path: r.URL.Path}
	if scope := scopeFrom(r); scope != nil {
		nav.Authenticated = scope.session.Authenticated()
	}
	page := pageData{
		AppName: s.config.GetAppName(),
		Title:   title,
		Nav:     nav,
		Data:    data,
	}
	// Set by redirectWithError.
	if msg := r.URL.Query().Get("error"); msg != "" {
		page.Alert = &alert{Tone: "error", Title: "Error", Text: msg}
	}
	return page
}

// render executes a page into a buffer first so a template failure never leaves a half-written
// response.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, page pageData) {
	tmpl, ok := s.pages[name]
	if !ok {
		log.Error().Str("template", name).Msg("unknown page template")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, layoutTemplate, page); err != nil {
		log.Err(err).Str("template", name).Str("path", r.URL.Path).Msg("failed to render page")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) renderNotFound(w http.ResponseWriter, r *http.Request, what string) {
	s.render(w, r, http.StatusNotFound, "not-found.html", s.newPage(r, "Not Found", what))
}

// handleGlobalError deals with the failures that leave the page: a 401 from any call sends the
// browser to login and a missing resource renders the not-found page. It reports whether the
// response has been written; when it has not, the caller shows alertFor(err) inline.
func (s *Server) handleGlobalError(w http.ResponseWriter, r *http.Request, err error) bool {
	switch {
	case err == nil:
		return false
	case apperrors.Is(err, apperrors.ErrUnauthorized):
		redirectSuccess(w, r, RouteLogin)
		return true
	case apperrors.Is(err, apperrors.ErrNotFound):
		s.renderNotFound(w, r, commerce.ErrorMessage(err, "The page you are looking for does not exist."))
		return true
	}
	return false
}

var warningText = map[error]string{
	apperrors.ErrEmptySelection:     "Please select at least one item to checkout",
	apperrors.ErrNoAddressSelected:  "Please select a delivery address",
	apperrors.ErrNoMethodSelected:   "Please select a payment method to continue",
	apperrors.ErrSubmissionInFlight: "This payment is already being processed",
	apperrors.ErrInvalidQuantity:    "Please choose a quantity within the available stock",
	apperrors.ErrUnknownMethod:      "Please select one of the listed payment methods",
}

// alertFor renders err as an inline message: validation problems as warnings, remote failures
// with the server's own message.
func alertFor(err error) *alert {
	var verr *validation.Error
	if apperrors.As(err, &verr) {
		return &alert{Tone: "warning", Title: "Validation Error", Text: "Please fill in all required fields"}
	}
	for target, text := range warningText {
		if apperrors.Is(err, target) {
			return &alert{Tone: "warning", Title: "Warning", Text: text}
		}
	}
	var remote *commerce.RemoteError
	if apperrors.As(err, &remote) {
		return &alert{
			Tone:  "error",
			Title: fmt.Sprintf("Error %d", remote.StatusCode),
			Text:  commerce.ErrorMessage(err, "Something went wrong"),
		}
	}
	if apperrors.IsValidation(err) {
		return &alert{Tone: "warning", Title: "Warning", Text: err.Error()}
	}
	log.Err(err).Msg("unexpected page error")
	return &alert{Tone: "error", Title: "Error", Text: "Something went wrong"}
}

// fieldErrors returns the per-field messages of a validation failure, or nil.
func fieldErrors(err error) map[string]string {
	var verr *validation.Error
	if apperrors.As(err, &verr) {
		return verr.Map()
	}
	return nil
}

func successAlert(title, text string) *alert {
	return &alert{Tone: "success", Title: title, Text: text}
}
