package server

import (
	"net/http"

	"github.com/jrsteele09/go-storefront/catalog"
)

// IndexHandler renders the home page
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := s.newPage(r, "Home", &catalog.Home{})
		home, err := s.catalog.Home(r.Context())
		if err != nil {
			if s.handleGlobalError(w, r, err) {
				return
			}
			page.Alert = alertFor(err)
			s.render(w, r, http.StatusOK, "home.html", page)
			return
		}
		page.Data = home
		s.render(w, r, http.StatusOK, "home.html", page)
	}
}

func (s *Server) AboutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, http.StatusOK, "about.html", s.newPage(r, "About", nil))
	}
}

func (s *Server) NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.renderNotFound(w, r, "The page you are looking for does not exist.")
	}
}
