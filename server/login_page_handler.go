package server

import (
	"net/http"

	"github.com/jrsteele09/go-storefront/commerce"
	"github.com/jrsteele09/go-storefront/users"
	"github.com/rs/zerolog/log"
)

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	Email string // Preserve email on error
}

// LoginPageHandler displays the login page (GET /login)
func (s *Server) LoginPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if scopeFrom(r).session.Authenticated() {
			redirectSuccess(w, r, RouteHome)
			return
		}
		page := s.newPage(r, "Sign In", LoginPageData{Email: r.URL.Query().Get("email")})
		if r.URL.Query().Get("registered") != "" {
			page.Alert = successAlert("Registration Successful", "Please sign in with your new account")
		}
		s.render(w, r, http.StatusOK, "login.html", page)
	}
}

// LoginSubmissionHandler processes the login form submission
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		creds := commerce.Credentials{
			Email:    r.FormValue("email"),
			Password: r.FormValue("password"),
		}

		scope := scopeFrom(r)
		ok, err := scope.session.Login(r.Context(), scope.client, creds)
		if err == nil && ok {
			redirectSuccess(w, r, RouteHome)
			return
		}

		page := s.newPage(r, "Sign In", LoginPageData{Email: creds.Email})
		switch {
		case err == nil:
			page.Alert = &alert{Tone: "error", Title: "Login Failed", Text: "Invalid email or password"}
		default:
			page.Fields = fieldErrors(err)
			page.Alert = alertFor(err)
			page.Alert.Title = "Login Failed"
			if commerce.ErrorStatus(err) == http.StatusUnauthorized {
				page.Alert.Text = commerce.ErrorMessage(err, "Invalid email or password")
			}
		}
		s.render(w, r, http.StatusOK, "login.html", page)
	}
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope := scopeFrom(r)
		if !scope.session.Authenticated() {
			redirectSuccess(w, r, RouteLogin)
			return
		}
		if _, err := scope.session.Logout(r.Context(), scope.client); err != nil {
			log.Err(err).Msg("logout failed")
			redirectWithError(w, r, RouteHome, commerce.ErrorMessage(err, "Logout failed"))
			return
		}
		redirectSuccess(w, r, RouteLogin)
	}
}

func (s *Server) ProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := users.NewService(scopeFrom(r).client).Profile(r.Context())
		if s.handleGlobalError(w, r, err) {
			return
		}
		page := s.newPage(r, "Profile", profile)
		if err != nil {
			page.Alert = alertFor(err)
		}
		s.render(w, r, http.StatusOK, "profile.html", page)
	}
}
