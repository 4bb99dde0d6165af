package server

import (
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-storefront/users"
)

func (s *Server) RegisterGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if scopeFrom(r).session.Authenticated() {
			redirectSuccess(w, r, RouteHome)
			return
		}
		s.render(w, r, http.StatusOK, "register.html", s.newPage(r, "Register", users.Signup{}))
	}
}

// RegisterPostHandler creates the account and sends the user to sign in with it.
func (s *Server) RegisterPostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		signup := users.Signup{
			FirstName:       r.FormValue("firstName"),
			LastName:        r.FormValue("lastName"),
			Email:           r.FormValue("email"),
			Phone:           r.FormValue("phone"),
			Password:        r.FormValue("password"),
			ConfirmPassword: r.FormValue("confirmPassword"),
		}

		err := users.NewService(scopeFrom(r).client).Register(r.Context(), signup)
		if err == nil {
			redirectSuccess(w, r, RouteLogin+"?registered=1&email="+url.QueryEscape(signup.Email))
			return
		}
		if s.handleGlobalError(w, r, err) {
			return
		}

		// Never echo passwords back into the form.
		signup.Password, signup.ConfirmPassword = "", ""
		page := s.newPage(r, "Register", signup)
		page.Fields = fieldErrors(err)
		page.Alert = alertFor(err)
		page.Alert.Title = "Registration Failed"
		s.render(w, r, http.StatusOK, "register.html", page)
	}
}
