package users_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/jrsteele09/go-storefront/commerce"
	"github.com/jrsteele09/go-storefront/commerce/commercefake"
	apperrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/jrsteele09/go-storefront/internal/validation"
	"github.com/jrsteele09/go-storefront/users"
	"github.com/stretchr/testify/require"
)

func TestValidatePasswordStrength(t *testing.T) {
	tests := []struct {
		password string
		wantErr  string
	}{
		{"Short1", "password must be at least 8 characters long"},
		{"alllowercase1", "password must contain at least one uppercase letter"},
		{"ALLUPPERCASE1", "password must contain at least one lowercase letter"},
		{"NoNumbersHere", "password must contain at least one number"},
		{"Password1", ""},
	}
	for _, tc := range tests {
		t.Run(tc.password, func(t *testing.T) {
			err := users.ValidatePasswordStrength(tc.password)
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.EqualError(t, err, tc.wantErr)
		})
	}
}

func validSignup() users.Signup {
	return users.Signup{
		FirstName:       "Ada",
		LastName:        "Lovelace",
		Email:           "ada@example.com",
		Password:        "Analytical1",
		ConfirmPassword: "Analytical1",
	}
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the account", func(t *testing.T) {
		api := commercefake.New()
		require.NoError(t, users.NewService(api).Register(ctx, validSignup()))
		_, err := api.Login(ctx, commerce.Credentials{Email: "ada@example.com", Password: "Analytical1"})
		require.NoError(t, err)
	})

	t.Run("mismatched confirmation", func(t *testing.T) {
		api := commercefake.New()
		signup := validSignup()
		signup.ConfirmPassword = "Different1"
		err := users.NewService(api).Register(ctx, signup)
		var verr *validation.Error
		require.ErrorAs(t, err, &verr)
		require.Contains(t, verr.Map(), "confirmPassword")
		require.Zero(t, api.Calls("Register"))
	})

	t.Run("weak password", func(t *testing.T) {
		api := commercefake.New()
		signup := validSignup()
		signup.Password, signup.ConfirmPassword = "weakpass", "weakpass"
		err := users.NewService(api).Register(ctx, signup)
		require.ErrorIs(t, err, apperrors.ErrValidation)
		var verr *validation.Error
		require.ErrorAs(t, err, &verr)
		require.Equal(t, "password must contain at least one uppercase letter", verr.Map()["password"])
		require.Zero(t, api.Calls("Register"))
	})

	t.Run("duplicate email surfaces the server message", func(t *testing.T) {
		api := commercefake.New()
		signup := validSignup()
		signup.Email = commercefake.DemoEmail
		err := users.NewService(api).Register(ctx, signup)
		require.Equal(t, http.StatusConflict, commerce.ErrorStatus(err))
		require.Equal(t, "Email already registered", commerce.ErrorMessage(err, ""))
	})
}

func TestService_Profile(t *testing.T) {
	api := commercefake.New()
	profile, err := users.NewService(api).Profile(context.Background())
	require.NoError(t, err)
	require.Equal(t, commercefake.DemoEmail, profile.Email)
	require.Equal(t, "Demo User", profile.FullName())

	api.FailNext("GetProfile", apperrors.ErrUnauthorized)
	_, err = users.NewService(api).Profile(context.Background())
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)
}
