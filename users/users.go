// Package users covers account registration and the signed-in user's profile.
package users

import (
	"context"
	"unicode"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/jrsteele09/go-storefront/commerce"
	"github.com/jrsteele09/go-storefront/internal/validation"
	"github.com/pkg/errors"
)

// Client is the account side of the commerce API.
type Client interface {
	Register(ctx context.Context, registration commerce.Registration) error
	GetProfile(ctx context.Context) (*commerce.Profile, error)
}

// Signup is the registration form as submitted.
type Signup struct {
	FirstName       string `json:"firstName" validate:"required"`
	LastName        string `json:"lastName" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"omitempty,min=7,max=20"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

func (s Signup) Registration() commerce.Registration {
	return commerce.Registration{
		FirstName: s.FirstName,
		LastName:  s.LastName,
		Email:     s.Email,
		Password:  s.Password,
		Phone:     s.Phone,
	}
}

type Service struct {
	client   Client
	validate *validatorv10.Validate
}

func NewService(client Client) *Service {
	return &Service{
		client:   client,
		validate: validation.New(),
	}
}

// Register validates the form locally, including password strength, then creates the account.
func (s *Service) Register(ctx context.Context, signup Signup) error {
	if err := validation.Struct(s.validate, signup); err != nil {
		return err
	}
	if err := ValidatePasswordStrength(signup.Password); err != nil {
		return &validation.Error{Fields: []validation.FieldError{{Field: "password", Message: err.Error()}}}
	}
	if err := s.client.Register(ctx, signup.Registration()); err != nil {
		return errors.Wrap(err, "[Service.Register]")
	}
	return nil
}

func (s *Service) Profile(ctx context.Context) (*commerce.Profile, error) {
	profile, err := s.client.GetProfile(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Profile]")
	}
	return profile, nil
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasNumber = true
		}
	}

	if !hasUpper {
		return errors.New("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return errors.New("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return errors.New("password must contain at least one number")
	}
	return nil
}
