package errors

import (
	"errors"
	"fmt"
)

// Common error types for the storefront
var (
	// Authentication errors
	ErrUnauthorized = errors.New("unauthorized")

	// Validation errors (reported inline, no network call issued)
	ErrValidation         = errors.New("validation failed")
	ErrEmptySelection     = errors.New("no items selected")
	ErrNoAddressSelected  = errors.New("no address selected")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrNoMethodSelected   = errors.New("no payment method selected")
	ErrUnknownMethod      = errors.New("unknown payment method")
	ErrSubmissionInFlight = errors.New("submission already in progress")
	ErrIllegalTransition  = errors.New("illegal checkout transition")
	ErrOrderAlreadyPaid   = errors.New("order already paid")

	// Checkout context errors
	ErrInvalidOrder   = errors.New("invalid order")
	ErrContextCleared = errors.New("checkout context cleared")

	// Remote failures
	ErrRemote = errors.New("remote failure")

	// Storage errors
	ErrStorageMiss = errors.New("storage key not found")

	// General errors
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// IsValidation reports whether err was rejected locally before any remote call.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrValidation, ErrEmptySelection, ErrNoAddressSelected, ErrInvalidQuantity,
		ErrNoMethodSelected, ErrUnknownMethod, ErrSubmissionInFlight,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
