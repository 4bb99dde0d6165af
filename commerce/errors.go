package commerce

import (
	"fmt"
	"net/http"

	apperrors "github.com/jrsteele09/go-storefront/internal/errors"
)

// RemoteError is a failure reported by the commerce API. Message carries the server-provided text
// so it can be shown to the user unchanged.
type RemoteError struct {
	Path       string
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s failed with status %d", e.Path, e.StatusCode)
}

func (e *RemoteError) Unwrap() error {
	return apperrors.ErrRemote
}

// Is lets callers classify a 404 with errors.Is(err, ErrNotFound) while keeping the message.
func (e *RemoteError) Is(target error) bool {
	return target == apperrors.ErrNotFound && e.StatusCode == http.StatusNotFound
}

// ErrorMessage returns the server message of a remote failure, or fallback for anything else.
func ErrorMessage(err error, fallback string) string {
	var remote *RemoteError
	if apperrors.As(err, &remote) && remote.Message != "" {
		return remote.Message
	}
	return fallback
}

// ErrorStatus returns the HTTP status of a remote failure, defaulting to 500.
func ErrorStatus(err error) int {
	var remote *RemoteError
	if apperrors.As(err, &remote) && remote.StatusCode != 0 {
		return remote.StatusCode
	}
	return http.StatusInternalServerError
}
