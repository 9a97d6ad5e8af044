package shipping

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingPostalCode is a caller error (400).
	ErrMissingPostalCode = errors.New("shipping: from_zip and to_zip are required")
	// ErrMissingCredentials is an operator error (500).
	ErrMissingCredentials = errors.New("shipping: carrier credentials are not configured")
)

// CarrierError is a non-2xx carrier response, surfaced with its status and body.
type CarrierError struct {
	StatusCode int
	Body       string
}

func (e *CarrierError) Error() string {
	return fmt.Sprintf("shipping: carrier returned status %d", e.StatusCode)
}
