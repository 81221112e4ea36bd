package sdk

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a requested product does not exist.
// Use errors.Is() to check.
var ErrNotFound = errors.New("product not found")

// APIError carries a structured error response from the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("fashion-search API error %d (%s): %s", e.StatusCode, e.Code, e.Message)
}
