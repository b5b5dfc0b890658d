package praxis

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized = errors.New("praxis: unauthorized")
	ErrNotFound     = errors.New("praxis: not found")
)

// APIError carries the upstream status code plus the server-supplied
// detail text, so pages can show it to the user verbatim.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("praxis api: status %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("praxis api: status %d", e.Status)
}

// DetailOf returns the upstream detail text if err wraps an APIError
// with one, and empty otherwise. Pages use it to prefer server-supplied
// validation messages over a generic fallback.
func DetailOf(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return ""
}
