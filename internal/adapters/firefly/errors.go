package firefly

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a transaction or account no longer exists.
// Callers use this to detect stale candidates.
var ErrNotFound = errors.New("not found")

// APIError is a non-2xx response from the Firefly III API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("firefly api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("firefly api error: status %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err represents a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
