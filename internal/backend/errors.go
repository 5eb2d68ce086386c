package backend

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyResponse = errors.New("backend returned no record")
	ErrNoPublicURL   = errors.New("upload response has no public url")
)

// APIError is a non 2xx answer from the backend.
type APIError struct {
	Status  int
	Message string
	Details string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("backend error %d: %s (%s)", e.Status, e.Message, e.Details)
	}
	return fmt.Sprintf("backend error %d: %s", e.Status, e.Message)
}

// IsClientError reports whether err is a 4xx answer. Those mean the request
// was wrong, not that the backend is unhealthy.
func IsClientError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500
}
