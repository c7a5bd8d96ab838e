package http

import (
	"errors"
	"fmt"
	"net/http"
)

// Provider returned a non 2xx HTTP status code.
var ErrProviderHTTPStatus = errors.New("provider returned non 2xx HTTP status code")

// EnsureHTTPSuccess returns an error if the status code is not a 2xx successful status code.
// Otherwise returns nil.
func EnsureHTTPSuccess(statusCode int) error {
	if statusCode < http.StatusOK || statusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%w: %d", ErrProviderHTTPStatus, statusCode)
	}
	return nil
}
