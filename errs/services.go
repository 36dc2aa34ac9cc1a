package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Third-party service errors
var (
	ErrUpstreamFailed = errors.New("upstream service failed")
)

// NewUpstreamError reports a failed call to an external service such as the
// mail provider. Like store failures it surfaces as a 500.
func NewUpstreamError(service string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        fmt.Errorf("%w: %w", ErrServiceUnavailable, ErrUpstreamFailed),
		Details:    fmt.Sprintf("%s request failed", service),
		Cause:      cause,
	}
}
