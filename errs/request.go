package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Request & Input-Validation Errors
var (
	ErrValidation        = errors.New("validation failed")
	ErrMalformedPayload  = errors.New("malformed payload")
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// NewValidationError aggregates every field problem of one request
func NewValidationError(fields ...FieldError) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrValidation,
		Fields:     fields,
	}
}

func NewMalformedPayloadError(payloadType string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrMalformedPayload,
		Details:    fmt.Sprintf("Malformed %s payload", payloadType),
		Cause:      cause,
		Field:      "payload",
	}
}

func NewInvalidFieldError(fieldName string, reason string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrValidation,
		Fields:     []FieldError{{Field: fieldName, Message: reason}},
	}
}

// NewInvalidTokenError rejects a missing, malformed or expired admin token
func NewInvalidTokenError() *ApiErr {
	apiErr := NewUnauthorizedError("invalid access token")
	apiErr.Details = "Access token is missing, malformed or expired"
	apiErr.Field = "authorization"
	return apiErr
}

func NewRateLimitError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusTooManyRequests,
		err:        ErrRateLimitExceeded,
		Details:    "Too many requests, try again later",
	}
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsMalformedPayloadError(err error) bool {
	return errors.Is(err, ErrMalformedPayload)
}
