package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Common error sentinel values
var (
	ErrForbidden    = errors.New("operation not allowed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInternal     = errors.New("internal server error")

	ErrCORSBlocked error = message{"request blocked by CORS policy", ErrForbidden}
)

// FieldError describes one invalid input field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ApiErr struct {
	StatusCode int
	err        error
	Details    string       // Additional details about the error
	Field      string       // Field that caused the error (for single-field validation errors)
	Fields     []FieldError // Every invalid field (for aggregated validation errors)
	Cause      error        // The underlying cause; logged, never sent to clients
}

func NewApiErr(statusCode int, message string) *ApiErr {
	return &ApiErr{
		StatusCode: statusCode,
		err:        errors.New(message),
	}
}

// implements error interface. this allows us to pass an instance of ApiErr as an argument of type `error`
func (e *ApiErr) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.err.Error(), e.Details)
	}
	return e.err.Error()
}

// Message is the client-facing message, without details
func (e *ApiErr) Message() string {
	return e.err.Error()
}

// GetFullError returns a recursive error message including all causes
func (e *ApiErr) GetFullError() string {
	msg := e.Error()
	if e.Cause != nil {
		var apiErr *ApiErr
		if errors.As(e.Cause, &apiErr) {
			msg = fmt.Sprintf("%s -> %s", msg, apiErr.GetFullError())
		} else {
			msg = fmt.Sprintf("%s -> %s", msg, e.Cause.Error())
		}
	}
	return msg
}

// this function allows us to do the following:
// err := &ApiErr{StatusCode: ..., err: someSentinelError}
// errors.Is(err, someSentinelError) ==> evaluates to true
func (e *ApiErr) Unwrap() error {
	return e.err
}

// message keeps a client-facing message while still matching its sentinel with errors.Is
type message struct {
	text     string
	sentinel error
}

func (m message) Error() string { return m.text }
func (m message) Unwrap() error { return m.sentinel }

// Common error constructors with appropriate HTTP status codes
func NewNotFoundError(msg string) *ApiErr {
	return &ApiErr{StatusCode: http.StatusNotFound, err: message{msg, ErrNotFound}}
}

func NewUnauthorizedError(msg string) *ApiErr {
	return &ApiErr{StatusCode: http.StatusUnauthorized, err: message{msg, ErrUnauthorized}}
}

func NewInternalError(msg string) *ApiErr {
	return &ApiErr{StatusCode: http.StatusInternalServerError, err: message{msg, ErrInternal}}
}

func NewCORSError(origin string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusForbidden,
		err:        ErrCORSBlocked,
		Details:    fmt.Sprintf("Origin '%s' is not allowed by CORS policy", origin),
	}
}

func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
