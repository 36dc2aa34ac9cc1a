package errs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Store errors. Repositories return ErrNotFound and ErrInvalidID directly and
// wrap every other driver error, which NewDatabaseError maps to ErrServiceUnavailable.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidID          = errors.New("invalid id")
	ErrServiceUnavailable = errors.New("service unavailable")
)

func NewNotFound(entity string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusNotFound,
		err:        fmt.Errorf("%s %w", entity, ErrNotFound),
	}
}

// NewDatabaseError maps a store error for the given operation onto the API
// error taxonomy. The driver error is kept as Cause for logging only.
func NewDatabaseError(operation, entity string, cause error) *ApiErr {
	var apiErr *ApiErr
	if errors.As(cause, &apiErr) {
		return apiErr
	}

	switch {
	case errors.Is(cause, ErrNotFound):
		return NewNotFound(entity)
	case errors.Is(cause, ErrInvalidID):
		return &ApiErr{
			StatusCode: http.StatusBadRequest,
			err:        fmt.Errorf("%s %w", entity, ErrInvalidID),
			Field:      "id",
		}
	case errors.Is(cause, context.Canceled):
		return &ApiErr{
			StatusCode: http.StatusInternalServerError,
			err:        ErrServiceUnavailable,
			Details:    "request canceled",
			Cause:      cause,
		}
	}

	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrServiceUnavailable,
		Details:    fmt.Sprintf("failed to %s %s", operation, entity),
		Cause:      cause,
	}
}

func IsInvalidID(err error) bool {
	return errors.Is(err, ErrInvalidID)
}

func IsServiceUnavailable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable)
}
