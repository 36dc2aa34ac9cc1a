package api

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lejapetric/simon/errs"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError_LogsDeniedRequests(t *testing.T) {
	var buf bytes.Buffer
	responder := NewResponder(zerolog.New(&buf))

	rec := httptest.NewRecorder()
	responder.WriteError(rec, errs.NewInvalidTokenError())
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "access denied")

	buf.Reset()
	rec = httptest.NewRecorder()
	responder.WriteError(rec, errs.NewCORSError("https://evil.example"))
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, buf.String(), "access denied")
	assert.Contains(t, buf.String(), "https://evil.example")

	buf.Reset()
	rec = httptest.NewRecorder()
	responder.WriteError(rec, errs.NewValidationError(errs.FieldError{Field: "name", Message: "name is required"}))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, buf.String())
}

func TestWriteError_HidesUnexpectedErrors(t *testing.T) {
	var buf bytes.Buffer
	responder := NewResponder(zerolog.New(&buf))

	rec := httptest.NewRecorder()
	responder.WriteError(rec, errors.New("dial tcp 10.0.0.5:5432: connection refused"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.5")
	assert.Contains(t, buf.String(), "10.0.0.5")
}
