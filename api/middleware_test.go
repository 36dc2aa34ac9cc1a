package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/netip"
	"strings"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lejapetric/simon/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-admin-secret"

func signToken(t *testing.T, secret string, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{Subject: "owner"}
	if !expiresAt.IsZero() {
		claims.ExpiresAt = jwt.NewNumericDate(expiresAt)
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestAuth_ProtectsWrites(t *testing.T) {
	cfg := testConfig()
	cfg.AdminJWTSecret = testSecret
	router := newTestRouter(t, cfg, nil)
	body := projectBody("Roof A", "Tile Roofing", 5, 2021)

	rec := doRequest(t, router, http.MethodPost, "/api/projects", body)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid access token", decode[ErrorResponse](t, rec).Error)

	cases := map[string]string{
		"wrong secret": signToken(t, "other", time.Now().Add(time.Hour)),
		"expired":      signToken(t, testSecret, time.Now().Add(-time.Hour)),
		"no expiry":    signToken(t, testSecret, time.Time{}),
		"garbage":      "not.a.token",
	}
	for name, token := range cases {
		rec := doRequest(t, router, http.MethodPost, "/api/projects", body, "Authorization", "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, name)
	}

	token := signToken(t, testSecret, time.Now().Add(time.Hour))
	rec = doRequest(t, router, http.MethodPost, "/api/projects", body, "Authorization", "Bearer "+token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[models.Project](t, rec)

	rec = doRequest(t, router, http.MethodDelete, "/api/projects/"+created.ID, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/projects/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestContactRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.ContactRateLimit = "2-M"
	router := newTestRouter(t, cfg, nil)
	body := map[string]any{"email": "jana@example.com", "message": "Need a quote"}

	for i := 0; i < 2; i++ {
		rec := doRequest(t, router, http.MethodPost, "/api/contact", body)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doRequest(t, router, http.MethodPost, "/api/contact", body)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "rate limit exceeded", decode[ErrorResponse](t, rec).Error)

	rec = doRequest(t, router, http.MethodGet, "/api/projects", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func postContactFrom(t *testing.T, h http.Handler, remoteAddr, forwardedFor string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/contact",
		strings.NewReader(`{"email":"jana@example.com","message":"Need a quote"}`))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = remoteAddr
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestContactRateLimit_IgnoresForwardedForFromClients(t *testing.T) {
	cfg := testConfig()
	cfg.ContactRateLimit = "2-M"
	router := newTestRouter(t, cfg, nil)

	var codes []int
	for i := 0; i < 6; i++ {
		codes = append(codes, postContactFrom(t, router, "10.0.0.1:40000", fmt.Sprintf("1.2.3.%d", i)))
	}
	assert.Equal(t, []int{200, 200, 429, 429, 429, 429}, codes)
}

func TestContactRateLimit_TrustedProxyForwardsClientAddress(t *testing.T) {
	cfg := testConfig()
	cfg.ContactRateLimit = "2-M"
	cfg.TrustedProxies = []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}
	router := newTestRouter(t, cfg, nil)

	for i := 0; i < 4; i++ {
		code := postContactFrom(t, router, "10.0.0.1:40000", fmt.Sprintf("1.2.3.%d", i))
		assert.Equal(t, http.StatusOK, code, i)
	}

	assert.Equal(t, http.StatusOK, postContactFrom(t, router, "10.0.0.1:40000", "5.6.7.8"))
	assert.Equal(t, http.StatusOK, postContactFrom(t, router, "10.0.0.2:40000", "5.6.7.8"))
	assert.Equal(t, http.StatusTooManyRequests, postContactFrom(t, router, "10.0.0.1:40000", "5.6.7.8"))
}

func TestPeerTrusted(t *testing.T) {
	trusted := []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("2001:db8::/32"),
	}

	assert.True(t, peerTrusted(trusted, "10.1.2.3:5000"))
	assert.True(t, peerTrusted(trusted, "[::ffff:10.1.2.3]:5000"))
	assert.True(t, peerTrusted(trusted, "[2001:db8::1]:443"))
	assert.False(t, peerTrusted(trusted, "192.0.2.1:5000"))
	assert.False(t, peerTrusted(trusted, "not-an-address"))
	assert.False(t, peerTrusted(nil, "10.1.2.3:5000"))
}

func TestCORS(t *testing.T) {
	router := newTestRouter(t, testConfig(), nil)

	preflight := func(origin string) *httptest.ResponseRecorder {
		return doRequest(t, router, http.MethodOptions, "/api/projects", nil,
			"Origin", origin,
			"Access-Control-Request-Method", http.MethodPost,
		)
	}

	rec := preflight("https://evil.example")
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Details, "https://evil.example")

	rec = preflight("https://example.com")
	assert.Less(t, rec.Code, 300)
	assert.Equal(t, "https://example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = doRequest(t, router, http.MethodGet, "/api/projects", nil, "Origin", "https://example.com")
	assert.Equal(t, "https://example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestLogInternalServerErrors_RecoversPanic(t *testing.T) {
	handler := LogInternalServerErrors(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/projects", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decode[ErrorResponse](t, rec)
	assert.Equal(t, "error", resp.Status)
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestLogInternalServerErrors_KeepsAbort(t *testing.T) {
	handler := LogInternalServerErrors(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

type fakeNotifier struct {
	err      error
	received []models.ContactMessage
}

func (f *fakeNotifier) NotifyContact(_ context.Context, msg models.ContactMessage) error {
	f.received = append(f.received, msg)
	return f.err
}

func TestContact(t *testing.T) {
	notifier := &fakeNotifier{}
	router := newTestRouter(t, testConfig(), notifier)

	rec := doRequest(t, router, http.MethodPost, "/api/contact", map[string]any{
		"name": " Jana ", "phone": "041 123 456", "message": "Leaking chimney",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[ContactResponse](t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, contactThanks, resp.Message)
	require.Len(t, notifier.received, 1)
	assert.Equal(t, "Jana", notifier.received[0].Name)
	assert.Equal(t, "041 123 456", notifier.received[0].Phone)

	rec = doRequest(t, router, http.MethodPost, "/api/contact", map[string]any{"message": "Hello"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	errResp := decode[ErrorResponse](t, rec)
	require.Len(t, errResp.Fields, 1)
	assert.Equal(t, "phone", errResp.Fields[0].Field)
	assert.Equal(t, "email or phone is required", errResp.Fields[0].Message)

	rec = doRequest(t, router, http.MethodPost, "/api/contact", map[string]any{"email": "nope", "message": ""})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.ElementsMatch(t, []string{"email", "message"}, fieldNames(decode[ErrorResponse](t, rec)))

	assert.Len(t, notifier.received, 1)
}

func TestContact_ForwardingFailure(t *testing.T) {
	notifier := &fakeNotifier{err: errors.New("resend: 503 from api.resend.com")}
	router := newTestRouter(t, testConfig(), notifier)

	rec := doRequest(t, router, http.MethodPost, "/api/contact", map[string]any{
		"email": "jana@example.com", "message": "Need a quote",
	})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Error, "service unavailable")
	assert.NotContains(t, rec.Body.String(), "resend.com")
}
