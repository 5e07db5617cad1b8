package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-jwt-secret"

func issueToken(t *testing.T, subject, secret string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func runAuth(t *testing.T, authHeader string) (int, string) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/balance", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var principal string
	next := func(c echo.Context) error {
		principal = Principal(c)
		return c.NoContent(http.StatusOK)
	}

	err := Auth(testSecret)(next)(c)
	if err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec.Code, principal
}

func TestAuthExtractsPrincipal(t *testing.T) {
	code, principal := runAuth(t, "Bearer "+issueToken(t, "user-42", testSecret))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "user-42", principal)
}

func TestAuthRejectsBadTokens(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "not bearer", header: "Basic abc"},
		{name: "garbage token", header: "Bearer not-a-jwt"},
		{name: "wrong secret", header: "Bearer " + func() string {
			token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "user-42"})
			signed, _ := token.SignedString([]byte("other-secret"))
			return signed
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, principal := runAuth(t, tt.header)
			assert.Equal(t, http.StatusUnauthorized, code)
			assert.Empty(t, principal)
		})
	}
}

func TestAuthRejectsEmptySubject(t *testing.T) {
	code, _ := runAuth(t, "Bearer "+issueToken(t, "", testSecret))
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestAdminAuth(t *testing.T) {
	e := echo.New()
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	run := func(configured, sent string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
		if sent != "" {
			req.Header.Set("X-Admin-Token", sent)
		}
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if err := AdminAuth(configured)(next)(c); err != nil {
			e.HTTPErrorHandler(err, c)
		}
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, run("secret-token", "secret-token"))
	assert.Equal(t, http.StatusUnauthorized, run("secret-token", "wrong"))
	assert.Equal(t, http.StatusUnauthorized, run("secret-token", ""))
	// An unset admin token disables the surface entirely.
	assert.Equal(t, http.StatusUnauthorized, run("", ""))
}
