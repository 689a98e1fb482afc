package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-123456"

func signed(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestAuthRequired(t *testing.T) {
	app := fiber.New()
	app.Get("/me", AuthRequired(testSecret), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("login").(string))
	})

	valid := jwt.MapClaims{
		"sub": "alice",
		"iss": TokenIssuer,
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	expired := jwt.MapClaims{
		"sub": "alice",
		"iss": TokenIssuer,
		"exp": time.Now().Add(-time.Hour).Unix(),
	}
	noSubject := jwt.MapClaims{
		"iss": TokenIssuer,
		"exp": time.Now().Add(time.Hour).Unix(),
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"missing header", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Token abc", http.StatusUnauthorized, ""},
		{"garbage token", "Bearer abc", http.StatusUnauthorized, ""},
		{"wrong secret", "Bearer " + signed(t, "another-secret-another-secret-xx", valid), http.StatusUnauthorized, ""},
		{"expired", "Bearer " + signed(t, testSecret, expired), http.StatusUnauthorized, ""},
		{"missing subject", "Bearer " + signed(t, testSecret, noSubject), http.StatusUnauthorized, ""},
		{"valid", "Bearer " + signed(t, testSecret, valid), http.StatusOK, "alice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantBody != "" {
				body, _ := io.ReadAll(resp.Body)
				assert.Equal(t, tt.wantBody, string(body))
			}
		})
	}
}
