package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brahian-mesa/Planea-Paga-al-Dia/internal/ctxkeys"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func protectedHandler(gotUserID *string) http.Handler {
	return Auth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*gotUserID = ctxkeys.GetUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
}

func TestAuthValidToken(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{
		"userId": "user-42",
		"exp":    time.Now().Add(time.Hour).Unix(),
	})

	var gotUserID string
	req := httptest.NewRequest(http.MethodGet, "/api/clients", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	protectedHandler(&gotUserID).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-42", gotUserID)
}

func TestAuthRejections(t *testing.T) {
	expired := signToken(t, testSecret, jwt.MapClaims{
		"userId": "user-42",
		"exp":    time.Now().Add(-time.Hour).Unix(),
	})
	wrongKey := signToken(t, "another-secret", jwt.MapClaims{
		"userId": "user-42",
		"exp":    time.Now().Add(time.Hour).Unix(),
	})
	noUser := signToken(t, testSecret, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc123"},
		{"garbage token", "Bearer not.a.jwt"},
		{"expired token", "Bearer " + expired},
		{"wrong signing key", "Bearer " + wrongKey},
		{"missing userId claim", "Bearer " + noUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUserID string
			req := httptest.NewRequest(http.MethodGet, "/api/clients", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			protectedHandler(&gotUserID).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Empty(t, gotUserID)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}
