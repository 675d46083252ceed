package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"focusPlanner/internal/middleware"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

// TestAuth тестирует проверку Bearer-токена
func TestAuth(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectUser     bool
	}{
		{
			name: "success - valid token",
			authHeader: "Bearer " + signToken(t, testSecret, jwt.MapClaims{
				"sub": userID.String(),
				"exp": time.Now().Add(time.Hour).Unix(),
			}),
			expectedStatus: http.StatusOK,
			expectUser:     true,
		},
		{
			name:           "error - no header",
			authHeader:     "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "error - not a bearer token",
			authHeader:     "Basic dXNlcjpwYXNz",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "error - wrong secret",
			authHeader: "Bearer " + signToken(t, "other-secret", jwt.MapClaims{
				"sub": userID.String(),
			}),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "error - expired token",
			authHeader: "Bearer " + signToken(t, testSecret, jwt.MapClaims{
				"sub": userID.String(),
				"exp": time.Now().Add(-time.Hour).Unix(),
			}),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "error - no subject",
			authHeader: "Bearer " + signToken(t, testSecret, jwt.MapClaims{
				"exp": time.Now().Add(time.Hour).Unix(),
			}),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "error - subject is not a uuid",
			authHeader: "Bearer " + signToken(t, testSecret, jwt.MapClaims{
				"sub": "user-42",
				"exp": time.Now().Add(time.Hour).Unix(),
			}),
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUser uuid.UUID
			var gotOk bool
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUser, gotOk = middleware.GetUserID(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			handler := middleware.Auth(testSecret)(next)

			req := httptest.NewRequest("GET", "/tasks", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectUser {
				require.True(t, gotOk)
				assert.Equal(t, userID, gotUser)
			}
		})
	}
}
