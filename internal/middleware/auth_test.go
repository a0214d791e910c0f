package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testJWTSecret = "test-jwt-secret"

func signedToken(t *testing.T, secret, subject string, expiresIn time.Duration) string {
	t.Helper()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func authRequest(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/leads", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestAuthValidToken(t *testing.T) {
	var gotUserID string
	handler := Auth(testJWTSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = GetUserID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authRequest(signedToken(t, testJWTSecret, "user-1", time.Hour)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if gotUserID != "user-1" {
		t.Errorf("user id = %q, want %q", gotUserID, "user-1")
	}
}

func TestAuthRejections(t *testing.T) {
	handler := Auth(testJWTSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached with invalid credentials")
	}))

	tests := []struct {
		name  string
		token string
	}{
		{"missing header", ""},
		{"wrong secret", signedToken(t, "other-secret", "user-1", time.Hour)},
		{"expired", signedToken(t, testJWTSecret, "user-1", -time.Hour)},
		{"empty subject", signedToken(t, testJWTSecret, "", time.Hour)},
		{"garbage", "not.a.jwt"},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authRequest(tt.token))

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want %d", tt.name, rec.Code, http.StatusUnauthorized)
		}
	}
}

func TestAuthRejectsMalformedHeader(t *testing.T) {
	handler := Auth(testJWTSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached with malformed header")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/leads", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
