package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func authedHandler(t *testing.T) http.Handler {
	t.Helper()

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return Auth("secret-key")(next)
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic secret-key", http.StatusUnauthorized},
		{"wrong key", "Bearer other-key", http.StatusUnauthorized},
		{"valid key", "Bearer secret-key", http.StatusOK},
		{"case-insensitive scheme", "bearer secret-key", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "http://test/v1/analytics", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			rec := httptest.NewRecorder()
			authedHandler(t).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRequestID(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("generates an id when absent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "http://test/health", nil)
		rec := httptest.NewRecorder()
		RequestID(next).ServeHTTP(rec, req)

		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	})

	t.Run("propagates a client-sent uuid", func(t *testing.T) {
		id := "0191d2a0-5f3e-7cc0-9f7e-2b1a44c0aa01"
		req := httptest.NewRequest(http.MethodGet, "http://test/health", nil)
		req.Header.Set("X-Request-ID", id)
		rec := httptest.NewRecorder()
		RequestID(next).ServeHTTP(rec, req)

		assert.Equal(t, id, rec.Header().Get("X-Request-ID"))
	})

	t.Run("replaces a non-uuid client id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "http://test/health", nil)
		req.Header.Set("X-Request-ID", "not a uuid\n")
		rec := httptest.NewRecorder()
		RequestID(next).ServeHTTP(rec, req)

		got := rec.Header().Get("X-Request-ID")
		assert.NotEmpty(t, got)
		assert.NotEqual(t, "not a uuid\n", got)
	})
}
