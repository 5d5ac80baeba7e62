package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/cartwise/recommender/internal/observability"
)

const requestIDHeader = "X-Request-ID"

// RequestID ensures every request carries an X-Request-ID in context and in
// the response header. A client-supplied ID is kept only when it parses as a
// UUID; anything else is replaced so arbitrary header values never reach the
// logs.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := requestID(r)

		ctx := context.WithValue(r.Context(), observability.RequestIDKey, id)
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestID(r *http.Request) string {
	if supplied := r.Header.Get(requestIDHeader); supplied != "" {
		if parsed, err := uuid.Parse(supplied); err == nil {
			return parsed.String()
		}
	}

	return uuid.Must(uuid.NewV7()).String()
}
