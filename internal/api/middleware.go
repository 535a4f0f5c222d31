package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const requestIDHeader = "X-Request-ID"

// RequestIDMiddleware assigns a request ID when the client sent none.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// LoggingMiddleware logs each request with method, path and duration.
func LoggingMiddleware(logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("request_id", w.Header().Get(requestIDHeader)).
				Dur("duration", time.Since(start)).
				Msg("request handled")
		})
	}
}

// adminGate rejects requests without a valid console password. This is
// the same UI-level gate the console exposes, not real access control.
func adminGate(authenticate func(string) error) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := authenticate(r.Header.Get("X-Admin-Password")); err != nil {
				writeError(w, http.StatusUnauthorized, "access_denied", "access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
