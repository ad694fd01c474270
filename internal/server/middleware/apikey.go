package middleware

import (
	"crypto/subtle"
	"net/http"
)

// APIKey requires the X-API-Key header to match the configured key,
// compared in constant time. An empty configured key disables the check
// entirely (the server logs a warning at startup instead).
func APIKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if key == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get("X-API-Key")
			if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				http.Error(w, `{"title":"Unauthorized","status":401,"detail":"missing or invalid API key"}`, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
