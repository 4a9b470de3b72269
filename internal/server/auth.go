package server

import (
	"crypto/subtle"
	"net/http"
)

const accessHeader = "X-Access-Password"

// AccessAuth gates requests behind the shared access password. An empty
// configured password disables the gate.
func AccessAuth(password string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if password == "" {
				next.ServeHTTP(w, r)
				return
			}
			got := r.Header.Get(accessHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(password)) != 1 {
				httpError(w, http.StatusUnauthorized, "authentication_error", "invalid or missing access password")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
