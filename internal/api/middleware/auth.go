package middleware

import (
	"crypto/subtle"
	"net/http"

	"audarb/pkg/crypto"
)

// BasicAuth returns a middleware that requires HTTP Basic Authentication
// matching username and a bcrypt passwordHash, for protecting the
// dashboard when a password is configured. A blank passwordHash disables
// the check entirely (every request passes through), since running the
// dashboard unauthenticated on a trusted network is a valid deployment
// choice.
func BasicAuth(username, passwordHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if passwordHash == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if !ok {
				w.Header().Set("WWW-Authenticate", `Basic realm="audarb dashboard"`)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			userMatch := subtle.ConstantTimeCompare([]byte(user), []byte(username)) == 1
			if !userMatch || !crypto.CheckPasswordMatch(pass, passwordHash) {
				w.Header().Set("WWW-Authenticate", `Basic realm="audarb dashboard"`)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
