package middleware

import (
	"crypto/sha256"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// RequireToken validates the Authorization bearer token against a bcrypt
// hash of the expected API token. The front-end process holds the plaintext
// token; only its hash lives in the server's environment. Verified tokens
// are cached by digest so bcrypt runs once per token value, not per request.
func RequireToken(tokenHash string) func(http.Handler) http.Handler {
	var mu sync.Mutex
	verified := make(map[[sha256.Size]byte]struct{})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				unauthorized(w)
				return
			}

			digest := sha256.Sum256([]byte(token))

			mu.Lock()
			_, seen := verified[digest]
			mu.Unlock()

			if !seen {
				if bcrypt.CompareHashAndPassword([]byte(tokenHash), []byte(token)) != nil {
					unauthorized(w)
					return
				}
				mu.Lock()
				verified[digest] = struct{}{}
				mu.Unlock()
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return header[len(prefix):], true
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}
