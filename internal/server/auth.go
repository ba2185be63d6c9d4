package server

import (
	"context"
	"crypto/subtle"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

type usernameKey struct{}

// Credentials is the admin secret protecting the form and crawl routes.
// PasswordHash is a bcrypt hash and takes precedence over Password.
// The username part of Basic auth is accepted as given.
type Credentials struct {
	Password     string
	PasswordHash string
}

// configured reports whether any secret is set.
func (c Credentials) configured() bool {
	return c.Password != "" || c.PasswordHash != ""
}

// verify compares password against the configured secret.
func (c Credentials) verify(password string) bool {
	if c.PasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(c.Password)) == 1
}

// requireAuth enforces Basic auth. Requests without credentials or with a
// wrong password get 401; a server without a configured secret answers 500.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok {
			s.unauthorized(w, "Not authenticated")
			return
		}
		if !s.credentials.configured() {
			writeDetail(w, http.StatusInternalServerError, "Admin password not configured")
			return
		}
		if !s.credentials.verify(password) {
			s.logger.Warn("authentication failed", "remote", r.RemoteAddr)
			s.unauthorized(w, "Invalid credentials")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), usernameKey{}, username)))
	})
}

func (s *Server) unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("WWW-Authenticate", "Basic")
	writeDetail(w, http.StatusUnauthorized, detail)
}

// usernameFrom returns the authenticated username stored by requireAuth.
func usernameFrom(ctx context.Context) string {
	name, _ := ctx.Value(usernameKey{}).(string) //nolint:errcheck // zero value is fine
	return name
}
