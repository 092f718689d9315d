package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"
	"sync/atomic"
)

type credentials struct {
	enabled bool
	user    [sha256.Size]byte
	pass    [sha256.Size]byte
}

// AuthConfig holds Basic Auth credentials. Update may be called while
// requests are being served, e.g. on SIGHUP.
type AuthConfig struct {
	current atomic.Pointer[credentials]
}

// NewAuthConfig creates an auth configuration.
func NewAuthConfig(enabled bool, user, password string) *AuthConfig {
	c := &AuthConfig{}
	c.Update(enabled, user, password)
	return c
}

// Update replaces the credentials.
func (c *AuthConfig) Update(enabled bool, user, password string) {
	c.current.Store(&credentials{
		enabled: enabled,
		user:    sha256.Sum256([]byte(user)),
		pass:    sha256.Sum256([]byte(password)),
	})
}

// Enabled reports whether requests currently need credentials.
func (c *AuthConfig) Enabled() bool {
	return c.current.Load().enabled
}

// check compares digests so the comparison time does not depend on the
// length of either secret.
func (c *AuthConfig) check(user, password string) bool {
	want := c.current.Load()
	u := sha256.Sum256([]byte(user))
	p := sha256.Sum256([]byte(password))
	userOK := subtle.ConstantTimeCompare(u[:], want.user[:])
	passOK := subtle.ConstantTimeCompare(p[:], want.pass[:])
	return userOK&passOK == 1
}

// Auth requires Basic Auth on every path except excludePaths, where a
// trailing "*" marks a prefix.
func Auth(config *AuthConfig, excludePaths ...string) Middleware {
	exact := make(map[string]bool)
	var prefixes []string

	for _, path := range excludePaths {
		if p, ok := strings.CutSuffix(path, "*"); ok {
			prefixes = append(prefixes, p)
		} else {
			exact[path] = true
		}
	}

	public := func(path string) bool {
		if exact[path] {
			return true
		}
		for _, p := range prefixes {
			if strings.HasPrefix(path, p) {
				return true
			}
		}
		return false
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !config.Enabled() || public(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			user, pass, ok := r.BasicAuth()
			if !ok || !config.check(user, pass) {
				w.Header().Set("WWW-Authenticate", `Basic realm="aguacate", charset="UTF-8"`)
				WriteError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
