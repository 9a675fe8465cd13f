package auth

import (
	"net/http"
	"strings"
	"time"
)

// DefaultCookieName is the credential cookie when none is configured.
const DefaultCookieName = "token"

// Cookies writes and reads the credential cookie.
type Cookies struct {
	Name   string
	Secure bool // Use secure cookies (HTTPS)
}

// Set stores the credential in an httpOnly, SameSite=Lax cookie that
// expires with the token.
func (c Cookies) Set(w http.ResponseWriter, token string, expires time.Time) {
	maxAge := int(time.Until(expires).Seconds())
	if maxAge < 0 {
		maxAge = 0
	}
	http.SetCookie(w, &http.Cookie{
		Name:     c.name(),
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear removes the credential cookie.
func (c Cookies) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name(),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Token extracts the credential from the cookie, falling back to an
// "Authorization: Bearer" header.
func (c Cookies) Token(r *http.Request) string {
	if cookie, err := r.Cookie(c.name()); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

func (c Cookies) name() string {
	if c.Name == "" {
		return DefaultCookieName
	}
	return c.Name
}
