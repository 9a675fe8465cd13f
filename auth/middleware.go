package auth

import (
	"context"
	"net/http"

	"go.uber.org/zap"
)

// contextKey is a type for context keys to avoid collisions.
type contextKey string

const (
	// UserContextKey is the context key for the authenticated user.
	UserContextKey contextKey = "auth_user"
)

// Middleware gates handlers on a valid credential token.
type Middleware struct {
	issuer  *Issuer
	cookies Cookies
	logger  *zap.Logger
}

// NewMiddleware creates a new auth middleware instance.
func NewMiddleware(issuer *Issuer, cookies Cookies, logger *zap.Logger) *Middleware {
	return &Middleware{issuer: issuer, cookies: cookies, logger: logger}
}

// RequireAuth returns middleware that requires a valid token. Without one
// it answers 401 and clears the credential cookie.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := m.authenticate(r)
		if user == nil {
			m.cookies.Clear(w)
			jsonError(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// authenticate verifies the request token and returns the user it names.
func (m *Middleware) authenticate(r *http.Request) *User {
	token := m.cookies.Token(r)
	if token == "" {
		return nil
	}
	claims, err := m.issuer.Verify(token)
	if err != nil {
		m.logger.Debug("rejected credential", zap.Error(err))
		return nil
	}
	return &User{ID: claims.UserID, Email: claims.Email}
}

// GetUser retrieves the authenticated user from the request context.
// Returns nil if not authenticated.
func GetUser(r *http.Request) *User {
	return GetUserFromContext(r.Context())
}

// GetUserFromContext retrieves the authenticated user from a context.
// Returns nil if not authenticated.
func GetUserFromContext(ctx context.Context) *User {
	user, ok := ctx.Value(UserContextKey).(*User)
	if !ok {
		return nil
	}
	return user
}

// WithUser returns a context carrying the user.
func WithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}
