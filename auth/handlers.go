package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/esime/ielec/auth/email"
)

// Options configures the account endpoints.
type Options struct {
	RegistrationOpen  bool
	MinPasswordLength int
	ResetTokenTTL     time.Duration
	ResetCooldown     time.Duration
	MaxResetsPerDay   int
}

// Handlers provides HTTP handlers for account endpoints.
type Handlers struct {
	store   *Store
	issuer  *Issuer
	mailer  *Mailer
	cookies Cookies
	opts    Options
	logger  *zap.Logger
}

// NewHandlers creates a new auth handlers instance.
func NewHandlers(store *Store, issuer *Issuer, mailer *Mailer, cookies Cookies, opts Options, logger *zap.Logger) *Handlers {
	if opts.MinPasswordLength <= 0 {
		opts.MinPasswordLength = 6
	}
	if opts.ResetTokenTTL <= 0 {
		opts.ResetTokenTTL = 15 * time.Minute
	}
	return &Handlers{
		store:   store,
		issuer:  issuer,
		mailer:  mailer,
		cookies: cookies,
		opts:    opts,
		logger:  logger,
	}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// RegisterHandler handles POST /api/register
func (h *Handlers) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Cuerpo de solicitud inválido", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		jsonError(w, "Email y password son requeridos", http.StatusBadRequest)
		return
	}

	if !h.opts.RegistrationOpen {
		// The first account can always be created.
		count, err := h.store.UserCount(r.Context())
		if err != nil {
			h.internal(w, "counting users", err)
			return
		}
		if count > 0 {
			jsonError(w, "Registro cerrado", http.StatusForbidden)
			return
		}
	}

	if len([]rune(req.Password)) < h.opts.MinPasswordLength {
		jsonError(w, fmt.Sprintf("La contraseña debe tener al menos %d caracteres", h.opts.MinPasswordLength), http.StatusBadRequest)
		return
	}

	user, err := h.store.CreateUser(r.Context(), req.Email, req.Name, req.Password)
	if errors.Is(err, ErrUserExists) {
		jsonError(w, "Usuario ya registrado", http.StatusConflict)
		return
	}
	if err != nil {
		h.internal(w, "creating user", err)
		return
	}

	jsonResponseStatus(w, http.StatusCreated, map[string]any{
		"message": "Usuario creado exitosamente",
		"userId":  user.ID,
	})
}

// LoginHandler handles POST /api/login
func (h *Handlers) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Cuerpo de solicitud inválido", http.StatusBadRequest)
		return
	}

	user, err := h.store.Authenticate(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, ErrUserNotFound):
		jsonError(w, "Usuario no encontrado", http.StatusNotFound)
		return
	case errors.Is(err, ErrWrongPassword):
		jsonError(w, "Contraseña incorrecta", http.StatusUnauthorized)
		return
	case err != nil:
		h.internal(w, "authenticating", err)
		return
	}

	token, expires, err := h.issuer.Issue(user)
	if err != nil {
		h.internal(w, "issuing token", err)
		return
	}
	h.cookies.Set(w, token, expires)

	jsonResponse(w, map[string]any{
		"message": "Login exitoso",
		"user":    map[string]string{"id": user.ID, "email": user.Email},
		"token":   token,
	})
}

// LogoutHandler handles POST /api/logout
func (h *Handlers) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	h.cookies.Clear(w)
	jsonResponse(w, map[string]any{"message": "Sesión cerrada"})
}

// MeHandler handles GET /api/me. It must run behind RequireAuth.
func (h *Handlers) MeHandler(w http.ResponseWriter, r *http.Request) {
	current := GetUser(r)
	if current == nil {
		jsonError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	user, err := h.store.GetUser(r.Context(), current.ID)
	if err != nil {
		h.internal(w, "loading user", err)
		return
	}
	if user == nil {
		h.cookies.Clear(w)
		jsonError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	jsonResponse(w, map[string]any{"user": user})
}

// ForgotPasswordHandler handles POST /api/forgot-password
func (h *Handlers) ForgotPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		jsonError(w, "Email requerido", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	user, err := h.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		h.internal(w, "looking up user", err)
		return
	}
	if user == nil {
		jsonError(w, "Usuario no encontrado", http.StatusNotFound)
		return
	}

	token, limit, err := h.store.IssueReset(ctx, user, h.opts.ResetTokenTTL, h.opts.ResetCooldown, h.opts.MaxResetsPerDay)
	switch {
	case errors.Is(err, ErrRateLimited):
		w.Header().Set("Retry-After", retryAfter(limit.NextAvailable))
		jsonError(w, "Demasiadas solicitudes, intenta más tarde", http.StatusTooManyRequests)
		return
	case err != nil:
		h.internal(w, "creating reset token", err)
		return
	}
	if err := h.mailer.SendPasswordReset(ctx, user, token, email.FormatDuration(h.opts.ResetTokenTTL)); err != nil {
		h.internal(w, "sending reset email", err)
		return
	}

	jsonResponse(w, map[string]any{"message": "Correo de recuperación enviado"})
}

// ResetPasswordHandler handles POST /api/reset-password
func (h *Handlers) ResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Cuerpo de solicitud inválido", http.StatusBadRequest)
		return
	}

	err := h.store.ResetPassword(r.Context(), req.Token, req.NewPassword, h.opts.MinPasswordLength)
	switch {
	case errors.Is(err, ErrPasswordTooShort):
		jsonError(w, fmt.Sprintf("La nueva contraseña debe tener al menos %d caracteres", h.opts.MinPasswordLength), http.StatusBadRequest)
		return
	case errors.Is(err, ErrInvalidToken):
		jsonError(w, "Token inválido o expirado", http.StatusBadRequest)
		return
	case err != nil:
		h.internal(w, "resetting password", err)
		return
	}

	jsonResponse(w, map[string]any{
		"message":  "Contraseña actualizada",
		"redirect": "/",
	})
}

func (h *Handlers) internal(w http.ResponseWriter, action string, err error) {
	h.logger.Error(action, zap.Error(err))
	jsonError(w, "Error en el servidor", http.StatusInternalServerError)
}

// --- Helpers ---

func retryAfter(next time.Time) string {
	secs := int(time.Until(next).Seconds()) + 1
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

func jsonResponse(w http.ResponseWriter, data any) {
	jsonResponseStatus(w, http.StatusOK, data)
}

func jsonResponseStatus(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, message string, status int) {
	jsonResponseStatus(w, status, map[string]string{"error": message})
}
