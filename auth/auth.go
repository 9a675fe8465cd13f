// Package auth provides password accounts, signed credential tokens and
// password recovery by email.
package auth

import (
	"errors"
	"time"
)

// User is an account holder.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name,omitempty"`
	PasswordHash string    `json:"-"` // bcrypt hash, never exposed
	CreatedAt    time.Time `json:"created_at"`
}

// Common errors
var (
	ErrUserExists       = errors.New("user already registered")
	ErrUserNotFound     = errors.New("user not found")
	ErrWrongPassword    = errors.New("wrong password")
	ErrPasswordTooShort = errors.New("password too short")
	ErrInvalidToken     = errors.New("invalid or expired token")
	ErrRateLimited      = errors.New("rate limit exceeded")
)
