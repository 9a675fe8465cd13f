package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// ResetTokenBytes is the number of random bytes in a reset token
// (64 hex characters).
const ResetTokenBytes = 32

// GenerateResetToken returns a cryptographically random hex token.
func GenerateResetToken() (string, error) {
	b := make([]byte, ResetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating random token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// hashResetToken is the stored form of a token. The token carries 256
// random bits, so a plain digest is enough to look it up.
func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// CreateReset stores a new reset token for the user and returns the
// plaintext token to be emailed. Earlier unused tokens for the same user
// stop working.
func (s *Store) CreateReset(ctx context.Context, user *User, ttl time.Duration) (string, error) {
	token, err := GenerateResetToken()
	if err != nil {
		return "", err
	}
	now := s.now()
	_, err = s.db.ExecContext(ctx,
		"UPDATE password_resets SET consumed_at = ? WHERE user_id = ? AND consumed_at IS NULL",
		now, user.ID,
	)
	if err != nil {
		return "", fmt.Errorf("revoking previous tokens: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO password_resets (id, user_id, email, token_hash, expires_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		generateID("rst"), user.ID, user.Email, hashResetToken(token), now.Add(ttl), now,
	)
	if err != nil {
		return "", fmt.Errorf("storing reset token: %w", err)
	}
	return token, nil
}

// ConsumeReset burns a valid, unexpired token and returns the user it was
// issued to. Unknown, used and expired tokens give ErrInvalidToken.
func (s *Store) ConsumeReset(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrInvalidToken
	}

	var id, userID string
	var expiresAt time.Time
	err := s.db.QueryRowContext(ctx,
		"SELECT id, user_id, expires_at FROM password_resets WHERE token_hash = ? AND consumed_at IS NULL",
		hashResetToken(token),
	).Scan(&id, &userID, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrInvalidToken
	}
	if err != nil {
		return "", fmt.Errorf("querying reset token: %w", err)
	}

	now := s.now()
	if !now.Before(expiresAt) {
		return "", ErrInvalidToken
	}
	// Only one of two concurrent requests for the same token wins.
	result, err := s.db.ExecContext(ctx,
		"UPDATE password_resets SET consumed_at = ? WHERE id = ? AND consumed_at IS NULL", now, id)
	if err != nil {
		return "", fmt.Errorf("consuming reset token: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return "", ErrInvalidToken
	}
	return userID, nil
}

// ResetPassword consumes the token and sets the new password.
func (s *Store) ResetPassword(ctx context.Context, token, password string, minLength int) error {
	if len([]rune(password)) < minLength {
		return ErrPasswordTooShort
	}
	userID, err := s.ConsumeReset(ctx, token)
	if err != nil {
		return err
	}
	return s.SetPassword(ctx, userID, password)
}

// IssueReset creates a reset token for the user unless the address is over
// its reset rate limit, in which case it returns ErrRateLimited along with
// the refusing result.
func (s *Store) IssueReset(ctx context.Context, user *User, ttl, cooldown time.Duration, dailyLimit int) (string, *RateLimitResult, error) {
	limit, err := s.CheckResetRateLimit(ctx, user.Email, cooldown, dailyLimit)
	if err != nil {
		return "", nil, err
	}
	if !limit.Allowed {
		return "", limit, fmt.Errorf("%w: %s", ErrRateLimited, limit.Reason)
	}
	token, err := s.CreateReset(ctx, user, ttl)
	return token, limit, err
}

// RateLimitResult holds the result of a rate limit check
type RateLimitResult struct {
	Allowed       bool
	Reason        string
	NextAvailable time.Time
	CurrentCount  int
	Limit         int
}

// CheckResetRateLimit decides whether another reset email may be sent to
// an address. It enforces a cooldown between sends and a daily cap.
func (s *Store) CheckResetRateLimit(ctx context.Context, email string, cooldown time.Duration, dailyLimit int) (*RateLimitResult, error) {
	now := s.now()
	email = normalizeEmail(email)

	var lastSentAt time.Time
	err := s.db.QueryRowContext(ctx,
		"SELECT created_at FROM password_resets WHERE email = ? ORDER BY created_at DESC LIMIT 1",
		email,
	).Scan(&lastSentAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// first request
	case err != nil:
		return nil, fmt.Errorf("checking reset cooldown: %w", err)
	default:
		if next := lastSentAt.Add(cooldown); now.Before(next) {
			return &RateLimitResult{
				Allowed:       false,
				Reason:        "cooldown period not elapsed",
				NextAvailable: next,
			}, nil
		}
	}

	if dailyLimit <= 0 {
		return &RateLimitResult{Allowed: true}, nil
	}

	var count int
	err = s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM password_resets WHERE email = ? AND created_at > ?",
		email, now.Add(-24*time.Hour),
	).Scan(&count)
	if err != nil {
		return nil, fmt.Errorf("checking reset daily limit: %w", err)
	}
	if count >= dailyLimit {
		return &RateLimitResult{
			Allowed:       false,
			Reason:        "daily limit exceeded",
			CurrentCount:  count,
			Limit:         dailyLimit,
			NextAvailable: now.Add(24 * time.Hour),
		}, nil
	}

	return &RateLimitResult{Allowed: true, CurrentCount: count, Limit: dailyLimit}, nil
}
