package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/esime/ielec/database"
)

// EmailLog represents an email log entry
type EmailLog struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id,omitempty"`
	Recipient         string    `json:"recipient"`
	EmailType         string    `json:"email_type"` // "password_reset"
	Provider          string    `json:"provider"`   // "mailgun", "resend", "log"
	ProviderMessageID string    `json:"provider_message_id,omitempty"`
	Status            string    `json:"status"` // "sent", "failed"
	Error             string    `json:"error,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// LogEmail records an email send attempt
func (s *Store) LogEmail(ctx context.Context, log *EmailLog) error {
	if log.ID == "" {
		log.ID = generateID("eml")
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = s.now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO email_logs (id, user_id, recipient, email_type, provider, provider_message_id, status, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		log.ID,
		database.NullString(log.UserID),
		log.Recipient,
		log.EmailType,
		log.Provider,
		database.NullString(log.ProviderMessageID),
		log.Status,
		database.NullString(log.Error),
		log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("logging email: %w", err)
	}
	return nil
}

// GetEmailLogs returns the most recent log entries, optionally for one
// user only.
func (s *Store) GetEmailLogs(ctx context.Context, userID string, limit int) ([]EmailLog, error) {
	query := `SELECT id, user_id, recipient, email_type, provider, provider_message_id, status, error, created_at
		FROM email_logs`
	var args []any
	if userID != "" {
		query += " WHERE user_id = ?"
		args = append(args, userID)
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying email logs: %w", err)
	}
	defer rows.Close()

	var logs []EmailLog
	for rows.Next() {
		var log EmailLog
		var user, messageID, errMsg nullable
		err := rows.Scan(&log.ID, &user, &log.Recipient, &log.EmailType, &log.Provider,
			&messageID, &log.Status, &errMsg, &log.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning email log: %w", err)
		}
		log.UserID = string(user)
		log.ProviderMessageID = string(messageID)
		log.Error = string(errMsg)
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating email logs: %w", err)
	}
	return logs, nil
}

// nullable scans a possibly NULL text column into a plain string.
type nullable string

func (n *nullable) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*n = ""
	case string:
		*n = nullable(v)
	case []byte:
		*n = nullable(v)
	default:
		*n = nullable(fmt.Sprint(v))
	}
	return nil
}
