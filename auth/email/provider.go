// Package email sends transactional mail through Mailgun, Resend, or the
// log (for development).
package email

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/esime/ielec/config"
)

// Common errors
var (
	ErrProviderNotConfigured = errors.New("email provider not configured")
	ErrInvalidProvider       = errors.New("invalid email provider")
	ErrSendFailed            = errors.New("failed to send email")
)

// Provider sends transactional emails
type Provider interface {
	Send(ctx context.Context, msg *Message) (messageID string, err error)
	Name() string
}

// Message is a provider-agnostic email message
type Message struct {
	From    string
	To      []string
	Subject string
	Text    string // Plain text version
	HTML    string // HTML version (optional)
}

// validate applies the checks every provider shares.
func (m *Message) validate() error {
	if m == nil {
		return fmt.Errorf("message cannot be nil")
	}
	if len(m.To) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}
	if m.Subject == "" {
		return fmt.Errorf("subject is required")
	}
	if m.Text == "" && m.HTML == "" {
		return fmt.Errorf("text or HTML body is required")
	}
	return nil
}

// New builds the provider selected by the email configuration.
func New(cfg config.EmailConfig, logger *zap.Logger) (Provider, error) {
	switch cfg.Provider {
	case "", "log":
		return NewLogProvider(logger), nil
	case "mailgun":
		return NewMailgunProvider(cfg.Mailgun.APIKey.Value(), cfg.Mailgun.Domain, cfg.From, cfg.Mailgun.Region)
	case "resend":
		return NewResendProvider(cfg.Resend.APIKey.Value(), cfg.From)
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidProvider, cfg.Provider)
	}
}
