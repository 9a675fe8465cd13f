package auth

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/esime/ielec/auth/email"
	"github.com/esime/ielec/metrics"
)

// Mailer sends account emails and records every attempt in the email log.
type Mailer struct {
	provider email.Provider
	store    *Store
	from     string
	siteName string
	baseURL  string
	logger   *zap.Logger
}

// NewMailer creates a mailer. baseURL is the public site address used in
// emailed links.
func NewMailer(provider email.Provider, store *Store, from, siteName, baseURL string, logger *zap.Logger) *Mailer {
	if siteName == "" {
		siteName = "ielec"
	}
	return &Mailer{
		provider: provider,
		store:    store,
		from:     from,
		siteName: siteName,
		baseURL:  strings.TrimRight(baseURL, "/"),
		logger:   logger,
	}
}

// ResetURL builds the link a user follows to choose a new password.
func (m *Mailer) ResetURL(token string) string {
	return m.baseURL + "/reset-password?token=" + url.QueryEscape(token)
}

// SendPasswordReset emails the reset link for token.
func (m *Mailer) SendPasswordReset(ctx context.Context, user *User, token, ttl string) error {
	msg, err := email.RenderPasswordReset(email.TemplateData{
		ResetURL: m.ResetURL(token),
		TTL:      ttl,
		SiteName: m.siteName,
		SiteURL:  m.baseURL,
	})
	if err != nil {
		return err
	}
	msg.From = m.from
	msg.To = []string{user.Email}

	messageID, sendErr := m.provider.Send(ctx, msg)

	entry := &EmailLog{
		UserID:            user.ID,
		Recipient:         user.Email,
		EmailType:         "password_reset",
		Provider:          m.provider.Name(),
		ProviderMessageID: messageID,
		Status:            "sent",
	}
	if sendErr != nil {
		entry.Status = "failed"
		entry.Error = sendErr.Error()
	}
	metrics.EmailsTotal.WithLabelValues(entry.Provider, entry.Status).Inc()
	if err := m.store.LogEmail(ctx, entry); err != nil {
		m.logger.Warn("could not record email", zap.Error(err))
	}

	if sendErr != nil {
		return fmt.Errorf("sending email: %w", sendErr)
	}
	m.logger.Info("password reset email sent",
		zap.String("user", user.ID),
		zap.String("provider", entry.Provider))
	return nil
}
