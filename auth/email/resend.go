package email

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
)

// ResendProvider sends emails via Resend API
type ResendProvider struct {
	client *resend.Client
	from   string
}

// NewResendProvider creates a new Resend email provider
func NewResendProvider(apiKey, from string) (*ResendProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: resend API key is required", ErrProviderNotConfigured)
	}
	if from == "" {
		return nil, fmt.Errorf("%w: from address is required", ErrProviderNotConfigured)
	}
	return &ResendProvider{client: resend.NewClient(apiKey), from: from}, nil
}

// Send sends an email via Resend
func (p *ResendProvider) Send(ctx context.Context, msg *Message) (string, error) {
	if err := msg.validate(); err != nil {
		return "", err
	}
	from := msg.From
	if from == "" {
		from = p.from
	}

	sent, err := p.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    from,
		To:      msg.To,
		Subject: msg.Subject,
		Text:    msg.Text,
		Html:    msg.HTML,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	return sent.Id, nil
}

// Name returns the provider name
func (p *ResendProvider) Name() string {
	return "resend"
}
