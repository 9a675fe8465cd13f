package email

import (
	"context"
	"fmt"
	"time"

	"github.com/mailgun/mailgun-go/v4"
)

// MailgunProvider sends emails via Mailgun API
type MailgunProvider struct {
	client *mailgun.MailgunImpl
	from   string
}

// NewMailgunProvider creates a new Mailgun email provider
func NewMailgunProvider(apiKey, domain, from, region string) (*MailgunProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: mailgun API key is required", ErrProviderNotConfigured)
	}
	if domain == "" {
		return nil, fmt.Errorf("%w: mailgun domain is required", ErrProviderNotConfigured)
	}
	if from == "" {
		return nil, fmt.Errorf("%w: from address is required", ErrProviderNotConfigured)
	}

	mg := mailgun.NewMailgun(domain, apiKey)
	if region == "eu" {
		mg.SetAPIBase(mailgun.APIBaseEU)
	}

	return &MailgunProvider{client: mg, from: from}, nil
}

// Send sends an email via Mailgun. An empty From uses the configured
// sender.
func (p *MailgunProvider) Send(ctx context.Context, msg *Message) (string, error) {
	if err := msg.validate(); err != nil {
		return "", err
	}
	from := msg.From
	if from == "" {
		from = p.from
	}

	m := p.client.NewMessage(from, msg.Subject, msg.Text, msg.To...)
	if msg.HTML != "" {
		m.SetHtml(msg.HTML)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, id, err := p.client.Send(ctx, m)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	return id, nil
}

// Name returns the provider name
func (p *MailgunProvider) Name() string {
	return "mailgun"
}
