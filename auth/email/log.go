package email

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// LogProvider writes messages to the logger instead of sending them. It
// keeps the messages it has seen so a developer (or a test) can follow the
// links in them.
type LogProvider struct {
	logger *zap.Logger

	mu   sync.Mutex
	sent []Message
	seq  int
}

// NewLogProvider creates a provider that only logs.
func NewLogProvider(logger *zap.Logger) *LogProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogProvider{logger: logger}
}

// Send logs the message and records it.
func (p *LogProvider) Send(_ context.Context, msg *Message) (string, error) {
	if err := msg.validate(); err != nil {
		return "", err
	}

	p.mu.Lock()
	p.seq++
	id := fmt.Sprintf("log-%d", p.seq)
	p.sent = append(p.sent, *msg)
	p.mu.Unlock()

	p.logger.Info("email (not sent)",
		zap.String("id", id),
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Text),
	)
	return id, nil
}

// Sent returns a copy of the recorded messages.
func (p *LogProvider) Sent() []Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Message, len(p.sent))
	copy(out, p.sent)
	return out
}

// Name returns the provider name
func (p *LogProvider) Name() string {
	return "log"
}
