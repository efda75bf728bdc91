// Package mail delivers transactional messages such as password recovery links.
package mail

import (
	"context"
	"net/mail"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/lms-instructor-api/pkg/config"
)

// Message is a single outbound email.
type Message struct {
	To       mail.Address
	Subject  string
	Text     string
	HTML     string
	Category string
}

// Mailer sends messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New picks the driver configured in cfg.
func New(cfg config.MailConfig, logger *zap.Logger) Mailer {
	if cfg.Driver == config.MailDriverSendgrid && cfg.SendgridAPIKey != "" {
		return NewSendgridMailer(cfg, logger)
	}
	return NewConsoleMailer(logger)
}

// ConsoleMailer logs message metadata instead of sending. Bodies are never
// logged since they carry single-use links.
type ConsoleMailer struct {
	logger *zap.Logger
	record bool
	mu     sync.Mutex
	sent   []Message
}

// NewConsoleMailer builds a console mailer.
func NewConsoleMailer(logger *zap.Logger) *ConsoleMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleMailer{logger: logger}
}

// NewRecordingMailer builds a console mailer that also keeps every message for Sent.
func NewRecordingMailer(logger *zap.Logger) *ConsoleMailer {
	m := NewConsoleMailer(logger)
	m.record = true
	return m
}

// Send writes the message envelope to the log.
func (m *ConsoleMailer) Send(_ context.Context, msg Message) error {
	if m.record {
		m.mu.Lock()
		m.sent = append(m.sent, msg)
		m.mu.Unlock()
	}
	m.logger.Info("mail (console)",
		zap.String("to", msg.To.String()),
		zap.String("subject", msg.Subject),
		zap.String("category", msg.Category),
	)
	return nil
}

// Sent returns a copy of the recorded messages. It is empty unless recording is on.
func (m *ConsoleMailer) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.sent))
	copy(out, m.sent)
	return out
}
