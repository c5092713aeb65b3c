package notify

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
)

// LogNotifier writes e-mails to the log instead of a mail server.
type LogNotifier struct {
	logger *zap.Logger
	from   string
}

// NewLogNotifier builds a LogNotifier.
func NewLogNotifier(logger *zap.Logger, from string) *LogNotifier {
	return &LogNotifier{logger: logger, from: from}
}

// Notify logs the e-mail. An empty recipient is rejected.
func (n *LogNotifier) Notify(_ context.Context, email, subject, body string) error {
	if strings.TrimSpace(email) == "" {
		return errors.New("notify: empty recipient")
	}
	return n.Deliver(NewMessage(n.from, email, subject, body, time.Now()))
}

// Deliver logs an already built message.
func (n *LogNotifier) Deliver(m Message) error {
	n.logger.Info("email",
		zap.String("message_id", m.ID),
		zap.String("from", m.From),
		zap.String("to", m.To),
		zap.String("subject", m.Subject),
		zap.Int("body_bytes", len(m.Body)))
	n.logger.Debug("email body", zap.String("message_id", m.ID), zap.String("body", m.Body))
	return nil
}
