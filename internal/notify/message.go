// Package notify delivers customer e-mails produced by the notification service.
package notify

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Message is one outbound customer e-mail.
type Message struct {
	ID       string    `json:"id"`
	From     string    `json:"from"`
	To       string    `json:"to"`
	Subject  string    `json:"subject"`
	Body     string    `json:"body"`
	QueuedAt time.Time `json:"queued_at"`
}

// NewMessage stamps a message with an id and queue time.
func NewMessage(from, to, subject, body string, now time.Time) Message {
	return Message{
		ID:       uuid.NewString(),
		From:     from,
		To:       to,
		Subject:  subject,
		Body:     body,
		QueuedAt: now.UTC(),
	}
}

func encodeMessage(m Message) ([]byte, error) {
	return json.Marshal(m)
}

func decodeMessage(raw string) (Message, error) {
	var m Message
	err := json.Unmarshal([]byte(raw), &m)
	return m, err
}
