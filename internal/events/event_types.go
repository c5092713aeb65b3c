package events

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated  EventType = "ticket_created"
	EventTicketUpdated  EventType = "ticket_updated"
	EventTicketClosed   EventType = "ticket_closed"
	EventTicketReopened EventType = "ticket_reopened"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	CustomerID  string  `json:"customer_id"`
	EmployeeID  *string `json:"employee_id,omitempty"`
	Description string  `json:"description"`
}

// TicketUpdatedPayload payload. Published only when the status changed.
type TicketUpdatedPayload struct {
	CustomerID  string                `json:"customer_id"`
	OldStatus   domain.TicketStatus   `json:"old_status"`
	NewStatus   domain.TicketStatus   `json:"new_status"`
	OldType     domain.TicketType     `json:"old_type"`
	NewType     domain.TicketType     `json:"new_type"`
	NewPriority domain.TicketPriority `json:"new_priority"`
}

// TicketClosedPayload payload.
type TicketClosedPayload struct {
	CustomerID      string  `json:"customer_id"`
	EmployeeComment *string `json:"employee_comment,omitempty"`
}

// TicketReopenedPayload payload. TicketID on the event is the new ticket.
type TicketReopenedPayload struct {
	CustomerID       string `json:"customer_id"`
	OriginalTicketID string `json:"original_ticket_id"`
	Description      string `json:"description"`
}
