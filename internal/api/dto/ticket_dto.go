package dto

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	CustomerID  string            `json:"customer_id"`
	TicketType  domain.TicketType `json:"ticket_type"`
	Description string            `json:"description"`
	RaisedAt    *time.Time        `json:"raised_at,omitempty"`
}

// UpdateTicketRequest payload. Omitted fields are left unchanged.
type UpdateTicketRequest struct {
	Status           *string                `json:"status,omitempty"`
	TicketType       *domain.TicketType     `json:"ticket_type,omitempty"`
	Priority         *domain.TicketPriority `json:"priority,omitempty"`
	EmployeeComment  *string                `json:"employee_comment,omitempty"`
	CustomerRating   *int                   `json:"customer_rating,omitempty"`
	CustomerFeedback *string                `json:"customer_feedback,omitempty"`
}

// TicketListQuery captures query filters for list endpoints.
type TicketListQuery struct {
	Statuses []domain.TicketStatus
	Page     int
	PageSize int
}

// TicketResponse provides full ticket info.
type TicketResponse struct {
	ID               string                `json:"id"`
	CustomerID       string                `json:"customer_id"`
	TicketType       domain.TicketType     `json:"ticket_type"`
	Status           domain.TicketStatus   `json:"status"`
	Priority         domain.TicketPriority `json:"priority"`
	EmployeeID       *string               `json:"employee_id"`
	Description      string                `json:"description"`
	EmployeeComment  *string               `json:"employee_comment"`
	RaisedAt         time.Time             `json:"raised_at"`
	ResponseTime     *time.Time            `json:"response_time"`
	ResolveTime      *time.Time            `json:"resolve_time"`
	TurnAroundTime   *string               `json:"turn_around_time"`
	CustomerRating   *int                  `json:"customer_rating"`
	CustomerFeedback *string               `json:"customer_feedback"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(t *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:               t.ID,
		CustomerID:       t.CustomerID,
		TicketType:       t.TicketType,
		Status:           t.Status,
		Priority:         t.Priority,
		EmployeeID:       t.EmployeeID,
		Description:      t.Description,
		EmployeeComment:  t.EmployeeComment,
		RaisedAt:         t.RaisedAt,
		ResponseTime:     t.ResponseTime,
		ResolveTime:      t.ResolveTime,
		TurnAroundTime:   t.TurnAroundTime,
		CustomerRating:   t.CustomerRating,
		CustomerFeedback: t.CustomerFeedback,
	}
}

// CountResponse wraps a single count.
type CountResponse struct {
	Count int64 `json:"count"`
}
