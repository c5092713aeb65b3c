package domain

import (
	"strings"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusPending TicketStatus = "PENDING"
	TicketStatusOpen    TicketStatus = "OPEN"
	TicketStatusClosed  TicketStatus = "CLOSED"
)

// NormalizeStatus trims and upper-cases a status read from storage or a request.
// Values outside the canonical three are kept as opaque strings.
func NormalizeStatus(raw string) TicketStatus {
	return TicketStatus(strings.ToUpper(strings.TrimSpace(raw)))
}

// IsActive reports whether the status blocks a second ticket of the same type.
func (s TicketStatus) IsActive() bool {
	return s == TicketStatusPending || s == TicketStatusOpen
}

// TicketType is the ticket category. It doubles as the department name
// used to find employees able to work the ticket.
type TicketType string

const (
	TicketTypeOutage                 TicketType = "OUTAGE"
	TicketTypeInstallationAndService TicketType = "INSTALLATION_AND_SERVICE"
	TicketTypeTechnicalSupport       TicketType = "TECHNICAL_SUPPORT"
	TicketTypeRelocationRequest      TicketType = "RELOCATION_REQUEST"
	TicketTypeBillingAndAccounts     TicketType = "BILLING_AND_ACCOUNTS"
	TicketTypeProductAndPlans        TicketType = "PRODUCT_AND_PLANS"
	TicketTypeOther                  TicketType = "OTHER"
)

// NormalizeTicketType trims and upper-cases a type taken from a request.
func NormalizeTicketType(raw string) TicketType {
	return TicketType(strings.ToUpper(strings.TrimSpace(raw)))
}

// TicketPriority enumerates urgency tiers.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
)

// NormalizePriority trims and upper-cases a priority taken from a request.
func NormalizePriority(raw string) TicketPriority {
	return TicketPriority(strings.ToUpper(strings.TrimSpace(raw)))
}

// AssignPriority maps a ticket type to its fixed priority. Unknown types are LOW.
func AssignPriority(t TicketType) TicketPriority {
	switch t {
	case TicketTypeOutage:
		return TicketPriorityHigh
	case TicketTypeInstallationAndService, TicketTypeTechnicalSupport, TicketTypeRelocationRequest:
		return TicketPriorityMedium
	default:
		return TicketPriorityLow
	}
}

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID               string
	CustomerID       string
	Customer         *Customer
	TicketType       TicketType
	Status           TicketStatus
	Priority         TicketPriority
	EmployeeID       *string
	Description      string
	EmployeeComment  *string
	RaisedAt         time.Time
	ResponseTime     *time.Time
	ResolveTime      *time.Time
	TurnAroundTime   *string
	CustomerRating   *int
	CustomerFeedback *string
}

// Clone returns a copy that shares no pointers with t.
func (t *Ticket) Clone() *Ticket {
	if t == nil {
		return nil
	}
	c := *t
	if t.Customer != nil {
		cust := *t.Customer
		c.Customer = &cust
	}
	c.EmployeeID = clonePtr(t.EmployeeID)
	c.EmployeeComment = clonePtr(t.EmployeeComment)
	c.ResponseTime = clonePtr(t.ResponseTime)
	c.ResolveTime = clonePtr(t.ResolveTime)
	c.TurnAroundTime = clonePtr(t.TurnAroundTime)
	c.CustomerRating = clonePtr(t.CustomerRating)
	c.CustomerFeedback = clonePtr(t.CustomerFeedback)
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
