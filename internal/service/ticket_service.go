package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/observability"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

// TurnAroundUnavailable is returned by CalculateTurnAroundTime when a timestamp is missing.
const TurnAroundUnavailable = "Both startInclusive and endExclusive must not be null"

// Clock returns the current time.
type Clock func() time.Time

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	customers  repository.CustomerRepository
	assignment *AssignmentService
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
	now        Clock
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo   repository.TicketRepository
	CustomerRepo repository.CustomerRepository
	Assignment   *AssignmentService
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
	Metrics      *observability.Metrics
	// Clock defaults to time.Now.
	Clock Clock
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	CustomerID  string
	TicketType  domain.TicketType
	Description string
	// RaisedAt defaults to now.
	RaisedAt *time.Time
}

// TicketPatch carries requested changes; nil fields are left as they are.
// Priority is only compared, never applied: it always follows the type.
type TicketPatch struct {
	Status           *domain.TicketStatus
	TicketType       *domain.TicketType
	Priority         *domain.TicketPriority
	EmployeeComment  *string
	CustomerRating   *int
	CustomerFeedback *string
}

// NewTicketService wires the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		customers:  deps.CustomerRepo,
		assignment: deps.Assignment,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		metrics:    deps.Metrics,
		now:        clock,
	}
}

// CreateTicket raises a PENDING ticket for a customer and assigns an employee.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (ticket *domain.Ticket, err error) {
	defer func() { s.record("create", err) }()

	customerID := strings.TrimSpace(input.CustomerID)
	if customerID == "" {
		return nil, apperrors.NewMissingCustomer()
	}
	input.TicketType = domain.NormalizeTicketType(string(input.TicketType))

	active, err := s.tickets.FindActiveByCustomerAndType(ctx, customerID, input.TicketType)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if len(active) > 0 {
		return nil, apperrors.NewDuplicateTicket(string(input.TicketType))
	}

	raisedAt := s.now()
	if input.RaisedAt != nil {
		raisedAt = *input.RaisedAt
	}

	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewCustomerNotFound(customerID)
		}
		return nil, apperrors.MapError(err)
	}

	employeeID, err := s.assignment.Assign(ctx, input.TicketType)
	if err != nil {
		return nil, err
	}

	ticket = &domain.Ticket{
		CustomerID:  customer.ID,
		Customer:    customer,
		TicketType:  input.TicketType,
		Status:      domain.TicketStatusPending,
		Priority:    domain.AssignPriority(input.TicketType),
		EmployeeID:  &employeeID,
		Description: strings.TrimSpace(input.Description),
		RaisedAt:    raisedAt,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.logger.Info("ticket created",
		zap.String("ticket_id", ticket.ID),
		zap.String("customer_id", ticket.CustomerID),
		zap.String("ticket_type", string(ticket.TicketType)),
		zap.String("employee_id", employeeID))
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			CustomerID:  ticket.CustomerID,
			EmployeeID:  ticket.EmployeeID,
			Description: ticket.Description,
		},
	})
	return ticket, nil
}

// UpdateTicket applies an employee-side change (status, type or priority) or,
// failing that, a customer-side change (rating and feedback).
func (s *TicketService) UpdateTicket(ctx context.Context, ticketID string, patch TicketPatch) (ticket *domain.Ticket, err error) {
	defer func() { s.record("update", err) }()

	ticket, err = s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	var newStatus domain.TicketStatus
	if patch.Status != nil {
		newStatus = domain.NormalizeStatus(string(*patch.Status))
	}
	statusChanged := patch.Status != nil && newStatus != ticket.Status
	var newType domain.TicketType
	if patch.TicketType != nil {
		newType = domain.NormalizeTicketType(string(*patch.TicketType))
	}
	typeChanged := patch.TicketType != nil && newType != ticket.TicketType
	priorityChanged := patch.Priority != nil && domain.NormalizePriority(string(*patch.Priority)) != ticket.Priority
	feedbackChanged := (patch.CustomerRating != nil && !equalPtr(patch.CustomerRating, ticket.CustomerRating)) ||
		(patch.CustomerFeedback != nil && !equalPtr(patch.CustomerFeedback, ticket.CustomerFeedback))

	employeeSide := statusChanged || typeChanged || priorityChanged
	closing := employeeSide && patch.Status != nil && newStatus == domain.TicketStatusClosed
	oldStatus, oldType := ticket.Status, ticket.TicketType

	switch {
	case employeeSide:
		if patch.Status != nil {
			ticket.Status = newStatus
		}
		if typeChanged {
			ticket.TicketType = newType
			ticket.Priority = domain.AssignPriority(ticket.TicketType)
			if err := s.assignment.Reassign(ctx, ticket); err != nil {
				return nil, err
			}
		}
		now := s.now()
		if statusChanged && ticket.ResponseTime == nil {
			ticket.ResponseTime = &now
		}
		if closing {
			ticket.ResolveTime = &now
			turnAround := CalculateTurnAroundTime(&ticket.RaisedAt, ticket.ResolveTime)
			ticket.TurnAroundTime = &turnAround
			if patch.EmployeeComment != nil {
				ticket.EmployeeComment = patch.EmployeeComment
			}
		}
	case feedbackChanged:
		if patch.CustomerRating != nil {
			ticket.CustomerRating = patch.CustomerRating
		}
		if patch.CustomerFeedback != nil {
			ticket.CustomerFeedback = patch.CustomerFeedback
		}
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewTicketNotFound(ticketID)
		}
		return nil, apperrors.MapError(err)
	}

	s.logger.Info("ticket updated",
		zap.String("ticket_id", ticket.ID),
		zap.Bool("employee_side", employeeSide),
		zap.String("old_status", string(oldStatus)),
		zap.String("new_status", string(ticket.Status)))

	if employeeSide && statusChanged {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketUpdated,
			TicketID: ticket.ID,
			Payload: events.TicketUpdatedPayload{
				CustomerID:  ticket.CustomerID,
				OldStatus:   oldStatus,
				NewStatus:   ticket.Status,
				OldType:     oldType,
				NewType:     ticket.TicketType,
				NewPriority: ticket.Priority,
			},
		})
	}
	if closing {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketClosed,
			TicketID: ticket.ID,
			Payload: events.TicketClosedPayload{
				CustomerID:      ticket.CustomerID,
				EmployeeComment: ticket.EmployeeComment,
			},
		})
	}
	return ticket, nil
}

// CloseTicketByCustomer closes a ticket on the customer's request. No
// turnaround time is recorded on this path.
func (s *TicketService) CloseTicketByCustomer(ctx context.Context, ticketID string) (ticket *domain.Ticket, err error) {
	defer func() { s.record("close", err) }()

	ticket, err = s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status == domain.TicketStatusClosed {
		return nil, apperrors.NewInvalidTicketStatus("Ticket is already closed")
	}

	now := s.now()
	ticket.Status = domain.TicketStatusClosed
	ticket.ResolveTime = &now
	if err := s.tickets.Update(ctx, ticket); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewTicketNotFound(ticketID)
		}
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("ticket closed by customer", zap.String("ticket_id", ticket.ID))
	return ticket, nil
}

// ReopenTicket raises a new PENDING ticket from a closed one. The closed
// ticket is left untouched.
func (s *TicketService) ReopenTicket(ctx context.Context, ticketID string) (reopened *domain.Ticket, err error) {
	defer func() { s.record("reopen", err) }()

	original, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if original.Status != domain.TicketStatusClosed {
		return nil, apperrors.NewInvalidTicketStatus("Only closed tickets can be reopened")
	}
	if strings.TrimSpace(string(original.TicketType)) == "" {
		return nil, apperrors.NewInvalidArgument("Ticket type must not be empty",
			map[string]any{"ticket_id": original.ID})
	}

	employeeID, err := s.assignment.AssignByDepartment(ctx, original.TicketType)
	if err != nil {
		return nil, err
	}

	reopened = &domain.Ticket{
		CustomerID:  original.CustomerID,
		TicketType:  original.TicketType,
		Status:      domain.TicketStatusPending,
		Priority:    original.Priority,
		EmployeeID:  &employeeID,
		Description: original.Description,
		RaisedAt:    s.now(),
	}
	if err := s.tickets.Create(ctx, reopened); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.logger.Info("ticket reopened",
		zap.String("ticket_id", reopened.ID),
		zap.String("original_ticket_id", original.ID),
		zap.String("employee_id", employeeID))
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketReopened,
		TicketID: reopened.ID,
		Payload: events.TicketReopenedPayload{
			CustomerID:       reopened.CustomerID,
			OriginalTicketID: original.ID,
			Description:      reopened.Description,
		},
	})
	return reopened, nil
}

// DeleteTicket removes a ticket outright. No event is published.
func (s *TicketService) DeleteTicket(ctx context.Context, ticketID string) (err error) {
	defer func() { s.record("delete", err) }()

	if err := s.tickets.Delete(ctx, ticketID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewTicketNotFound(ticketID)
		}
		return apperrors.MapError(err)
	}
	s.logger.Info("ticket deleted", zap.String("ticket_id", ticketID))
	return nil
}

// GetTicket returns a single ticket.
func (s *TicketService) GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	return s.getTicket(ctx, ticketID)
}

// ListTickets returns every ticket.
func (s *TicketService) ListTickets(ctx context.Context) ([]domain.Ticket, error) {
	tickets, err := s.tickets.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// ListTicketsByCustomer returns the tickets a customer raised.
func (s *TicketService) ListTicketsByCustomer(ctx context.Context, customerID string) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// ListTicketsByEmployee returns the tickets an employee owns.
func (s *TicketService) ListTicketsByEmployee(ctx context.Context, employeeID string) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// CalculateTurnAroundTime renders the time between raise and resolve as
// "<d> days <h> hours <m> min <s> sec". Hours, minutes and seconds are
// remainders, not totals.
func CalculateTurnAroundTime(raisedAt, resolvedAt *time.Time) string {
	if raisedAt == nil || resolvedAt == nil {
		return TurnAroundUnavailable
	}
	d := resolvedAt.Sub(*raisedAt)
	days := int64(d / (24 * time.Hour))
	hours := int64(d/time.Hour) % 24
	minutes := int64(d/time.Minute) % 60
	seconds := int64(d/time.Second) % 60
	return fmt.Sprintf("%d days %d hours %d min %d sec", days, hours, minutes, seconds)
}

func (s *TicketService) getTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewTicketNotFound(ticketID)
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.String("ticket_id", event.TicketID),
			zap.Error(err))
	}
}

func (s *TicketService) record(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = apperrors.ToDomainError(err).Code
	}
	s.metrics.RecordLifecycle(operation, outcome)
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
