package service

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/observability"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

// Assignment tiers, used as metric labels.
const (
	tierTotal      = "total"
	tierOpen       = "open"
	tierLow        = "low"
	tierMedium     = "medium"
	tierRoundRobin = "round_robin"
	tierReassign   = "reassign"
	tierDepartment = "department"
)

// AssignmentService picks the employee that owns a ticket.
type AssignmentService struct {
	tickets   repository.TicketRepository
	employees repository.EmployeeRepository
	logger    *zap.Logger
	metrics   *observability.Metrics

	// rr is the round-robin cursor shared by all fallback decisions.
	rr atomic.Uint64
}

// AssignmentDependencies bundles repositories.
type AssignmentDependencies struct {
	TicketRepo   repository.TicketRepository
	EmployeeRepo repository.EmployeeRepository
	Logger       *zap.Logger
	Metrics      *observability.Metrics
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		tickets:   deps.TicketRepo,
		employees: deps.EmployeeRepo,
		logger:    logger,
		metrics:   deps.Metrics,
	}
}

type countFunc func(ctx context.Context, employeeID string) (int64, error)

// Assign selects a front-line employee of the ticket type's department.
// Candidates are narrowed by total tickets, then OPEN tickets, then LOW and
// MEDIUM priority tickets; a tie that survives every tier is broken round-robin.
func (s *AssignmentService) Assign(ctx context.Context, ticketType domain.TicketType) (string, error) {
	pool, err := s.employees.ListFrontLineByDepartment(ctx, string(ticketType))
	if err != nil {
		return "", apperrors.MapError(err)
	}
	if len(pool) == 0 {
		return "", apperrors.NewNoEligibleEmployee(string(ticketType))
	}

	survivors := employeeIDs(pool)
	tiers := []struct {
		name  string
		count countFunc
	}{
		{tierTotal, s.tickets.CountByEmployee},
		{tierOpen, s.countWithStatus(domain.TicketStatusOpen)},
		{tierLow, s.countWithPriority(domain.TicketPriorityLow)},
		{tierMedium, s.countWithPriority(domain.TicketPriorityMedium)},
	}
	for _, tier := range tiers {
		survivors, err = keepMinimum(ctx, survivors, tier.count)
		if err != nil {
			return "", apperrors.MapError(err)
		}
		if len(survivors) == 1 {
			return s.decide(ticketType, survivors[0], tier.name), nil
		}
	}

	idx := s.rr.Add(1) - 1
	return s.decide(ticketType, survivors[idx%uint64(len(survivors))], tierRoundRobin), nil
}

// Reassign moves ticket to the front-line employee of its current type with
// the fewest tickets. An empty pool leaves the assignment unchanged.
func (s *AssignmentService) Reassign(ctx context.Context, ticket *domain.Ticket) error {
	pool, err := s.employees.ListFrontLineByDepartment(ctx, string(ticket.TicketType))
	if err != nil {
		return apperrors.MapError(err)
	}
	if len(pool) == 0 {
		s.logger.Info("no employees for reassignment; keeping current owner",
			zap.String("ticket_id", ticket.ID),
			zap.String("ticket_type", string(ticket.TicketType)))
		return nil
	}
	id, err := s.leastLoaded(ctx, pool)
	if err != nil {
		return err
	}
	ticket.EmployeeID = &id
	s.decide(ticket.TicketType, id, tierReassign)
	return nil
}

// AssignByDepartment picks the least loaded employee of the department named
// by ticketType, regardless of designation. Used when reopening tickets.
func (s *AssignmentService) AssignByDepartment(ctx context.Context, ticketType domain.TicketType) (string, error) {
	pool, err := s.employees.ListByDepartment(ctx, string(ticketType))
	if err != nil {
		return "", apperrors.MapError(err)
	}
	if len(pool) == 0 {
		return "", apperrors.NewNoEligibleEmployee(string(ticketType))
	}
	id, err := s.leastLoaded(ctx, pool)
	if err != nil {
		return "", err
	}
	return s.decide(ticketType, id, tierDepartment), nil
}

func (s *AssignmentService) leastLoaded(ctx context.Context, pool []domain.Employee) (string, error) {
	survivors, err := keepMinimum(ctx, employeeIDs(pool), s.tickets.CountByEmployee)
	if err != nil {
		return "", apperrors.MapError(err)
	}
	return survivors[0], nil
}

func (s *AssignmentService) decide(ticketType domain.TicketType, employeeID, tier string) string {
	s.metrics.RecordAssignment(tier)
	s.logger.Debug("employee assigned",
		zap.String("ticket_type", string(ticketType)),
		zap.String("employee_id", employeeID),
		zap.String("tier", tier))
	return employeeID
}

func (s *AssignmentService) countWithStatus(status domain.TicketStatus) countFunc {
	return func(ctx context.Context, id string) (int64, error) {
		return s.tickets.CountByEmployeeAndStatus(ctx, id, status)
	}
}

func (s *AssignmentService) countWithPriority(priority domain.TicketPriority) countFunc {
	return func(ctx context.Context, id string) (int64, error) {
		return s.tickets.CountByEmployeeAndPriority(ctx, id, priority)
	}
}

// keepMinimum returns the ids sharing the smallest count, in input order.
func keepMinimum(ctx context.Context, ids []string, count countFunc) ([]string, error) {
	var (
		kept   []string
		lowest int64
	)
	for i, id := range ids {
		n, err := count(ctx, id)
		if err != nil {
			return nil, err
		}
		switch {
		case i == 0 || n < lowest:
			lowest = n
			kept = append(kept[:0], id)
		case n == lowest:
			kept = append(kept, id)
		}
	}
	return kept, nil
}

func employeeIDs(pool []domain.Employee) []string {
	ids := make([]string, len(pool))
	for i, e := range pool {
		ids[i] = e.ID
	}
	return ids
}
