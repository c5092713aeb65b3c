package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

// outageHotspotThreshold is the ticket count a location must exceed to be reported.
const outageHotspotThreshold = 2

// ReportService derives aggregate metrics from stored tickets.
type ReportService struct {
	reports   repository.ReportRepository
	tickets   repository.TicketRepository
	employees repository.EmployeeRepository
	logger    *zap.Logger
}

// ReportDependencies bundles repositories.
type ReportDependencies struct {
	ReportRepo   repository.ReportRepository
	TicketRepo   repository.TicketRepository
	EmployeeRepo repository.EmployeeRepository
	Logger       *zap.Logger
}

// NewReportService creates the service.
func NewReportService(deps ReportDependencies) *ReportService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		reports:   deps.ReportRepo,
		tickets:   deps.TicketRepo,
		employees: deps.EmployeeRepo,
		logger:    logger,
	}
}

// TicketCountByCity counts tickets per customer city.
func (s *ReportService) TicketCountByCity(ctx context.Context) ([]domain.ReportRow, error) {
	rows, err := s.reports.CountByCity(ctx)
	return rows, apperrors.MapError(err)
}

// TicketCountByState counts tickets per customer state.
func (s *ReportService) TicketCountByState(ctx context.Context) ([]domain.ReportRow, error) {
	rows, err := s.reports.CountByState(ctx)
	return rows, apperrors.MapError(err)
}

// TicketCountByDepartment counts tickets per assigned employee department.
func (s *ReportService) TicketCountByDepartment(ctx context.Context) ([]domain.ReportRow, error) {
	rows, err := s.reports.CountByDepartment(ctx)
	return rows, apperrors.MapError(err)
}

// TicketCountForManager counts tickets owned by the manager's reports.
func (s *ReportService) TicketCountForManager(ctx context.Context, managerID string) (int64, error) {
	n, err := s.reports.CountByManager(ctx, managerID)
	return n, apperrors.MapError(err)
}

// OutageHotspots lists customer locations with an unusual number of unresolved outages.
func (s *ReportService) OutageHotspots(ctx context.Context) ([]domain.ReportRow, error) {
	rows, err := s.reports.OutageHotspots(ctx, outageHotspotThreshold)
	return rows, apperrors.MapError(err)
}

// StatusCounts counts tickets per lifecycle status.
func (s *ReportService) StatusCounts(ctx context.Context) (domain.StatusCounts, error) {
	var counts domain.StatusCounts
	for _, c := range []struct {
		status domain.TicketStatus
		dst    *int64
	}{
		{domain.TicketStatusOpen, &counts.OpenCount},
		{domain.TicketStatusClosed, &counts.ClosedCount},
		{domain.TicketStatusPending, &counts.PendingCount},
	} {
		n, err := s.tickets.CountByStatus(ctx, c.status)
		if err != nil {
			return domain.StatusCounts{}, apperrors.MapError(err)
		}
		*c.dst = n
	}
	return counts, nil
}

// AvgResponseTimeByManager averages first-response delay in seconds per
// employee reporting to managerID.
func (s *ReportService) AvgResponseTimeByManager(ctx context.Context, managerID string) ([]domain.ReportRow, error) {
	tickets, err := s.managerTickets(ctx, managerID)
	if err != nil {
		return nil, err
	}
	return perEmployeeAverages(tickets, managerID, "avgResponseTime", responseDelay, time.Second), nil
}

// AvgResolutionTimeByManager averages resolution time in minutes per employee
// reporting to managerID, over closed tickets.
func (s *ReportService) AvgResolutionTimeByManager(ctx context.Context, managerID string) ([]domain.ReportRow, error) {
	tickets, err := s.managerTickets(ctx, managerID)
	if err != nil {
		return nil, err
	}
	return perEmployeeAverages(tickets, managerID, "avgResolutionTime", resolutionDelay, time.Minute), nil
}

// AvgResponseTimeForEmployee averages first-response delay in minutes.
func (s *ReportService) AvgResponseTimeForEmployee(ctx context.Context, employeeID string) ([]domain.ReportRow, error) {
	tickets, err := s.tickets.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	rows := perEmployeeAverages(tickets, "", "avgResponseTime", responseDelay, time.Minute)
	for _, row := range rows {
		delete(row, "managerId")
	}
	return rows, nil
}

// AvgResolutionTimeByMonth averages resolution time in seconds per raise month.
func (s *ReportService) AvgResolutionTimeByMonth(ctx context.Context, employeeID string) ([]domain.ReportRow, error) {
	tickets, err := s.tickets.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return monthlyResolutionAverages(tickets), nil
}

func (s *ReportService) managerTickets(ctx context.Context, managerID string) ([]domain.Ticket, error) {
	employees, err := s.employees.ListByManager(ctx, managerID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if len(employees) == 0 {
		return nil, nil
	}
	tickets, err := s.tickets.ListByEmployees(ctx, employeeIDs(employees))
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// delayFunc returns the measured duration of a ticket, or false when the
// ticket has no sample.
type delayFunc func(t domain.Ticket) (time.Duration, bool)

func responseDelay(t domain.Ticket) (time.Duration, bool) {
	if t.ResponseTime == nil {
		return 0, false
	}
	return t.ResponseTime.Sub(t.RaisedAt), true
}

func resolutionDelay(t domain.Ticket) (time.Duration, bool) {
	if t.Status != domain.TicketStatusClosed || t.ResolveTime == nil {
		return 0, false
	}
	return t.ResolveTime.Sub(t.RaisedAt), true
}

type average struct {
	sum time.Duration
	n   int
}

func (a *average) add(d time.Duration) {
	a.sum += d
	a.n++
}

func (a average) in(unit time.Duration) float64 {
	return float64(a.sum) / float64(a.n) / float64(unit)
}

// perEmployeeAverages groups samples by owning employee in first-appearance
// order. Employees without samples are omitted.
func perEmployeeAverages(tickets []domain.Ticket, managerID, key string, delay delayFunc, unit time.Duration) []domain.ReportRow {
	var order []string
	groups := make(map[string]*average)
	for _, t := range tickets {
		if t.EmployeeID == nil {
			continue
		}
		d, ok := delay(t)
		if !ok {
			continue
		}
		id := *t.EmployeeID
		g, seen := groups[id]
		if !seen {
			g = &average{}
			groups[id] = g
			order = append(order, id)
		}
		g.add(d)
	}

	rows := make([]domain.ReportRow, 0, len(order))
	for _, id := range order {
		rows = append(rows, domain.ReportRow{
			"employeeId": id,
			"managerId":  managerID,
			key:          groups[id].in(unit),
		})
	}
	return rows
}

func monthlyResolutionAverages(tickets []domain.Ticket) []domain.ReportRow {
	type month struct {
		year  int
		month time.Month
	}
	var order []month
	groups := make(map[month]*average)
	for _, t := range tickets {
		d, ok := resolutionDelay(t)
		if !ok {
			continue
		}
		k := month{year: t.RaisedAt.Year(), month: t.RaisedAt.Month()}
		g, seen := groups[k]
		if !seen {
			g = &average{}
			groups[k] = g
			order = append(order, k)
		}
		g.add(d)
	}

	rows := make([]domain.ReportRow, 0, len(order))
	for _, k := range order {
		rows = append(rows, domain.ReportRow{
			"month":             int(k.month),
			"year":              k.year,
			"avgResolutionTime": groups[k].in(time.Second),
		})
	}
	return rows
}
