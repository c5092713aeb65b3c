package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/observability"
	"github.com/spec-kit/support-desk/internal/repository/memory"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(ctx context.Context, email, subject, body string) error {
	args := m.Called(ctx, email, subject, body)
	return args.Error(0)
}

type fixture struct {
	store      *memory.Store
	notifier   *mockNotifier
	metrics    *observability.Metrics
	assignment *AssignmentService
	tickets    *TicketService
	reports    *ReportService
	now        time.Time
}

var baseTime = time.Date(2023, 10, 1, 12, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    memory.NewStore(),
		notifier: &mockNotifier{},
		metrics:  observability.NewMetrics("test"),
		now:      baseTime,
	}
	logger := zap.NewNop()
	dispatcher := events.NewInMemoryDispatcher()

	f.assignment = NewAssignmentService(AssignmentDependencies{
		TicketRepo:   f.store.Tickets(),
		EmployeeRepo: f.store.Employees(),
		Logger:       logger,
		Metrics:      f.metrics,
	})
	f.tickets = NewTicketService(TicketDependencies{
		TicketRepo:   f.store.Tickets(),
		CustomerRepo: f.store.Customers(),
		Assignment:   f.assignment,
		Dispatcher:   dispatcher,
		Logger:       logger,
		Metrics:      f.metrics,
		Clock:        func() time.Time { return f.now },
	})
	f.reports = NewReportService(ReportDependencies{
		ReportRepo:   f.store.Reports(),
		TicketRepo:   f.store.Tickets(),
		EmployeeRepo: f.store.Employees(),
		Logger:       logger,
	})
	NewNotificationService(NotificationDependencies{
		Dispatcher:   dispatcher,
		CustomerRepo: f.store.Customers(),
		Notifier:     f.notifier,
		Logger:       logger,
		Metrics:      f.metrics,
	}).RegisterHandlers()
	return f
}

// acceptNotifications lets any e-mail through; tests assert on specific calls.
func (f *fixture) acceptNotifications() {
	f.notifier.On("Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
}

func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func (f *fixture) customer(t *testing.T) domain.Customer {
	t.Helper()
	return f.store.AddCustomer(domain.Customer{
		FirstName: "Asha",
		LastName:  "Rao",
		Email:     "asha@example.com",
		City:      "Pune",
		State:     "MH",
	})
}

func (f *fixture) employee(t *testing.T, department domain.TicketType) domain.Employee {
	t.Helper()
	return f.store.AddEmployee(domain.Employee{
		FirstName:   "Emp",
		Designation: domain.DesignationEmployee,
		Department:  string(department),
	})
}

func (f *fixture) seedTicket(t *testing.T, ticket domain.Ticket) domain.Ticket {
	t.Helper()
	if ticket.CustomerID == "" {
		ticket.CustomerID = "seed-customer"
	}
	if ticket.RaisedAt.IsZero() {
		ticket.RaisedAt = baseTime
	}
	require.NoError(t, f.store.Tickets().Create(context.Background(), &ticket))
	return ticket
}

func ptr[T any](v T) *T { return &v }
