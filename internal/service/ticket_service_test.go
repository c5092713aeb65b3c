package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-desk/internal/domain"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

func TestCreateTicket(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.acceptNotifications()
	customer := f.customer(t)
	employee := f.employee(t, domain.TicketTypeOutage)

	ticket, err := f.tickets.CreateTicket(ctx, TicketCreateInput{
		CustomerID:  customer.ID,
		TicketType:  domain.TicketTypeOutage,
		Description: "  no signal  ",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, ticket.ID)
	assert.Equal(t, domain.TicketStatusPending, ticket.Status)
	assert.Equal(t, domain.TicketPriorityHigh, ticket.Priority)
	assert.Equal(t, "no signal", ticket.Description)
	assert.Equal(t, baseTime, ticket.RaisedAt)
	require.NotNil(t, ticket.EmployeeID)
	assert.Equal(t, employee.ID, *ticket.EmployeeID)
	assert.Nil(t, ticket.ResponseTime)

	stored, err := f.tickets.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.CustomerID, stored.CustomerID)

	f.notifier.AssertCalled(t, "Notify", mock.Anything, customer.Email, "Ticket Raised Successfully",
		mock.MatchedBy(func(body string) bool {
			return strings.Contains(body, "Ticket ID: "+ticket.ID) &&
				strings.Contains(body, "Assigned Employee ID: "+employee.ID)
		}))
}

func TestCreateTicketHonoursRaisedAt(t *testing.T) {
	f := newFixture(t)
	f.acceptNotifications()
	customer := f.customer(t)
	f.employee(t, domain.TicketTypeOther)
	raised := baseTime.Add(-48 * time.Hour)

	ticket, err := f.tickets.CreateTicket(context.Background(), TicketCreateInput{
		CustomerID: customer.ID,
		TicketType: domain.TicketTypeOther,
		RaisedAt:   &raised,
	})
	require.NoError(t, err)
	assert.Equal(t, raised, ticket.RaisedAt)
	assert.Equal(t, domain.TicketPriorityLow, ticket.Priority)
}

func TestCreateTicketRejections(t *testing.T) {
	ctx := context.Background()

	t.Run("missing customer", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.tickets.CreateTicket(ctx, TicketCreateInput{TicketType: domain.TicketTypeOther})
		assert.ErrorIs(t, err, apperrors.ErrMissingCustomer)
	})

	t.Run("unknown customer", func(t *testing.T) {
		f := newFixture(t)
		f.employee(t, domain.TicketTypeOther)
		_, err := f.tickets.CreateTicket(ctx, TicketCreateInput{CustomerID: "ghost", TicketType: domain.TicketTypeOther})
		assert.ErrorIs(t, err, apperrors.ErrCustomerNotFound)
	})

	t.Run("no eligible employee", func(t *testing.T) {
		f := newFixture(t)
		customer := f.customer(t)
		_, err := f.tickets.CreateTicket(ctx, TicketCreateInput{CustomerID: customer.ID, TicketType: domain.TicketTypeOther})
		assert.ErrorIs(t, err, apperrors.ErrNoEligibleEmployee)

		all, err := f.tickets.ListTickets(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	for _, status := range []domain.TicketStatus{domain.TicketStatusPending, domain.TicketStatusOpen} {
		t.Run("duplicate while "+string(status), func(t *testing.T) {
			f := newFixture(t)
			customer := f.customer(t)
			f.employee(t, domain.TicketTypeOutage)
			f.seedTicket(t, domain.Ticket{CustomerID: customer.ID, TicketType: domain.TicketTypeOutage, Status: status})

			_, err := f.tickets.CreateTicket(ctx, TicketCreateInput{CustomerID: customer.ID, TicketType: domain.TicketTypeOutage})
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrDuplicateTicket)
			assert.Contains(t, err.Error(), string(domain.TicketTypeOutage))
		})
	}
}

func TestCreateTicketAllowedAfterClosedTicket(t *testing.T) {
	f := newFixture(t)
	f.acceptNotifications()
	customer := f.customer(t)
	f.employee(t, domain.TicketTypeOutage)
	f.seedTicket(t, domain.Ticket{CustomerID: customer.ID, TicketType: domain.TicketTypeOutage, Status: domain.TicketStatusClosed})

	_, err := f.tickets.CreateTicket(context.Background(), TicketCreateInput{CustomerID: customer.ID, TicketType: domain.TicketTypeOutage})
	assert.NoError(t, err)
}

func TestCreateTicketSurvivesNotifierFailure(t *testing.T) {
	f := newFixture(t)
	f.notifier.On("Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))
	customer := f.customer(t)
	f.employee(t, domain.TicketTypeOther)

	ticket, err := f.tickets.CreateTicket(context.Background(), TicketCreateInput{CustomerID: customer.ID, TicketType: domain.TicketTypeOther})
	require.NoError(t, err)
	assert.NotEmpty(t, ticket.ID)
	f.notifier.AssertNumberOfCalls(t, "Notify", 1)
}

func TestUpdateTicketStatusSetsFirstResponseOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.acceptNotifications()
	customer := f.customer(t)
	seeded := f.seedTicket(t, domain.Ticket{
		CustomerID: customer.ID,
		TicketType: domain.TicketTypeOther,
		Status:     domain.TicketStatusPending,
		Priority:   domain.TicketPriorityLow,
		EmployeeID: ptr("e-1"),
	})

	f.advance(time.Hour)
	updated, err := f.tickets.UpdateTicket(ctx, seeded.ID, TicketPatch{Status: ptr(domain.TicketStatusOpen)})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, updated.Status)
	require.NotNil(t, updated.ResponseTime)
	firstResponse := *updated.ResponseTime
	assert.Equal(t, baseTime.Add(time.Hour), firstResponse)

	f.notifier.AssertCalled(t, "Notify", mock.Anything, customer.Email, "Update on Your Ticket #"+seeded.ID,
		mock.MatchedBy(func(body string) bool {
			return strings.Contains(body, "Status changed from 'PENDING' to 'OPEN'")
		}))

	f.advance(time.Hour)
	updated, err = f.tickets.UpdateTicket(ctx, seeded.ID, TicketPatch{Status: ptr(domain.TicketStatusPending)})
	require.NoError(t, err)
	assert.Equal(t, firstResponse, *updated.ResponseTime)
}

func TestUpdateTicketClosing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.acceptNotifications()
	customer := f.customer(t)
	seeded := f.seedTicket(t, domain.Ticket{
		CustomerID: customer.ID,
		TicketType: domain.TicketTypeOther,
		Status:     domain.TicketStatusOpen,
		EmployeeID: ptr("e-1"),
	})

	f.advance(25*time.Hour + 30*time.Minute + 45*time.Second)
	closed, err := f.tickets.UpdateTicket(ctx, seeded.ID, TicketPatch{
		Status:          ptr(domain.TicketStatus("closed")),
		EmployeeComment: ptr("replaced the router"),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusClosed, closed.Status)
	require.NotNil(t, closed.ResolveTime)
	assert.Equal(t, f.now, *closed.ResolveTime)
	require.NotNil(t, closed.TurnAroundTime)
	assert.Equal(t, "1 days 1 hours 30 min 45 sec", *closed.TurnAroundTime)
	require.NotNil(t, closed.EmployeeComment)
	assert.Equal(t, "replaced the router", *closed.EmployeeComment)

	f.notifier.AssertCalled(t, "Notify", mock.Anything, customer.Email, "Ticket #"+seeded.ID+" Successfully Closed",
		mock.MatchedBy(func(body string) bool {
			return strings.Contains(body, "Employee Comments: replaced the router")
		}))
	f.notifier.AssertNumberOfCalls(t, "Notify", 2)
}

func TestUpdateTicketClosingWithoutCommentKeepsStoredComment(t *testing.T) {
	f := newFixture(t)
	f.acceptNotifications()
	customer := f.customer(t)
	seeded := f.seedTicket(t, domain.Ticket{
		CustomerID:      customer.ID,
		TicketType:      domain.TicketTypeOther,
		Status:          domain.TicketStatusOpen,
		EmployeeID:      ptr("e-1"),
		EmployeeComment: ptr("waiting on parts"),
	})

	closed, err := f.tickets.UpdateTicket(context.Background(), seeded.ID, TicketPatch{Status: ptr(domain.TicketStatusClosed)})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, closed.Status)
	require.NotNil(t, closed.EmployeeComment)
	assert.Equal(t, "waiting on parts", *closed.EmployeeComment)
}

func TestUpdateTicketCommentIgnoredUnlessClosing(t *testing.T) {
	f := newFixture(t)
	f.acceptNotifications()
	seeded := f.seedTicket(t, domain.Ticket{TicketType: domain.TicketTypeOther, Status: domain.TicketStatusPending})

	updated, err := f.tickets.UpdateTicket(context.Background(), seeded.ID, TicketPatch{
		Status:          ptr(domain.TicketStatusOpen),
		EmployeeComment: ptr("looking into it"),
	})
	require.NoError(t, err)
	assert.Nil(t, updated.EmployeeComment)
	assert.Nil(t, updated.ResolveTime)
	assert.Nil(t, updated.TurnAroundTime)
}

func TestUpdateTicketTypeChangeReassigns(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	busy := f.employee(t, domain.TicketTypeOutage)
	free := f.employee(t, domain.TicketTypeOutage)
	f.seedTicket(t, domain.Ticket{EmployeeID: &busy.ID, TicketType: domain.TicketTypeOutage})
	seeded := f.seedTicket(t, domain.Ticket{
		TicketType: domain.TicketTypeOther,
		Status:     domain.TicketStatusPending,
		Priority:   domain.TicketPriorityLow,
		EmployeeID: ptr("e-other"),
	})

	updated, err := f.tickets.UpdateTicket(ctx, seeded.ID, TicketPatch{TicketType: ptr(domain.TicketTypeOutage)})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketTypeOutage, updated.TicketType)
	assert.Equal(t, domain.TicketPriorityHigh, updated.Priority)
	assert.Equal(t, free.ID, *updated.EmployeeID)
	assert.Nil(t, updated.ResponseTime)

	// No status change, so no e-mail.
	f.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateTicketTypeChangeIgnoresCase(t *testing.T) {
	f := newFixture(t)
	support := f.employee(t, domain.TicketTypeTechnicalSupport)
	seeded := f.seedTicket(t, domain.Ticket{
		TicketType: domain.TicketTypeOutage,
		Status:     domain.TicketStatusPending,
		Priority:   domain.TicketPriorityHigh,
		EmployeeID: ptr("e-outage"),
	})

	updated, err := f.tickets.UpdateTicket(context.Background(), seeded.ID, TicketPatch{TicketType: ptr(domain.TicketType("technical_support"))})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketTypeTechnicalSupport, updated.TicketType)
	assert.Equal(t, domain.TicketPriorityMedium, updated.Priority)
	assert.Equal(t, support.ID, *updated.EmployeeID)

	same, err := f.tickets.UpdateTicket(context.Background(), seeded.ID, TicketPatch{TicketType: ptr(domain.TicketType("Technical_Support"))})
	require.NoError(t, err)
	assert.Equal(t, support.ID, *same.EmployeeID)
	assert.Nil(t, same.ResponseTime)
}

func TestUpdateTicketTypeChangeWithEmptyPoolKeepsOwner(t *testing.T) {
	f := newFixture(t)
	seeded := f.seedTicket(t, domain.Ticket{TicketType: domain.TicketTypeOther, EmployeeID: ptr("e-1")})

	updated, err := f.tickets.UpdateTicket(context.Background(), seeded.ID, TicketPatch{TicketType: ptr(domain.TicketTypeBillingAndAccounts)})
	require.NoError(t, err)
	assert.Equal(t, "e-1", *updated.EmployeeID)
	assert.Equal(t, domain.TicketPriorityLow, updated.Priority)
}

func TestUpdateTicketCustomerFeedback(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	seeded := f.seedTicket(t, domain.Ticket{TicketType: domain.TicketTypeOther, Status: domain.TicketStatusClosed})

	updated, err := f.tickets.UpdateTicket(ctx, seeded.ID, TicketPatch{
		Status:           ptr(domain.TicketStatusClosed),
		CustomerRating:   ptr(4),
		CustomerFeedback: ptr("quick fix"),
	})
	require.NoError(t, err)
	assert.Equal(t, 4, *updated.CustomerRating)
	assert.Equal(t, "quick fix", *updated.CustomerFeedback)
	assert.Nil(t, updated.ResolveTime)

	stored, err := f.tickets.GetTicket(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, *stored.CustomerRating)
	f.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateTicketEmployeeSideWins(t *testing.T) {
	f := newFixture(t)
	f.acceptNotifications()
	seeded := f.seedTicket(t, domain.Ticket{TicketType: domain.TicketTypeOther, Status: domain.TicketStatusPending})

	updated, err := f.tickets.UpdateTicket(context.Background(), seeded.ID, TicketPatch{
		Status:         ptr(domain.TicketStatusOpen),
		CustomerRating: ptr(5),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, updated.Status)
	assert.Nil(t, updated.CustomerRating)
}

func TestUpdateTicketNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.tickets.UpdateTicket(context.Background(), "missing", TicketPatch{Status: ptr(domain.TicketStatusOpen)})
	assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)
}

func TestCloseTicketByCustomer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	seeded := f.seedTicket(t, domain.Ticket{TicketType: domain.TicketTypeOther, Status: domain.TicketStatusOpen})

	f.advance(time.Hour)
	closed, err := f.tickets.CloseTicketByCustomer(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, closed.Status)
	assert.Equal(t, f.now, *closed.ResolveTime)
	assert.Nil(t, closed.TurnAroundTime)

	_, err = f.tickets.CloseTicketByCustomer(ctx, seeded.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTicketStatus)

	_, err = f.tickets.CloseTicketByCustomer(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)

	f.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReopenTicket(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.acceptNotifications()
	customer := f.customer(t)
	manager := f.store.AddEmployee(domain.Employee{Designation: "Manager", Department: string(domain.TicketTypeTechnicalSupport)})
	original := f.seedTicket(t, domain.Ticket{
		CustomerID:  customer.ID,
		TicketType:  domain.TicketTypeTechnicalSupport,
		Status:      domain.TicketStatusClosed,
		Priority:    domain.TicketPriorityMedium,
		Description: "slow line",
		EmployeeID:  ptr("e-old"),
	})

	f.advance(time.Hour)
	reopened, err := f.tickets.ReopenTicket(ctx, original.ID)
	require.NoError(t, err)

	assert.NotEqual(t, original.ID, reopened.ID)
	assert.Equal(t, domain.TicketStatusPending, reopened.Status)
	assert.Equal(t, customer.ID, reopened.CustomerID)
	assert.Equal(t, domain.TicketTypeTechnicalSupport, reopened.TicketType)
	assert.Equal(t, domain.TicketPriorityMedium, reopened.Priority)
	assert.Equal(t, "slow line", reopened.Description)
	assert.Equal(t, f.now, reopened.RaisedAt)
	assert.Equal(t, manager.ID, *reopened.EmployeeID)

	stored, err := f.tickets.GetTicket(ctx, original.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, stored.Status)
	assert.Equal(t, "e-old", *stored.EmployeeID)

	f.notifier.AssertCalled(t, "Notify", mock.Anything, customer.Email, "Your Ticket has been Reopened Successfully",
		mock.MatchedBy(func(body string) bool {
			return strings.Contains(body, "New Ticket ID: "+reopened.ID) &&
				strings.Contains(body, "Original Ticket ID: "+original.ID)
		}))
}

func TestReopenTicketRejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	open := f.seedTicket(t, domain.Ticket{TicketType: domain.TicketTypeOther, Status: domain.TicketStatusOpen})
	untyped := f.seedTicket(t, domain.Ticket{Status: domain.TicketStatusClosed})
	unstaffed := f.seedTicket(t, domain.Ticket{TicketType: domain.TicketTypeOther, Status: domain.TicketStatusClosed})

	_, err := f.tickets.ReopenTicket(ctx, open.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTicketStatus)

	_, err = f.tickets.ReopenTicket(ctx, untyped.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)

	_, err = f.tickets.ReopenTicket(ctx, unstaffed.ID)
	assert.ErrorIs(t, err, apperrors.ErrNoEligibleEmployee)

	_, err = f.tickets.ReopenTicket(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)
}

func TestDeleteTicket(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	seeded := f.seedTicket(t, domain.Ticket{TicketType: domain.TicketTypeOther})

	require.NoError(t, f.tickets.DeleteTicket(ctx, seeded.ID))
	_, err := f.tickets.GetTicket(ctx, seeded.ID)
	assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)
	assert.ErrorIs(t, f.tickets.DeleteTicket(ctx, seeded.ID), apperrors.ErrTicketNotFound)
}

func TestListTicketsByOwner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	first := f.seedTicket(t, domain.Ticket{CustomerID: "c-1", EmployeeID: ptr("e-1")})
	f.seedTicket(t, domain.Ticket{CustomerID: "c-2", EmployeeID: ptr("e-2")})
	third := f.seedTicket(t, domain.Ticket{CustomerID: "c-1", EmployeeID: ptr("e-2")})

	byCustomer, err := f.tickets.ListTicketsByCustomer(ctx, "c-1")
	require.NoError(t, err)
	require.Len(t, byCustomer, 2)
	assert.Equal(t, first.ID, byCustomer[0].ID)
	assert.Equal(t, third.ID, byCustomer[1].ID)

	byEmployee, err := f.tickets.ListTicketsByEmployee(ctx, "e-1")
	require.NoError(t, err)
	require.Len(t, byEmployee, 1)
	assert.Equal(t, first.ID, byEmployee[0].ID)
}

func TestCalculateTurnAroundTime(t *testing.T) {
	start := time.Date(2023, 10, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		raised   *time.Time
		resolved *time.Time
		want     string
	}{
		{"over a day", &start, ptr(time.Date(2023, 10, 2, 13, 30, 45, 0, time.UTC)), "1 days 1 hours 30 min 45 sec"},
		{"one hour", &start, ptr(start.Add(time.Hour)), "0 days 1 hours 0 min 0 sec"},
		{"same instant", &start, &start, "0 days 0 hours 0 min 0 sec"},
		{"missing resolve", &start, nil, TurnAroundUnavailable},
		{"missing raise", nil, &start, TurnAroundUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateTurnAroundTime(tt.raised, tt.resolved))
		})
	}
}
