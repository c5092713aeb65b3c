package service

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
)

func TestCreatedEmail(t *testing.T) {
	subject, body := createdEmail("Asha", "t-1", ptr("e-9"), "no signal")
	assert.Equal(t, "Ticket Raised Successfully", subject)
	assert.Equal(t, "Dear Asha,\n\n"+
		"Your ticket has been successfully raised. Our team will get back to you shortly.\n\n"+
		"Ticket Details:\n"+
		"Ticket ID: t-1\n"+
		"Assigned Employee ID: e-9\n"+
		"Issue: no signal\n\n"+
		"Thank you for contacting us.", body)
}

func TestUpdatedEmail(t *testing.T) {
	payload := events.TicketUpdatedPayload{
		OldStatus:   domain.TicketStatusPending,
		NewStatus:   domain.TicketStatusOpen,
		OldType:     domain.TicketTypeOther,
		NewType:     domain.TicketTypeOther,
		NewPriority: domain.TicketPriorityLow,
	}
	subject, body := updatedEmail("t-1", payload)
	assert.Equal(t, "Update on Your Ticket #t-1", subject)
	assert.Equal(t, "Dear Customer,\n\n"+
		"Your ticket #t-1 has been updated:\n"+
		" - Status changed from 'PENDING' to 'OPEN'\n"+
		" - Ticket Priority changed to 'LOW'\n"+
		"\nThank you for your patience.\n", body)

	payload.NewType = domain.TicketTypeOutage
	payload.NewPriority = domain.TicketPriorityHigh
	_, body = updatedEmail("t-1", payload)
	assert.Contains(t, body, " - Ticket Type changed from 'OTHER' to 'OUTAGE'\n")
	assert.Contains(t, body, " - Ticket Priority changed to 'HIGH'\n")
}

func TestClosedEmail(t *testing.T) {
	subject, body := closedEmail("t-1", nil)
	assert.Equal(t, "Ticket #t-1 Successfully Closed", subject)
	assert.Equal(t, "Dear Customer,\n\n"+
		"Your ticket has been successfully closed.\n\n"+
		"Employee Comments: No comments provided\n\n"+
		"Please provide your feedback on the ticket.\n\n"+
		"Thank you for using our service!\n", body)

	_, body = closedEmail("t-1", ptr("done"))
	assert.Contains(t, body, "Employee Comments: done\n")
}

func TestReopenedEmail(t *testing.T) {
	subject, body := reopenedEmail("Asha", "t-2", "t-1", "no signal")
	assert.Equal(t, "Your Ticket has been Reopened Successfully", subject)
	assert.True(t, strings.HasPrefix(body, "Dear Asha,\n\nYour ticket has been successfully reopened."))
	assert.Contains(t, body, "New Ticket ID: t-2\nOriginal Ticket ID: t-1\nIssue: no signal\n\n")
}

func TestNotificationFailuresAreSwallowedAndCounted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	dispatcher := events.NewInMemoryDispatcher()
	NewNotificationService(NotificationDependencies{
		Dispatcher:   dispatcher,
		CustomerRepo: f.store.Customers(),
		Notifier:     f.notifier,
		Metrics:      f.metrics,
	}).RegisterHandlers()

	// Unknown customer: lookup fails, nothing is sent.
	err := dispatcher.Publish(ctx, events.Event{
		Type:     events.EventTicketClosed,
		TicketID: "t-1",
		Payload:  events.TicketClosedPayload{CustomerID: "ghost"},
	})
	require.NoError(t, err)
	f.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	// Wrong payload type.
	err = dispatcher.Publish(ctx, events.Event{Type: events.EventTicketCreated, TicketID: "t-1", Payload: "bogus"})
	require.NoError(t, err)

	series, err := testutil.GatherAndCount(f.metrics.Registry(), "test_notification_failures_total")
	require.NoError(t, err)
	assert.Equal(t, 2, series)
}
