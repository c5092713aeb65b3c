package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/observability"
	"github.com/spec-kit/support-desk/internal/repository"
)

// Notifier sends one e-mail to a customer.
type Notifier interface {
	Notify(ctx context.Context, email, subject, body string) error
}

// NotificationService turns lifecycle events into customer e-mails.
// Delivery is best effort: failures are logged and counted, never returned.
type NotificationService struct {
	dispatcher events.Dispatcher
	customers  repository.CustomerRepository
	notifier   Notifier
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NotificationDependencies bundles collaborators.
type NotificationDependencies struct {
	Dispatcher   events.Dispatcher
	CustomerRepo repository.CustomerRepository
	Notifier     Notifier
	Logger       *zap.Logger
	Metrics      *observability.Metrics
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: deps.Dispatcher,
		customers:  deps.CustomerRepo,
		notifier:   deps.Notifier,
		logger:     logger,
		metrics:    deps.Metrics,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketUpdated, n.handleTicketUpdated)
	n.dispatcher.Subscribe(events.EventTicketClosed, n.handleTicketClosed)
	n.dispatcher.Subscribe(events.EventTicketReopened, n.handleTicketReopened)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return n.badPayload(event)
	}
	customer, ok := n.lookupCustomer(ctx, event, payload.CustomerID)
	if !ok {
		return nil
	}
	subject, body := createdEmail(customer.FirstName, event.TicketID, payload.EmployeeID, payload.Description)
	n.send(ctx, event, customer.Email, subject, body)
	return nil
}

func (n *NotificationService) handleTicketUpdated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketUpdatedPayload)
	if !ok {
		return n.badPayload(event)
	}
	customer, ok := n.lookupCustomer(ctx, event, payload.CustomerID)
	if !ok {
		return nil
	}
	subject, body := updatedEmail(event.TicketID, payload)
	n.send(ctx, event, customer.Email, subject, body)
	return nil
}

func (n *NotificationService) handleTicketClosed(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketClosedPayload)
	if !ok {
		return n.badPayload(event)
	}
	customer, ok := n.lookupCustomer(ctx, event, payload.CustomerID)
	if !ok {
		return nil
	}
	subject, body := closedEmail(event.TicketID, payload.EmployeeComment)
	n.send(ctx, event, customer.Email, subject, body)
	return nil
}

func (n *NotificationService) handleTicketReopened(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketReopenedPayload)
	if !ok {
		return n.badPayload(event)
	}
	customer, ok := n.lookupCustomer(ctx, event, payload.CustomerID)
	if !ok {
		return nil
	}
	subject, body := reopenedEmail(customer.FirstName, event.TicketID, payload.OriginalTicketID, payload.Description)
	n.send(ctx, event, customer.Email, subject, body)
	return nil
}

func (n *NotificationService) lookupCustomer(ctx context.Context, event events.Event, customerID string) (*domain.Customer, bool) {
	customer, err := n.customers.GetByID(ctx, customerID)
	if err != nil {
		n.fail(event, "customer lookup failed", err)
		return nil, false
	}
	return customer, true
}

func (n *NotificationService) send(ctx context.Context, event events.Event, email, subject, body string) {
	if n.notifier == nil {
		return
	}
	if err := n.notifier.Notify(ctx, email, subject, body); err != nil {
		n.fail(event, "notification failed", err)
		return
	}
	n.logger.Debug("notification sent",
		zap.String("event_type", string(event.Type)),
		zap.String("ticket_id", event.TicketID))
}

func (n *NotificationService) fail(event events.Event, msg string, err error) {
	n.metrics.RecordNotificationFailure(string(event.Type))
	n.logger.Warn(msg,
		zap.String("event_type", string(event.Type)),
		zap.String("ticket_id", event.TicketID),
		zap.Error(err))
}

func (n *NotificationService) badPayload(event events.Event) error {
	err := fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	n.fail(event, "notification skipped", err)
	return nil
}

func createdEmail(firstName, ticketID string, employeeID *string, description string) (string, string) {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", firstName)
	b.WriteString("Your ticket has been successfully raised. Our team will get back to you shortly.\n\n")
	b.WriteString("Ticket Details:\n")
	fmt.Fprintf(&b, "Ticket ID: %s\n", ticketID)
	fmt.Fprintf(&b, "Assigned Employee ID: %s\n", deref(employeeID))
	fmt.Fprintf(&b, "Issue: %s\n\n", description)
	b.WriteString("Thank you for contacting us.")
	return "Ticket Raised Successfully", b.String()
}

func updatedEmail(ticketID string, p events.TicketUpdatedPayload) (string, string) {
	var b strings.Builder
	b.WriteString("Dear Customer,\n\n")
	fmt.Fprintf(&b, "Your ticket #%s has been updated:\n", ticketID)
	fmt.Fprintf(&b, " - Status changed from '%s' to '%s'\n", p.OldStatus, p.NewStatus)
	if p.OldType != p.NewType {
		fmt.Fprintf(&b, " - Ticket Type changed from '%s' to '%s'\n", p.OldType, p.NewType)
	}
	fmt.Fprintf(&b, " - Ticket Priority changed to '%s'\n", p.NewPriority)
	b.WriteString("\nThank you for your patience.\n")
	return fmt.Sprintf("Update on Your Ticket #%s", ticketID), b.String()
}

func closedEmail(ticketID string, comment *string) (string, string) {
	text := "No comments provided"
	if comment != nil && strings.TrimSpace(*comment) != "" {
		text = *comment
	}
	var b strings.Builder
	b.WriteString("Dear Customer,\n\n")
	b.WriteString("Your ticket has been successfully closed.\n\n")
	fmt.Fprintf(&b, "Employee Comments: %s\n\n", text)
	b.WriteString("Please provide your feedback on the ticket.\n\n")
	b.WriteString("Thank you for using our service!\n")
	return fmt.Sprintf("Ticket #%s Successfully Closed", ticketID), b.String()
}

func reopenedEmail(firstName, newTicketID, originalTicketID, description string) (string, string) {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", firstName)
	b.WriteString("Your ticket has been successfully reopened. Our team will get back to you shortly.\n\n")
	b.WriteString("Ticket Details:\n")
	fmt.Fprintf(&b, "New Ticket ID: %s\n", newTicketID)
	fmt.Fprintf(&b, "Original Ticket ID: %s\n", originalTicketID)
	fmt.Fprintf(&b, "Issue: %s\n\n", description)
	b.WriteString("Thank you for contacting us.")
	return "Your Ticket has been Reopened Successfully", b.String()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
