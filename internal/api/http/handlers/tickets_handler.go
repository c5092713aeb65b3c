package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/dto"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/service"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

// TicketsHandler exposes the ticket lifecycle.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidArgument("invalid payload", nil)
	}
	ticketType := domain.NormalizeTicketType(string(req.TicketType))
	if ticketType == "" {
		return apperrors.NewInvalidArgument("ticket_type required", nil)
	}

	ticket, err := h.service.CreateTicket(c.UserContext(), service.TicketCreateInput{
		CustomerID:  req.CustomerID,
		TicketType:  ticketType,
		Description: req.Description,
		RaisedAt:    req.RaisedAt,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	tickets, err := h.service.ListTickets(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketPage(tickets, parseTicketQuery(c))})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.service.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// UpdateTicket PUT /tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidArgument("invalid payload", nil)
	}
	patch := service.TicketPatch{
		EmployeeComment:  req.EmployeeComment,
		CustomerRating:   req.CustomerRating,
		CustomerFeedback: req.CustomerFeedback,
	}
	if req.Status != nil {
		status := domain.NormalizeStatus(*req.Status)
		patch.Status = &status
	}
	if req.TicketType != nil {
		ticketType := domain.NormalizeTicketType(string(*req.TicketType))
		if ticketType == "" {
			return apperrors.NewInvalidArgument("ticket_type must not be blank", nil)
		}
		patch.TicketType = &ticketType
	}
	if req.Priority != nil {
		priority := domain.NormalizePriority(string(*req.Priority))
		patch.Priority = &priority
	}
	ticket, err := h.service.UpdateTicket(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// CloseTicket POST /tickets/:id/close.
func (h *TicketsHandler) CloseTicket(c *fiber.Ctx) error {
	ticket, err := h.service.CloseTicketByCustomer(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// ReopenTicket POST /tickets/:id/reopen.
func (h *TicketsHandler) ReopenTicket(c *fiber.Ctx) error {
	ticket, err := h.service.ReopenTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// DeleteTicket DELETE /tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	if err := h.service.DeleteTicket(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListCustomerTickets GET /customers/:id/tickets.
func (h *TicketsHandler) ListCustomerTickets(c *fiber.Ctx) error {
	tickets, err := h.service.ListTicketsByCustomer(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketPage(tickets, parseTicketQuery(c))})
}

// ListEmployeeTickets GET /employees/:id/tickets.
func (h *TicketsHandler) ListEmployeeTickets(c *fiber.Ctx) error {
	tickets, err := h.service.ListTicketsByEmployee(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketPage(tickets, parseTicketQuery(c))})
}

func parseTicketQuery(c *fiber.Ctx) dto.TicketListQuery {
	query := dto.TicketListQuery{
		Page:     parseInt(c.Query("page"), 1),
		PageSize: parseInt(c.Query("page_size"), 0),
	}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			query.Statuses = append(query.Statuses, domain.NormalizeStatus(part))
		}
	}
	return query
}

// ticketPage filters by status and slices one page. A zero page size
// returns every match.
func ticketPage(tickets []domain.Ticket, query dto.TicketListQuery) []dto.TicketResponse {
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		if len(query.Statuses) > 0 && !containsStatus(query.Statuses, tickets[i].Status) {
			continue
		}
		items = append(items, dto.NewTicketResponse(&tickets[i]))
	}
	if query.PageSize <= 0 {
		return items
	}
	start := (query.Page - 1) * query.PageSize
	if start >= len(items) {
		return []dto.TicketResponse{}
	}
	end := start + query.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func containsStatus(statuses []domain.TicketStatus, s domain.TicketStatus) bool {
	for _, candidate := range statuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
