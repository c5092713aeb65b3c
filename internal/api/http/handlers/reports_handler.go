package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/dto"
	"github.com/spec-kit/support-desk/internal/service"
)

// ReportsHandler serves aggregate ticket metrics.
type ReportsHandler struct {
	service *service.ReportService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reportService *service.ReportService) *ReportsHandler {
	return &ReportsHandler{service: reportService}
}

// ByCity GET /reports/tickets/by-city.
func (h *ReportsHandler) ByCity(c *fiber.Ctx) error {
	rows, err := h.service.TicketCountByCity(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": rows})
}

// ByState GET /reports/tickets/by-state.
func (h *ReportsHandler) ByState(c *fiber.Ctx) error {
	rows, err := h.service.TicketCountByState(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": rows})
}

// ByDepartment GET /reports/tickets/by-department.
func (h *ReportsHandler) ByDepartment(c *fiber.Ctx) error {
	rows, err := h.service.TicketCountByDepartment(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": rows})
}

// StatusCounts GET /reports/tickets/status-counts.
func (h *ReportsHandler) StatusCounts(c *fiber.Ctx) error {
	counts, err := h.service.StatusCounts(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": counts})
}

// OutageHotspots GET /reports/outages/hotspots.
func (h *ReportsHandler) OutageHotspots(c *fiber.Ctx) error {
	rows, err := h.service.OutageHotspots(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": rows})
}

// ManagerTicketCount GET /reports/managers/:id/ticket-count.
func (h *ReportsHandler) ManagerTicketCount(c *fiber.Ctx) error {
	n, err := h.service.TicketCountForManager(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.CountResponse{Count: n}})
}

// ManagerResponseTime GET /reports/managers/:id/response-time.
func (h *ReportsHandler) ManagerResponseTime(c *fiber.Ctx) error {
	rows, err := h.service.AvgResponseTimeByManager(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": rows})
}

// ManagerResolutionTime GET /reports/managers/:id/resolution-time.
func (h *ReportsHandler) ManagerResolutionTime(c *fiber.Ctx) error {
	rows, err := h.service.AvgResolutionTimeByManager(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": rows})
}

// EmployeeResponseTime GET /reports/employees/:id/response-time.
func (h *ReportsHandler) EmployeeResponseTime(c *fiber.Ctx) error {
	rows, err := h.service.AvgResponseTimeForEmployee(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": rows})
}

// EmployeeMonthlyResolution GET /reports/employees/:id/resolution-time/monthly.
func (h *ReportsHandler) EmployeeMonthlyResolution(c *fiber.Ctx) error {
	rows, err := h.service.AvgResolutionTimeByMonth(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": rows})
}
