package handler

import (
	"strconv"

	"go-pos-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	service service.ReportService
}

func NewReportHandler(s service.ReportService) *ReportHandler {
	return &ReportHandler{service: s}
}

// GetDailyReport returns the totals for one day.
// Query params: day (YYYY-MM-DD, default today)
func (h *ReportHandler) GetDailyReport(c *fiber.Ctx) error {
	report, err := h.service.DailyReport(c.Query("day"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}

// GetMovement returns produced and sold quantities per day for charts.
// Query params: days (default 7, at most 366)
func (h *ReportHandler) GetMovement(c *fiber.Ctx) error {
	days, err := strconv.Atoi(c.Query("days", "7"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "days must be a whole number"})
	}

	data, err := h.service.Movement(days)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"period": days,
		"data":   data,
	})
}
