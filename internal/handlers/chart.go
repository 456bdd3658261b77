package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spcgrid/spcgrid/internal/models"
)

// ComputeChart handles chart computation requests
// POST /v1/charts/:type
func (h *Handler) ComputeChart(c *fiber.Ctx) error {
	chartType := c.Params("type")

	var body models.ChartRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_JSON",
				Message: "Failed to parse JSON body",
				Details: map[string]interface{}{"error": err.Error()},
			},
		})
	}

	resp, err := h.chartService.Compute(c.UserContext(), chartType, &body)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// ListChartTypes handles chart type listing requests
// GET /v1/charts/types
func (h *Handler) ListChartTypes(c *fiber.Ctx) error {
	return c.JSON(h.chartService.ChartTypes())
}

// ListRules handles control rule listing requests
// GET /v1/rules
func (h *Handler) ListRules(c *fiber.Ctx) error {
	return c.JSON(h.chartService.Rules())
}
