package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-service/internal/api/dto"
	"github.com/spec-kit/sla-service/internal/configstore"
	"github.com/spec-kit/sla-service/internal/service"
	apperrors "github.com/spec-kit/sla-service/pkg/util/errorutil"
)

// SLAHandler exposes SLA verdicts, the consolidated metrics snapshot and
// configuration cache control.
type SLAHandler struct {
	slaService     *service.SLAService
	metricsService *service.MetricsService
	slaConfig      *configstore.Store
	defaultWindow  int
}

// NewSLAHandler constructs handler.
func NewSLAHandler(slaService *service.SLAService, metricsService *service.MetricsService, slaConfig *configstore.Store, defaultWindowDays int) *SLAHandler {
	return &SLAHandler{
		slaService:     slaService,
		metricsService: metricsService,
		slaConfig:      slaConfig,
		defaultWindow:  defaultWindowDays,
	}
}

// TicketSLA GET /tickets/:id/sla.
func (h *SLAHandler) TicketSLA(c *fiber.Ctx) error {
	report, err := h.slaService.EvaluateTicket(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SLAReportFromService(report)})
}

// Metrics GET /metrics/sla.
func (h *SLAHandler) Metrics(c *fiber.Ctx) error {
	windowDays := h.defaultWindow
	if raw := c.Query("window_days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return apperrors.NewValidationError("window_days must be a positive integer", nil)
		}
		windowDays = n
	}
	snapshot, err := h.metricsService.Consolidate(c.Context(), windowDays)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": snapshot})
}

// InvalidateConfig POST /admin/sla-config/invalidate. Forces the next SLA
// computation to reload policy and calendar from storage.
func (h *SLAHandler) InvalidateConfig(c *fiber.Ctx) error {
	h.slaConfig.Invalidate()
	h.metricsService.InvalidateCache(c.Context())
	return c.JSON(fiber.Map{"data": fiber.Map{"invalidated": true}})
}
