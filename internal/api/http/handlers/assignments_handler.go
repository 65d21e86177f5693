package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-service/internal/api/dto"
	"github.com/spec-kit/sla-service/internal/auth"
	"github.com/spec-kit/sla-service/internal/service"
	apperrors "github.com/spec-kit/sla-service/pkg/util/errorutil"
)

// AssignmentsHandler manages the assignment lifecycle endpoints.
type AssignmentsHandler struct {
	service *service.AssignmentService
}

// NewAssignmentsHandler constructs handler.
func NewAssignmentsHandler(assignmentService *service.AssignmentService) *AssignmentsHandler {
	return &AssignmentsHandler{service: assignmentService}
}

// Assign POST /tickets/:id/assign.
func (h *AssignmentsHandler) Assign(c *fiber.Ctx) error {
	actor, ok := auth.AgentFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("agent required")
	}
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	assignment, err := h.service.Assign(c.Context(), c.Params("id"), req.AgentID, actor.ID, req.Note)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.AssignmentFromDomain(assignment)})
}

// Transfer POST /tickets/:id/transfer.
func (h *AssignmentsHandler) Transfer(c *fiber.Ctx) error {
	actor, ok := auth.AgentFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("agent required")
	}
	var req dto.TransferRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	assignment, err := h.service.Transfer(c.Context(), c.Params("id"), req.ToAgentID, actor.ID, req.Note)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AssignmentFromDomain(assignment)})
}

// Close POST /tickets/:id/close.
func (h *AssignmentsHandler) Close(c *fiber.Ctx) error {
	actor, ok := auth.AgentFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("agent required")
	}
	var req dto.CloseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	if err := h.service.Close(c.Context(), c.Params("id"), req.Outcome, actor.ID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"ticket_id": c.Params("id"), "outcome": req.Outcome}})
}

// History GET /tickets/:id/history.
func (h *AssignmentsHandler) History(c *fiber.Ctx) error {
	records, err := h.service.History(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.AssignmentHistoryEntry, 0, len(records))
	for i := range records {
		items = append(items, dto.HistoryFromDomain(&records[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
