package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/eservicedesk/internal/api/dto"
	"github.com/spec-kit/eservicedesk/internal/domain"
	"github.com/spec-kit/eservicedesk/internal/service"
	apperrors "github.com/spec-kit/eservicedesk/pkg/util"
)

// TechnicianHandler exposes the local duty board.
type TechnicianHandler struct {
	technicians *service.TechnicianService
}

// NewTechnicianHandler constructs handler.
func NewTechnicianHandler(technicians *service.TechnicianService) *TechnicianHandler {
	return &TechnicianHandler{technicians: technicians}
}

// List GET /api/technician-status.
func (h *TechnicianHandler) List(c *fiber.Ctx) error {
	board, err := h.technicians.ListBoard(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.TechnicianStatusResponse, 0, len(board))
	for i := range board {
		items = append(items, technicianStatusResponse(&board[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Upsert POST /api/technician-status.
func (h *TechnicianHandler) Upsert(c *fiber.Ctx) error {
	var req dto.TechnicianStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	status := domain.TechnicianStatus{
		TeknisiID: req.TeknisiID,
		Nama:      req.Nama,
		Bidang:    req.Bidang,
		OnDuty:    req.OnDuty,
		Note:      req.Note,
	}
	if err := h.technicians.UpsertBoardEntry(c.Context(), &status); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": technicianStatusResponse(&status)})
}

// SetDuty PATCH /api/technician-status/:id/duty.
func (h *TechnicianHandler) SetDuty(c *fiber.Ctx) error {
	var req dto.DutyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.technicians.SetDuty(c.Context(), c.Params("id"), req.OnDuty, req.Note); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"updated": true}})
}

func technicianStatusResponse(status *domain.TechnicianStatus) dto.TechnicianStatusResponse {
	return dto.TechnicianStatusResponse{
		ID:        status.ID,
		TeknisiID: status.TeknisiID,
		Nama:      status.Nama,
		Bidang:    status.Bidang,
		OnDuty:    status.OnDuty,
		Note:      status.Note,
		UpdatedAt: status.UpdatedAt,
	}
}
