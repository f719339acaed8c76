package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/eservicedesk/internal/api/dto"
	"github.com/spec-kit/eservicedesk/internal/auth"
	"github.com/spec-kit/eservicedesk/internal/domain"
	"github.com/spec-kit/eservicedesk/internal/service"
	apperrors "github.com/spec-kit/eservicedesk/pkg/util"
)

// LogbookHandler manages local pre-ticket records.
type LogbookHandler struct {
	logbook *service.LogbookService
}

// NewLogbookHandler constructs handler.
func NewLogbookHandler(logbook *service.LogbookService) *LogbookHandler {
	return &LogbookHandler{logbook: logbook}
}

// Create POST /api/logbook.
func (h *LogbookHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.LogbookRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	entry, err := h.logbook.Create(c.Context(), principal.User.ID, service.LogbookCreateInput{
		Extensi: req.Extensi,
		Nama:    req.Nama,
		Lokasi:  req.Lokasi,
		Catatan: req.Catatan,
		Status:  domain.LogbookStatus(req.Status),
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": logbookResponse(entry)})
}

// List GET /api/logbook.
func (h *LogbookHandler) List(c *fiber.Ctx) error {
	filter := parseLogbookQuery(c)
	entries, err := h.logbook.List(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.LogbookResponse, 0, len(entries))
	for i := range entries {
		items = append(items, logbookResponse(&entries[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /api/logbook/:id.
func (h *LogbookHandler) Get(c *fiber.Ctx) error {
	entry, err := h.logbook.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": logbookResponse(entry)})
}

// Update PUT /api/logbook/:id.
func (h *LogbookHandler) Update(c *fiber.Ctx) error {
	var req dto.LogbookRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	entry, err := h.logbook.Update(c.Context(), c.Params("id"), service.LogbookCreateInput{
		Extensi: req.Extensi,
		Nama:    req.Nama,
		Lokasi:  req.Lokasi,
		Catatan: req.Catatan,
		Status:  domain.LogbookStatus(req.Status),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": logbookResponse(entry)})
}

// Delete DELETE /api/logbook/:id.
func (h *LogbookHandler) Delete(c *fiber.Ctx) error {
	if err := h.logbook.Delete(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": true}})
}

// BulkDelete POST /api/logbook/bulk-delete.
func (h *LogbookHandler) BulkDelete(c *fiber.Ctx) error {
	var req dto.BulkDeleteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	deleted, err := h.logbook.DeleteMany(c.Context(), req.IDs)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.BulkDeleteResponse{Deleted: deleted}})
}

func parseLogbookQuery(c *fiber.Ctx) service.LogbookListFilter {
	filter := service.LogbookListFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.LogbookStatus(strings.TrimSpace(part)))
		}
	}
	if q := c.Query("q"); q != "" {
		filter.SearchTerm = &q
	}
	if from := parseTime(c.Query("created_from")); from != nil {
		filter.CreatedFrom = from
	}
	if to := parseTime(c.Query("created_to")); to != nil {
		filter.CreatedTo = to
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
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

func logbookResponse(entry *domain.LogbookEntry) dto.LogbookResponse {
	return dto.LogbookResponse{
		ID:        entry.ID,
		Extensi:   entry.Extensi,
		Nama:      entry.Nama,
		Lokasi:    entry.Lokasi,
		Catatan:   entry.Catatan,
		Status:    string(entry.Status),
		CreatedAt: entry.CreatedAt,
		UpdatedAt: entry.UpdatedAt,
	}
}
