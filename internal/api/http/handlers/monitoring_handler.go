package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/eservicedesk/internal/api/dto"
	"github.com/spec-kit/eservicedesk/internal/auth"
	"github.com/spec-kit/eservicedesk/internal/domain"
	"github.com/spec-kit/eservicedesk/internal/service"
	"github.com/spec-kit/eservicedesk/internal/simrs"
	apperrors "github.com/spec-kit/eservicedesk/pkg/util"
)

// MonitoringHandler exposes the escalation and status workflow surface.
type MonitoringHandler struct {
	escalation  *service.EscalationService
	workflow    *service.WorkflowService
	authService *service.AuthService
}

// NewMonitoringHandler constructs handler.
func NewMonitoringHandler(escalation *service.EscalationService, workflow *service.WorkflowService, authService *service.AuthService) *MonitoringHandler {
	return &MonitoringHandler{escalation: escalation, workflow: workflow, authService: authService}
}

func (h *MonitoringHandler) credentials(c *fiber.Ctx) (simrs.Credentials, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return simrs.Credentials{}, apperrors.NewUnauthorized("user required")
	}
	return h.authService.ResolveCredentials(c.Context(), principal.User)
}

// CreateOrder POST /api/monitoring/create-order.
func (h *MonitoringHandler) CreateOrder(c *fiber.Ctx) error {
	creds, err := h.credentials(c)
	if err != nil {
		return err
	}
	var req dto.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Catatan == "" || req.ServiceCatalogID == "" {
		return apperrors.NewValidationError("catatan and service_catalog_id required", nil)
	}
	result, err := h.escalation.Escalate(c.Context(), creds, service.EscalateInput{
		LogbookID:        req.LogbookID,
		Catatan:          req.Catatan,
		ExtPhone:         req.ExtPhone,
		LocationDesc:     req.LocationDesc,
		ServiceCatalogID: req.ServiceCatalogID,
		TeknisiID:        req.TeknisiID,
		NamaLengkap:      req.NamaLengkap,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.EscalationResponse{
		Outcome: string(result.Outcome),
		OrderID: result.OrderID,
		Message: result.Message,
	}})
}

// BulkOrder POST /api/monitoring/bulk-order.
func (h *MonitoringHandler) BulkOrder(c *fiber.Ctx) error {
	creds, err := h.credentials(c)
	if err != nil {
		return err
	}
	var req dto.BulkOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if len(req.Items) == 0 {
		return apperrors.NewValidationError("items required", nil)
	}
	items := make([]service.BulkEscalateItem, 0, len(req.Items))
	for _, item := range req.Items {
		if item.LogbookID == "" || item.ServiceCatalogID == "" {
			return apperrors.NewValidationError("logbook_id and service_catalog_id required per item", nil)
		}
		items = append(items, service.BulkEscalateItem{
			LogbookID:        item.LogbookID,
			ServiceCatalogID: item.ServiceCatalogID,
			TeknisiID:        item.TeknisiID,
			NamaLengkap:      item.NamaLengkap,
		})
	}
	result, err := h.escalation.EscalateBatch(c.Context(), creds, items)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.BulkOrderResponse{
		Total:        result.Total,
		SuccessCount: result.SuccessCount,
		FailCount:    result.FailCount,
	}})
}

// ListBucket GET /api/monitoring/verify?status=<code>.
func (h *MonitoringHandler) ListBucket(c *fiber.Ctx) error {
	creds, err := h.credentials(c)
	if err != nil {
		return err
	}
	code := parseInt(c.Query("status"), int(domain.OrderStatusOpen))
	orders, err := h.workflow.ListBucket(c.Context(), creds, domain.OrderStatusCode(code))
	if err != nil {
		return err
	}
	items := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		items = append(items, orderResponse(&orders[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Verify POST /api/monitoring/verify.
func (h *MonitoringHandler) Verify(c *fiber.Ctx) error {
	creds, err := h.credentials(c)
	if err != nil {
		return err
	}
	var req dto.VerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.workflow.Verify(c.Context(), creds, req.OrderID, req.Note); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"verified": true}})
}

// CancelOrder POST /api/monitoring/cancel-order.
func (h *MonitoringHandler) CancelOrder(c *fiber.Ctx) error {
	creds, err := h.credentials(c)
	if err != nil {
		return err
	}
	var req dto.CancelOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.workflow.Cancel(c.Context(), creds, req.OrderID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"cancelled": true}})
}

// EditOrder POST /api/monitoring/edit-order.
func (h *MonitoringHandler) EditOrder(c *fiber.Ctx) error {
	creds, err := h.credentials(c)
	if err != nil {
		return err
	}
	var req dto.EditOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.workflow.Edit(c.Context(), creds, simrs.EditOrderInput{
		OrderID:          req.OrderID,
		ExtPhone:         req.ExtPhone,
		ServiceCatalogID: req.ServiceCatalogID,
		LocationDesc:     req.LocationDesc,
		Catatan:          req.Catatan,
	}); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"updated": true}})
}

// AssignOrder POST /api/monitoring/assign-order.
func (h *MonitoringHandler) AssignOrder(c *fiber.Ctx) error {
	creds, err := h.credentials(c)
	if err != nil {
		return err
	}
	var req dto.AssignOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.workflow.Delegate(c.Context(), creds, req.OrderID, req.TeknisiID, req.NamaLengkap); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"assigned": true}})
}

// AssignList GET /api/monitoring/assign-list?orderId=<id>.
func (h *MonitoringHandler) AssignList(c *fiber.Ctx) error {
	creds, err := h.credentials(c)
	if err != nil {
		return err
	}
	roster, err := h.workflow.AssignList(c.Context(), creds, c.Query("orderId"))
	if err != nil {
		return err
	}
	items := make([]dto.TechnicianResponse, 0, len(roster))
	for _, t := range roster {
		items = append(items, dto.TechnicianResponse{
			TeknisiID:   t.TeknisiID,
			NamaLengkap: t.NamaLengkap,
			NamaBidang:  t.NamaBidang,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// OrderDetail GET /api/monitoring/order/:id.
func (h *MonitoringHandler) OrderDetail(c *fiber.Ctx) error {
	creds, err := h.credentials(c)
	if err != nil {
		return err
	}
	order, err := h.workflow.OrderDetail(c.Context(), creds, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": orderResponse(order)})
}

// Summary GET /api/monitoring/summary.
func (h *MonitoringHandler) Summary(c *fiber.Ctx) error {
	creds, err := h.credentials(c)
	if err != nil {
		return err
	}
	counts, err := h.workflow.Summary(c.Context(), creds)
	if err != nil {
		return err
	}
	buckets := make([]dto.SummaryBucket, 0, len(domain.OrderBuckets))
	for _, code := range domain.OrderBuckets {
		buckets = append(buckets, dto.SummaryBucket{
			StatusCode: int(code),
			Label:      code.Label(),
			Total:      counts[code],
		})
	}
	return c.JSON(fiber.Map{"data": buckets})
}

func orderResponse(order *domain.Order) dto.OrderResponse {
	resp := dto.OrderResponse{
		OrderID:          order.OrderID,
		OrderNo:          order.OrderNo,
		ServiceCatalogID: order.ServiceCatalogID,
		ExtPhone:         order.ExtPhone,
		LocationDesc:     order.LocationDesc,
		Catatan:          order.Catatan,
		StatusCode:       int(order.StatusCode),
		StatusLabel:      order.StatusCode.Label(),
		NamaTeknisi:      order.NamaTeknisi,
		VisitAt:          order.VisitAt,
		CompletedAt:      order.CompletedAt,
		ResolutionNote:   order.ResolutionNote,
		CreatedAt:        order.CreatedAt,
	}
	if order.Detail != nil {
		resp.Detail = &dto.OrderDetailResponse{
			ReporterName: order.Detail.ReporterName,
			ReporterUnit: order.Detail.ReporterUnit,
			Impact:       order.Detail.Impact,
			Notes:        order.Detail.Notes,
		}
	}
	for _, entry := range order.History {
		resp.History = append(resp.History, dto.OrderHistoryItem{
			StatusCode:  int(entry.StatusCode),
			StatusLabel: entry.StatusCode.Label(),
			Actor:       entry.Actor,
			Note:        entry.Note,
			OccurredAt:  entry.OccurredAt,
		})
	}
	return resp
}
