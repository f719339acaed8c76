// Package simrs talks to the external hospital ticket system ("Webmin" API).
// Orders live entirely on the remote side; this client only reads them and
// issues transition requests on behalf of a specific webmin account.
package simrs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/eservicedesk/internal/config"
	"github.com/spec-kit/eservicedesk/internal/domain"
	apperrors "github.com/spec-kit/eservicedesk/pkg/util"
)

// Credentials identify the webmin account for one outbound call. BaseURL is
// already resolved (per-user override or service default).
type Credentials struct {
	Username string
	Password string
	BaseURL  string
}

// CreateOrderInput is the payload for ticket creation.
type CreateOrderInput struct {
	Catatan          string
	ExtPhone         string
	LocationDesc     string
	ServiceCatalogID string
	// LogbookID is the local entry being escalated; empty for ad-hoc orders.
	LogbookID string
}

// AssignOrderInput is the payload for technician delegation.
type AssignOrderInput struct {
	OrderID        string
	TeknisiID      string
	NamaLengkap    string
	AssignTypeCode string
	AssignDesc     string
}

// EditOrderInput updates fields on an existing order without changing status.
type EditOrderInput struct {
	OrderID          string
	ExtPhone         string
	ServiceCatalogID string
	LocationDesc     string
	Catatan          string
}

// Client is the outbound surface consumed by the orchestration services.
type Client interface {
	CreateOrder(ctx context.Context, creds Credentials, input CreateOrderInput) (string, error)
	AssignOrder(ctx context.Context, creds Credentials, input AssignOrderInput) error
	CancelOrder(ctx context.Context, creds Credentials, orderID string) error
	EditOrder(ctx context.Context, creds Credentials, input EditOrderInput) error
	VerifyOrder(ctx context.Context, creds Credentials, orderID, note string) error
	ListByStatus(ctx context.Context, creds Credentials, status domain.OrderStatusCode) ([]domain.Order, error)
	OrderDetail(ctx context.Context, creds Credentials, orderID string) (*domain.Order, error)
	SummaryCounts(ctx context.Context, creds Credentials) (domain.SummaryCounts, error)
	AssignList(ctx context.Context, creds Credentials, orderID string) ([]domain.Technician, error)
}

type httpClient struct {
	http   *http.Client
	logger *zap.Logger
}

// NewClient builds the HTTP-backed client.
func NewClient(cfg config.SimrsConfig, logger *zap.Logger) Client {
	return &httpClient{
		http:   &http.Client{Timeout: cfg.RequestTimeout()},
		logger: logger,
	}
}

// Wire shapes. The remote API wraps everything in {data|error}; error text is
// free-form and must be passed through untouched.
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

type orderPayload struct {
	OrderID          string                `json:"order_id"`
	OrderNo          string                `json:"order_no"`
	ServiceCatalogID string                `json:"service_catalog_id"`
	ExtPhone         string                `json:"ext_phone"`
	LocationDesc     string                `json:"location_desc"`
	Catatan          string                `json:"catatan"`
	StatusCode       int                   `json:"status_code"`
	NamaTeknisi      string                `json:"nama_teknisi"`
	VisitAt          *time.Time            `json:"visit_at"`
	CompletedAt      *time.Time            `json:"completed_at"`
	ResolutionNote   string                `json:"resolution_note"`
	CreatedAt        time.Time             `json:"created_at"`
	Detail           *orderDetailPayload   `json:"detail"`
	History          []orderHistoryPayload `json:"history"`
}

type orderDetailPayload struct {
	ReporterName string `json:"reporter_name"`
	ReporterUnit string `json:"reporter_unit"`
	Impact       string `json:"impact"`
	Notes        string `json:"notes"`
}

type orderHistoryPayload struct {
	StatusCode int       `json:"status_code"`
	Actor      string    `json:"actor"`
	Note       string    `json:"note"`
	OccurredAt time.Time `json:"occurred_at"`
}

type technicianPayload struct {
	TeknisiID   string `json:"teknisi_id"`
	NamaLengkap string `json:"nama_lengkap"`
	NamaBidang  string `json:"nama_bidang"`
}

func (c *httpClient) CreateOrder(ctx context.Context, creds Credentials, input CreateOrderInput) (string, error) {
	body := map[string]string{
		"catatan":            input.Catatan,
		"ext_phone":          input.ExtPhone,
		"location_desc":      input.LocationDesc,
		"service_catalog_id": input.ServiceCatalogID,
		"logbook_id":         input.LogbookID,
	}
	var result struct {
		ID string `json:"id"`
	}
	if err := c.doRequest(ctx, creds, http.MethodPost, "/api/order/create", body, &result); err != nil {
		return "", err
	}
	if result.ID == "" {
		return "", apperrors.NewUpstreamError("create order returned no id", nil)
	}
	return result.ID, nil
}

func (c *httpClient) AssignOrder(ctx context.Context, creds Credentials, input AssignOrderInput) error {
	body := map[string]string{
		"order_id":         input.OrderID,
		"teknisi_id":       input.TeknisiID,
		"nama_lengkap":     input.NamaLengkap,
		"assign_type_code": input.AssignTypeCode,
		"assign_desc":      input.AssignDesc,
	}
	return c.doRequest(ctx, creds, http.MethodPost, "/api/order/assign", body, nil)
}

func (c *httpClient) CancelOrder(ctx context.Context, creds Credentials, orderID string) error {
	body := map[string]string{"order_id": orderID}
	return c.doRequest(ctx, creds, http.MethodPost, "/api/order/cancel", body, nil)
}

func (c *httpClient) EditOrder(ctx context.Context, creds Credentials, input EditOrderInput) error {
	body := map[string]string{
		"order_id":           input.OrderID,
		"ext_phone":          input.ExtPhone,
		"service_catalog_id": input.ServiceCatalogID,
		"location_desc":      input.LocationDesc,
		"catatan":            input.Catatan,
	}
	return c.doRequest(ctx, creds, http.MethodPost, "/api/order/edit", body, nil)
}

func (c *httpClient) VerifyOrder(ctx context.Context, creds Credentials, orderID, note string) error {
	body := map[string]string{
		"order_id":    orderID,
		"status_code": strconv.Itoa(int(domain.OrderStatusVerified)),
		"note":        note,
	}
	return c.doRequest(ctx, creds, http.MethodPost, "/api/order/verify", body, nil)
}

func (c *httpClient) ListByStatus(ctx context.Context, creds Credentials, status domain.OrderStatusCode) ([]domain.Order, error) {
	path := "/api/order/list?status_code=" + strconv.Itoa(int(status))
	var payload []orderPayload
	if err := c.doRequest(ctx, creds, http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}
	orders := make([]domain.Order, 0, len(payload))
	for i := range payload {
		orders = append(orders, payload[i].toDomain())
	}
	return orders, nil
}

func (c *httpClient) OrderDetail(ctx context.Context, creds Credentials, orderID string) (*domain.Order, error) {
	path := "/api/order/detail?order_id=" + url.QueryEscape(orderID)
	var payload orderPayload
	if err := c.doRequest(ctx, creds, http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}
	order := payload.toDomain()
	return &order, nil
}

func (c *httpClient) SummaryCounts(ctx context.Context, creds Credentials) (domain.SummaryCounts, error) {
	var payload []struct {
		StatusCode int `json:"status_code"`
		Total      int `json:"total"`
	}
	if err := c.doRequest(ctx, creds, http.MethodGet, "/api/order/summary", nil, &payload); err != nil {
		return nil, err
	}
	counts := make(domain.SummaryCounts, len(domain.OrderBuckets))
	for _, bucket := range domain.OrderBuckets {
		counts[bucket] = 0
	}
	for _, row := range payload {
		code := domain.OrderStatusCode(row.StatusCode)
		if code.IsValid() {
			counts[code] = row.Total
		}
	}
	return counts, nil
}

func (c *httpClient) AssignList(ctx context.Context, creds Credentials, orderID string) ([]domain.Technician, error) {
	path := "/api/order/assign-list?order_id=" + url.QueryEscape(orderID)
	var payload []technicianPayload
	if err := c.doRequest(ctx, creds, http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}
	roster := make([]domain.Technician, 0, len(payload))
	for _, t := range payload {
		roster = append(roster, domain.Technician{
			TeknisiID:   t.TeknisiID,
			NamaLengkap: t.NamaLengkap,
			NamaBidang:  t.NamaBidang,
		})
	}
	return roster, nil
}

func (c *httpClient) doRequest(ctx context.Context, creds Credentials, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil && method != http.MethodGet {
		jsonBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(jsonBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, creds.BaseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.SetBasicAuth(creds.Username, creds.Password)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.NewUpstreamError("ticket system unreachable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.NewUpstreamError("ticket system response unreadable", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= 400 {
			return apperrors.NewUpstreamError(string(raw), nil)
		}
		return apperrors.NewUpstreamError("ticket system returned malformed response", err)
	}
	if env.Error != "" {
		// Remote message passed through verbatim.
		return apperrors.NewUpstreamError(env.Error, nil)
	}
	if resp.StatusCode >= 400 {
		return apperrors.NewUpstreamError(fmt.Sprintf("ticket system error (%d)", resp.StatusCode), nil)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return apperrors.NewUpstreamError("ticket system returned malformed data", err)
		}
	}
	return nil
}

func (p *orderPayload) toDomain() domain.Order {
	order := domain.Order{
		OrderID:          p.OrderID,
		OrderNo:          p.OrderNo,
		ServiceCatalogID: p.ServiceCatalogID,
		ExtPhone:         p.ExtPhone,
		LocationDesc:     p.LocationDesc,
		Catatan:          p.Catatan,
		StatusCode:       domain.OrderStatusCode(p.StatusCode),
		NamaTeknisi:      p.NamaTeknisi,
		VisitAt:          p.VisitAt,
		CompletedAt:      p.CompletedAt,
		ResolutionNote:   p.ResolutionNote,
		CreatedAt:        p.CreatedAt,
	}
	if p.Detail != nil {
		order.Detail = &domain.OrderDetail{
			ReporterName: p.Detail.ReporterName,
			ReporterUnit: p.Detail.ReporterUnit,
			Impact:       p.Detail.Impact,
			Notes:        p.Detail.Notes,
		}
	}
	for _, h := range p.History {
		order.History = append(order.History, domain.OrderHistoryEntry{
			StatusCode: domain.OrderStatusCode(h.StatusCode),
			Actor:      h.Actor,
			Note:       h.Note,
			OccurredAt: h.OccurredAt,
		})
	}
	return order
}
