package dto

import "time"

// CreateOrderRequest escalates one complaint into the external ticket store.
type CreateOrderRequest struct {
	Catatan          string `json:"catatan"`
	ExtPhone         string `json:"ext_phone"`
	LocationDesc     string `json:"location_desc"`
	ServiceCatalogID string `json:"service_catalog_id"`
	LogbookID        string `json:"logbook_id,omitempty"`
	TeknisiID        string `json:"teknisi_id,omitempty"`
	NamaLengkap      string `json:"nama_lengkap,omitempty"`
}

// EscalationResponse is the combined outcome of one escalation.
type EscalationResponse struct {
	Outcome string `json:"outcome"`
	OrderID string `json:"order_id,omitempty"`
	Message string `json:"message"`
}

// BulkOrderRequest escalates a set of logbook entries sequentially.
type BulkOrderRequest struct {
	Items []BulkOrderItem `json:"items"`
}

// BulkOrderItem selects one entry and its per-entry choices.
type BulkOrderItem struct {
	LogbookID        string `json:"logbook_id"`
	ServiceCatalogID string `json:"service_catalog_id"`
	TeknisiID        string `json:"teknisi_id,omitempty"`
	NamaLengkap      string `json:"nama_lengkap,omitempty"`
}

// BulkOrderResponse reports aggregate counts only.
type BulkOrderResponse struct {
	Total        int `json:"total"`
	SuccessCount int `json:"success_count"`
	FailCount    int `json:"fail_count"`
}

// VerifyRequest closes a Done ticket with a mandatory note.
type VerifyRequest struct {
	OrderID string `json:"order_id"`
	Note    string `json:"note"`
}

// CancelOrderRequest removes a ticket.
type CancelOrderRequest struct {
	OrderID string `json:"order_id"`
}

// EditOrderRequest updates ticket fields in place.
type EditOrderRequest struct {
	OrderID          string `json:"order_id"`
	ExtPhone         string `json:"ext_phone"`
	ServiceCatalogID string `json:"service_catalog_id"`
	LocationDesc     string `json:"location_desc"`
	Catatan          string `json:"catatan"`
}

// AssignOrderRequest delegates a ticket to a technician.
type AssignOrderRequest struct {
	OrderID     string `json:"order_id"`
	TeknisiID   string `json:"teknisi_id"`
	NamaLengkap string `json:"nama_lengkap"`
}

// OrderResponse is one external ticket.
type OrderResponse struct {
	OrderID          string                `json:"order_id"`
	OrderNo          string                `json:"order_no"`
	ServiceCatalogID string                `json:"service_catalog_id"`
	ExtPhone         string                `json:"ext_phone"`
	LocationDesc     string                `json:"location_desc"`
	Catatan          string                `json:"catatan"`
	StatusCode       int                   `json:"status_code"`
	StatusLabel      string                `json:"status_label"`
	NamaTeknisi      string                `json:"nama_teknisi,omitempty"`
	VisitAt          *time.Time           `json:"visit_at,omitempty"`
	CompletedAt      *time.Time           `json:"completed_at,omitempty"`
	ResolutionNote   string               `json:"resolution_note,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
	Detail           *OrderDetailResponse `json:"detail,omitempty"`
	History          []OrderHistoryItem   `json:"history,omitempty"`
}

// OrderDetailResponse is the extended block embedded in list items.
type OrderDetailResponse struct {
	ReporterName string `json:"reporter_name"`
	ReporterUnit string `json:"reporter_unit"`
	Impact       string `json:"impact"`
	Notes        string `json:"notes"`
}

// OrderHistoryItem is one remote audit record.
type OrderHistoryItem struct {
	StatusCode  int       `json:"status_code"`
	StatusLabel string    `json:"status_label"`
	Actor       string    `json:"actor"`
	Note        string    `json:"note"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// SummaryBucket is one card on the dashboard.
type SummaryBucket struct {
	StatusCode int    `json:"status_code"`
	Label      string `json:"label"`
	Total      int    `json:"total"`
}

// TechnicianResponse is one roster row from the external assign list.
type TechnicianResponse struct {
	TeknisiID   string `json:"teknisi_id"`
	NamaLengkap string `json:"nama_lengkap"`
	NamaBidang  string `json:"nama_bidang"`
}

// TechnicianStatusRequest registers or updates a duty-board row.
type TechnicianStatusRequest struct {
	TeknisiID string `json:"teknisi_id"`
	Nama      string `json:"nama"`
	Bidang    string `json:"bidang"`
	OnDuty    bool   `json:"on_duty"`
	Note      string `json:"note"`
}

// TechnicianStatusResponse is one duty-board row.
type TechnicianStatusResponse struct {
	ID        string    `json:"id"`
	TeknisiID string    `json:"teknisi_id"`
	Nama      string    `json:"nama"`
	Bidang    string    `json:"bidang"`
	OnDuty    bool      `json:"on_duty"`
	Note      string    `json:"note"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DutyRequest flips availability for one technician.
type DutyRequest struct {
	OnDuty bool   `json:"on_duty"`
	Note   string `json:"note"`
}
