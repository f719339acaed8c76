package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventOrderCreated           EventType = "order_created"
	EventOrderDelegated         EventType = "order_delegated"
	EventOrderDelegationFailed  EventType = "order_delegation_failed"
	EventOrderVerified          EventType = "order_verified"
	EventOrderCancelled         EventType = "order_cancelled"
	EventBulkEscalationFinished EventType = "bulk_escalation_finished"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	OrderID   string      `json:"order_id,omitempty"`
	UserID    string      `json:"user_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// OrderCreatedPayload payload.
type OrderCreatedPayload struct {
	LogbookID        string `json:"logbook_id,omitempty"`
	ServiceCatalogID string `json:"service_catalog_id"`
	LocationDesc     string `json:"location_desc"`
}

// OrderDelegatedPayload payload.
type OrderDelegatedPayload struct {
	TeknisiID   string `json:"teknisi_id"`
	NamaLengkap string `json:"nama_lengkap"`
}

// OrderDelegationFailedPayload payload.
type OrderDelegationFailedPayload struct {
	TeknisiID string `json:"teknisi_id"`
	Reason    string `json:"reason"`
}

// OrderVerifiedPayload payload.
type OrderVerifiedPayload struct {
	Note string `json:"note"`
}

// BulkEscalationFinishedPayload payload.
type BulkEscalationFinishedPayload struct {
	Total        int `json:"total"`
	SuccessCount int `json:"success_count"`
	FailCount    int `json:"fail_count"`
}
