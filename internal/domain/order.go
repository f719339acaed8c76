package domain

import "time"

// OrderStatusCode is the integer status used by the external SIMRS ticket store.
type OrderStatusCode int

const (
	OrderStatusOpen     OrderStatusCode = 10
	OrderStatusFollowUp OrderStatusCode = 11
	OrderStatusRunning  OrderStatusCode = 12
	OrderStatusPending  OrderStatusCode = 13
	OrderStatusDone     OrderStatusCode = 15
	OrderStatusVerified OrderStatusCode = 30
)

// OrderBuckets lists the six workflow buckets in display order. Both the
// summary cards and the detail views key off this single table so the two
// surfaces cannot drift apart.
var OrderBuckets = []OrderStatusCode{
	OrderStatusOpen,
	OrderStatusFollowUp,
	OrderStatusRunning,
	OrderStatusPending,
	OrderStatusDone,
	OrderStatusVerified,
}

var orderStatusLabels = map[OrderStatusCode]string{
	OrderStatusOpen:     "Open",
	OrderStatusFollowUp: "Follow Up",
	OrderStatusRunning:  "Running",
	OrderStatusPending:  "Pending",
	OrderStatusDone:     "Done",
	OrderStatusVerified: "Verified",
}

// Label returns the display name for a status code, or "Unknown".
func (c OrderStatusCode) Label() string {
	if label, ok := orderStatusLabels[c]; ok {
		return label
	}
	return "Unknown"
}

// IsValid reports whether c is one of the six workflow buckets.
func (c OrderStatusCode) IsValid() bool {
	_, ok := orderStatusLabels[c]
	return ok
}

// Order mirrors a ticket owned by the external SIMRS system. This service
// never persists orders locally; it only reads them and issues transition
// requests.
type Order struct {
	OrderID          string
	OrderNo          string
	ServiceCatalogID string
	ExtPhone         string
	LocationDesc     string
	Catatan          string
	StatusCode       OrderStatusCode
	NamaTeknisi      string
	VisitAt          *time.Time
	CompletedAt      *time.Time
	ResolutionNote   string
	CreatedAt        time.Time
	Detail           *OrderDetail
	History          []OrderHistoryEntry
}

// OrderDetail carries the extended fields the list endpoint may embed.
type OrderDetail struct {
	ReporterName string
	ReporterUnit string
	Impact       string
	Notes        string
}

// OrderHistoryEntry is one remote-side audit record for an order.
type OrderHistoryEntry struct {
	StatusCode OrderStatusCode
	Actor      string
	Note       string
	OccurredAt time.Time
}

// Technician is one row of the external assignment roster.
type Technician struct {
	TeknisiID   string
	NamaLengkap string
	NamaBidang  string
}

// SummaryCounts maps each workflow bucket to the number of orders in it.
type SummaryCounts map[OrderStatusCode]int
