package domain

import "time"

// LogbookStatus enumerates lifecycle states for local pre-ticket records.
type LogbookStatus string

const (
	LogbookStatusDraft        LogbookStatus = "draft"
	LogbookStatusPendingOrder LogbookStatus = "pending_order"
	LogbookStatusOrdered      LogbookStatus = "ordered"
	LogbookStatusCompleted    LogbookStatus = "completed"
)

// LogbookEntry is a complaint recorded by service-desk staff before it is
// escalated into the external SIMRS ticket system.
type LogbookEntry struct {
	ID        string
	Extensi   string
	Nama      string
	Lokasi    string
	Catatan   string
	Status    LogbookStatus
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsValidLogbookStatus reports whether s is a known status value.
func IsValidLogbookStatus(s LogbookStatus) bool {
	switch s {
	case LogbookStatusDraft, LogbookStatusPendingOrder, LogbookStatusOrdered, LogbookStatusCompleted:
		return true
	}
	return false
}
