package dto

import "time"

// LogbookRequest payload for creating or updating an entry.
type LogbookRequest struct {
	Extensi string `json:"extensi"`
	Nama    string `json:"nama"`
	Lokasi  string `json:"lokasi"`
	Catatan string `json:"catatan"`
	Status  string `json:"status,omitempty"`
}

// LogbookResponse is one entry as returned to the portal.
type LogbookResponse struct {
	ID        string    `json:"id"`
	Extensi   string    `json:"extensi"`
	Nama      string    `json:"nama"`
	Lokasi    string    `json:"lokasi"`
	Catatan   string    `json:"catatan"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BulkDeleteRequest selects entries for deletion.
type BulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

// BulkDeleteResponse reports how many rows were removed.
type BulkDeleteResponse struct {
	Deleted int64 `json:"deleted"`
}
