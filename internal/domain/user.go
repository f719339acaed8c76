package domain

import "time"

// UserRole enumerates portal roles.
type UserRole string

const (
	UserRoleAdmin UserRole = "ADMIN"
	UserRoleStaff UserRole = "STAFF"
)

// User is a portal account.
type User struct {
	ID           string
	Username     string
	FullName     string
	PasswordHash string
	Role         UserRole
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// WebminCredential holds the per-user credentials attached to outbound SIMRS
// calls. BaseURLOverride is honored only for admin accounts.
type WebminCredential struct {
	UserID          string
	WebminUser      string
	WebminPass      string
	BaseURLOverride string
	UpdatedAt       time.Time
}

// TechnicianStatus is a local duty-board row, independent of the external
// roster: it records whether a known technician is currently available.
type TechnicianStatus struct {
	ID        string
	TeknisiID string
	Nama      string
	Bidang    string
	OnDuty    bool
	Note      string
	UpdatedAt time.Time
}
