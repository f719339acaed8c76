package dto

import "time"

// LoginRequest payload for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
}

// ChangePasswordRequest rotates the caller's password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// WebminUpsertRequest stores the caller's SIMRS credentials.
type WebminUpsertRequest struct {
	WebminUser      string `json:"webmin_user"`
	WebminPass      string `json:"webmin_pass"`
	BaseURLOverride string `json:"base_url,omitempty"`
}
