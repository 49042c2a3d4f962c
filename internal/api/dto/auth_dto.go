package dto

import "time"

// OwnerLoginRequest is the owner's password sign-in payload.
type OwnerLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SSOLoginRequest carries the identity-provider token for staff sign-in.
type SSOLoginRequest struct {
	IdentityToken string `json:"identity_token"`
}

// AuthResponse is a freshly issued session.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	Profile   UserResponse `json:"profile"`
}

// SessionResponse mirrors the session snapshot handed to the UI. Profile
// and departments are present only when the session is ready.
type SessionResponse struct {
	State       string               `json:"state"`
	Profile     *UserResponse        `json:"profile,omitempty"`
	Departments []DepartmentResponse `json:"departments,omitempty"`
}
