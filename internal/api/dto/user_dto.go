package dto

import (
	"time"

	"github.com/cybershield/threat-exchange/internal/domain"
)

// RegisterRequest payload.
type RegisterRequest struct {
	Name     string          `json:"name"`
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Role     domain.UserRole `json:"role"`
	JobTitle string          `json:"job_title"`
	PhotoURL string          `json:"photo_url"`
}

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileRequest payload. Nil fields are left unchanged.
type UpdateProfileRequest struct {
	Name     *string `json:"name"`
	JobTitle *string `json:"job_title"`
	PhotoURL *string `json:"photo_url"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Email           string          `json:"email"`
	Role            domain.UserRole `json:"role"`
	JobTitle        string          `json:"job_title,omitempty"`
	PhotoURL        string          `json:"photo_url,omitempty"`
	OrganizationIDs []string        `json:"organization_ids"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// AuthResponse bundles the account with its session token.
type AuthResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}
