package dto

import "time"

// CreateOrganizationRequest payload.
type CreateOrganizationRequest struct {
	Name      string   `json:"name"`
	MemberIDs []string `json:"member_ids"`
}

// UpdateOrganizationRequest payload. Nil fields are left unchanged.
type UpdateOrganizationRequest struct {
	Name      *string   `json:"name"`
	MemberIDs *[]string `json:"member_ids"`
}

// OrganizationResponse view.
type OrganizationResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	FounderID string    `json:"founder_id"`
	MemberIDs []string  `json:"member_ids"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
