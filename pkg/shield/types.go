// Package shield is the client SDK for the CyberShield threat exchange. It
// holds the session store, the shared entity stores, the report lifecycle
// controller and the derived report views that dashboard frontends build on.
package shield

import "time"

// Role enumerates account roles.
type Role string

const (
	RoleDataProvider Role = "DATA_PROVIDER"
	RoleDataConsumer Role = "DATA_CONSUMER"
	RoleGovBody      Role = "GOV_BODY"
)

// User mirrors the exchange's account resource.
type User struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Role            Role      `json:"role"`
	JobTitle        string    `json:"job_title,omitempty"`
	PhotoURL        string    `json:"photo_url,omitempty"`
	OrganizationIDs []string  `json:"organization_ids"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// MemberOf reports whether the user belongs to the given organization.
func (u *User) MemberOf(orgID string) bool {
	for _, id := range u.OrganizationIDs {
		if id == orgID {
			return true
		}
	}
	return false
}

// Organization mirrors the exchange's tenant resource.
type Organization struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	FounderID string    `json:"founder_id"`
	MemberIDs []string  `json:"member_ids"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Report mirrors the exchange's report resource.
type Report struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	TypeOfThreat   string     `json:"type_of_threat"`
	Severity       string     `json:"severity"`
	Status         string     `json:"status"`
	Submitted      bool       `json:"submitted"`
	SubmittedAt    *time.Time `json:"submitted_at"`
	STIX           string     `json:"stix"`
	BlockchainHash *string    `json:"blockchain_hash"`
	RiskScore      *float64   `json:"risk_score"`
	AuthorID       string     `json:"author_id"`
	OrganizationID string     `json:"organization_id"`
	SharedWith     []string   `json:"shared_with"`
	NetworkStatus  string     `json:"network_status"`
	Version        int64      `json:"version"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// NotificationAction is one entry in a notification's ordered audit log.
type NotificationAction struct {
	Type    string    `json:"type"`
	Date    time.Time `json:"date"`
	Details string    `json:"details,omitempty"`
}

// Notification mirrors the exchange's notification resource.
type Notification struct {
	ID              string               `json:"id"`
	Title           string               `json:"title"`
	Description     string               `json:"description"`
	Severity        string               `json:"severity"`
	Status          string               `json:"status"`
	OrganizationIDs []string             `json:"organization_ids"`
	ReportIDs       []string             `json:"report_ids"`
	RecipientEmails []string             `json:"recipient_emails"`
	Actions         []NotificationAction `json:"actions"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// ResponseAction mirrors the exchange's append-only remediation log entries.
type ResponseAction struct {
	ID           string    `json:"id"`
	ReportID     string    `json:"report_id"`
	Description  string    `json:"description"`
	ProposedByID string    `json:"proposed_by_id"`
	CreatedAt    time.Time `json:"created_at"`
}
