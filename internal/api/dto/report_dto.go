package dto

import (
	"time"

	"github.com/cybershield/threat-exchange/internal/domain"
)

// CreateReportRequest payload.
type CreateReportRequest struct {
	OrganizationID string                `json:"organization_id"`
	Title          string                `json:"title"`
	Description    string                `json:"description"`
	TypeOfThreat   string                `json:"type_of_threat"`
	Severity       domain.ReportSeverity `json:"severity"`
	Status         string                `json:"status"`
	STIX           string                `json:"stix"`
	RiskScore      *float64              `json:"risk_score"`
}

// UpdateReportRequest payload. Nil fields are left unchanged.
type UpdateReportRequest struct {
	Title        *string                `json:"title"`
	Description  *string                `json:"description"`
	TypeOfThreat *string                `json:"type_of_threat"`
	Severity     *domain.ReportSeverity `json:"severity"`
	Status       *string                `json:"status"`
	STIX         *string                `json:"stix"`
	RiskScore    *float64               `json:"risk_score"`
}

// ReportResponse view.
type ReportResponse struct {
	ID             string                `json:"id"`
	Title          string                `json:"title"`
	Description    string                `json:"description"`
	TypeOfThreat   string                `json:"type_of_threat"`
	Severity       domain.ReportSeverity `json:"severity"`
	Status         string                `json:"status"`
	Submitted      bool                  `json:"submitted"`
	SubmittedAt    *time.Time            `json:"submitted_at"`
	STIX           string                `json:"stix"`
	BlockchainHash *string               `json:"blockchain_hash"`
	RiskScore      *float64              `json:"risk_score"`
	AuthorID       string                `json:"author_id"`
	OrganizationID string                `json:"organization_id"`
	SharedWith     []string              `json:"shared_with"`
	NetworkStatus  domain.NetworkStatus  `json:"network_status"`
	Version        int64                 `json:"version"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// ProposeResponseActionRequest payload.
type ProposeResponseActionRequest struct {
	Description string `json:"description"`
}

// ResponseActionResponse view.
type ResponseActionResponse struct {
	ID           string    `json:"id"`
	ReportID     string    `json:"report_id"`
	Description  string    `json:"description"`
	ProposedByID string    `json:"proposed_by_id"`
	CreatedAt    time.Time `json:"created_at"`
}
