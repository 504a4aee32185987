package events

import (
	"time"

	"github.com/cybershield/threat-exchange/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventReportSubmitted          EventType = "report_submitted"
	EventReportShared             EventType = "report_shared"
	EventReportRevoked            EventType = "report_revoked"
	EventReportBroadcast          EventType = "report_broadcast"
	EventReportRemovedFromNetwork EventType = "report_removed_from_network"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ReportID  string      `json:"report_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ReportSubmittedPayload payload.
type ReportSubmittedPayload struct {
	OrganizationID string                `json:"organization_id"`
	Title          string                `json:"title"`
	Severity       domain.ReportSeverity `json:"severity"`
	SubmittedAt    time.Time             `json:"submitted_at"`
}

// ReportSharedPayload payload.
type ReportSharedPayload struct {
	SourceOrgID string `json:"source_org_id"`
	TargetOrgID string `json:"target_org_id"`
}

// ReportRevokedPayload payload.
type ReportRevokedPayload struct {
	SourceOrgID string `json:"source_org_id"`
	TargetOrgID string `json:"target_org_id"`
}

// ReportBroadcastPayload payload.
type ReportBroadcastPayload struct {
	OrganizationID string                `json:"organization_id"`
	Title          string                `json:"title"`
	Severity       domain.ReportSeverity `json:"severity"`
}

// ReportRemovedPayload payload.
type ReportRemovedPayload struct {
	OrganizationID string `json:"organization_id"`
}
