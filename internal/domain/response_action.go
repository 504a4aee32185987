package domain

import "time"

// ResponseAction is a proposed remediation note attached to a report.
// The log is append-only; entries are never edited or removed.
type ResponseAction struct {
	ID           string
	ReportID     string
	Description  string
	ProposedByID string
	CreatedAt    time.Time
}
