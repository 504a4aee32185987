package domain

import "time"

// ReportSeverity enumerates threat severity levels.
type ReportSeverity string

const (
	SeverityCritical ReportSeverity = "CRITICAL"
	SeverityHigh     ReportSeverity = "HIGH"
	SeverityMedium   ReportSeverity = "MEDIUM"
	SeverityLow      ReportSeverity = "LOW"
)

// NetworkStatus tracks whether a report has been published to the wider
// exchange network.
type NetworkStatus string

const (
	NetworkStatusNone      NetworkStatus = "NONE"
	NetworkStatusBroadcast NetworkStatus = "BROADCAST"
	NetworkStatusRemoved   NetworkStatus = "REMOVED"
)

// LifecycleState identifies where a report sits in its sharing lifecycle.
type LifecycleState string

const (
	LifecycleDraft     LifecycleState = "DRAFT"
	LifecycleSubmitted LifecycleState = "SUBMITTED"
	LifecycleShared    LifecycleState = "SHARED"
	LifecycleBroadcast LifecycleState = "BROADCAST"
	LifecycleRemoved   LifecycleState = "REMOVED"
)

// Report is the aggregate for incident/threat records, the primary shareable
// unit between organizations.
type Report struct {
	ID             string
	Title          string
	Description    string
	TypeOfThreat   string
	Severity       ReportSeverity
	Status         string
	Submitted      bool
	SubmittedAt    *time.Time
	STIX           string
	BlockchainHash *string
	RiskScore      *float64
	AuthorID       string
	OrganizationID string
	SharedWith     []string
	NetworkStatus  NetworkStatus
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Lifecycle derives the report's current lifecycle state from its fields.
// Broadcast takes precedence over plain sharing; a report removed from the
// network is terminal.
func (r *Report) Lifecycle() LifecycleState {
	switch {
	case r.NetworkStatus == NetworkStatusRemoved:
		return LifecycleRemoved
	case r.NetworkStatus == NetworkStatusBroadcast:
		return LifecycleBroadcast
	case !r.Submitted:
		return LifecycleDraft
	case len(r.SharedWith) > 0:
		return LifecycleShared
	default:
		return LifecycleSubmitted
	}
}

// IsSharedWith reports whether the target organization currently holds a share.
func (r *Report) IsSharedWith(orgID string) bool {
	for _, id := range r.SharedWith {
		if id == orgID {
			return true
		}
	}
	return false
}

var allowedLifecycleTransitions = map[LifecycleState][]LifecycleState{
	LifecycleDraft:     {LifecycleSubmitted},
	LifecycleSubmitted: {LifecycleShared, LifecycleBroadcast, LifecycleRemoved},
	LifecycleShared:    {LifecycleShared, LifecycleSubmitted, LifecycleBroadcast, LifecycleRemoved},
	LifecycleBroadcast: {LifecycleRemoved},
	LifecycleRemoved:   {},
}

// CanTransition reports whether moving between the two lifecycle states is
// permitted. Shared->Shared covers granting an additional share;
// Shared->Submitted covers revoking the last one.
func CanTransition(from, to LifecycleState) bool {
	for _, candidate := range allowedLifecycleTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// ValidSeverity reports whether the value is one of the known severity levels.
func ValidSeverity(s ReportSeverity) bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}
