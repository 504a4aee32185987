package domain

import "time"

// NotificationStatus tracks whether a notification has been seen.
type NotificationStatus string

const (
	NotificationUnread NotificationStatus = "UNREAD"
	NotificationRead   NotificationStatus = "READ"
)

// NotificationAction is one entry in a notification's ordered audit log.
type NotificationAction struct {
	Type    string    `json:"type"`
	Date    time.Time `json:"date"`
	Details string    `json:"details,omitempty"`
}

// Notification records a lifecycle event fanned out to organizations and
// their members.
type Notification struct {
	ID              string
	Title           string
	Description     string
	Severity        ReportSeverity
	Status          NotificationStatus
	OrganizationIDs []string
	ReportIDs       []string
	RecipientEmails []string
	Actions         []NotificationAction
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
