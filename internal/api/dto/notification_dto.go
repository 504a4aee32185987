package dto

import (
	"time"

	"github.com/cybershield/threat-exchange/internal/domain"
)

// UpdateNotificationRequest payload.
type UpdateNotificationRequest struct {
	Status domain.NotificationStatus `json:"status"`
}

// NotificationResponse view.
type NotificationResponse struct {
	ID              string                      `json:"id"`
	Title           string                      `json:"title"`
	Description     string                      `json:"description"`
	Severity        domain.ReportSeverity       `json:"severity"`
	Status          domain.NotificationStatus   `json:"status"`
	OrganizationIDs []string                    `json:"organization_ids"`
	ReportIDs       []string                    `json:"report_ids"`
	RecipientEmails []string                    `json:"recipient_emails"`
	Actions         []domain.NotificationAction `json:"actions"`
	CreatedAt       time.Time                   `json:"created_at"`
	UpdatedAt       time.Time                   `json:"updated_at"`
}
