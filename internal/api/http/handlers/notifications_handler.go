package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cybershield/threat-exchange/internal/api/dto"
	"github.com/cybershield/threat-exchange/internal/auth"
	"github.com/cybershield/threat-exchange/internal/domain"
	"github.com/cybershield/threat-exchange/internal/service"
	apperrors "github.com/cybershield/threat-exchange/pkg/util"
)

// NotificationsHandler manages notification endpoints.
type NotificationsHandler struct {
	service *service.NotificationService
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(notificationService *service.NotificationService) *NotificationsHandler {
	return &NotificationsHandler{service: notificationService}
}

// ListNotifications GET /notifications.
func (h *NotificationsHandler) ListNotifications(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	notifications, err := h.service.ListForUser(c.Context(), principal.User)
	if err != nil {
		return err
	}
	items := make([]dto.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		items = append(items, notificationResponse(&notifications[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// UpdateNotification PATCH /notifications/:id marks a notification read.
func (h *NotificationsHandler) UpdateNotification(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateNotificationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status != domain.NotificationRead {
		return apperrors.NewValidationError("only the READ status can be set", nil)
	}

	notification, err := h.service.MarkRead(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": notificationResponse(notification)})
}

func notificationResponse(n *domain.Notification) dto.NotificationResponse {
	return dto.NotificationResponse{
		ID:              n.ID,
		Title:           n.Title,
		Description:     n.Description,
		Severity:        n.Severity,
		Status:          n.Status,
		OrganizationIDs: n.OrganizationIDs,
		ReportIDs:       n.ReportIDs,
		RecipientEmails: n.RecipientEmails,
		Actions:         n.Actions,
		CreatedAt:       n.CreatedAt,
		UpdatedAt:       n.UpdatedAt,
	}
}
