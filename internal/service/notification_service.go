package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cybershield/threat-exchange/internal/domain"
	"github.com/cybershield/threat-exchange/internal/events"
	"github.com/cybershield/threat-exchange/internal/repository"
	apperrors "github.com/cybershield/threat-exchange/pkg/util"
)

// NotificationService materializes lifecycle events as notification records
// addressed to the affected organizations.
type NotificationService struct {
	notifications repository.NotificationRepository
	orgs          repository.OrganizationRepository
	users         repository.UserRepository
	dispatcher    events.Dispatcher
	logger        *zap.Logger
}

// NotificationDependencies bundles requirements for the notification service.
type NotificationDependencies struct {
	NotificationRepo repository.NotificationRepository
	OrganizationRepo repository.OrganizationRepository
	UserRepo         repository.UserRepository
	Dispatcher       events.Dispatcher
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		notifications: deps.NotificationRepo,
		orgs:          deps.OrganizationRepo,
		users:         deps.UserRepo,
		dispatcher:    deps.Dispatcher,
		logger:        logger,
	}
}

// RegisterHandlers subscribes to lifecycle events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventReportSubmitted, n.handleReportSubmitted)
	n.dispatcher.Subscribe(events.EventReportShared, n.handleReportShared)
	n.dispatcher.Subscribe(events.EventReportRevoked, n.handleReportRevoked)
	n.dispatcher.Subscribe(events.EventReportBroadcast, n.handleReportBroadcast)
	n.dispatcher.Subscribe(events.EventReportRemovedFromNetwork, n.handleReportRemoved)
}

// ListForUser returns notifications addressed to the caller's organizations.
func (n *NotificationService) ListForUser(ctx context.Context, user *domain.User) ([]domain.Notification, error) {
	return n.notifications.ListByOrganizations(ctx, user.OrganizationIDs)
}

// MarkRead flips a notification to READ and records the change in its audit
// log.
func (n *NotificationService) MarkRead(ctx context.Context, user *domain.User, notificationID string) (*domain.Notification, error) {
	notification, err := n.notifications.GetByID(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	addressed := false
	for _, orgID := range notification.OrganizationIDs {
		if user.MemberOf(orgID) {
			addressed = true
			break
		}
	}
	if !addressed {
		return nil, apperrors.NewForbidden("notification is not addressed to you")
	}
	if err := n.notifications.UpdateStatus(ctx, notificationID, domain.NotificationRead); err != nil {
		return nil, err
	}
	action := domain.NotificationAction{
		Type:    "marked_read",
		Date:    time.Now(),
		Details: "by " + user.Email,
	}
	if err := n.notifications.AppendAction(ctx, notificationID, action); err != nil {
		return nil, err
	}
	return n.notifications.GetByID(ctx, notificationID)
}

func (n *NotificationService) handleReportSubmitted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ReportSubmittedPayload)
	if !ok {
		return nil
	}
	return n.create(ctx, event,
		fmt.Sprintf("Report submitted: %s", payload.Title),
		"A report in your organization was submitted for sharing.",
		payload.Severity,
		[]string{payload.OrganizationID})
}

func (n *NotificationService) handleReportShared(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ReportSharedPayload)
	if !ok {
		return nil
	}
	return n.create(ctx, event,
		"Report shared with your organization",
		fmt.Sprintf("Organization %s shared a report with you.", payload.SourceOrgID),
		domain.SeverityMedium,
		[]string{payload.TargetOrgID})
}

func (n *NotificationService) handleReportRevoked(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ReportRevokedPayload)
	if !ok {
		return nil
	}
	return n.create(ctx, event,
		"Report share revoked",
		fmt.Sprintf("Organization %s revoked your access to a report.", payload.SourceOrgID),
		domain.SeverityMedium,
		[]string{payload.TargetOrgID})
}

func (n *NotificationService) handleReportBroadcast(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ReportBroadcastPayload)
	if !ok {
		return nil
	}
	orgs, err := n.orgs.List(ctx)
	if err != nil {
		n.logger.Error("broadcast fan-out failed", zap.Error(err))
		return err
	}
	orgIDs := make([]string, 0, len(orgs))
	for _, org := range orgs {
		orgIDs = append(orgIDs, org.ID)
	}
	return n.create(ctx, event,
		fmt.Sprintf("Network broadcast: %s", payload.Title),
		"A report was broadcast to the whole exchange network.",
		payload.Severity,
		orgIDs)
}

func (n *NotificationService) handleReportRemoved(ctx context.Context, event events.Event) error {
	if _, ok := event.Payload.(events.ReportRemovedPayload); !ok {
		return nil
	}
	orgs, err := n.orgs.List(ctx)
	if err != nil {
		return err
	}
	orgIDs := make([]string, 0, len(orgs))
	for _, org := range orgs {
		orgIDs = append(orgIDs, org.ID)
	}
	return n.create(ctx, event,
		"Report removed from network",
		"A previously broadcast report was withdrawn from the network.",
		domain.SeverityLow,
		orgIDs)
}

func (n *NotificationService) create(ctx context.Context, event events.Event, title, description string, severity domain.ReportSeverity, orgIDs []string) error {
	notification := &domain.Notification{
		Title:           title,
		Description:     description,
		Severity:        severity,
		Status:          domain.NotificationUnread,
		OrganizationIDs: orgIDs,
		ReportIDs:       []string{event.ReportID},
		RecipientEmails: n.recipientEmails(ctx, orgIDs),
		Actions: []domain.NotificationAction{
			{Type: string(event.Type), Date: event.Timestamp, Details: "actor " + event.ActorID},
		},
	}
	if err := n.notifications.Create(ctx, notification); err != nil {
		n.logger.Error("create notification", zap.String("event", string(event.Type)), zap.Error(err))
		return err
	}
	n.logger.Info("notification created",
		zap.String("event", string(event.Type)),
		zap.String("report_id", event.ReportID),
		zap.Int("organizations", len(orgIDs)))
	return nil
}

func (n *NotificationService) recipientEmails(ctx context.Context, orgIDs []string) []string {
	seen := map[string]struct{}{}
	emails := []string{}
	for _, orgID := range orgIDs {
		org, err := n.orgs.GetByID(ctx, orgID)
		if err != nil {
			continue
		}
		memberIDs := append([]string{org.FounderID}, org.MemberIDs...)
		for _, userID := range memberIDs {
			user, err := n.users.GetByID(ctx, userID)
			if err != nil {
				continue
			}
			if _, dup := seen[user.Email]; dup {
				continue
			}
			seen[user.Email] = struct{}{}
			emails = append(emails, user.Email)
		}
	}
	return emails
}
