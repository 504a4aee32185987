package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cybershield/threat-exchange/internal/domain"
	"github.com/cybershield/threat-exchange/internal/events"
	"github.com/cybershield/threat-exchange/internal/repository"
	apperrors "github.com/cybershield/threat-exchange/pkg/util"
)

// ReportService coordinates the report lifecycle: draft editing, submission,
// organization-to-organization sharing and network broadcast.
type ReportService struct {
	reports    repository.ReportRepository
	orgs       repository.OrganizationRepository
	actions    repository.ResponseActionRepository
	dispatcher events.Dispatcher
}

// ReportDependencies bundles repositories for the report service.
type ReportDependencies struct {
	ReportRepo         repository.ReportRepository
	OrganizationRepo   repository.OrganizationRepository
	ResponseActionRepo repository.ResponseActionRepository
	Dispatcher         events.Dispatcher
}

// NewReportService constructs the service.
func NewReportService(deps ReportDependencies) *ReportService {
	return &ReportService{
		reports:    deps.ReportRepo,
		orgs:       deps.OrganizationRepo,
		actions:    deps.ResponseActionRepo,
		dispatcher: deps.Dispatcher,
	}
}

// ReportCreateInput describes report creation payload.
type ReportCreateInput struct {
	OrganizationID string
	Title          string
	Description    string
	TypeOfThreat   string
	Severity       domain.ReportSeverity
	Status         string
	STIX           string
	RiskScore      *float64
}

// ReportUpdateInput carries mutable draft fields. Nil fields are left
// unchanged.
type ReportUpdateInput struct {
	Title        *string
	Description  *string
	TypeOfThreat *string
	Severity     *domain.ReportSeverity
	Status       *string
	STIX         *string
	RiskScore    *float64
}

// CanModify reports whether the caller may act on the report: the report's
// owning organization must be among the caller's memberships.
func CanModify(user *domain.User, report *domain.Report) bool {
	if user == nil || report == nil {
		return false
	}
	return user.MemberOf(report.OrganizationID)
}

// CanDelete additionally requires the report to still be a draft.
func CanDelete(user *domain.User, report *domain.Report) bool {
	return CanModify(user, report) && !report.Submitted
}

// Create creates a draft report owned by one of the caller's organizations.
func (s *ReportService) Create(ctx context.Context, user *domain.User, input ReportCreateInput) (*domain.Report, error) {
	if !user.MemberOf(input.OrganizationID) {
		return nil, apperrors.NewForbidden("not a member of the owning organization")
	}
	if !domain.ValidSeverity(input.Severity) {
		return nil, apperrors.NewValidationError("unknown severity", map[string]any{"severity": input.Severity})
	}
	if input.RiskScore != nil && (*input.RiskScore < 0 || *input.RiskScore > 100) {
		return nil, apperrors.NewValidationError("risk score must be between 0 and 100", nil)
	}

	report := &domain.Report{
		Title:          strings.TrimSpace(input.Title),
		Description:    strings.TrimSpace(input.Description),
		TypeOfThreat:   input.TypeOfThreat,
		Severity:       input.Severity,
		Status:         input.Status,
		STIX:           input.STIX,
		RiskScore:      input.RiskScore,
		AuthorID:       user.ID,
		OrganizationID: input.OrganizationID,
		NetworkStatus:  domain.NetworkStatusNone,
	}
	if report.Title == "" {
		return nil, apperrors.NewValidationError("title required", nil)
	}
	if report.Status == "" {
		report.Status = "Draft"
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// Update edits a draft report. Submitted reports are frozen except for
// lifecycle transitions.
func (s *ReportService) Update(ctx context.Context, user *domain.User, reportID string, input ReportUpdateInput) (*domain.Report, error) {
	report, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if !CanModify(user, report) {
		return nil, apperrors.NewForbidden("not a member of the owning organization")
	}
	if report.Submitted {
		return nil, apperrors.NewConflict("submitted reports cannot be edited", nil)
	}

	if input.Title != nil {
		report.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		report.Description = strings.TrimSpace(*input.Description)
	}
	if input.TypeOfThreat != nil {
		report.TypeOfThreat = *input.TypeOfThreat
	}
	if input.Severity != nil {
		if !domain.ValidSeverity(*input.Severity) {
			return nil, apperrors.NewValidationError("unknown severity", map[string]any{"severity": *input.Severity})
		}
		report.Severity = *input.Severity
	}
	if input.Status != nil {
		report.Status = *input.Status
	}
	if input.STIX != nil {
		report.STIX = *input.STIX
	}
	if input.RiskScore != nil {
		if *input.RiskScore < 0 || *input.RiskScore > 100 {
			return nil, apperrors.NewValidationError("risk score must be between 0 and 100", nil)
		}
		report.RiskScore = input.RiskScore
	}

	if err := s.reports.Update(ctx, report); err != nil {
		return nil, mapVersionErr(err)
	}
	return report, nil
}

// Delete removes a draft report. Submitted reports cannot be deleted.
func (s *ReportService) Delete(ctx context.Context, user *domain.User, reportID string) error {
	report, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		return err
	}
	if !CanModify(user, report) {
		return apperrors.NewForbidden("not a member of the owning organization")
	}
	if report.Submitted {
		return apperrors.NewConflict("submitted reports cannot be deleted", nil)
	}
	return s.reports.Delete(ctx, reportID)
}

// ListForUser returns reports owned by or shared with the caller's
// organizations.
func (s *ReportService) ListForUser(ctx context.Context, user *domain.User) ([]domain.Report, error) {
	return s.reports.ListByOrganizations(ctx, user.OrganizationIDs)
}

// Get returns one report, gated by visibility.
func (s *ReportService) Get(ctx context.Context, user *domain.User, reportID string) (*domain.Report, error) {
	report, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if !s.canView(user, report) {
		return nil, apperrors.NewForbidden("no access to this report")
	}
	return report, nil
}

// Submit moves a draft into the submitted state. Re-submitting is rejected.
func (s *ReportService) Submit(ctx context.Context, user *domain.User, reportID string) (*domain.Report, error) {
	report, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if !CanModify(user, report) {
		return nil, apperrors.NewForbidden("not a member of the owning organization")
	}
	if report.Submitted {
		return nil, apperrors.NewConflict("report already submitted", nil)
	}

	now := time.Now()
	report.Submitted = true
	report.SubmittedAt = &now
	report.Status = "Submitted"
	if err := s.reports.Update(ctx, report); err != nil {
		return nil, mapVersionErr(err)
	}

	s.publish(ctx, events.Event{
		Type:     events.EventReportSubmitted,
		ReportID: report.ID,
		ActorID:  user.ID,
		Payload: events.ReportSubmittedPayload{
			OrganizationID: report.OrganizationID,
			Title:          report.Title,
			Severity:       report.Severity,
			SubmittedAt:    now,
		},
	})
	return report, nil
}

// Share grants the target organization access to a submitted report and
// returns the canonical copy.
func (s *ReportService) Share(ctx context.Context, user *domain.User, reportID, sourceOrgID, targetOrgID string) (*domain.Report, error) {
	report, err := s.prepareShareOp(ctx, user, reportID, sourceOrgID, targetOrgID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(report.Lifecycle(), domain.LifecycleShared) {
		return nil, apperrors.NewConflict("report cannot be shared in its current state", nil)
	}
	if _, err := s.orgs.GetByID(ctx, targetOrgID); err != nil {
		return nil, err
	}
	if err := s.reports.AddShare(ctx, reportID, targetOrgID); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventReportShared,
		ReportID: reportID,
		ActorID:  user.ID,
		Payload:  events.ReportSharedPayload{SourceOrgID: sourceOrgID, TargetOrgID: targetOrgID},
	})
	return s.reports.GetByID(ctx, reportID)
}

// Revoke withdraws a previously granted share and returns the canonical copy.
func (s *ReportService) Revoke(ctx context.Context, user *domain.User, reportID, sourceOrgID, targetOrgID string) (*domain.Report, error) {
	report, err := s.prepareShareOp(ctx, user, reportID, sourceOrgID, targetOrgID)
	if err != nil {
		return nil, err
	}
	if !report.IsSharedWith(targetOrgID) {
		return nil, apperrors.NewConflict("report is not shared with the target organization", nil)
	}
	if err := s.reports.RemoveShare(ctx, reportID, targetOrgID); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventReportRevoked,
		ReportID: reportID,
		ActorID:  user.ID,
		Payload:  events.ReportRevokedPayload{SourceOrgID: sourceOrgID, TargetOrgID: targetOrgID},
	})
	return s.reports.GetByID(ctx, reportID)
}

// Broadcast publishes a submitted report to the wider network. GovBody only.
func (s *ReportService) Broadcast(ctx context.Context, user *domain.User, reportID string) (*domain.Report, error) {
	if user.Role != domain.RoleGovBody {
		return nil, apperrors.NewForbidden("broadcast requires the GovBody role")
	}
	report, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if !report.Submitted {
		return nil, apperrors.NewConflict("only submitted reports can be broadcast", nil)
	}
	if !domain.CanTransition(report.Lifecycle(), domain.LifecycleBroadcast) {
		return nil, apperrors.NewConflict("report cannot be broadcast in its current state", nil)
	}

	report.NetworkStatus = domain.NetworkStatusBroadcast
	if err := s.reports.Update(ctx, report); err != nil {
		return nil, mapVersionErr(err)
	}

	s.publish(ctx, events.Event{
		Type:     events.EventReportBroadcast,
		ReportID: report.ID,
		ActorID:  user.ID,
		Payload: events.ReportBroadcastPayload{
			OrganizationID: report.OrganizationID,
			Title:          report.Title,
			Severity:       report.Severity,
		},
	})
	return report, nil
}

// RemoveFromNetwork withdraws a report from the wider network. GovBody only.
func (s *ReportService) RemoveFromNetwork(ctx context.Context, user *domain.User, reportID string) (*domain.Report, error) {
	if user.Role != domain.RoleGovBody {
		return nil, apperrors.NewForbidden("network removal requires the GovBody role")
	}
	report, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(report.Lifecycle(), domain.LifecycleRemoved) {
		return nil, apperrors.NewConflict("report cannot be removed in its current state", nil)
	}

	report.NetworkStatus = domain.NetworkStatusRemoved
	if err := s.reports.Update(ctx, report); err != nil {
		return nil, mapVersionErr(err)
	}

	s.publish(ctx, events.Event{
		Type:     events.EventReportRemovedFromNetwork,
		ReportID: report.ID,
		ActorID:  user.ID,
		Payload:  events.ReportRemovedPayload{OrganizationID: report.OrganizationID},
	})
	return report, nil
}

// ProposeResponseAction appends a remediation note to the report's log.
func (s *ReportService) ProposeResponseAction(ctx context.Context, user *domain.User, reportID, description string) (*domain.ResponseAction, error) {
	report, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if !s.canView(user, report) {
		return nil, apperrors.NewForbidden("no access to this report")
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, apperrors.NewValidationError("description required", nil)
	}

	action := &domain.ResponseAction{
		ReportID:     report.ID,
		Description:  description,
		ProposedByID: user.ID,
	}
	if err := s.actions.Create(ctx, action); err != nil {
		return nil, err
	}
	return action, nil
}

// ListResponseActions reads the report's remediation log.
func (s *ReportService) ListResponseActions(ctx context.Context, user *domain.User, reportID string) ([]domain.ResponseAction, error) {
	report, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if !s.canView(user, report) {
		return nil, apperrors.NewForbidden("no access to this report")
	}
	return s.actions.ListByReport(ctx, reportID)
}

func (s *ReportService) prepareShareOp(ctx context.Context, user *domain.User, reportID, sourceOrgID, targetOrgID string) (*domain.Report, error) {
	if sourceOrgID == targetOrgID {
		return nil, apperrors.NewValidationError("source and target organizations must differ", nil)
	}
	report, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report.OrganizationID != sourceOrgID {
		return nil, apperrors.NewValidationError("report is not owned by the source organization", nil)
	}
	if !user.MemberOf(sourceOrgID) {
		return nil, apperrors.NewForbidden("not a member of the source organization")
	}
	if !report.Submitted {
		return nil, apperrors.NewConflict("only submitted reports can be shared or revoked", nil)
	}
	return report, nil
}

// canView allows members of the owning organization, members of organizations
// holding a share, and GovBody users once the report is on the network.
func (s *ReportService) canView(user *domain.User, report *domain.Report) bool {
	if CanModify(user, report) {
		return true
	}
	for _, orgID := range report.SharedWith {
		if user.MemberOf(orgID) {
			return true
		}
	}
	if user.Role == domain.RoleGovBody && report.Submitted {
		return true
	}
	return false
}

func (s *ReportService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func mapVersionErr(err error) error {
	if err == repository.ErrStaleVersion {
		return apperrors.NewConflict("report was modified concurrently", nil)
	}
	return err
}
