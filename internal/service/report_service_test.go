package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/cybershield/threat-exchange/internal/domain"
	"github.com/cybershield/threat-exchange/internal/events"
)

type reportFixture struct {
	service  *ReportService
	reports  *fakeReportRepo
	orgs     *fakeOrgRepo
	events   []events.Event
	provider *domain.User
	consumer *domain.User
	gov      *domain.User
}

func newReportFixture(t *testing.T) *reportFixture {
	t.Helper()
	f := &reportFixture{
		reports: newFakeReportRepo(),
		orgs:    newFakeOrgRepo(),
	}
	dispatcher := events.NewInMemoryDispatcher()
	for _, eventType := range []events.EventType{
		events.EventReportSubmitted,
		events.EventReportShared,
		events.EventReportRevoked,
		events.EventReportBroadcast,
		events.EventReportRemovedFromNetwork,
	} {
		dispatcher.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
			f.events = append(f.events, event)
			return nil
		})
	}
	f.service = NewReportService(ReportDependencies{
		ReportRepo:         f.reports,
		OrganizationRepo:   f.orgs,
		ResponseActionRepo: &fakeActionRepo{},
		Dispatcher:         dispatcher,
	})

	ctx := context.Background()
	source := &domain.Organization{Name: "Acme SOC", FounderID: "founder-a"}
	target := &domain.Organization{Name: "Beta CERT", FounderID: "founder-b"}
	if err := f.orgs.Create(ctx, source); err != nil {
		t.Fatal(err)
	}
	if err := f.orgs.Create(ctx, target); err != nil {
		t.Fatal(err)
	}

	f.provider = &domain.User{ID: "u-provider", Role: domain.RoleDataProvider, OrganizationIDs: []string{source.ID}}
	f.consumer = &domain.User{ID: "u-consumer", Role: domain.RoleDataConsumer, OrganizationIDs: []string{target.ID}}
	f.gov = &domain.User{ID: "u-gov", Role: domain.RoleGovBody}
	return f
}

func (f *reportFixture) sourceOrg() string { return "org-1" }
func (f *reportFixture) targetOrg() string { return "org-2" }

func (f *reportFixture) draft(t *testing.T) *domain.Report {
	t.Helper()
	report, err := f.service.Create(context.Background(), f.provider, ReportCreateInput{
		OrganizationID: f.sourceOrg(),
		Title:          "Phishing wave",
		Description:    "credential harvesting campaign",
		TypeOfThreat:   "phishing",
		Severity:       domain.SeverityHigh,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return report
}

func (f *reportFixture) submitted(t *testing.T) *domain.Report {
	t.Helper()
	report := f.draft(t)
	submitted, err := f.service.Submit(context.Background(), f.provider, report.ID)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	return submitted
}

func TestReportCreate(t *testing.T) {
	f := newReportFixture(t)
	report := f.draft(t)

	if report.ID == "" {
		t.Error("create should assign an id")
	}
	if report.Status != "Draft" || report.Submitted {
		t.Errorf("new report should be a draft: %+v", report)
	}
	if report.Version != 1 {
		t.Errorf("version = %d, want 1", report.Version)
	}
	if report.Lifecycle() != domain.LifecycleDraft {
		t.Errorf("lifecycle = %v, want Draft", report.Lifecycle())
	}

	visible, err := f.service.ListForUser(context.Background(), f.provider)
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(visible) != 1 || visible[0].ID != report.ID {
		t.Errorf("created report should be visible to its author, got %+v", visible)
	}
}

func TestReportCreateValidation(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()
	badScore := 150.0

	tests := []struct {
		name  string
		user  *domain.User
		input ReportCreateInput
		code  string
	}{
		{"non-member", f.consumer, ReportCreateInput{OrganizationID: f.sourceOrg(), Title: "x", Severity: domain.SeverityLow}, "FORBIDDEN"},
		{"unknown severity", f.provider, ReportCreateInput{OrganizationID: f.sourceOrg(), Title: "x", Severity: "EXTREME"}, "VALIDATION_FAILED"},
		{"risk score out of range", f.provider, ReportCreateInput{OrganizationID: f.sourceOrg(), Title: "x", Severity: domain.SeverityLow, RiskScore: &badScore}, "VALIDATION_FAILED"},
		{"blank title", f.provider, ReportCreateInput{OrganizationID: f.sourceOrg(), Title: "   ", Severity: domain.SeverityLow}, "VALIDATION_FAILED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Create(ctx, tt.user, tt.input)
			if errCode(err) != tt.code {
				t.Errorf("code = %q, want %q (err %v)", errCode(err), tt.code, err)
			}
		})
	}
}

func TestReportSubmit(t *testing.T) {
	f := newReportFixture(t)
	report := f.submitted(t)

	if !report.Submitted || report.SubmittedAt == nil || report.Status != "Submitted" {
		t.Errorf("submit did not finalize the report: %+v", report)
	}
	if report.Lifecycle() != domain.LifecycleSubmitted {
		t.Errorf("lifecycle = %v, want Submitted", report.Lifecycle())
	}
	if len(f.events) != 1 || f.events[0].Type != events.EventReportSubmitted {
		t.Errorf("expected one submitted event, got %+v", f.events)
	}

	// Submission is one-way.
	if _, err := f.service.Submit(context.Background(), f.provider, report.ID); errCode(err) != "CONFLICT" {
		t.Errorf("resubmit code = %q, want CONFLICT", errCode(err))
	}
}

func TestSubmittedReportIsFrozen(t *testing.T) {
	f := newReportFixture(t)
	report := f.submitted(t)
	ctx := context.Background()
	title := "edited"

	if _, err := f.service.Update(ctx, f.provider, report.ID, ReportUpdateInput{Title: &title}); errCode(err) != "CONFLICT" {
		t.Errorf("update code = %q, want CONFLICT", errCode(err))
	}
	if err := f.service.Delete(ctx, f.provider, report.ID); errCode(err) != "CONFLICT" {
		t.Errorf("delete code = %q, want CONFLICT", errCode(err))
	}
}

func TestReportGetVisibility(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()
	report := f.draft(t)

	got, err := f.service.Get(ctx, f.provider, report.ID)
	if err != nil {
		t.Fatalf("owner Get: %v", err)
	}
	if got.ID != report.ID {
		t.Errorf("got report %q, want %q", got.ID, report.ID)
	}

	if _, err := f.service.Get(ctx, f.consumer, report.ID); errCode(err) != "FORBIDDEN" {
		t.Errorf("outsider code = %q, want FORBIDDEN", errCode(err))
	}
	if _, err := f.service.Get(ctx, f.gov, report.ID); errCode(err) != "FORBIDDEN" {
		t.Errorf("gov draft code = %q, want FORBIDDEN", errCode(err))
	}
	if _, err := f.service.Get(ctx, f.provider, "missing"); errCode(err) != "NOT_FOUND" {
		t.Errorf("unknown report code = %q, want NOT_FOUND", errCode(err))
	}

	if _, err := f.service.Submit(ctx, f.provider, report.ID); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := f.service.Get(ctx, f.gov, report.ID); err != nil {
		t.Errorf("gov should see submitted reports: %v", err)
	}
	if _, err := f.service.Share(ctx, f.provider, report.ID, f.sourceOrg(), f.targetOrg()); err != nil {
		t.Fatalf("Share: %v", err)
	}
	if _, err := f.service.Get(ctx, f.consumer, report.ID); err != nil {
		t.Errorf("shared-org member should see the report: %v", err)
	}
}

func TestReportUpdatePermissions(t *testing.T) {
	f := newReportFixture(t)
	report := f.draft(t)
	ctx := context.Background()
	title := "edited"

	if _, err := f.service.Update(ctx, f.consumer, report.ID, ReportUpdateInput{Title: &title}); errCode(err) != "FORBIDDEN" {
		t.Errorf("non-member update code = %q, want FORBIDDEN", errCode(err))
	}

	updated, err := f.service.Update(ctx, f.provider, report.ID, ReportUpdateInput{Title: &title})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "edited" {
		t.Errorf("title = %q, want edited", updated.Title)
	}
	if updated.Version != 2 {
		t.Errorf("version = %d, want 2 after one update", updated.Version)
	}
}

func TestReportConcurrentUpdateConflicts(t *testing.T) {
	f := newReportFixture(t)
	report := f.draft(t)
	ctx := context.Background()

	// Two callers read the same version; the second write is stale.
	title := "first"
	if _, err := f.service.Update(ctx, f.provider, report.ID, ReportUpdateInput{Title: &title}); err != nil {
		t.Fatalf("first update: %v", err)
	}
	stale := *report
	stale.Title = "second"
	if err := f.reports.Update(ctx, &stale); err == nil {
		t.Fatal("stale write should fail")
	}

	title = "second"
	if _, err := f.service.Update(ctx, f.provider, report.ID, ReportUpdateInput{Title: &title}); err != nil {
		t.Errorf("a fresh read-modify-write should succeed: %v", err)
	}
}

func TestReportDelete(t *testing.T) {
	f := newReportFixture(t)
	report := f.draft(t)
	ctx := context.Background()

	if err := f.service.Delete(ctx, f.consumer, report.ID); errCode(err) != "FORBIDDEN" {
		t.Errorf("non-member delete code = %q, want FORBIDDEN", errCode(err))
	}
	if err := f.service.Delete(ctx, f.provider, report.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := f.reports.GetByID(ctx, report.ID); err != pgx.ErrNoRows {
		t.Error("deleted report should be gone")
	}
}

func TestReportShareAndRevoke(t *testing.T) {
	f := newReportFixture(t)
	report := f.submitted(t)
	ctx := context.Background()

	shared, err := f.service.Share(ctx, f.provider, report.ID, f.sourceOrg(), f.targetOrg())
	if err != nil {
		t.Fatalf("Share: %v", err)
	}
	if !shared.IsSharedWith(f.targetOrg()) {
		t.Errorf("shared_with = %v, want it to include %s", shared.SharedWith, f.targetOrg())
	}
	if shared.Lifecycle() != domain.LifecycleShared {
		t.Errorf("lifecycle = %v, want Shared", shared.Lifecycle())
	}

	// The target organization's members can now see it.
	visible, err := f.service.ListForUser(ctx, f.consumer)
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(visible) != 1 {
		t.Errorf("consumer sees %d reports, want 1", len(visible))
	}

	// Revoking the only share restores plain Submitted.
	revoked, err := f.service.Revoke(ctx, f.provider, report.ID, f.sourceOrg(), f.targetOrg())
	if err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if revoked.Lifecycle() != domain.LifecycleSubmitted {
		t.Errorf("lifecycle after revoke = %v, want Submitted", revoked.Lifecycle())
	}
	if visible, _ := f.service.ListForUser(ctx, f.consumer); len(visible) != 0 {
		t.Errorf("consumer still sees %d reports after revoke", len(visible))
	}
}

func TestReportSharePreconditions(t *testing.T) {
	f := newReportFixture(t)
	draft := f.draft(t)
	submitted := f.submitted(t)
	ctx := context.Background()

	tests := []struct {
		name                     string
		user                     *domain.User
		reportID, source, target string
		code                     string
	}{
		{"same source and target", f.provider, submitted.ID, f.sourceOrg(), f.sourceOrg(), "VALIDATION_FAILED"},
		{"report not owned by source", f.provider, submitted.ID, f.targetOrg(), f.sourceOrg(), "VALIDATION_FAILED"},
		{"caller not in source org", f.consumer, submitted.ID, f.sourceOrg(), f.targetOrg(), "FORBIDDEN"},
		{"draft cannot be shared", f.provider, draft.ID, f.sourceOrg(), f.targetOrg(), "CONFLICT"},
		{"unknown report", f.provider, "missing", f.sourceOrg(), f.targetOrg(), "NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Share(ctx, tt.user, tt.reportID, tt.source, tt.target)
			if errCode(err) != tt.code {
				t.Errorf("code = %q, want %q (err %v)", errCode(err), tt.code, err)
			}
		})
	}

	t.Run("revoking an absent share", func(t *testing.T) {
		_, err := f.service.Revoke(ctx, f.provider, submitted.ID, f.sourceOrg(), f.targetOrg())
		if errCode(err) != "CONFLICT" {
			t.Errorf("code = %q, want CONFLICT", errCode(err))
		}
	})
}

func TestReportBroadcast(t *testing.T) {
	f := newReportFixture(t)
	report := f.submitted(t)
	ctx := context.Background()

	if _, err := f.service.Broadcast(ctx, f.provider, report.ID); errCode(err) != "FORBIDDEN" {
		t.Errorf("non-gov broadcast code = %q, want FORBIDDEN", errCode(err))
	}

	broadcast, err := f.service.Broadcast(ctx, f.gov, report.ID)
	if err != nil {
		t.Fatalf("Broadcast: %v", err)
	}
	if broadcast.NetworkStatus != domain.NetworkStatusBroadcast {
		t.Errorf("network status = %v, want BROADCAST", broadcast.NetworkStatus)
	}
	if broadcast.Lifecycle() != domain.LifecycleBroadcast {
		t.Errorf("lifecycle = %v, want Broadcast", broadcast.Lifecycle())
	}

	draft := f.draft(t)
	if _, err := f.service.Broadcast(ctx, f.gov, draft.ID); errCode(err) != "CONFLICT" {
		t.Errorf("draft broadcast code = %q, want CONFLICT", errCode(err))
	}
}

func TestReportRemoveFromNetworkIsTerminal(t *testing.T) {
	f := newReportFixture(t)
	report := f.submitted(t)
	ctx := context.Background()

	if _, err := f.service.Broadcast(ctx, f.gov, report.ID); err != nil {
		t.Fatalf("Broadcast: %v", err)
	}
	removed, err := f.service.RemoveFromNetwork(ctx, f.gov, report.ID)
	if err != nil {
		t.Fatalf("RemoveFromNetwork: %v", err)
	}
	if removed.Lifecycle() != domain.LifecycleRemoved {
		t.Errorf("lifecycle = %v, want RemovedFromNetwork", removed.Lifecycle())
	}

	if _, err := f.service.Broadcast(ctx, f.gov, report.ID); errCode(err) != "CONFLICT" {
		t.Errorf("broadcast after removal code = %q, want CONFLICT", errCode(err))
	}
	if _, err := f.service.RemoveFromNetwork(ctx, f.gov, report.ID); errCode(err) != "CONFLICT" {
		t.Errorf("double removal code = %q, want CONFLICT", errCode(err))
	}
}

func TestResponseActions(t *testing.T) {
	f := newReportFixture(t)
	report := f.submitted(t)
	ctx := context.Background()

	// Outsiders without a share cannot propose.
	if _, err := f.service.ProposeResponseAction(ctx, f.consumer, report.ID, "isolate host"); errCode(err) != "FORBIDDEN" {
		t.Errorf("outsider code = %q, want FORBIDDEN", errCode(err))
	}

	if _, err := f.service.Share(ctx, f.provider, report.ID, f.sourceOrg(), f.targetOrg()); err != nil {
		t.Fatalf("Share: %v", err)
	}
	action, err := f.service.ProposeResponseAction(ctx, f.consumer, report.ID, "isolate host")
	if err != nil {
		t.Fatalf("ProposeResponseAction: %v", err)
	}
	if action.ProposedByID != f.consumer.ID {
		t.Errorf("proposer = %q, want %q", action.ProposedByID, f.consumer.ID)
	}

	if _, err := f.service.ProposeResponseAction(ctx, f.provider, report.ID, "   "); errCode(err) != "VALIDATION_FAILED" {
		t.Errorf("blank description code = %q, want VALIDATION_FAILED", errCode(err))
	}

	// GovBody can read the log of any submitted report.
	actions, err := f.service.ListResponseActions(ctx, f.gov, report.ID)
	if err != nil {
		t.Fatalf("ListResponseActions: %v", err)
	}
	if len(actions) != 1 {
		t.Errorf("log holds %d actions, want 1", len(actions))
	}
}
