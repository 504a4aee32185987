package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cybershield/threat-exchange/internal/domain"
	"github.com/cybershield/threat-exchange/internal/repository"
	apperrors "github.com/cybershield/threat-exchange/pkg/util"
)

// In-memory repositories mirroring the postgres implementations' contracts:
// ids are assigned on create, missing rows come back as pgx.ErrNoRows, and
// report updates are version-checked.

type fakeReportRepo struct {
	seq     int
	reports map[string]*domain.Report
	shares  map[string]map[string]bool
}

func newFakeReportRepo() *fakeReportRepo {
	return &fakeReportRepo{
		reports: make(map[string]*domain.Report),
		shares:  make(map[string]map[string]bool),
	}
}

func (r *fakeReportRepo) Create(ctx context.Context, report *domain.Report) error {
	r.seq++
	report.ID = fmt.Sprintf("report-%d", r.seq)
	report.Version = 1
	report.CreatedAt = time.Now()
	report.UpdatedAt = report.CreatedAt
	clone := *report
	r.reports[report.ID] = &clone
	return nil
}

func (r *fakeReportRepo) Update(ctx context.Context, report *domain.Report) error {
	stored, ok := r.reports[report.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if stored.Version != report.Version {
		return repository.ErrStaleVersion
	}
	report.Version++
	report.UpdatedAt = time.Now()
	clone := *report
	r.reports[report.ID] = &clone
	return nil
}

func (r *fakeReportRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.reports[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.reports, id)
	delete(r.shares, id)
	return nil
}

func (r *fakeReportRepo) GetByID(ctx context.Context, id string) (*domain.Report, error) {
	stored, ok := r.reports[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *stored
	clone.SharedWith = r.sharedWith(id)
	return &clone, nil
}

func (r *fakeReportRepo) ListByOrganizations(ctx context.Context, orgIDs []string) ([]domain.Report, error) {
	member := make(map[string]bool, len(orgIDs))
	for _, id := range orgIDs {
		member[id] = true
	}
	var out []domain.Report
	for id, stored := range r.reports {
		visible := member[stored.OrganizationID]
		for orgID := range r.shares[id] {
			if member[orgID] {
				visible = true
			}
		}
		if visible {
			clone := *stored
			clone.SharedWith = r.sharedWith(id)
			out = append(out, clone)
		}
	}
	return out, nil
}

func (r *fakeReportRepo) AddShare(ctx context.Context, reportID, orgID string) error {
	if _, ok := r.reports[reportID]; !ok {
		return pgx.ErrNoRows
	}
	if r.shares[reportID] == nil {
		r.shares[reportID] = make(map[string]bool)
	}
	r.shares[reportID][orgID] = true
	return nil
}

func (r *fakeReportRepo) RemoveShare(ctx context.Context, reportID, orgID string) error {
	delete(r.shares[reportID], orgID)
	return nil
}

func (r *fakeReportRepo) sharedWith(reportID string) []string {
	out := make([]string, 0, len(r.shares[reportID]))
	for orgID := range r.shares[reportID] {
		out = append(out, orgID)
	}
	return out
}

type fakeOrgRepo struct {
	seq  int
	orgs map[string]*domain.Organization
}

func newFakeOrgRepo() *fakeOrgRepo {
	return &fakeOrgRepo{orgs: make(map[string]*domain.Organization)}
}

func (r *fakeOrgRepo) Create(ctx context.Context, org *domain.Organization) error {
	r.seq++
	org.ID = fmt.Sprintf("org-%d", r.seq)
	org.CreatedAt = time.Now()
	org.UpdatedAt = org.CreatedAt
	clone := *org
	r.orgs[org.ID] = &clone
	return nil
}

func (r *fakeOrgRepo) Update(ctx context.Context, org *domain.Organization) error {
	if _, ok := r.orgs[org.ID]; !ok {
		return pgx.ErrNoRows
	}
	org.UpdatedAt = time.Now()
	clone := *org
	r.orgs[org.ID] = &clone
	return nil
}

func (r *fakeOrgRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.orgs[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.orgs, id)
	return nil
}

func (r *fakeOrgRepo) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	stored, ok := r.orgs[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *stored
	return &clone, nil
}

func (r *fakeOrgRepo) List(ctx context.Context) ([]domain.Organization, error) {
	var out []domain.Organization
	for _, org := range r.orgs {
		out = append(out, *org)
	}
	return out, nil
}

func (r *fakeOrgRepo) ListByMember(ctx context.Context, userID string) ([]domain.Organization, error) {
	var out []domain.Organization
	for _, org := range r.orgs {
		if org.HasMember(userID) {
			out = append(out, *org)
		}
	}
	return out, nil
}

func (r *fakeOrgRepo) ReplaceMembers(ctx context.Context, orgID string, memberIDs []string) error {
	stored, ok := r.orgs[orgID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.MemberIDs = append([]string(nil), memberIDs...)
	return nil
}

type fakeActionRepo struct {
	seq     int
	actions []domain.ResponseAction
}

func (r *fakeActionRepo) Create(ctx context.Context, action *domain.ResponseAction) error {
	r.seq++
	action.ID = fmt.Sprintf("action-%d", r.seq)
	action.CreatedAt = time.Now()
	r.actions = append(r.actions, *action)
	return nil
}

func (r *fakeActionRepo) ListByReport(ctx context.Context, reportID string) ([]domain.ResponseAction, error) {
	var out []domain.ResponseAction
	for _, action := range r.actions {
		if action.ReportID == reportID {
			out = append(out, action)
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	seq   int
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.seq++
	user.ID = fmt.Sprintf("user-%d", r.seq)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	user.UpdatedAt = time.Now()
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	stored, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *stored
	return &clone, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) List(ctx context.Context) ([]domain.User, error) {
	var out []domain.User
	for _, user := range r.users {
		out = append(out, *user)
	}
	return out, nil
}

func (r *fakeUserRepo) OrganizationIDs(ctx context.Context, userID string) ([]string, error) {
	stored, ok := r.users[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return append([]string(nil), stored.OrganizationIDs...), nil
}

type fakeNotificationRepo struct {
	seq           int
	notifications map[string]*domain.Notification
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{notifications: make(map[string]*domain.Notification)}
}

func (r *fakeNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	r.seq++
	n.ID = fmt.Sprintf("notification-%d", r.seq)
	n.CreatedAt = time.Now()
	n.UpdatedAt = n.CreatedAt
	clone := *n
	r.notifications[n.ID] = &clone
	return nil
}

func (r *fakeNotificationRepo) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	stored, ok := r.notifications[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *stored
	return &clone, nil
}

func (r *fakeNotificationRepo) ListByOrganizations(ctx context.Context, orgIDs []string) ([]domain.Notification, error) {
	member := make(map[string]bool, len(orgIDs))
	for _, id := range orgIDs {
		member[id] = true
	}
	var out []domain.Notification
	for _, n := range r.notifications {
		for _, orgID := range n.OrganizationIDs {
			if member[orgID] {
				out = append(out, *n)
				break
			}
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) UpdateStatus(ctx context.Context, id string, status domain.NotificationStatus) error {
	stored, ok := r.notifications[id]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.Status = status
	return nil
}

func (r *fakeNotificationRepo) AppendAction(ctx context.Context, id string, action domain.NotificationAction) error {
	stored, ok := r.notifications[id]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.Actions = append(stored.Actions, action)
	return nil
}

type fakeDenylist struct {
	revoked map[string]bool
}

func newFakeDenylist() *fakeDenylist {
	return &fakeDenylist{revoked: make(map[string]bool)}
}

func (d *fakeDenylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	d.revoked[tokenID] = true
	return nil
}

func (d *fakeDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	return d.revoked[tokenID], nil
}

// errCode extracts the DomainError code, or "" for foreign errors.
func errCode(err error) string {
	if de := apperrors.ToDomainError(err); de != nil {
		return de.Code
	}
	return ""
}
