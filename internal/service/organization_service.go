package service

import (
	"context"
	"strings"

	"github.com/cybershield/threat-exchange/internal/domain"
	"github.com/cybershield/threat-exchange/internal/repository"
	apperrors "github.com/cybershield/threat-exchange/pkg/util"
)

// OrganizationService coordinates tenant management. Renames, membership
// changes and deletion are restricted to the founder.
type OrganizationService struct {
	orgs repository.OrganizationRepository
}

// NewOrganizationService constructs the service.
func NewOrganizationService(orgs repository.OrganizationRepository) *OrganizationService {
	return &OrganizationService{orgs: orgs}
}

// OrganizationUpdate carries mutable organization fields. Nil fields are left
// unchanged.
type OrganizationUpdate struct {
	Name      *string
	MemberIDs *[]string
}

// Create founds a new organization owned by the caller.
func (s *OrganizationService) Create(ctx context.Context, founder *domain.User, name string, memberIDs []string) (*domain.Organization, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	org := &domain.Organization{
		Name:      name,
		FounderID: founder.ID,
		MemberIDs: uniqueIDs(memberIDs),
	}
	if err := s.orgs.Create(ctx, org); err != nil {
		return nil, err
	}
	return org, nil
}

// Update renames the organization or replaces its membership. Founder only.
func (s *OrganizationService) Update(ctx context.Context, caller *domain.User, orgID string, update OrganizationUpdate) (*domain.Organization, error) {
	org, err := s.orgs.GetByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if org.FounderID != caller.ID {
		return nil, apperrors.NewForbidden("only the founder may modify the organization")
	}
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("name required", nil)
		}
		org.Name = name
		if err := s.orgs.Update(ctx, org); err != nil {
			return nil, err
		}
	}
	if update.MemberIDs != nil {
		org.MemberIDs = uniqueIDs(*update.MemberIDs)
		if err := s.orgs.ReplaceMembers(ctx, org.ID, org.MemberIDs); err != nil {
			return nil, err
		}
	}
	return org, nil
}

// Delete removes the organization. Founder only.
func (s *OrganizationService) Delete(ctx context.Context, caller *domain.User, orgID string) error {
	org, err := s.orgs.GetByID(ctx, orgID)
	if err != nil {
		return err
	}
	if org.FounderID != caller.ID {
		return apperrors.NewForbidden("only the founder may delete the organization")
	}
	return s.orgs.Delete(ctx, orgID)
}

// List returns every organization on the exchange.
func (s *OrganizationService) List(ctx context.Context) ([]domain.Organization, error) {
	return s.orgs.List(ctx)
}

// ListForUser returns the organizations the caller belongs to.
func (s *OrganizationService) ListForUser(ctx context.Context, userID string) ([]domain.Organization, error) {
	return s.orgs.ListByMember(ctx, userID)
}

// Get returns one organization.
func (s *OrganizationService) Get(ctx context.Context, orgID string) (*domain.Organization, error) {
	return s.orgs.GetByID(ctx, orgID)
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
