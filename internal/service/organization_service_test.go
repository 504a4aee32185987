package service

import (
	"context"
	"reflect"
	"testing"

	"github.com/cybershield/threat-exchange/internal/domain"
)

func TestOrganizationCreate(t *testing.T) {
	svc := NewOrganizationService(newFakeOrgRepo())
	founder := &domain.User{ID: "u1"}
	ctx := context.Background()

	org, err := svc.Create(ctx, founder, "  Acme SOC  ", []string{"u2", "u2", "", "u3"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if org.Name != "Acme SOC" {
		t.Errorf("name = %q, want trimmed Acme SOC", org.Name)
	}
	if org.FounderID != "u1" {
		t.Errorf("founder = %q, want u1", org.FounderID)
	}
	if !reflect.DeepEqual(org.MemberIDs, []string{"u2", "u3"}) {
		t.Errorf("members = %v, want deduplicated [u2 u3]", org.MemberIDs)
	}
	if !org.HasMember("u1") {
		t.Error("the founder is always a member")
	}

	if _, err := svc.Create(ctx, founder, "   ", nil); errCode(err) != "VALIDATION_FAILED" {
		t.Errorf("blank name code = %q, want VALIDATION_FAILED", errCode(err))
	}
}

func TestOrganizationUpdateFounderOnly(t *testing.T) {
	repo := newFakeOrgRepo()
	svc := NewOrganizationService(repo)
	founder := &domain.User{ID: "u1"}
	member := &domain.User{ID: "u2"}
	ctx := context.Background()

	org, err := svc.Create(ctx, founder, "Acme SOC", []string{"u2"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	name := "Acme CERT"
	if _, err := svc.Update(ctx, member, org.ID, OrganizationUpdate{Name: &name}); errCode(err) != "FORBIDDEN" {
		t.Errorf("member update code = %q, want FORBIDDEN", errCode(err))
	}

	members := []string{"u2", "u4"}
	updated, err := svc.Update(ctx, founder, org.ID, OrganizationUpdate{Name: &name, MemberIDs: &members})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "Acme CERT" {
		t.Errorf("name = %q, want Acme CERT", updated.Name)
	}
	if !reflect.DeepEqual(updated.MemberIDs, []string{"u2", "u4"}) {
		t.Errorf("members = %v, want [u2 u4]", updated.MemberIDs)
	}

	stored, _ := repo.GetByID(ctx, org.ID)
	if !reflect.DeepEqual(stored.MemberIDs, []string{"u2", "u4"}) {
		t.Errorf("persisted members = %v, want [u2 u4]", stored.MemberIDs)
	}
}

func TestOrganizationDelete(t *testing.T) {
	repo := newFakeOrgRepo()
	svc := NewOrganizationService(repo)
	founder := &domain.User{ID: "u1"}
	outsider := &domain.User{ID: "u9"}
	ctx := context.Background()

	org, err := svc.Create(ctx, founder, "Acme SOC", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Delete(ctx, outsider, org.ID); errCode(err) != "FORBIDDEN" {
		t.Errorf("outsider delete code = %q, want FORBIDDEN", errCode(err))
	}
	if err := svc.Delete(ctx, founder, org.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(ctx, founder, org.ID); errCode(err) != "NOT_FOUND" {
		t.Errorf("double delete code = %q, want NOT_FOUND", errCode(err))
	}
}

func TestOrganizationListForUser(t *testing.T) {
	repo := newFakeOrgRepo()
	svc := NewOrganizationService(repo)
	ctx := context.Background()

	if _, err := svc.Create(ctx, &domain.User{ID: "u1"}, "Acme SOC", []string{"u2"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(ctx, &domain.User{ID: "u3"}, "Beta CERT", nil); err != nil {
		t.Fatal(err)
	}

	mine, err := svc.ListForUser(ctx, "u2")
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(mine) != 1 || mine[0].Name != "Acme SOC" {
		t.Errorf("u2 organizations = %+v, want only Acme SOC", mine)
	}

	founderView, err := svc.ListForUser(ctx, "u3")
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(founderView) != 1 || founderView[0].Name != "Beta CERT" {
		t.Errorf("founder should see their organization, got %+v", founderView)
	}
}
