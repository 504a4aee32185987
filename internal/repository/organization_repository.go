package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cybershield/threat-exchange/internal/domain"
)

// OrganizationRepository encapsulates organization persistence.
type OrganizationRepository interface {
	Create(ctx context.Context, org *domain.Organization) error
	Update(ctx context.Context, org *domain.Organization) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Organization, error)
	List(ctx context.Context) ([]domain.Organization, error)
	ListByMember(ctx context.Context, userID string) ([]domain.Organization, error)
	ReplaceMembers(ctx context.Context, orgID string, memberIDs []string) error
}

type organizationRepository struct {
	pool *pgxpool.Pool
}

// NewOrganizationRepository instantiates the repository.
func NewOrganizationRepository(pool *pgxpool.Pool) OrganizationRepository {
	return &organizationRepository{pool: pool}
}

func (r *organizationRepository) Create(ctx context.Context, org *domain.Organization) error {
	const query = `
        INSERT INTO organizations (name, founder_user_id)
        VALUES ($1, $2)
        RETURNING id, created_at, updated_at`
	if err := r.pool.QueryRow(ctx, query, org.Name, org.FounderID).
		Scan(&org.ID, &org.CreatedAt, &org.UpdatedAt); err != nil {
		return err
	}
	if len(org.MemberIDs) > 0 {
		return r.ReplaceMembers(ctx, org.ID, org.MemberIDs)
	}
	return nil
}

func (r *organizationRepository) Update(ctx context.Context, org *domain.Organization) error {
	const query = `UPDATE organizations SET name=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, org.Name, org.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *organizationRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM organizations WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *organizationRepository) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	const query = `
        SELECT id, name, founder_user_id, created_at, updated_at
        FROM organizations WHERE id=$1`

	var org domain.Organization
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&org.ID,
		&org.Name,
		&org.FounderID,
		&org.CreatedAt,
		&org.UpdatedAt,
	); err != nil {
		return nil, err
	}
	members, err := r.memberIDs(ctx, org.ID)
	if err != nil {
		return nil, err
	}
	org.MemberIDs = members
	return &org, nil
}

func (r *organizationRepository) List(ctx context.Context) ([]domain.Organization, error) {
	const query = `
        SELECT id, name, founder_user_id, created_at, updated_at
        FROM organizations ORDER BY created_at`
	return r.fetchMany(ctx, query)
}

func (r *organizationRepository) ListByMember(ctx context.Context, userID string) ([]domain.Organization, error) {
	const query = `
        SELECT DISTINCT o.id, o.name, o.founder_user_id, o.created_at, o.updated_at
        FROM organizations o
        LEFT JOIN org_members m ON m.organization_id = o.id
        WHERE o.founder_user_id=$1 OR m.user_id=$1
        ORDER BY o.created_at`
	return r.fetchMany(ctx, query, userID)
}

func (r *organizationRepository) ReplaceMembers(ctx context.Context, orgID string, memberIDs []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM org_members WHERE organization_id=$1`, orgID); err != nil {
		return err
	}
	for _, userID := range memberIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO org_members (organization_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			orgID, userID); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *organizationRepository) fetchMany(ctx context.Context, query string, args ...any) ([]domain.Organization, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orgs := []domain.Organization{}
	for rows.Next() {
		var org domain.Organization
		if err := rows.Scan(
			&org.ID,
			&org.Name,
			&org.FounderID,
			&org.CreatedAt,
			&org.UpdatedAt,
		); err != nil {
			return nil, err
		}
		orgs = append(orgs, org)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range orgs {
		members, err := r.memberIDs(ctx, orgs[i].ID)
		if err != nil {
			return nil, err
		}
		orgs[i].MemberIDs = members
	}
	return orgs, nil
}

func (r *organizationRepository) memberIDs(ctx context.Context, orgID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT user_id FROM org_members WHERE organization_id=$1`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
