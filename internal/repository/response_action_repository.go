package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cybershield/threat-exchange/internal/domain"
)

// ResponseActionRepository persists the append-only remediation log.
type ResponseActionRepository interface {
	Create(ctx context.Context, action *domain.ResponseAction) error
	ListByReport(ctx context.Context, reportID string) ([]domain.ResponseAction, error)
}

type responseActionRepository struct {
	pool *pgxpool.Pool
}

// NewResponseActionRepository instantiates the repository.
func NewResponseActionRepository(pool *pgxpool.Pool) ResponseActionRepository {
	return &responseActionRepository{pool: pool}
}

func (r *responseActionRepository) Create(ctx context.Context, action *domain.ResponseAction) error {
	const query = `
        INSERT INTO response_actions (report_id, description, proposed_by_user_id)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		action.ReportID,
		action.Description,
		action.ProposedByID,
	).Scan(&action.ID, &action.CreatedAt)
}

func (r *responseActionRepository) ListByReport(ctx context.Context, reportID string) ([]domain.ResponseAction, error) {
	const query = `
        SELECT id, report_id, description, proposed_by_user_id, created_at
        FROM response_actions WHERE report_id=$1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	actions := []domain.ResponseAction{}
	for rows.Next() {
		var action domain.ResponseAction
		if err := rows.Scan(
			&action.ID,
			&action.ReportID,
			&action.Description,
			&action.ProposedByID,
			&action.CreatedAt,
		); err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}
	return actions, rows.Err()
}
