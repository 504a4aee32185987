package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cybershield/threat-exchange/internal/domain"
)

// ErrStaleVersion signals that an update lost to a newer write.
var ErrStaleVersion = errors.New("report version is stale")

// ReportRepository encapsulates report persistence.
type ReportRepository interface {
	Create(ctx context.Context, report *domain.Report) error
	// Update persists the report when its Version still matches the stored
	// row, then bumps the version. Stale writes fail with ErrStaleVersion.
	Update(ctx context.Context, report *domain.Report) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Report, error)
	ListByOrganizations(ctx context.Context, orgIDs []string) ([]domain.Report, error)
	AddShare(ctx context.Context, reportID, orgID string) error
	RemoveShare(ctx context.Context, reportID, orgID string) error
}

type reportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository instantiates the repository.
func NewReportRepository(pool *pgxpool.Pool) ReportRepository {
	return &reportRepository{pool: pool}
}

const reportColumns = `id, title, description, type_of_threat, severity, status, submitted, submitted_at,
               stix, blockchain_hash, risk_score, author_user_id, organization_id, network_status, version,
               created_at, updated_at`

func (r *reportRepository) Create(ctx context.Context, report *domain.Report) error {
	const query = `
        INSERT INTO reports (title, description, type_of_threat, severity, status, stix, blockchain_hash,
                             risk_score, author_user_id, organization_id, network_status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id, version, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		report.Title,
		report.Description,
		report.TypeOfThreat,
		report.Severity,
		report.Status,
		report.STIX,
		report.BlockchainHash,
		report.RiskScore,
		report.AuthorID,
		report.OrganizationID,
		report.NetworkStatus,
	).Scan(&report.ID, &report.Version, &report.CreatedAt, &report.UpdatedAt)
}

func (r *reportRepository) Update(ctx context.Context, report *domain.Report) error {
	const query = `
        UPDATE reports SET title=$1, description=$2, type_of_threat=$3, severity=$4, status=$5,
            submitted=$6, submitted_at=$7, stix=$8, blockchain_hash=$9, risk_score=$10,
            network_status=$11, version=version+1, updated_at=NOW()
        WHERE id=$12 AND version=$13
        RETURNING version, updated_at`
	err := r.pool.QueryRow(ctx, query,
		report.Title,
		report.Description,
		report.TypeOfThreat,
		report.Severity,
		report.Status,
		report.Submitted,
		report.SubmittedAt,
		report.STIX,
		report.BlockchainHash,
		report.RiskScore,
		report.NetworkStatus,
		report.ID,
		report.Version,
	).Scan(&report.Version, &report.UpdatedAt)
	if err == pgx.ErrNoRows {
		// Row exists but the version moved on, or the report is gone.
		var exists bool
		if checkErr := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM reports WHERE id=$1)`, report.ID).Scan(&exists); checkErr == nil && exists {
			return ErrStaleVersion
		}
		return pgx.ErrNoRows
	}
	return err
}

func (r *reportRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM reports WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *reportRepository) GetByID(ctx context.Context, id string) (*domain.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE id=$1`
	var report domain.Report
	if err := r.pool.QueryRow(ctx, query, id).Scan(scanTargets(&report)...); err != nil {
		return nil, err
	}
	shares, err := r.shareIDs(ctx, report.ID)
	if err != nil {
		return nil, err
	}
	report.SharedWith = shares
	return &report, nil
}

// listByOrganizationsQuery keeps report_shares inside a subselect: both
// tables carry organization_id and created_at columns, so joining them would
// make the unqualified references ambiguous.
const listByOrganizationsQuery = `
        SELECT ` + reportColumns + `
        FROM reports
        WHERE organization_id = ANY($1)
           OR id IN (SELECT report_id FROM report_shares WHERE organization_id = ANY($1))
        ORDER BY created_at`

// ListByOrganizations returns reports owned by or shared with any of the
// given organizations, ordered by creation time.
func (r *reportRepository) ListByOrganizations(ctx context.Context, orgIDs []string) ([]domain.Report, error) {
	if len(orgIDs) == 0 {
		return []domain.Report{}, nil
	}
	rows, err := r.pool.Query(ctx, listByOrganizationsQuery, orgIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := []domain.Report{}
	for rows.Next() {
		var report domain.Report
		if err := rows.Scan(scanTargets(&report)...); err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range reports {
		shares, err := r.shareIDs(ctx, reports[i].ID)
		if err != nil {
			return nil, err
		}
		reports[i].SharedWith = shares
	}
	return reports, nil
}

func (r *reportRepository) AddShare(ctx context.Context, reportID, orgID string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO report_shares (report_id, organization_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		reportID, orgID)
	return err
}

func (r *reportRepository) RemoveShare(ctx context.Context, reportID, orgID string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM report_shares WHERE report_id=$1 AND organization_id=$2`,
		reportID, orgID)
	return err
}

func (r *reportRepository) shareIDs(ctx context.Context, reportID string) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT organization_id FROM report_shares WHERE report_id=$1 ORDER BY created_at`, reportID)
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

func scanTargets(report *domain.Report) []any {
	return []any{
		&report.ID,
		&report.Title,
		&report.Description,
		&report.TypeOfThreat,
		&report.Severity,
		&report.Status,
		&report.Submitted,
		&report.SubmittedAt,
		&report.STIX,
		&report.BlockchainHash,
		&report.RiskScore,
		&report.AuthorID,
		&report.OrganizationID,
		&report.NetworkStatus,
		&report.Version,
		&report.CreatedAt,
		&report.UpdatedAt,
	}
}
