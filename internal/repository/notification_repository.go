package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cybershield/threat-exchange/internal/domain"
)

// NotificationRepository encapsulates notification persistence.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	GetByID(ctx context.Context, id string) (*domain.Notification, error)
	ListByOrganizations(ctx context.Context, orgIDs []string) ([]domain.Notification, error)
	UpdateStatus(ctx context.Context, id string, status domain.NotificationStatus) error
	AppendAction(ctx context.Context, id string, action domain.NotificationAction) error
}

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository instantiates the repository.
func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	actions, err := json.Marshal(n.Actions)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO notifications (title, description, severity, status, recipient_emails, actions)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	if err := r.pool.QueryRow(ctx, query,
		n.Title,
		n.Description,
		n.Severity,
		n.Status,
		n.RecipientEmails,
		actions,
	).Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return err
	}

	for _, orgID := range n.OrganizationIDs {
		if _, err := r.pool.Exec(ctx,
			`INSERT INTO notification_organizations (notification_id, organization_id) VALUES ($1,$2)`,
			n.ID, orgID); err != nil {
			return err
		}
	}
	for _, reportID := range n.ReportIDs {
		if _, err := r.pool.Exec(ctx,
			`INSERT INTO notification_reports (notification_id, report_id) VALUES ($1,$2)`,
			n.ID, reportID); err != nil {
			return err
		}
	}
	return nil
}

func (r *notificationRepository) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	const query = `
        SELECT id, title, description, severity, status, recipient_emails, actions, created_at, updated_at
        FROM notifications WHERE id=$1`

	n, err := r.scanOne(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadRefs(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (r *notificationRepository) ListByOrganizations(ctx context.Context, orgIDs []string) ([]domain.Notification, error) {
	if len(orgIDs) == 0 {
		return []domain.Notification{}, nil
	}
	const query = `
        SELECT DISTINCT n.id, n.title, n.description, n.severity, n.status, n.recipient_emails, n.actions,
               n.created_at, n.updated_at
        FROM notifications n
        JOIN notification_organizations no ON no.notification_id = n.id
        WHERE no.organization_id = ANY($1)
        ORDER BY n.created_at DESC`

	rows, err := r.pool.Query(ctx, query, orgIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domain.Notification{}
	for rows.Next() {
		n, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range items {
		if err := r.loadRefs(ctx, &items[i]); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (r *notificationRepository) UpdateStatus(ctx context.Context, id string, status domain.NotificationStatus) error {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE notifications SET status=$1, updated_at=NOW() WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *notificationRepository) AppendAction(ctx context.Context, id string, action domain.NotificationAction) error {
	entry, err := json.Marshal(action)
	if err != nil {
		return err
	}
	cmd, err := r.pool.Exec(ctx,
		`UPDATE notifications SET actions = actions || $1::jsonb, updated_at=NOW() WHERE id=$2`,
		entry, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *notificationRepository) scanOne(row pgx.Row) (*domain.Notification, error) {
	var n domain.Notification
	var actions []byte
	if err := row.Scan(
		&n.ID,
		&n.Title,
		&n.Description,
		&n.Severity,
		&n.Status,
		&n.RecipientEmails,
		&actions,
		&n.CreatedAt,
		&n.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(actions) > 0 {
		if err := json.Unmarshal(actions, &n.Actions); err != nil {
			return nil, err
		}
	}
	return &n, nil
}

func (r *notificationRepository) loadRefs(ctx context.Context, n *domain.Notification) error {
	orgIDs, err := r.refIDs(ctx,
		`SELECT organization_id FROM notification_organizations WHERE notification_id=$1`, n.ID)
	if err != nil {
		return err
	}
	reportIDs, err := r.refIDs(ctx,
		`SELECT report_id FROM notification_reports WHERE notification_id=$1`, n.ID)
	if err != nil {
		return err
	}
	n.OrganizationIDs = orgIDs
	n.ReportIDs = reportIDs
	return nil
}

func (r *notificationRepository) refIDs(ctx context.Context, query, id string) ([]string, error) {
	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, err
		}
		ids = append(ids, ref)
	}
	return ids, rows.Err()
}
