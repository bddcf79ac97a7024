package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academy-admin-api/internal/models"
)

// UsageLogRepository handles the append-only signup-code usage ledger.
type UsageLogRepository struct {
	db *sqlx.DB
}

// NewUsageLogRepository constructs the repository.
func NewUsageLogRepository(db *sqlx.DB) *UsageLogRepository {
	return &UsageLogRepository{db: db}
}

// Insert appends a redemption attempt. Entries are never overwritten.
func (r *UsageLogRepository) Insert(ctx context.Context, entry *models.UsageLogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.UsedAt.IsZero() {
		entry.UsedAt = time.Now().UTC()
	}
	if entry.Status == "" {
		entry.Status = models.RegistrationStatusPending
	}
	const query = `INSERT INTO signup_usage_logs (id, batch_id, user_name, user_email, signup_code, registration_status, failure_reason, used_at)
        VALUES (:id, :batch_id, :user_name, :user_email, :signup_code, :registration_status, :failure_reason, :used_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("insert usage log: %w", err)
	}
	return nil
}

// Finalize moves a pending entry to a terminal status. The guard on the
// current status is what keeps the ledger append-only: terminal entries
// never change again.
func (r *UsageLogRepository) Finalize(ctx context.Context, id string, status models.RegistrationStatus, failureReason *string) (bool, error) {
	const query = `UPDATE signup_usage_logs SET registration_status = $2, failure_reason = $3
        WHERE id = $1 AND registration_status = $4`
	res, err := r.db.ExecContext(ctx, query, id, status, failureReason, models.RegistrationStatusPending)
	if err != nil {
		return false, fmt.Errorf("finalize usage log: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("finalize usage log result: %w", err)
	}
	return affected == 1, nil
}

// buildFilter renders the WHERE clause shared by List and Stats so both
// always observe the same row set for identical filters.
func buildFilter(filter models.UsageLogFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if len(filter.BatchIDs) > 0 {
		placeholders := make([]string, len(filter.BatchIDs))
		for i, id := range filter.BatchIDs {
			placeholders[i] = fmt.Sprintf("$%d", len(args)+1)
			args = append(args, id)
		}
		conditions = append(conditions, fmt.Sprintf("l.batch_id IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			placeholders[i] = fmt.Sprintf("$%d", len(args)+1)
			args = append(args, status)
		}
		conditions = append(conditions, fmt.Sprintf("l.registration_status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("l.used_at >= $%d", len(args)+1))
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("l.used_at <= $%d", len(args)+1))
		args = append(args, *filter.EndDate)
	}
	if filter.Search != "" {
		idx := len(args) + 1
		conditions = append(conditions, fmt.Sprintf("(l.user_name ILIKE $%d OR l.user_email ILIKE $%d OR l.signup_code ILIKE $%d)", idx, idx, idx))
		args = append(args, "%"+filter.Search+"%")
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}
	return clause, args
}

// List returns usage entries matching the filter, newest first.
func (r *UsageLogRepository) List(ctx context.Context, filter models.UsageLogFilter) ([]models.UsageLogDetail, int, error) {
	clause, args := buildFilter(filter)
	base := `FROM signup_usage_logs l LEFT JOIN batches b ON b.id = l.batch_id` + clause

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT l.id, l.batch_id, l.user_name, l.user_email, l.signup_code,
        l.registration_status, l.failure_reason, l.used_at, b.name AS batch_name
        %s ORDER BY l.used_at DESC LIMIT %d OFFSET %d`, base, size, offset)

	var entries []models.UsageLogDetail
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list usage logs: %w", err)
	}

	countQuery := "SELECT COUNT(*) " + base
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count usage logs: %w", err)
	}
	return entries, total, nil
}

// Stats aggregates counts over exactly the filtered set used by List.
func (r *UsageLogRepository) Stats(ctx context.Context, filter models.UsageLogFilter) (*models.UsageStats, error) {
	clause, args := buildFilter(filter)
	query := fmt.Sprintf(`SELECT COUNT(*) AS total,
        COUNT(*) FILTER (WHERE l.registration_status = 'SUCCESSFUL') AS successful,
        COUNT(*) FILTER (WHERE l.registration_status = 'FAILED') AS failed,
        COUNT(*) FILTER (WHERE l.registration_status = 'PENDING') AS pending
        FROM signup_usage_logs l LEFT JOIN batches b ON b.id = l.batch_id%s`, clause)

	var stats models.UsageStats
	if err := r.db.GetContext(ctx, &stats, query, args...); err != nil {
		return nil, fmt.Errorf("usage log stats: %w", err)
	}
	return &stats, nil
}
