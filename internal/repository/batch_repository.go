package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academy-admin-api/internal/models"
)

// BatchRepository handles persistence of batches and their signup codes.
type BatchRepository struct {
	db *sqlx.DB
}

// NewBatchRepository constructs the repository.
func NewBatchRepository(db *sqlx.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

// FindByID returns a batch by its ID. Soft-deleted batches are not visible.
func (r *BatchRepository) FindByID(ctx context.Context, id string) (*models.Batch, error) {
	const query = `SELECT id, name, description, signup_code, code_active, code_usage_count,
        code_generated_at, code_reset_reason, created_at, updated_at, deleted_at
        FROM batches WHERE id = $1 AND deleted_at IS NULL`
	var batch models.Batch
	if err := r.db.GetContext(ctx, &batch, query, id); err != nil {
		return nil, err
	}
	return &batch, nil
}

// CodeStatus returns the signup-code status projection for a batch.
func (r *BatchRepository) CodeStatus(ctx context.Context, id string) (*models.SignupCodeStatus, error) {
	const query = `SELECT id, code_active, code_usage_count FROM batches WHERE id = $1 AND deleted_at IS NULL`
	var status models.SignupCodeStatus
	if err := r.db.GetContext(ctx, &status, query, id); err != nil {
		return nil, err
	}
	return &status, nil
}

// ReplaceSignupCode swaps the code value, reactivates it and zeroes the usage
// count in a single statement. The previousCode guard detects a racing reset:
// zero rows affected while the batch exists means another reset won.
func (r *BatchRepository) ReplaceSignupCode(ctx context.Context, id, previousCode, newCode string, reason *string, generatedAt time.Time) (bool, error) {
	const query = `UPDATE batches
        SET signup_code = $3, code_active = TRUE, code_usage_count = 0,
            code_generated_at = $4, code_reset_reason = $5, updated_at = $4
        WHERE id = $1 AND signup_code = $2 AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, id, previousCode, newCode, generatedAt, reason)
	if err != nil {
		return false, fmt.Errorf("replace signup code: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("replace signup code result: %w", err)
	}
	return affected == 1, nil
}

// ToggleCodeStatus flips code_active without touching the value or usage
// count and returns the new state.
func (r *BatchRepository) ToggleCodeStatus(ctx context.Context, id string) (bool, error) {
	const query = `UPDATE batches SET code_active = NOT code_active, updated_at = NOW()
        WHERE id = $1 AND deleted_at IS NULL RETURNING code_active`
	var active bool
	if err := r.db.GetContext(ctx, &active, query, id); err != nil {
		return false, err
	}
	return active, nil
}

// ConsumeCode increments the usage count iff the presented code is the
// current active value. The conditional update makes redemption atomic with
// respect to concurrent resets and toggles: a stale or inactive code simply
// matches no row.
func (r *BatchRepository) ConsumeCode(ctx context.Context, id, code string) (bool, error) {
	const query = `UPDATE batches SET code_usage_count = code_usage_count + 1, updated_at = NOW()
        WHERE id = $1 AND signup_code = $2 AND code_active AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, id, code)
	if err != nil {
		return false, fmt.Errorf("consume signup code: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("consume signup code result: %w", err)
	}
	return affected == 1, nil
}

// FindByCode resolves a batch from a presented signup code regardless of its
// active flag, so failed redemptions can still be attributed to a batch.
func (r *BatchRepository) FindByCode(ctx context.Context, code string) (*models.Batch, error) {
	const query = `SELECT id, name, description, signup_code, code_active, code_usage_count,
        code_generated_at, code_reset_reason, created_at, updated_at, deleted_at
        FROM batches WHERE signup_code = $1 AND deleted_at IS NULL`
	var batch models.Batch
	if err := r.db.GetContext(ctx, &batch, query, code); err != nil {
		return nil, err
	}
	return &batch, nil
}

// CodeExists reports whether any batch currently holds the given code value.
func (r *BatchRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	const query = `SELECT 1 FROM batches WHERE signup_code = $1 LIMIT 1`
	var one int
	if err := r.db.GetContext(ctx, &one, query, code); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check signup code: %w", err)
	}
	return true, nil
}

// RecordCodeEvent appends an administrative signup-code audit entry.
func (r *BatchRepository) RecordCodeEvent(ctx context.Context, event *models.CodeEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO signup_code_events (id, batch_id, event, reason, actor_id, created_at)
        VALUES (:id, :batch_id, :event, :reason, :actor_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("record code event: %w", err)
	}
	return nil
}

// ListCodeEvents returns the audit trail for a batch, newest first.
func (r *BatchRepository) ListCodeEvents(ctx context.Context, batchID string, limit int) ([]models.CodeEvent, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	const query = `SELECT id, batch_id, event, reason, actor_id, created_at
        FROM signup_code_events WHERE batch_id = $1 ORDER BY created_at DESC LIMIT $2`
	var events []models.CodeEvent
	if err := r.db.SelectContext(ctx, &events, query, batchID, limit); err != nil {
		return nil, fmt.Errorf("list code events: %w", err)
	}
	return events, nil
}
