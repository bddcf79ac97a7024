package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academy-admin-api/internal/models"
)

// ClassRepository handles persistence of classes and enrollment counters.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs the repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// FindByID returns a class by its ID.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.Class, error) {
	const query = `SELECT id, batch_id, name, capacity, enrolled_count, created_at, updated_at
        FROM classes WHERE id = $1`
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		return nil, err
	}
	return &class, nil
}

// IncrementEnrollment raises the enrolled count by one iff capacity allows.
// The capacity check and the increment are a single statement, so two
// concurrent approvals on a nearly-full class cannot both slip through.
func (r *ClassRepository) IncrementEnrollment(ctx context.Context, id string) (bool, error) {
	const query = `UPDATE classes SET enrolled_count = enrolled_count + 1, updated_at = NOW()
        WHERE id = $1 AND (capacity IS NULL OR enrolled_count < capacity)`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("increment enrollment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("increment enrollment result: %w", err)
	}
	return affected == 1, nil
}

// DecrementEnrollment lowers the enrolled count, used to compensate an
// increment whose approval lost a race. Never drops below zero.
func (r *ClassRepository) DecrementEnrollment(ctx context.Context, id string) error {
	const query = `UPDATE classes SET enrolled_count = enrolled_count - 1, updated_at = NOW()
        WHERE id = $1 AND enrolled_count > 0`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("decrement enrollment: %w", err)
	}
	return nil
}
