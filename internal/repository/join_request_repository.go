package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academy-admin-api/internal/models"
)

// JoinRequestRepository handles persistence of class-join requests.
type JoinRequestRepository struct {
	db *sqlx.DB
}

// NewJoinRequestRepository constructs the repository.
func NewJoinRequestRepository(db *sqlx.DB) *JoinRequestRepository {
	return &JoinRequestRepository{db: db}
}

const joinRequestDetailColumns = `r.id, r.student_id, r.class_id, r.status, r.request_message, r.review_message,
        r.created_at, r.updated_at,
        s.full_name AS student_name, s.email AS student_email, c.name AS class_name`

// FindByID returns a join request by its ID.
func (r *JoinRequestRepository) FindByID(ctx context.Context, id string) (*models.JoinRequest, error) {
	const query = `SELECT id, student_id, class_id, status, request_message, review_message, created_at, updated_at
        FROM join_requests WHERE id = $1`
	var request models.JoinRequest
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		return nil, err
	}
	return &request, nil
}

// FindDetailByID returns a join request with student and class info.
func (r *JoinRequestRepository) FindDetailByID(ctx context.Context, id string) (*models.JoinRequestDetail, error) {
	query := fmt.Sprintf(`SELECT %s FROM join_requests r
        LEFT JOIN students s ON s.id = r.student_id
        LEFT JOIN classes c ON c.id = r.class_id
        WHERE r.id = $1`, joinRequestDetailColumns)
	var detail models.JoinRequestDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ListPendingByClass returns pending requests for a class, oldest first.
func (r *JoinRequestRepository) ListPendingByClass(ctx context.Context, classID string) ([]models.JoinRequestDetail, error) {
	query := fmt.Sprintf(`SELECT %s FROM join_requests r
        LEFT JOIN students s ON s.id = r.student_id
        LEFT JOIN classes c ON c.id = r.class_id
        WHERE r.class_id = $1 AND r.status = $2 ORDER BY r.created_at ASC`, joinRequestDetailColumns)
	var requests []models.JoinRequestDetail
	if err := r.db.SelectContext(ctx, &requests, query, classID, models.JoinRequestStatusPending); err != nil {
		return nil, fmt.Errorf("list pending join requests: %w", err)
	}
	return requests, nil
}

// ListHistory returns reviewed requests for a class with pagination.
func (r *JoinRequestRepository) ListHistory(ctx context.Context, filter models.JoinRequestFilter) ([]models.JoinRequestDetail, int, error) {
	base := `FROM join_requests r
        LEFT JOIN students s ON s.id = r.student_id
        LEFT JOIN classes c ON c.id = r.class_id
        WHERE r.class_id = $1`
	args := []interface{}{filter.ClassID}

	if filter.Status != "" {
		base += fmt.Sprintf(" AND r.status = $%d", len(args)+1)
		args = append(args, filter.Status)
	} else {
		base += fmt.Sprintf(" AND r.status <> $%d", len(args)+1)
		args = append(args, models.JoinRequestStatusPending)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY r.updated_at DESC LIMIT %d OFFSET %d",
		joinRequestDetailColumns, base, size, offset)
	var requests []models.JoinRequestDetail
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list join request history: %w", err)
	}

	countQuery := "SELECT COUNT(*) " + base
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count join request history: %w", err)
	}
	return requests, total, nil
}

// Create persists a new pending join request.
func (r *JoinRequestRepository) Create(ctx context.Context, request *models.JoinRequest) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if request.CreatedAt.IsZero() {
		request.CreatedAt = now
	}
	request.UpdatedAt = request.CreatedAt
	if request.Status == "" {
		request.Status = models.JoinRequestStatusPending
	}
	const query = `INSERT INTO join_requests (id, student_id, class_id, status, request_message, review_message, created_at, updated_at)
        VALUES (:id, :student_id, :class_id, :status, :request_message, :review_message, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, request); err != nil {
		return fmt.Errorf("create join request: %w", err)
	}
	return nil
}

// ResolvePending moves a pending request to a terminal status. The status
// guard keeps approved and rejected terminal: a request already resolved by a
// concurrent caller matches no row and the method reports false.
func (r *JoinRequestRepository) ResolvePending(ctx context.Context, id string, status models.JoinRequestStatus, reviewMessage *string) (bool, error) {
	const query = `UPDATE join_requests SET status = $2, review_message = $3, updated_at = NOW()
        WHERE id = $1 AND status = $4`
	res, err := r.db.ExecContext(ctx, query, id, status, reviewMessage, models.JoinRequestStatusPending)
	if err != nil {
		return false, fmt.Errorf("resolve join request: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("resolve join request result: %w", err)
	}
	return affected == 1, nil
}

// RejectSiblings force-rejects every other pending request from the same
// student for the same class and returns the IDs touched.
func (r *JoinRequestRepository) RejectSiblings(ctx context.Context, approvedID, studentID, classID, reviewMessage string) ([]string, error) {
	const query = `UPDATE join_requests SET status = $4, review_message = $5, updated_at = NOW()
        WHERE student_id = $1 AND class_id = $2 AND id <> $3 AND status = $6
        RETURNING id`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, studentID, classID, approvedID,
		models.JoinRequestStatusRejected, reviewMessage, models.JoinRequestStatusPending); err != nil {
		return nil, fmt.Errorf("reject sibling requests: %w", err)
	}
	return ids, nil
}
