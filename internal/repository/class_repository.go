package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/classtrack/attendance-backend/internal/model"
)

// ClassRepository handles class data access.
type ClassRepository struct {
	pool *pgxpool.Pool
}

// NewClassRepository creates a new ClassRepository.
func NewClassRepository(pool *pgxpool.Pool) *ClassRepository {
	return &ClassRepository{pool: pool}
}

// GetOrCreate returns the class for a (delegate, course) pair, creating it
// on the first session request. The upsert keeps concurrent first requests
// from racing into two rows.
func (r *ClassRepository) GetOrCreate(ctx context.Context, delegateID, courseID int) (*model.Class, error) {
	cl := &model.Class{}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO classes (id, delegate_id, course_id)
		 VALUES (gen_random_uuid(), $1, $2)
		 ON CONFLICT (delegate_id, course_id) DO UPDATE SET delegate_id = EXCLUDED.delegate_id
		 RETURNING id, delegate_id, course_id, created_at`,
		delegateID, courseID,
	).Scan(&cl.ID, &cl.DelegateID, &cl.CourseID, &cl.CreatedAt)
	if err != nil {
		return nil, err
	}
	return cl, nil
}

// GetByID retrieves a class. Returns pgx.ErrNoRows when absent.
func (r *ClassRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Class, error) {
	cl := &model.Class{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, delegate_id, course_id, created_at FROM classes WHERE id = $1`, id,
	).Scan(&cl.ID, &cl.DelegateID, &cl.CourseID, &cl.CreatedAt)
	if err != nil {
		return nil, err
	}
	return cl, nil
}
