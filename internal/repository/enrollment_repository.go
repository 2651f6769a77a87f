package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnrollmentRepository reads (student, course) enrollment pairs. Enrollment
// is owned by an external registrar system; this service never mutates it
// outside of seeding.
type EnrollmentRepository struct {
	pool *pgxpool.Pool
}

// NewEnrollmentRepository creates a new EnrollmentRepository.
func NewEnrollmentRepository(pool *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{pool: pool}
}

// Exists reports whether the student is enrolled in the course.
func (r *EnrollmentRepository) Exists(ctx context.Context, studentID, courseID int) (bool, error) {
	var found bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM enrollments WHERE student_id = $1 AND course_id = $2
		 )`, studentID, courseID,
	).Scan(&found)
	return found, err
}

// ListStudentIDs returns the ids of every student enrolled in the course.
func (r *EnrollmentRepository) ListStudentIDs(ctx context.Context, courseID int) ([]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT student_id FROM enrollments WHERE course_id = $1 ORDER BY student_id`, courseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListCourseIDs returns the ids of every course the student is enrolled in.
func (r *EnrollmentRepository) ListCourseIDs(ctx context.Context, studentID int) ([]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT course_id FROM enrollments WHERE student_id = $1 ORDER BY course_id`, studentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Create inserts an enrollment pair. Used by seeding only.
func (r *EnrollmentRepository) Create(ctx context.Context, studentID, courseID int) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO enrollments (student_id, course_id)
		 VALUES ($1, $2)
		 ON CONFLICT (student_id, course_id) DO NOTHING`,
		studentID, courseID)
	return err
}
