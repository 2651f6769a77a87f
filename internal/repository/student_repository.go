package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/classtrack/attendance-backend/internal/model"
)

// StudentRepository handles student data access.
type StudentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

// GetByRegNumber retrieves a student by registration number for login.
func (r *StudentRepository) GetByRegNumber(ctx context.Context, regNumber string) (*model.Student, error) {
	s := &model.Student{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, reg_number, name, password_hash, created_at
		 FROM students WHERE reg_number = $1`, regNumber,
	).Scan(&s.ID, &s.RegNumber, &s.Name, &s.PasswordHash, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetByID retrieves a student by id.
func (r *StudentRepository) GetByID(ctx context.Context, id int) (*model.Student, error) {
	s := &model.Student{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, reg_number, name, password_hash, created_at
		 FROM students WHERE id = $1`, id,
	).Scan(&s.ID, &s.RegNumber, &s.Name, &s.PasswordHash, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ListByIDs retrieves the given students ordered by name, for rosters.
func (r *StudentRepository) ListByIDs(ctx context.Context, ids []int) ([]model.Student, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, reg_number, name, password_hash, created_at
		 FROM students WHERE id = ANY($1)
		 ORDER BY name`, ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []model.Student
	for rows.Next() {
		var s model.Student
		if err := rows.Scan(&s.ID, &s.RegNumber, &s.Name, &s.PasswordHash, &s.CreatedAt); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

// Create inserts a student account. Used by seeding only.
func (r *StudentRepository) Create(ctx context.Context, s *model.Student) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO students (reg_number, name, password_hash)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (reg_number) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id, created_at`,
		s.RegNumber, s.Name, s.PasswordHash,
	).Scan(&s.ID, &s.CreatedAt)
}
