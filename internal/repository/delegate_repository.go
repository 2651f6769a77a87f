package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/classtrack/attendance-backend/internal/model"
)

// DelegateRepository handles delegate data access.
type DelegateRepository struct {
	pool *pgxpool.Pool
}

// NewDelegateRepository creates a new DelegateRepository.
func NewDelegateRepository(pool *pgxpool.Pool) *DelegateRepository {
	return &DelegateRepository{pool: pool}
}

// GetByEmail retrieves a delegate by email for login.
func (r *DelegateRepository) GetByEmail(ctx context.Context, email string) (*model.Delegate, error) {
	d := &model.Delegate{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, name, password_hash, created_at
		 FROM delegates WHERE email = $1`, email,
	).Scan(&d.ID, &d.Email, &d.Name, &d.PasswordHash, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// GetByID retrieves a delegate by id.
func (r *DelegateRepository) GetByID(ctx context.Context, id int) (*model.Delegate, error) {
	d := &model.Delegate{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, name, password_hash, created_at
		 FROM delegates WHERE id = $1`, id,
	).Scan(&d.ID, &d.Email, &d.Name, &d.PasswordHash, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Create inserts a delegate account. Used by the bootstrap command.
func (r *DelegateRepository) Create(ctx context.Context, d *model.Delegate) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO delegates (email, name, password_hash)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (email) DO UPDATE SET password_hash = EXCLUDED.password_hash
		 RETURNING id, created_at`,
		d.Email, d.Name, d.PasswordHash,
	).Scan(&d.ID, &d.CreatedAt)
}
