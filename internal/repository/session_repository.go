package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/classtrack/attendance-backend/internal/model"
)

const sessionColumns = `id, class_id, session_date, starts_at, ends_at, token, expires_at, created_at`

// SessionRepository handles session data access.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Create inserts a fully validated session. Exactly one row; the caller has
// already generated the id and token.
func (r *SessionRepository) Create(ctx context.Context, s *model.Session) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO sessions (id, class_id, session_date, starts_at, ends_at, token, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at`,
		s.ID, s.ClassID, s.SessionDate, s.StartsAt, s.EndsAt, s.Token, s.ExpiresAt,
	).Scan(&s.CreatedAt)
}

// GetByID retrieves a session. Returns pgx.ErrNoRows when absent.
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	s := &model.Session{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id,
	).Scan(&s.ID, &s.ClassID, &s.SessionDate, &s.StartsAt, &s.EndsAt, &s.Token, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// UpdateTimes reschedules a session's window. The token never changes; the
// service layer only permits this while the session is still Scheduled.
func (r *SessionRepository) UpdateTimes(ctx context.Context, s *model.Session) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE sessions
		 SET session_date = $1, starts_at = $2, ends_at = $3, expires_at = $4
		 WHERE id = $5`,
		s.SessionDate, s.StartsAt, s.EndsAt, s.ExpiresAt, s.ID)
	return err
}

// ListByClassAndDate retrieves all sessions for a class on a calendar date,
// used by the overlap check.
func (r *SessionRepository) ListByClassAndDate(ctx context.Context, classID uuid.UUID, date time.Time) ([]model.Session, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE class_id = $1 AND session_date = $2
		 ORDER BY starts_at`, classID, date,
	)
	if err != nil {
		return nil, err
	}
	return scanSessions(rows)
}

// ListByDelegate retrieves every session belonging to the delegate's classes.
func (r *SessionRepository) ListByDelegate(ctx context.Context, delegateID int) ([]model.Session, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT s.id, s.class_id, s.session_date, s.starts_at, s.ends_at, s.token, s.expires_at, s.created_at
		 FROM sessions s
		 JOIN classes c ON s.class_id = c.id
		 WHERE c.delegate_id = $1
		 ORDER BY s.starts_at DESC`, delegateID,
	)
	if err != nil {
		return nil, err
	}
	return scanSessions(rows)
}

// ListByCourses retrieves sessions for any of the given courses. The token
// column is omitted: students learn tokens out of band, not from listings.
func (r *SessionRepository) ListByCourses(ctx context.Context, courseIDs []int) ([]model.Session, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT s.id, s.class_id, s.session_date, s.starts_at, s.ends_at, '', s.expires_at, s.created_at
		 FROM sessions s
		 JOIN classes c ON s.class_id = c.id
		 WHERE c.course_id = ANY($1)
		 ORDER BY s.starts_at DESC`, courseIDs,
	)
	if err != nil {
		return nil, err
	}
	return scanSessions(rows)
}

// ListEndedBetween retrieves sessions whose end instant falls in (from, to].
// The lifecycle watcher polls this window to detect Open→Closed transitions.
func (r *SessionRepository) ListEndedBetween(ctx context.Context, from, to time.Time) ([]model.Session, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE ends_at > $1 AND ends_at <= $2
		 ORDER BY ends_at`, from, to,
	)
	if err != nil {
		return nil, err
	}
	return scanSessions(rows)
}

func scanSessions(rows pgx.Rows) ([]model.Session, error) {
	defer rows.Close()

	var sessions []model.Session
	for rows.Next() {
		var s model.Session
		if err := rows.Scan(&s.ID, &s.ClassID, &s.SessionDate, &s.StartsAt, &s.EndsAt, &s.Token, &s.ExpiresAt, &s.CreatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
