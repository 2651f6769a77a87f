package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/classtrack/attendance-backend/internal/model"
)

// AttendanceRepository handles attendance record data access. The
// UNIQUE (session_id, student_id) constraint on the table is the sole
// cross-process defense against duplicate marking; every insert here goes
// through ON CONFLICT DO NOTHING so races surface as a recognizable
// condition instead of a constraint error.
type AttendanceRepository struct {
	pool *pgxpool.Pool
}

// NewAttendanceRepository creates a new AttendanceRepository.
func NewAttendanceRepository(pool *pgxpool.Pool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

// Create inserts a single attendance record. When a concurrent insert for
// the same (session, student) wins the race, the RETURNING clause yields no
// row and pgx.ErrNoRows is returned; callers map that to "already marked".
func (r *AttendanceRepository) Create(ctx context.Context, rec *model.AttendanceRecord) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO attendance_records (id, session_id, student_id, status, marked_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (session_id, student_id) DO NOTHING
		 RETURNING id`,
		rec.ID, rec.SessionID, rec.StudentID, rec.Status, rec.MarkedAt,
	).Scan(&rec.ID)
}

// GetBySessionAndStudent retrieves a student's record for a session.
// Returns pgx.ErrNoRows when the student has not marked.
func (r *AttendanceRepository) GetBySessionAndStudent(ctx context.Context, sessionID uuid.UUID, studentID int) (*model.AttendanceRecord, error) {
	rec := &model.AttendanceRecord{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, session_id, student_id, status, marked_at
		 FROM attendance_records
		 WHERE session_id = $1 AND student_id = $2`, sessionID, studentID,
	).Scan(&rec.ID, &rec.SessionID, &rec.StudentID, &rec.Status, &rec.MarkedAt)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ListBySession retrieves all records for a session.
func (r *AttendanceRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.AttendanceRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, session_id, student_id, status, marked_at
		 FROM attendance_records
		 WHERE session_id = $1
		 ORDER BY marked_at`, sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.AttendanceRecord
	for rows.Next() {
		var rec model.AttendanceRecord
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.StudentID, &rec.Status, &rec.MarkedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// MapByStudentAndSessions returns the student's status per session id, for
// annotating session listings with "already marked".
func (r *AttendanceRepository) MapByStudentAndSessions(ctx context.Context, studentID int, sessionIDs []uuid.UUID) (map[uuid.UUID]model.AttendanceStatus, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT session_id, status
		 FROM attendance_records
		 WHERE student_id = $1 AND session_id = ANY($2)`, studentID, sessionIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	marked := make(map[uuid.UUID]model.AttendanceStatus)
	for rows.Next() {
		var sid uuid.UUID
		var status model.AttendanceStatus
		if err := rows.Scan(&sid, &status); err != nil {
			return nil, err
		}
		marked[sid] = status
	}
	return marked, rows.Err()
}

// InsertAbsentees bulk-inserts Absent records for every enrolled student of
// the course with no record for the session. The set difference is computed
// fresh inside the statement, so a second call inserts nothing; the unique
// constraint backstops concurrent callers. Returns the number inserted.
func (r *AttendanceRepository) InsertAbsentees(ctx context.Context, sessionID uuid.UUID, courseID int, markedAt time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO attendance_records (id, session_id, student_id, status, marked_at)
		 SELECT gen_random_uuid(), $1, e.student_id, $2, $3
		 FROM enrollments e
		 WHERE e.course_id = $4
		   AND NOT EXISTS (
		     SELECT 1 FROM attendance_records a
		     WHERE a.session_id = $1 AND a.student_id = e.student_id
		   )
		 ON CONFLICT (session_id, student_id) DO NOTHING`,
		sessionID, model.AttendanceStatusAbsent, markedAt, courseID,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
