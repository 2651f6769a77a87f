package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/classtrack/attendance-backend/internal/model"
)

// The services talk to storage through these interfaces; the repository
// package provides the pgx-backed implementations. Absent rows surface as
// pgx.ErrNoRows, matching the repository contract.

// SessionStore persists sessions.
type SessionStore interface {
	Create(ctx context.Context, s *model.Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Session, error)
	UpdateTimes(ctx context.Context, s *model.Session) error
	ListByClassAndDate(ctx context.Context, classID uuid.UUID, date time.Time) ([]model.Session, error)
	ListByDelegate(ctx context.Context, delegateID int) ([]model.Session, error)
	ListByCourses(ctx context.Context, courseIDs []int) ([]model.Session, error)
}

// ClassStore persists delegate/course class bindings.
type ClassStore interface {
	GetOrCreate(ctx context.Context, delegateID, courseID int) (*model.Class, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Class, error)
}

// CourseStore reads the course catalog.
type CourseStore interface {
	GetByID(ctx context.Context, id int) (*model.Course, error)
	List(ctx context.Context) ([]model.Course, error)
}

// EnrollmentStore reads enrollment pairs.
type EnrollmentStore interface {
	Exists(ctx context.Context, studentID, courseID int) (bool, error)
	ListStudentIDs(ctx context.Context, courseID int) ([]int, error)
	ListCourseIDs(ctx context.Context, studentID int) ([]int, error)
}

// AttendanceStore persists attendance records.
type AttendanceStore interface {
	Create(ctx context.Context, rec *model.AttendanceRecord) error
	GetBySessionAndStudent(ctx context.Context, sessionID uuid.UUID, studentID int) (*model.AttendanceRecord, error)
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.AttendanceRecord, error)
	MapByStudentAndSessions(ctx context.Context, studentID int, sessionIDs []uuid.UUID) (map[uuid.UUID]model.AttendanceStatus, error)
	InsertAbsentees(ctx context.Context, sessionID uuid.UUID, courseID int, markedAt time.Time) (int64, error)
}

// StudentStore reads student accounts.
type StudentStore interface {
	GetByRegNumber(ctx context.Context, regNumber string) (*model.Student, error)
	GetByID(ctx context.Context, id int) (*model.Student, error)
	ListByIDs(ctx context.Context, ids []int) ([]model.Student, error)
}

// DelegateStore reads delegate accounts.
type DelegateStore interface {
	GetByEmail(ctx context.Context, email string) (*model.Delegate, error)
	GetByID(ctx context.Context, id int) (*model.Delegate, error)
}
