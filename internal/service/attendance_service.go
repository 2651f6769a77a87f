package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/classtrack/attendance-backend/internal/model"
	"github.com/classtrack/attendance-backend/internal/timeutil"
)

// Marking denials, ordered the way the gate checks them. These are
// user-facing eligibility outcomes, not failures; handlers map them to
// error codes, never to 500s.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidToken    = errors.New("invalid session token")
	ErrSessionExpired  = errors.New("session has expired")
	ErrSessionNotOpen  = errors.New("session is not open yet")
	ErrNotEnrolled     = errors.New("student is not enrolled in this course")
	ErrAlreadyMarked   = errors.New("attendance already marked")
)

// AttendanceService decides whether a student may mark attendance and
// records the result.
type AttendanceService struct {
	sessions    SessionStore
	classes     ClassStore
	enrollments EnrollmentStore
	attendance  AttendanceStore
	notifier    RosterNotifier
	now         timeutil.Clock
	log         zerolog.Logger
}

// NewAttendanceService creates a new AttendanceService.
func NewAttendanceService(
	sessions SessionStore,
	classes ClassStore,
	enrollments EnrollmentStore,
	attendance AttendanceStore,
	notifier RosterNotifier,
	now timeutil.Clock,
	log zerolog.Logger,
) *AttendanceService {
	return &AttendanceService{
		sessions:    sessions,
		classes:     classes,
		enrollments: enrollments,
		attendance:  attendance,
		notifier:    notifier,
		now:         now,
		log:         log.With().Str("component", "attendance_service").Logger(),
	}
}

// GateDecision is the result of CanMark.
type GateDecision struct {
	Allowed bool
	Reason  error
	Status  model.SessionStatus
}

// CanMark runs the admission checks for a (session, student) pair without
// writing anything: session open, student enrolled, not already marked.
// The duplicate pre-check here is advisory; the insert in Mark is what
// actually wins or loses the race.
func (s *AttendanceService) CanMark(ctx context.Context, sess *model.Session, studentID int) (GateDecision, error) {
	now := s.now()
	status := sess.StatusAt(now)

	switch status {
	case model.SessionStatusScheduled:
		return GateDecision{Reason: ErrSessionNotOpen, Status: status}, nil
	case model.SessionStatusClosed:
		return GateDecision{Reason: ErrSessionExpired, Status: status}, nil
	}

	class, err := s.classes.GetByID(ctx, sess.ClassID)
	if err != nil {
		return GateDecision{}, fmt.Errorf("get class: %w", err)
	}
	enrolled, err := s.enrollments.Exists(ctx, studentID, class.CourseID)
	if err != nil {
		return GateDecision{}, fmt.Errorf("check enrollment: %w", err)
	}
	if !enrolled {
		return GateDecision{Reason: ErrNotEnrolled, Status: status}, nil
	}

	_, err = s.attendance.GetBySessionAndStudent(ctx, sess.ID, studentID)
	if err == nil {
		return GateDecision{Reason: ErrAlreadyMarked, Status: status}, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return GateDecision{}, fmt.Errorf("check existing record: %w", err)
	}

	return GateDecision{Allowed: true, Status: status}, nil
}

// Mark verifies the access token and records the student's attendance.
// Ordered checks: session exists → token matches → not expired (re-derived
// from the stored expiry) → open → enrolled → not already marked. Token and
// expiry come before the uniqueness check so a bad caller costs no write.
// Retried calls after a success return ErrAlreadyMarked, never a duplicate.
func (s *AttendanceService) Mark(ctx context.Context, sessionID uuid.UUID, studentID int, accessToken string) (*model.AttendanceRecord, error) {
	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	if sess.Token != accessToken {
		return nil, ErrInvalidToken
	}

	now := s.now()
	// Expiry is checked against the stored expires_at, which equals the
	// session end instant, so this and the status engine cannot disagree.
	if now.After(sess.ExpiresAt) {
		return nil, ErrSessionExpired
	}

	decision, err := s.CanMark(ctx, sess, studentID)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, decision.Reason
	}

	status := model.AttendanceStatusPresent
	if now.After(sess.StartsAt.Add(model.LateWindow)) {
		status = model.AttendanceStatusLate
	}

	rec := &model.AttendanceRecord{
		ID:        uuid.New(),
		SessionID: sess.ID,
		StudentID: studentID,
		Status:    status,
		MarkedAt:  now,
	}

	if err := s.attendance.Create(ctx, rec); err != nil {
		// A concurrent mark for the same pair won the race: the conflict
		// clause swallowed the insert and RETURNING produced no row. This
		// is an expected outcome, not a failure.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAlreadyMarked
		}
		return nil, fmt.Errorf("create attendance record: %w", err)
	}

	s.log.Info().
		Str("session_id", sess.ID.String()).
		Int("student_id", studentID).
		Str("status", string(status)).
		Msg("Attendance marked")

	s.notifier.AttendanceMarked(ctx, sess.ID, studentID, string(status), rec.MarkedAt)

	return rec, nil
}
