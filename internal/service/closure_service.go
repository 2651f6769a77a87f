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

// ErrSessionNotClosed means closure was requested for a session that has
// not crossed its end time. The processor re-verifies rather than trusting
// the caller.
var ErrSessionNotClosed = errors.New("session has not closed yet")

// ClosureService backfills Absent records when sessions close. The whole
// operation is a set difference recomputed fresh on every call, so invoking
// it twice (or concurrently from independent watchers) inserts nothing the
// second time; the uniqueness constraint is the cross-process backstop.
type ClosureService struct {
	sessions   SessionStore
	classes    ClassStore
	attendance AttendanceStore
	notifier   RosterNotifier
	now        timeutil.Clock
	log        zerolog.Logger
}

// NewClosureService creates a new ClosureService.
func NewClosureService(
	sessions SessionStore,
	classes ClassStore,
	attendance AttendanceStore,
	notifier RosterNotifier,
	now timeutil.Clock,
	log zerolog.Logger,
) *ClosureService {
	return &ClosureService{
		sessions:   sessions,
		classes:    classes,
		attendance: attendance,
		notifier:   notifier,
		now:        now,
		log:        log.With().Str("component", "closure_service").Logger(),
	}
}

// ProcessClosure inserts an Absent record for every enrolled student with
// no attendance record for the session. Returns the number inserted; zero
// on any repeat invocation.
func (s *ClosureService) ProcessClosure(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrSessionNotFound
		}
		return 0, fmt.Errorf("get session: %w", err)
	}

	now := s.now()
	if sess.StatusAt(now) != model.SessionStatusClosed {
		return 0, ErrSessionNotClosed
	}

	class, err := s.classes.GetByID(ctx, sess.ClassID)
	if err != nil {
		return 0, fmt.Errorf("get class: %w", err)
	}

	absentCount, err := s.attendance.InsertAbsentees(ctx, sess.ID, class.CourseID, now)
	if err != nil {
		return 0, fmt.Errorf("insert absentees: %w", err)
	}

	if absentCount > 0 {
		s.log.Info().
			Str("session_id", sess.ID.String()).
			Int64("absent_count", absentCount).
			Msg("Session closed, absences backfilled")
		s.notifier.SessionClosed(ctx, sess.ID, absentCount)
	} else {
		s.log.Debug().
			Str("session_id", sess.ID.String()).
			Msg("Closure re-run, nothing to backfill")
	}

	return absentCount, nil
}
