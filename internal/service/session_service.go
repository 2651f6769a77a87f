package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/classtrack/attendance-backend/internal/model"
	"github.com/classtrack/attendance-backend/internal/timeutil"
	"github.com/classtrack/attendance-backend/internal/token"
)

// Scheduling errors, one per validation, checked in order.
var (
	ErrInvalidCivilTime = errors.New("invalid date or time format")
	ErrEndBeforeStart   = errors.New("session end must be after its start")
	ErrStartInPast      = errors.New("session must start in the future")
	ErrCourseNotFound   = errors.New("course does not exist")
	ErrNotSessionOwner  = errors.New("session does not belong to this delegate")
	ErrNotReschedulable = errors.New("only a scheduled session can be rescheduled")
)

// OverlapError carries the sessions a candidate window conflicts with.
type OverlapError struct {
	Conflicts []model.Session
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("session overlaps %d existing session(s)", len(e.Conflicts))
}

// SessionService schedules sessions and serves status-bucketed views. All
// status derivation goes through Session.StatusAt with this service's clock.
type SessionService struct {
	sessions    SessionStore
	classes     ClassStore
	courses     CourseStore
	enrollments EnrollmentStore
	attendance  AttendanceStore
	students    StudentStore
	now         timeutil.Clock
	log         zerolog.Logger
}

// NewSessionService creates a new SessionService.
func NewSessionService(
	sessions SessionStore,
	classes ClassStore,
	courses CourseStore,
	enrollments EnrollmentStore,
	attendance AttendanceStore,
	students StudentStore,
	now timeutil.Clock,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		sessions:    sessions,
		classes:     classes,
		courses:     courses,
		enrollments: enrollments,
		attendance:  attendance,
		students:    students,
		now:         now,
		log:         log.With().Str("component", "session_service").Logger(),
	}
}

// parseWindow converts the civil request fields into UTC instants via the
// shared fixed-offset converter, validating ordering first.
func parseWindow(dateStr, startStr, endStr string) (date, startsAt, endsAt time.Time, err error) {
	date, err = timeutil.ParseDate(dateStr)
	if err != nil {
		return date, startsAt, endsAt, fmt.Errorf("%w: %v", ErrInvalidCivilTime, err)
	}
	sh, sm, err := timeutil.ParseCivilTime(startStr)
	if err != nil {
		return date, startsAt, endsAt, fmt.Errorf("%w: %v", ErrInvalidCivilTime, err)
	}
	eh, em, err := timeutil.ParseCivilTime(endStr)
	if err != nil {
		return date, startsAt, endsAt, fmt.Errorf("%w: %v", ErrInvalidCivilTime, err)
	}
	if sh*60+sm >= eh*60+em {
		return date, startsAt, endsAt, ErrEndBeforeStart
	}
	startsAt = timeutil.ToUTC(date, sh, sm)
	endsAt = timeutil.ToUTC(date, eh, em)
	return date, startsAt, endsAt, nil
}

// hasOverlap checks a candidate window against the class's sessions on the
// same date. Half-open interval rule: touching endpoints do not conflict.
// excludeID skips the session being rescheduled; pass uuid.Nil at creation.
func (s *SessionService) hasOverlap(ctx context.Context, classID uuid.UUID, date, startsAt, endsAt time.Time, excludeID uuid.UUID) ([]model.Session, error) {
	existing, err := s.sessions.ListByClassAndDate(ctx, classID, date)
	if err != nil {
		return nil, fmt.Errorf("list sessions for overlap check: %w", err)
	}

	var conflicts []model.Session
	for i := range existing {
		if existing[i].ID == excludeID {
			continue
		}
		if existing[i].OverlapsRange(startsAt, endsAt) {
			conflicts = append(conflicts, existing[i])
		}
	}
	return conflicts, nil
}

// CreateSession validates and persists a session for the delegate's class on
// the course. Checks run in order, each short-circuiting: time ordering,
// non-past start, overlap. Validation happens before any session write, so
// failure leaves no partial state (the implicit class row is the one
// exception and is idempotent by construction).
func (s *SessionService) CreateSession(ctx context.Context, delegateID int, req model.CreateSessionRequest) (*model.Session, error) {
	date, startsAt, endsAt, err := parseWindow(req.Date, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	if !startsAt.After(s.now()) {
		return nil, ErrStartInPast
	}

	// Course existence is checked up front so an unknown ID answers a
	// validation denial instead of tripping the classes foreign key.
	if _, err := s.courses.GetByID(ctx, req.CourseID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("get course: %w", err)
	}

	class, err := s.classes.GetOrCreate(ctx, delegateID, req.CourseID)
	if err != nil {
		return nil, fmt.Errorf("get or create class: %w", err)
	}

	conflicts, err := s.hasOverlap(ctx, class.ID, date, startsAt, endsAt, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return nil, &OverlapError{Conflicts: conflicts}
	}

	accessToken, err := token.New(token.SessionTokenLength)
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}

	sess := &model.Session{
		ID:          uuid.New(),
		ClassID:     class.ID,
		SessionDate: date,
		StartsAt:    startsAt,
		EndsAt:      endsAt,
		Token:       accessToken,
		// Expiry always equals the session end; the mark path checks it.
		ExpiresAt: endsAt,
	}

	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.log.Info().
		Str("session_id", sess.ID.String()).
		Str("class_id", class.ID.String()).
		Time("starts_at", startsAt).
		Time("ends_at", endsAt).
		Msg("Session scheduled")

	return sess, nil
}

// RescheduleSession moves a still-Scheduled session owned by the delegate to
// a new window, re-running the same validations with the session excluded
// from its own overlap check. The token is never regenerated.
func (s *SessionService) RescheduleSession(ctx context.Context, delegateID int, sessionID uuid.UUID, req model.RescheduleSessionRequest) (*model.Session, error) {
	sess, err := s.ownedSession(ctx, delegateID, sessionID)
	if err != nil {
		return nil, err
	}

	if sess.StatusAt(s.now()) != model.SessionStatusScheduled {
		return nil, ErrNotReschedulable
	}

	date, startsAt, endsAt, err := parseWindow(req.Date, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	if !startsAt.After(s.now()) {
		return nil, ErrStartInPast
	}

	conflicts, err := s.hasOverlap(ctx, sess.ClassID, date, startsAt, endsAt, sess.ID)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return nil, &OverlapError{Conflicts: conflicts}
	}

	sess.SessionDate = date
	sess.StartsAt = startsAt
	sess.EndsAt = endsAt
	sess.ExpiresAt = endsAt

	if err := s.sessions.UpdateTimes(ctx, sess); err != nil {
		return nil, fmt.Errorf("reschedule session: %w", err)
	}
	return sess, nil
}

// ownedSession loads a session and verifies the delegate owns its class.
func (s *SessionService) ownedSession(ctx context.Context, delegateID int, sessionID uuid.UUID) (*model.Session, error) {
	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	class, err := s.classes.GetByID(ctx, sess.ClassID)
	if err != nil {
		return nil, fmt.Errorf("get class: %w", err)
	}
	if class.DelegateID != delegateID {
		return nil, ErrNotSessionOwner
	}
	return sess, nil
}

// SessionView is a session annotated with its derived status and, for
// students, whether they already marked.
type SessionView struct {
	model.Session
	Status       model.SessionStatus     `json:"status"`
	Marked       bool                    `json:"marked"`
	MarkedStatus *model.AttendanceStatus `json:"marked_status,omitempty"`
}

// Buckets groups sessions by derived status, recomputed per call.
type Buckets struct {
	Scheduled []SessionView `json:"scheduled"`
	Open      []SessionView `json:"open"`
	Closed    []SessionView `json:"closed"`
}

func (b *Buckets) add(v SessionView) {
	switch v.Status {
	case model.SessionStatusScheduled:
		b.Scheduled = append(b.Scheduled, v)
	case model.SessionStatusOpen:
		b.Open = append(b.Open, v)
	default:
		b.Closed = append(b.Closed, v)
	}
}

func newBuckets() *Buckets {
	return &Buckets{
		Scheduled: []SessionView{},
		Open:      []SessionView{},
		Closed:    []SessionView{},
	}
}

// ListForDelegate returns the delegate's sessions in status buckets. The
// token rides along so delegates can share it with their class.
func (s *SessionService) ListForDelegate(ctx context.Context, delegateID int) (*Buckets, error) {
	sessions, err := s.sessions.ListByDelegate(ctx, delegateID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	buckets := newBuckets()
	now := s.now()
	for i := range sessions {
		buckets.add(SessionView{
			Session: sessions[i],
			Status:  sessions[i].StatusAt(now),
		})
	}
	return buckets, nil
}

// ListForStudent returns the sessions of the student's enrolled courses in
// status buckets, each annotated with whether the student already marked.
// Tokens are not exposed to students.
func (s *SessionService) ListForStudent(ctx context.Context, studentID int) (*Buckets, error) {
	courseIDs, err := s.enrollments.ListCourseIDs(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}

	buckets := newBuckets()
	if len(courseIDs) == 0 {
		return buckets, nil
	}

	sessions, err := s.sessions.ListByCourses(ctx, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	sessionIDs := make([]uuid.UUID, len(sessions))
	for i := range sessions {
		sessionIDs[i] = sessions[i].ID
	}
	marked, err := s.attendance.MapByStudentAndSessions(ctx, studentID, sessionIDs)
	if err != nil {
		return nil, fmt.Errorf("map attendance: %w", err)
	}

	now := s.now()
	for i := range sessions {
		sessions[i].Token = ""
		view := SessionView{
			Session: sessions[i],
			Status:  sessions[i].StatusAt(now),
		}
		if status, ok := marked[sessions[i].ID]; ok {
			view.Marked = true
			st := status
			view.MarkedStatus = &st
		}
		buckets.add(view)
	}
	return buckets, nil
}

// ListCourses returns the course catalog so delegates can pick a course ID
// when scheduling.
func (s *SessionService) ListCourses(ctx context.Context) ([]model.Course, error) {
	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	if courses == nil {
		courses = []model.Course{}
	}
	return courses, nil
}

// RosterEntry is one enrolled student's line in a session roster.
type RosterEntry struct {
	StudentID int                     `json:"student_id"`
	RegNumber string                  `json:"reg_number"`
	Name      string                  `json:"name"`
	Status    *model.AttendanceStatus `json:"status,omitempty"`
	MarkedAt  *time.Time              `json:"marked_at,omitempty"`
}

// Roster returns the attendance roster for a delegate-owned session: every
// enrolled student with their record, or a nil status if not yet marked.
func (s *SessionService) Roster(ctx context.Context, delegateID int, sessionID uuid.UUID) ([]RosterEntry, error) {
	sess, err := s.ownedSession(ctx, delegateID, sessionID)
	if err != nil {
		return nil, err
	}
	class, err := s.classes.GetByID(ctx, sess.ClassID)
	if err != nil {
		return nil, fmt.Errorf("get class: %w", err)
	}

	studentIDs, err := s.enrollments.ListStudentIDs(ctx, class.CourseID)
	if err != nil {
		return nil, fmt.Errorf("list enrolled students: %w", err)
	}
	if len(studentIDs) == 0 {
		return []RosterEntry{}, nil
	}

	students, err := s.students.ListByIDs(ctx, studentIDs)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}

	records, err := s.attendance.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	byStudent := make(map[int]*model.AttendanceRecord, len(records))
	for i := range records {
		byStudent[records[i].StudentID] = &records[i]
	}

	roster := make([]RosterEntry, 0, len(students))
	for i := range students {
		entry := RosterEntry{
			StudentID: students[i].ID,
			RegNumber: students[i].RegNumber,
			Name:      students[i].Name,
		}
		if rec, ok := byStudent[students[i].ID]; ok {
			entry.Status = &rec.Status
			entry.MarkedAt = &rec.MarkedAt
		}
		roster = append(roster, entry)
	}
	return roster, nil
}

// VerifyOwnership checks that a session belongs to the delegate. Used by
// the stream handler before upgrading.
func (s *SessionService) VerifyOwnership(ctx context.Context, delegateID int, sessionID uuid.UUID) error {
	_, err := s.ownedSession(ctx, delegateID, sessionID)
	return err
}
