package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/classtrack/attendance-backend/internal/model"
	"github.com/classtrack/attendance-backend/internal/timeutil"
)

// In-memory stores mirroring the repository contract: absent rows come back
// as pgx.ErrNoRows, and attendance insert races surface the same way the
// conflict clause does.

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func fixedClock(at time.Time) timeutil.Clock {
	return func() time.Time { return at }
}

type fakeSessionStore struct {
	sessions map[uuid.UUID]*model.Session
}

func newFakeSessionStore(sessions ...*model.Session) *fakeSessionStore {
	s := &fakeSessionStore{sessions: make(map[uuid.UUID]*model.Session)}
	for _, sess := range sessions {
		cp := *sess
		s.sessions[sess.ID] = &cp
	}
	return s
}

func (s *fakeSessionStore) Create(_ context.Context, sess *model.Session) error {
	cp := *sess
	cp.CreatedAt = time.Now().UTC()
	s.sessions[sess.ID] = &cp
	return nil
}

func (s *fakeSessionStore) GetByID(_ context.Context, id uuid.UUID) (*model.Session, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *sess
	return &cp, nil
}

func (s *fakeSessionStore) UpdateTimes(_ context.Context, sess *model.Session) error {
	stored, ok := s.sessions[sess.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.SessionDate = sess.SessionDate
	stored.StartsAt = sess.StartsAt
	stored.EndsAt = sess.EndsAt
	stored.ExpiresAt = sess.ExpiresAt
	return nil
}

func (s *fakeSessionStore) ListByClassAndDate(_ context.Context, classID uuid.UUID, date time.Time) ([]model.Session, error) {
	var out []model.Session
	for _, sess := range s.sessions {
		if sess.ClassID == classID && sess.SessionDate.Equal(date) {
			out = append(out, *sess)
		}
	}
	return out, nil
}

func (s *fakeSessionStore) ListByDelegate(_ context.Context, _ int) ([]model.Session, error) {
	var out []model.Session
	for _, sess := range s.sessions {
		out = append(out, *sess)
	}
	return out, nil
}

func (s *fakeSessionStore) ListByCourses(_ context.Context, _ []int) ([]model.Session, error) {
	var out []model.Session
	for _, sess := range s.sessions {
		cp := *sess
		cp.Token = ""
		out = append(out, cp)
	}
	return out, nil
}

type fakeClassStore struct {
	classes map[uuid.UUID]*model.Class
}

func newFakeClassStore(classes ...*model.Class) *fakeClassStore {
	s := &fakeClassStore{classes: make(map[uuid.UUID]*model.Class)}
	for _, c := range classes {
		cp := *c
		s.classes[c.ID] = &cp
	}
	return s
}

func (s *fakeClassStore) GetOrCreate(_ context.Context, delegateID, courseID int) (*model.Class, error) {
	for _, c := range s.classes {
		if c.DelegateID == delegateID && c.CourseID == courseID {
			cp := *c
			return &cp, nil
		}
	}
	c := &model.Class{ID: uuid.New(), DelegateID: delegateID, CourseID: courseID}
	s.classes[c.ID] = c
	cp := *c
	return &cp, nil
}

func (s *fakeClassStore) GetByID(_ context.Context, id uuid.UUID) (*model.Class, error) {
	c, ok := s.classes[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *c
	return &cp, nil
}

type fakeCourseStore struct {
	courses map[int]*model.Course
}

func newFakeCourseStore(ids ...int) *fakeCourseStore {
	s := &fakeCourseStore{courses: make(map[int]*model.Course)}
	for _, id := range ids {
		s.courses[id] = &model.Course{ID: id, Code: "C" + uuid.NewString()[:6], Name: "Course"}
	}
	return s
}

func (s *fakeCourseStore) GetByID(_ context.Context, id int) (*model.Course, error) {
	c, ok := s.courses[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *c
	return &cp, nil
}

func (s *fakeCourseStore) List(_ context.Context) ([]model.Course, error) {
	var out []model.Course
	for _, c := range s.courses {
		out = append(out, *c)
	}
	return out, nil
}

type enrollKey struct{ studentID, courseID int }

type fakeEnrollmentStore struct {
	pairs map[enrollKey]bool
}

func newFakeEnrollmentStore() *fakeEnrollmentStore {
	return &fakeEnrollmentStore{pairs: make(map[enrollKey]bool)}
}

func (s *fakeEnrollmentStore) enroll(studentID, courseID int) {
	s.pairs[enrollKey{studentID, courseID}] = true
}

func (s *fakeEnrollmentStore) Exists(_ context.Context, studentID, courseID int) (bool, error) {
	return s.pairs[enrollKey{studentID, courseID}], nil
}

func (s *fakeEnrollmentStore) ListStudentIDs(_ context.Context, courseID int) ([]int, error) {
	var ids []int
	for k := range s.pairs {
		if k.courseID == courseID {
			ids = append(ids, k.studentID)
		}
	}
	return ids, nil
}

func (s *fakeEnrollmentStore) ListCourseIDs(_ context.Context, studentID int) ([]int, error) {
	var ids []int
	for k := range s.pairs {
		if k.studentID == studentID {
			ids = append(ids, k.courseID)
		}
	}
	return ids, nil
}

type recordKey struct {
	sessionID uuid.UUID
	studentID int
}

type fakeAttendanceStore struct {
	records     map[recordKey]*model.AttendanceRecord
	enrollments *fakeEnrollmentStore
	// When set, the next Create behaves like losing the insert race.
	conflictNext bool
}

func newFakeAttendanceStore(enrollments *fakeEnrollmentStore) *fakeAttendanceStore {
	return &fakeAttendanceStore{
		records:     make(map[recordKey]*model.AttendanceRecord),
		enrollments: enrollments,
	}
}

func (s *fakeAttendanceStore) Create(_ context.Context, rec *model.AttendanceRecord) error {
	key := recordKey{rec.SessionID, rec.StudentID}
	if s.conflictNext {
		s.conflictNext = false
		return pgx.ErrNoRows
	}
	if _, exists := s.records[key]; exists {
		return pgx.ErrNoRows
	}
	cp := *rec
	s.records[key] = &cp
	return nil
}

func (s *fakeAttendanceStore) GetBySessionAndStudent(_ context.Context, sessionID uuid.UUID, studentID int) (*model.AttendanceRecord, error) {
	rec, ok := s.records[recordKey{sessionID, studentID}]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *rec
	return &cp, nil
}

func (s *fakeAttendanceStore) ListBySession(_ context.Context, sessionID uuid.UUID) ([]model.AttendanceRecord, error) {
	var out []model.AttendanceRecord
	for k, rec := range s.records {
		if k.sessionID == sessionID {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (s *fakeAttendanceStore) MapByStudentAndSessions(_ context.Context, studentID int, sessionIDs []uuid.UUID) (map[uuid.UUID]model.AttendanceStatus, error) {
	m := make(map[uuid.UUID]model.AttendanceStatus)
	for _, id := range sessionIDs {
		if rec, ok := s.records[recordKey{id, studentID}]; ok {
			m[id] = rec.Status
		}
	}
	return m, nil
}

func (s *fakeAttendanceStore) InsertAbsentees(_ context.Context, sessionID uuid.UUID, courseID int, markedAt time.Time) (int64, error) {
	var inserted int64
	for k := range s.enrollments.pairs {
		if k.courseID != courseID {
			continue
		}
		key := recordKey{sessionID, k.studentID}
		if _, exists := s.records[key]; exists {
			continue
		}
		s.records[key] = &model.AttendanceRecord{
			ID:        uuid.New(),
			SessionID: sessionID,
			StudentID: k.studentID,
			Status:    model.AttendanceStatusAbsent,
			MarkedAt:  markedAt,
		}
		inserted++
	}
	return inserted, nil
}

type notifierCall struct {
	event     string
	sessionID uuid.UUID
	studentID int
	status    string
	count     int64
}

type fakeNotifier struct {
	calls []notifierCall
}

func (n *fakeNotifier) AttendanceMarked(_ context.Context, sessionID uuid.UUID, studentID int, status string, _ time.Time) {
	n.calls = append(n.calls, notifierCall{event: "marked", sessionID: sessionID, studentID: studentID, status: status})
}

func (n *fakeNotifier) SessionClosed(_ context.Context, sessionID uuid.UUID, absentCount int64) {
	n.calls = append(n.calls, notifierCall{event: "closed", sessionID: sessionID, count: absentCount})
}
