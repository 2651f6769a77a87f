package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/classtrack/attendance-backend/internal/model"
	"github.com/classtrack/attendance-backend/internal/token"
)

const (
	testDelegateID = 7
	testCourseID   = 101
)

// 2026-04-01 06:00 UTC, comfortably before any 08:00 local window on the
// following day.
var testNow = time.Date(2026, 4, 1, 6, 0, 0, 0, time.UTC)

func newSessionService(sessions *fakeSessionStore, classes *fakeClassStore, at time.Time) *SessionService {
	enrollments := newFakeEnrollmentStore()
	attendance := newFakeAttendanceStore(enrollments)
	return NewSessionService(sessions, classes, newFakeCourseStore(testCourseID), enrollments, attendance, nil, fixedClock(at), testLogger())
}

func createReq(date, start, end string) model.CreateSessionRequest {
	return model.CreateSessionRequest{
		CourseID:  testCourseID,
		Date:      date,
		StartTime: start,
		EndTime:   end,
	}
}

func TestCreateSession(t *testing.T) {
	svc := newSessionService(newFakeSessionStore(), newFakeClassStore(), testNow)

	sess, err := svc.CreateSession(context.Background(), testDelegateID, createReq("2026-04-02", "08:00", "10:00"))
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	if len(sess.Token) != token.SessionTokenLength {
		t.Errorf("token length %d, want %d", len(sess.Token), token.SessionTokenLength)
	}
	// 08:00 local in the fixed UTC+1 offset is 07:00 UTC.
	wantStart := time.Date(2026, 4, 2, 7, 0, 0, 0, time.UTC)
	if !sess.StartsAt.Equal(wantStart) {
		t.Errorf("StartsAt = %v, want %v", sess.StartsAt, wantStart)
	}
	if !sess.ExpiresAt.Equal(sess.EndsAt) {
		t.Errorf("ExpiresAt = %v, want EndsAt %v", sess.ExpiresAt, sess.EndsAt)
	}
	if sess.StatusAt(testNow) != model.SessionStatusScheduled {
		t.Errorf("status at creation = %v, want SCHEDULED", sess.StatusAt(testNow))
	}
}

func TestCreateSessionValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     model.CreateSessionRequest
		wantErr error
	}{
		{name: "end before start", req: createReq("2026-04-02", "10:00", "08:00"), wantErr: ErrEndBeforeStart},
		{name: "zero length", req: createReq("2026-04-02", "08:00", "08:00"), wantErr: ErrEndBeforeStart},
		{name: "start in past", req: createReq("2026-03-30", "08:00", "10:00"), wantErr: ErrStartInPast},
		{name: "bad time", req: createReq("2026-04-02", "8am", "10:00"), wantErr: ErrInvalidCivilTime},
		{name: "bad date", req: createReq("tomorrow", "08:00", "10:00"), wantErr: ErrInvalidCivilTime},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeSessionStore()
			svc := newSessionService(store, newFakeClassStore(), testNow)
			_, err := svc.CreateSession(context.Background(), testDelegateID, tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CreateSession() error = %v, want %v", err, tt.wantErr)
			}
			if len(store.sessions) != 0 {
				t.Error("failed validation left a persisted session")
			}
		})
	}
}

func TestCreateSessionUnknownCourse(t *testing.T) {
	store := newFakeSessionStore()
	classes := newFakeClassStore()
	svc := newSessionService(store, classes, testNow)

	req := createReq("2026-04-02", "08:00", "10:00")
	req.CourseID = testCourseID + 999
	_, err := svc.CreateSession(context.Background(), testDelegateID, req)
	if !errors.Is(err, ErrCourseNotFound) {
		t.Fatalf("CreateSession() error = %v, want %v", err, ErrCourseNotFound)
	}
	if len(store.sessions) != 0 {
		t.Error("unknown course still persisted a session")
	}
	if len(classes.classes) != 0 {
		t.Error("unknown course still created a class row")
	}
}

func TestListCourses(t *testing.T) {
	svc := NewSessionService(newFakeSessionStore(), newFakeClassStore(), newFakeCourseStore(testCourseID, testCourseID+1), newFakeEnrollmentStore(), newFakeAttendanceStore(newFakeEnrollmentStore()), nil, fixedClock(testNow), testLogger())

	courses, err := svc.ListCourses(context.Background())
	if err != nil {
		t.Fatalf("ListCourses() error = %v", err)
	}
	if len(courses) != 2 {
		t.Errorf("course count = %d, want 2", len(courses))
	}

	empty := NewSessionService(newFakeSessionStore(), newFakeClassStore(), newFakeCourseStore(), newFakeEnrollmentStore(), newFakeAttendanceStore(newFakeEnrollmentStore()), nil, fixedClock(testNow), testLogger())
	courses, err = empty.ListCourses(context.Background())
	if err != nil {
		t.Fatalf("ListCourses() error = %v", err)
	}
	if courses == nil {
		t.Error("empty catalog returned nil instead of an empty slice")
	}
}

func TestCreateSessionStartBoundary(t *testing.T) {
	// A start exactly equal to now is already not in the future.
	at := time.Date(2026, 4, 2, 7, 0, 0, 0, time.UTC) // 08:00 local
	svc := newSessionService(newFakeSessionStore(), newFakeClassStore(), at)
	_, err := svc.CreateSession(context.Background(), testDelegateID, createReq("2026-04-02", "08:00", "10:00"))
	if !errors.Is(err, ErrStartInPast) {
		t.Errorf("CreateSession() error = %v, want %v", err, ErrStartInPast)
	}
}

func TestCreateSessionOverlap(t *testing.T) {
	ctx := context.Background()
	svc := newSessionService(newFakeSessionStore(), newFakeClassStore(), testNow)

	if _, err := svc.CreateSession(ctx, testDelegateID, createReq("2026-04-02", "08:00", "10:00")); err != nil {
		t.Fatalf("seed session: %v", err)
	}

	tests := []struct {
		name     string
		start    string
		end      string
		conflict bool
	}{
		{name: "straddles existing", start: "09:30", end: "11:00", conflict: true},
		{name: "contained", start: "08:30", end: "09:00", conflict: true},
		{name: "identical", start: "08:00", end: "10:00", conflict: true},
		{name: "back to back after", start: "10:00", end: "12:00"},
		{name: "back to back before", start: "06:00", end: "08:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateSession(ctx, testDelegateID, createReq("2026-04-02", tt.start, tt.end))
			var overlap *OverlapError
			if tt.conflict {
				if !errors.As(err, &overlap) {
					t.Fatalf("CreateSession() error = %v, want OverlapError", err)
				}
				if len(overlap.Conflicts) == 0 {
					t.Error("OverlapError carries no conflicts")
				}
			} else if err != nil {
				t.Fatalf("CreateSession() error = %v, want nil", err)
			}
		})
	}
}

func TestCreateSessionOverlapScopedToClass(t *testing.T) {
	// The same window for a different delegate's class does not conflict.
	ctx := context.Background()
	sessions := newFakeSessionStore()
	classes := newFakeClassStore()
	svc := newSessionService(sessions, classes, testNow)

	if _, err := svc.CreateSession(ctx, testDelegateID, createReq("2026-04-02", "08:00", "10:00")); err != nil {
		t.Fatalf("seed session: %v", err)
	}
	if _, err := svc.CreateSession(ctx, testDelegateID+1, createReq("2026-04-02", "08:00", "10:00")); err != nil {
		t.Errorf("CreateSession() for other delegate error = %v", err)
	}
}

func TestRescheduleSession(t *testing.T) {
	ctx := context.Background()
	sessions := newFakeSessionStore()
	classes := newFakeClassStore()
	svc := newSessionService(sessions, classes, testNow)

	sess, err := svc.CreateSession(ctx, testDelegateID, createReq("2026-04-02", "08:00", "10:00"))
	if err != nil {
		t.Fatalf("seed session: %v", err)
	}
	originalToken := sess.Token

	moved, err := svc.RescheduleSession(ctx, testDelegateID, sess.ID, model.RescheduleSessionRequest{
		Date: "2026-04-03", StartTime: "13:00", EndTime: "15:00",
	})
	if err != nil {
		t.Fatalf("RescheduleSession() error = %v", err)
	}
	if moved.Token != originalToken {
		t.Error("reschedule regenerated the token")
	}
	wantStart := time.Date(2026, 4, 3, 12, 0, 0, 0, time.UTC)
	if !moved.StartsAt.Equal(wantStart) {
		t.Errorf("StartsAt = %v, want %v", moved.StartsAt, wantStart)
	}
	if !moved.ExpiresAt.Equal(moved.EndsAt) {
		t.Errorf("ExpiresAt = %v, want EndsAt %v", moved.ExpiresAt, moved.EndsAt)
	}
}

func TestRescheduleSessionGuards(t *testing.T) {
	ctx := context.Background()
	sessions := newFakeSessionStore()
	classes := newFakeClassStore()
	svc := newSessionService(sessions, classes, testNow)

	sess, err := svc.CreateSession(ctx, testDelegateID, createReq("2026-04-02", "08:00", "10:00"))
	if err != nil {
		t.Fatalf("seed session: %v", err)
	}
	req := model.RescheduleSessionRequest{Date: "2026-04-03", StartTime: "13:00", EndTime: "15:00"}

	t.Run("unknown session", func(t *testing.T) {
		_, err := svc.RescheduleSession(ctx, testDelegateID, uuid.New(), req)
		if !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("error = %v, want %v", err, ErrSessionNotFound)
		}
	})

	t.Run("not the owner", func(t *testing.T) {
		_, err := svc.RescheduleSession(ctx, testDelegateID+1, sess.ID, req)
		if !errors.Is(err, ErrNotSessionOwner) {
			t.Errorf("error = %v, want %v", err, ErrNotSessionOwner)
		}
	})

	t.Run("already open", func(t *testing.T) {
		openSvc := NewSessionService(sessions, classes, newFakeCourseStore(testCourseID), newFakeEnrollmentStore(), newFakeAttendanceStore(newFakeEnrollmentStore()), nil, fixedClock(sess.StartsAt.Add(time.Minute)), testLogger())
		_, err := openSvc.RescheduleSession(ctx, testDelegateID, sess.ID, model.RescheduleSessionRequest{
			Date: "2026-04-03", StartTime: "13:00", EndTime: "15:00",
		})
		if !errors.Is(err, ErrNotReschedulable) {
			t.Errorf("error = %v, want %v", err, ErrNotReschedulable)
		}
	})

	t.Run("does not conflict with itself", func(t *testing.T) {
		// Moving within its own window must not trip the overlap check.
		_, err := svc.RescheduleSession(ctx, testDelegateID, sess.ID, model.RescheduleSessionRequest{
			Date: "2026-04-02", StartTime: "09:00", EndTime: "11:00",
		})
		if err != nil {
			t.Errorf("RescheduleSession() error = %v", err)
		}
	})
}

func TestListForStudentBlanksToken(t *testing.T) {
	ctx := context.Background()
	sessions := newFakeSessionStore()
	classes := newFakeClassStore()
	enrollments := newFakeEnrollmentStore()
	attendance := newFakeAttendanceStore(enrollments)
	svc := NewSessionService(sessions, classes, newFakeCourseStore(testCourseID), enrollments, attendance, nil, fixedClock(testNow), testLogger())

	sess, err := svc.CreateSession(ctx, testDelegateID, createReq("2026-04-02", "08:00", "10:00"))
	if err != nil {
		t.Fatalf("seed session: %v", err)
	}
	const studentID = 42
	enrollments.enroll(studentID, testCourseID)

	buckets, err := svc.ListForStudent(ctx, studentID)
	if err != nil {
		t.Fatalf("ListForStudent() error = %v", err)
	}
	if len(buckets.Scheduled) != 1 {
		t.Fatalf("scheduled bucket size %d, want 1", len(buckets.Scheduled))
	}
	view := buckets.Scheduled[0]
	if view.ID != sess.ID {
		t.Errorf("view session %v, want %v", view.ID, sess.ID)
	}
	if view.Token != "" {
		t.Error("student view leaked the session token")
	}
	if view.Marked {
		t.Error("unmarked session reported as marked")
	}
}
