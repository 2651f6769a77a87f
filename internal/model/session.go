package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus is derived from timestamps, never stored. Every component
// that needs a status calls Session.StatusAt so the rule cannot diverge.
type SessionStatus string

const (
	SessionStatusScheduled SessionStatus = "SCHEDULED"
	SessionStatusOpen      SessionStatus = "OPEN"
	SessionStatusClosed    SessionStatus = "CLOSED"
)

// LateWindow is the grace period from session start during which a mark
// still counts as Present. Marks after it (but before close) are Late.
const LateWindow = 10 * time.Minute

// Session is a scheduled attendance-taking window for a class on a date.
// Civil start/end times are converted once at scheduling through the shared
// fixed-offset converter and stored as UTC instants. Rows are immutable
// after creation except for a reschedule while still Scheduled; the token
// never changes.
type Session struct {
	ID          uuid.UUID `json:"id"`
	ClassID     uuid.UUID `json:"class_id"`
	SessionDate time.Time `json:"session_date"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	Token       string    `json:"token,omitempty"`
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// StatusAt derives the session status at the given instant:
// Scheduled before start, Open from start through end, Closed after end.
// Pure and safe for concurrent use.
func (s *Session) StatusAt(now time.Time) SessionStatus {
	switch {
	case now.Before(s.StartsAt):
		return SessionStatusScheduled
	case now.After(s.EndsAt):
		return SessionStatusClosed
	default:
		return SessionStatusOpen
	}
}

// OverlapsRange reports whether the session's window conflicts with the
// half-open interval [start, end). Touching endpoints do not conflict.
func (s *Session) OverlapsRange(start, end time.Time) bool {
	return start.Before(s.EndsAt) && end.After(s.StartsAt)
}

// CreateSessionRequest is the delegate payload for scheduling a session.
type CreateSessionRequest struct {
	CourseID  int    `json:"course_id" binding:"required"`
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}

// RescheduleSessionRequest moves a still-Scheduled session to a new window.
type RescheduleSessionRequest struct {
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}

// MarkAttendanceRequest is the student payload for marking attendance.
type MarkAttendanceRequest struct {
	// No length bounds here: a malformed token is still a wrong token,
	// and the comparison in the service decides that.
	Token string `json:"token" binding:"required"`
}
