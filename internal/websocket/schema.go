package websocket

import "time"

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventAttendanceMarked Event = "attendance.marked"
	EventSessionClosed    Event = "session.closed"
	EventError            Event = "error"
	EventPong             Event = "pong"
)

// RosterEvent is published on a session's roster channel whenever a record
// is written: a student marking (Present/Late) or closure backfilling
// absences. Observers re-query the roster on receipt; the event itself is
// only a hint.
type RosterEvent struct {
	Event       Event     `json:"event"`
	SessionID   string    `json:"session_id"`
	StudentID   int       `json:"student_id,omitempty"`
	Status      string    `json:"status,omitempty"`
	MarkedAt    time.Time `json:"marked_at,omitempty"`
	AbsentCount int64     `json:"absent_count,omitempty"`
}

// ErrorResponse reports a stream-level failure before closing.
type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is the only client payload the stream accepts; anything
// other than a ping is ignored.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// PongResponse answers a client ping.
type PongResponse struct {
	Event Event `json:"event"`
}
