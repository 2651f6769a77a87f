package model

import (
	"time"

	"github.com/google/uuid"
)

// AttendanceStatus enumerates attendance record outcomes.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "PRESENT"
	AttendanceStatusLate    AttendanceStatus = "LATE"
	AttendanceStatusAbsent  AttendanceStatus = "ABSENT"
)

// AttendanceRecord is one student's outcome for one session. At most one
// record exists per (session, student), enforced by a database uniqueness
// constraint; records are inserted once and never updated or deleted.
type AttendanceRecord struct {
	ID        uuid.UUID        `json:"id"`
	SessionID uuid.UUID        `json:"session_id"`
	StudentID int              `json:"student_id"`
	Status    AttendanceStatus `json:"status"`
	MarkedAt  time.Time        `json:"marked_at"`
}
