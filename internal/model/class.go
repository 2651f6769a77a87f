package model

import (
	"time"

	"github.com/google/uuid"
)

// Class binds a delegate to a course. It is created implicitly on the first
// session request for a (course, delegate) pair.
type Class struct {
	ID         uuid.UUID `json:"id"`
	DelegateID int       `json:"delegate_id"`
	CourseID   int       `json:"course_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Course is a taught subject students enroll in.
type Course struct {
	ID        int       `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
