package model

import "time"

// Student represents a student account. Enrollment, not the student row,
// decides which sessions the student may be marked for.
type Student struct {
	ID           int       `json:"id"`
	RegNumber    string    `json:"reg_number"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Enrollment ties a student to a course. Read-only to this service.
type Enrollment struct {
	StudentID int `json:"student_id"`
	CourseID  int `json:"course_id"`
}

// StudentLoginRequest is the payload for student authentication.
type StudentLoginRequest struct {
	RegNumber string `json:"reg_number" binding:"required,min=4,max=20"`
	Password  string `json:"password" binding:"required,min=4,max=128"`
}

// StudentLoginResponse is returned after successful student login.
type StudentLoginResponse struct {
	Token   string  `json:"token"`
	Student Student `json:"student"`
}
