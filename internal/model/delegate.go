package model

import "time"

// Delegate represents a class delegate who schedules sessions and reads
// rosters for their courses.
type Delegate struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// DelegateLoginRequest is the payload for delegate authentication.
type DelegateLoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// DelegateLoginResponse is returned after successful delegate login.
type DelegateLoginResponse struct {
	Token    string   `json:"token"`
	Delegate Delegate `json:"delegate"`
}
