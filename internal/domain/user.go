package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents a user account
// Maps to CockroachDB users table
type User struct {
	UserID       uuid.UUID `json:"user_id" db:"user_id"`
	Email        string    `json:"email" db:"email"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"` // Never expose in JSON
	AvatarURL    string    `json:"avatar_url" db:"avatar_url"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	LastLogin    time.Time `json:"last_login" db:"last_login"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// UserResponse is the safe user representation returned to clients
type UserResponse struct {
	UserID    uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatar"`
	LastLogin time.Time `json:"last_login"`
	IsOnline  bool      `json:"is_online"`
}

// ToResponse converts User to UserResponse (removes sensitive data)
func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		UserID:    u.UserID,
		Username:  u.Username,
		AvatarURL: u.AvatarURL,
		LastLogin: u.LastLogin,
	}
}
