package domain

import (
	"time"

	"github.com/google/uuid"
)

// FriendRequest represents a pending friend request
// Maps to CockroachDB friend_requests table
type FriendRequest struct {
	RequestID  uuid.UUID `json:"id" db:"request_id"`
	FromUserID uuid.UUID `json:"from_user_id" db:"from_user_id"`
	ToUserID   uuid.UUID `json:"to_user_id" db:"to_user_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// FriendRequestResponse is a pending request enriched with sender info
type FriendRequestResponse struct {
	FriendRequest
	FromUser *UserResponse `json:"from_user"`
}
