package friend

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gamerchat-backend/internal/middleware"
	"gamerchat-backend/internal/service/friend"
	"gamerchat-backend/pkg/response"
)

// Handler handles HTTP requests for friendships and blocks
type Handler struct {
	friendService *friend.Service
}

// NewHandler creates a new friend handler
func NewHandler(friendService *friend.Service) *Handler {
	return &Handler{
		friendService: friendService,
	}
}

// SendRequestRequest represents a friend request body
type SendRequestRequest struct {
	Username string `json:"username" binding:"required"`
}

// RespondRequest represents a friend request answer
type RespondRequest struct {
	RequestID uuid.UUID `json:"request_id" binding:"required"`
	Accept    bool      `json:"accept"`
}

// SendRequest sends a friend request addressed by username
// POST /api/friends/request
func (h *Handler) SendRequest(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	var req SendRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	request, err := h.friendService.SendRequest(c.Request.Context(), userID, req.Username)
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"request": request})
}

// Respond accepts or rejects a pending friend request
// POST /api/friends/respond
func (h *Handler) Respond(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	var req RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	if err := h.friendService.Respond(c.Request.Context(), req.RequestID, userID, req.Accept); err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Friend request answered",
	})
}

// List returns the user's friends with presence flags
// GET /api/friends
func (h *Handler) List(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	friends, err := h.friendService.ListFriends(c.Request.Context(), userID)
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"friends": friends})
}

// ListRequests returns pending requests addressed to the user
// GET /api/friends/requests
func (h *Handler) ListRequests(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	requests, err := h.friendService.ListPending(c.Request.Context(), userID)
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"requests": requests})
}

// Remove deletes a friendship
// DELETE /api/friends/:friendID
func (h *Handler) Remove(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	friendID, err := uuid.Parse(c.Param("friendID"))
	if err != nil {
		response.ValidationError(c, "Invalid friend ID")
		return
	}

	if err := h.friendService.RemoveFriend(c.Request.Context(), userID, friendID); err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Friend removed",
	})
}

// Block blocks a user and severs any friendship
// POST /api/friends/:friendID/block
func (h *Handler) Block(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	blockedID, err := uuid.Parse(c.Param("friendID"))
	if err != nil {
		response.ValidationError(c, "Invalid user ID")
		return
	}

	if err := h.friendService.Block(c.Request.Context(), userID, blockedID); err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "User blocked",
	})
}

// Unblock removes a block
// DELETE /api/friends/:friendID/block
func (h *Handler) Unblock(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	blockedID, err := uuid.Parse(c.Param("friendID"))
	if err != nil {
		response.ValidationError(c, "Invalid user ID")
		return
	}

	if err := h.friendService.Unblock(c.Request.Context(), userID, blockedID); err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "User unblocked",
	})
}
