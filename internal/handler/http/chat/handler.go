package chat

import (
	"encoding/base64"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gamerchat-backend/internal/middleware"
	"gamerchat-backend/internal/service/chat"
	"gamerchat-backend/pkg/pagination"
	"gamerchat-backend/pkg/response"
)

// Handler handles HTTP requests for direct messages
type Handler struct {
	chatService *chat.Service
}

// NewHandler creates a new chat handler
func NewHandler(chatService *chat.Service) *Handler {
	return &Handler{
		chatService: chatService,
	}
}

// SendRequest represents a message send body
type SendRequest struct {
	ReceiverID uuid.UUID `json:"receiver_id" binding:"required"`
	Content    string    `json:"content" binding:"required"`
}

// EditRequest represents a message edit body. PeerID identifies the
// conversation the message lives in.
type EditRequest struct {
	PeerID  uuid.UUID `json:"peer_id" binding:"required"`
	Content string    `json:"content" binding:"required"`
}

// Send stores a message and notifies the recipient if connected
// POST /api/messages
func (h *Handler) Send(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	message, err := h.chatService.Send(c.Request.Context(), userID, req.ReceiverID, req.Content)
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"message": message})
}

// GetConversation returns a page of the conversation with a user,
// newest first. The cursor comes back base64 encoded and is passed
// unchanged to fetch the next page.
// GET /api/messages/:userID?limit=&cursor=
func (h *Handler) GetConversation(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	peerID, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		response.ValidationError(c, "Invalid user ID")
		return
	}

	params, err := pagination.Parse("", c.Query("limit"))
	if err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	var pageState []byte
	if cursor := c.Query("cursor"); cursor != "" {
		pageState, err = base64.URLEncoding.DecodeString(cursor)
		if err != nil {
			response.ValidationError(c, "Invalid cursor")
			return
		}
	}

	messages, nextPage, err := h.chatService.GetConversation(c.Request.Context(), userID, peerID, params.Limit, pageState)
	if err != nil {
		response.AppError(c, err)
		return
	}

	result := gin.H{"messages": messages}
	if len(nextPage) > 0 {
		result["next_cursor"] = base64.URLEncoding.EncodeToString(nextPage)
	}

	response.Success(c, http.StatusOK, result)
}

// Edit updates the content of a message the user sent
// PUT /api/messages/:messageID
func (h *Handler) Edit(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	messageID, err := uuid.Parse(c.Param("messageID"))
	if err != nil {
		response.ValidationError(c, "Invalid message ID")
		return
	}

	var req EditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	message, err := h.chatService.Edit(c.Request.Context(), userID, req.PeerID, messageID, req.Content)
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": message})
}

// Delete removes a message the user sent
// DELETE /api/messages/:messageID?peer_id=
func (h *Handler) Delete(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	messageID, err := uuid.Parse(c.Param("messageID"))
	if err != nil {
		response.ValidationError(c, "Invalid message ID")
		return
	}

	peerID, err := uuid.Parse(c.Query("peer_id"))
	if err != nil {
		response.ValidationError(c, "Invalid peer ID")
		return
	}

	if err := h.chatService.Delete(c.Request.Context(), userID, peerID, messageID); err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Message deleted",
	})
}
