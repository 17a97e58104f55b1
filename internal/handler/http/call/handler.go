package call

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gamerchat-backend/internal/middleware"
	"gamerchat-backend/internal/service/call"
	"gamerchat-backend/pkg/pagination"
	"gamerchat-backend/pkg/response"
)

// ContactPolicy decides whether two users may call each other
type ContactPolicy interface {
	CanContact(ctx context.Context, userA, userB uuid.UUID) error
}

// Handler handles HTTP requests for the call lifecycle
type Handler struct {
	manager *call.Manager
	policy  ContactPolicy
}

// NewHandler creates a new call handler
func NewHandler(manager *call.Manager, policy ContactPolicy) *Handler {
	return &Handler{
		manager: manager,
		policy:  policy,
	}
}

// StartRequest represents a call initiation body
type StartRequest struct {
	CalleeID uuid.UUID `json:"callee_id" binding:"required"`
	Kind     string    `json:"kind" binding:"required"`
}

// RespondRequest represents a callee's answer
type RespondRequest struct {
	Accept bool `json:"accept"`
}

// Start initiates a call and rings the callee
// POST /api/calls/start
func (h *Handler) Start(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	var req StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	if err := h.policy.CanContact(c.Request.Context(), userID, req.CalleeID); err != nil {
		response.AppError(c, err)
		return
	}

	activeCall, err := h.manager.Initiate(userID, req.CalleeID, req.Kind)
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"call": activeCall})
}

// Respond accepts or rejects a ringing call
// POST /api/calls/:callID/respond
func (h *Handler) Respond(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	callID, err := uuid.Parse(c.Param("callID"))
	if err != nil {
		response.ValidationError(c, "Invalid call ID")
		return
	}

	var req RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	updated, err := h.manager.Respond(callID, userID, req.Accept)
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"call": updated})
}

// End terminates a call. Ending an already finished call is not an
// error and returns the final state.
// POST /api/calls/:callID/end
func (h *Handler) End(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	callID, err := uuid.Parse(c.Param("callID"))
	if err != nil {
		response.ValidationError(c, "Invalid call ID")
		return
	}

	ended, err := h.manager.End(callID, userID)
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"call": ended})
}

// Get returns the current state of a call the user participates in
// GET /api/calls/:callID
func (h *Handler) Get(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	callID, err := uuid.Parse(c.Param("callID"))
	if err != nil {
		response.ValidationError(c, "Invalid call ID")
		return
	}

	current, err := h.manager.Get(callID)
	if err != nil {
		response.AppError(c, err)
		return
	}
	if !current.HasParticipant(userID) {
		response.NotFound(c, "Call")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"call": current})
}

// History returns the user's finished calls, newest first
// GET /api/calls/history?page=&limit=
func (h *Handler) History(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	params, err := pagination.Parse(c.Query("page"), c.Query("limit"))
	if err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	calls, err := h.manager.History(c.Request.Context(), userID, params.Limit, params.Offset)
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"calls": calls,
		"page":  params.Page,
	})
}
