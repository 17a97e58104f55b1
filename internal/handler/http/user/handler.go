package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gamerchat-backend/internal/middleware"
	"gamerchat-backend/internal/service/user"
	"gamerchat-backend/pkg/pagination"
	"gamerchat-backend/pkg/response"
)

// Handler handles HTTP requests for user discovery
type Handler struct {
	userService *user.Service
}

// NewHandler creates a new user handler
func NewHandler(userService *user.Service) *Handler {
	return &Handler{
		userService: userService,
	}
}

// List returns active users, or a username search when q is given
// GET /api/users?q=&page=&limit=
func (h *Handler) List(c *gin.Context) {
	requesterID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	params, err := pagination.Parse(c.Query("page"), c.Query("limit"))
	if err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	if query := c.Query("q"); query != "" {
		users, err := h.userService.Search(c.Request.Context(), requesterID, query, params.Limit)
		if err != nil {
			response.AppError(c, err)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"users": users})
		return
	}

	users, err := h.userService.List(c.Request.Context(), requesterID, params.Limit, params.Offset)
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"users": users,
		"page":  params.Page,
	})
}

// Get returns a single user profile
// GET /api/users/:userID
func (h *Handler) Get(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		response.ValidationError(c, "Invalid user ID")
		return
	}

	profile, err := h.userService.Get(c.Request.Context(), userID)
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": profile})
}
