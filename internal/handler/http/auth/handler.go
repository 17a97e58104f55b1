package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"gamerchat-backend/internal/middleware"
	"gamerchat-backend/internal/service/auth"
	"gamerchat-backend/pkg/response"
)

// Handler handles HTTP requests for authentication
type Handler struct {
	authService *auth.Service
}

// NewHandler creates a new auth handler
func NewHandler(authService *auth.Service) *Handler {
	return &Handler{
		authService: authService,
	}
}

// RegisterRequest represents registration request body
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,min=3,max=20"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest represents login request body
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register handles user registration
// POST /api/auth/register
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	output, err := h.authService.Register(c.Request.Context(), &auth.RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"user":  output.User,
		"token": output.Token,
	})
}

// Login handles user login
// POST /api/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	output, err := h.authService.Login(c.Request.Context(), &auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user":  output.User,
		"token": output.Token,
	})
}

// Logout revokes the session behind the presented token
// POST /api/auth/logout
func (h *Handler) Logout(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	tokenString := bearerToken(c)
	if tokenString == "" {
		response.Unauthorized(c, "Authorization header required")
		return
	}

	if err := h.authService.Logout(c.Request.Context(), userID, tokenString); err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// Verify returns the user behind a still valid token
// POST /api/auth/verify
func (h *Handler) Verify(c *gin.Context) {
	tokenString := bearerToken(c)
	if tokenString == "" {
		response.Unauthorized(c, "Authorization header required")
		return
	}

	user, err := h.authService.Verify(c.Request.Context(), tokenString)
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user": user,
	})
}

func bearerToken(c *gin.Context) string {
	parts := strings.Split(c.GetHeader("Authorization"), " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}
