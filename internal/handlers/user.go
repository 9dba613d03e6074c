package handlers

import (
	"net/http"
	"strconv"

	"github.com/chandankhang/CompTrack/internal/dto"
	apierrors "github.com/chandankhang/CompTrack/internal/errors"
	"github.com/chandankhang/CompTrack/internal/middleware"
	"github.com/chandankhang/CompTrack/internal/services"
	"github.com/gin-gonic/gin"
)

// UserHandler coordinates self-service account HTTP handlers.
type UserHandler struct {
	authService *services.AuthService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(authService *services.AuthService) *UserHandler {
	return &UserHandler{
		authService: authService,
	}
}

// UpdateProfile applies a partial update of username, email, or password.
// Self-only.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	targetID, err := strconv.ParseUint(c.Param("userId"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	callerID, _ := middleware.GetUserID(c)
	if callerID != targetID {
		apierrors.Forbidden(c, "Unauthorized access")
		return
	}

	type UpdateProfileRequest struct {
		Username *string `json:"username"`
		Email    *string `json:"email"`
		Password *string `json:"password"`
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.UpdateProfile(targetID, services.UpdateProfileInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated.",
		"user":    dto.ToUserDTO(*user),
	})
}

// DeleteAccount removes the account and cascades to every complaint the user
// owns. Self-only.
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	targetID, err := strconv.ParseUint(c.Param("userId"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	callerID, _ := middleware.GetUserID(c)
	if callerID != targetID {
		apierrors.Forbidden(c, "Unauthorized access")
		return
	}

	if err := h.authService.DeleteAccount(targetID); err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Account and related complaints deleted successfully.",
	})
}
