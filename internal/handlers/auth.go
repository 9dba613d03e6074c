package handlers

import (
	"errors"
	"net/http"

	"github.com/chandankhang/CompTrack/internal/dto"
	apierrors "github.com/chandankhang/CompTrack/internal/errors"
	"github.com/chandankhang/CompTrack/internal/services"
	"github.com/gin-gonic/gin"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// SendOTP issues a one-time code for email verification during registration.
func (h *AuthHandler) SendOTP(c *gin.Context) {
	type SendOTPRequest struct {
		Email string `json:"email" binding:"required"`
	}

	var req SendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid email address")
		return
	}

	code, err := h.authService.SendOTP(req.Email)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidEmail):
			apierrors.BadRequest(c, "Invalid email address")
		case errors.Is(err, services.ErrOTPNotRequired):
			apierrors.BadRequest(c, "OTP not required for admin/support accounts")
		case errors.Is(err, services.ErrMailDispatchFailed):
			apierrors.InternalError(c, "Failed to send OTP email")
		default:
			apierrors.InternalError(c, "")
		}
		return
	}

	if h.authService.MailEnabled() {
		c.JSON(http.StatusOK, gin.H{
			"message": "OTP sent to your email. Check your inbox or spam folder.",
		})
		return
	}

	// Unconfigured-mail mode: hand the code back for testing.
	c.JSON(http.StatusOK, gin.H{
		"message": "Email not configured. Use OTP from console or 123456 for testing.",
		"otp":     code,
	})
}

// Register creates a new account and returns a session token.
func (h *AuthHandler) Register(c *gin.Context) {
	type RegisterRequest struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
		OTP      string `json:"otp"`
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, tokenStr, err := h.authService.Register(services.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		OTP:      req.OTP,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful.",
		"user":    dto.ToUserDTO(*user),
		"token":   tokenStr,
	})
}

// Login authenticates a user and returns a session token.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Email and password are required")
		return
	}

	user, tokenStr, err := h.authService.Login(services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful.",
		"user":    dto.ToUserDTO(*user),
		"token":   tokenStr,
	})
}

func respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidEmail):
		apierrors.BadRequest(c, "Invalid email address")
	case errors.Is(err, services.ErrInvalidOTP):
		apierrors.BadRequest(c, "Invalid or expired OTP")
	case errors.Is(err, services.ErrUsernameTooShort):
		apierrors.BadRequest(c, "Username must be at least 3 characters")
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, "Password must be at least 8 characters")
	case errors.Is(err, services.ErrEmailTaken):
		apierrors.Conflict(c, "Email already taken")
	case errors.Is(err, services.ErrUsernameTaken):
		apierrors.Conflict(c, "Username already taken")
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.Unauthorized(c, "Invalid credentials")
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, "User not found")
	default:
		apierrors.InternalError(c, "")
	}
}
