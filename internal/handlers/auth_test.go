package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chandankhang/CompTrack/internal/database"
	"github.com/chandankhang/CompTrack/internal/mail"
	"github.com/chandankhang/CompTrack/internal/middleware"
	"github.com/chandankhang/CompTrack/internal/models"
	"github.com/chandankhang/CompTrack/internal/otp"
	"github.com/chandankhang/CompTrack/internal/repository"
	"github.com/chandankhang/CompTrack/internal/services"
	"github.com/chandankhang/CompTrack/internal/token"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type authTestEnv struct {
	db          *gorm.DB
	router      *gin.Engine
	authService *services.AuthService
	tokens      *token.Manager
}

func setupAuthTestEnv(t *testing.T) authTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Complaint{},
		&models.Comment{},
	)
	require.NoError(t, err)

	database.SetDB(db)

	tokens := token.NewManager("test-secret", time.Hour)
	otps := otp.NewStore(otp.SystemClock())

	authService := services.NewAuthService(
		repository.NewUserRepository(db),
		otps,
		tokens,
		mail.DisabledMailer{},
		"admin@comptrack.io",
		"support@comptrack.io",
	)

	authHandler := NewAuthHandler(authService)
	userHandler := NewUserHandler(authService)

	r := gin.New()
	r.POST("/api/auth/send-otp", authHandler.SendOTP)
	r.POST("/api/auth/register", authHandler.Register)
	r.POST("/api/auth/login", authHandler.Login)

	users := r.Group("/api/users")
	users.Use(middleware.RequireAuth(tokens))
	{
		users.PUT("/:userId", userHandler.UpdateProfile)
		users.DELETE("/:userId", userHandler.DeleteAccount)
	}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return authTestEnv{
		db:          db,
		router:      r,
		authService: authService,
		tokens:      tokens,
	}
}

func (env authTestEnv) postJSON(t *testing.T, path string, payload any, token string) *httptest.ResponseRecorder {
	t.Helper()
	return env.doJSON(t, http.MethodPost, path, payload, token)
}

func (env authTestEnv) doJSON(t *testing.T, method, path string, payload any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)
	return w
}

// sendOTP requests a code for the email and returns the code surfaced in the
// response, which is how the unconfigured-mail mode works.
func (env authTestEnv) sendOTP(t *testing.T, email string) string {
	t.Helper()

	w := env.postJSON(t, "/api/auth/send-otp", map[string]string{"email": email}, "")
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		OTP string `json:"otp"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.NotEmpty(t, response.OTP)
	return response.OTP
}

func (env authTestEnv) register(t *testing.T, username, email, password string) (uint64, string) {
	t.Helper()

	code := env.sendOTP(t, email)
	w := env.postJSON(t, "/api/auth/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
		"otp":      code,
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	var response struct {
		User struct {
			UserID uint64 `json:"user_id"`
		} `json:"user"`
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.NotEmpty(t, response.Token)
	return response.User.UserID, response.Token
}

func TestAuthHandler_SendOTP(t *testing.T) {
	env := setupAuthTestEnv(t)

	code := env.sendOTP(t, "user@example.com")
	require.Len(t, code, 6)
}

func TestAuthHandler_SendOTPInvalidEmail(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := env.postJSON(t, "/api/auth/send-otp", map[string]string{"email": "not-an-email"}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_SendOTPPrivileged(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := env.postJSON(t, "/api/auth/send-otp", map[string]string{"email": "admin@comptrack.io"}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Register(t *testing.T) {
	env := setupAuthTestEnv(t)

	userID, tokenStr := env.register(t, "newuser", "user@example.com", "supersecret")
	require.NotZero(t, userID)

	claims, err := env.tokens.Verify(tokenStr)
	require.NoError(t, err)
	require.Equal(t, userID, claims.UserID)
	require.Equal(t, models.RoleUser, claims.Role)
}

func TestAuthHandler_RegisterWrongOTP(t *testing.T) {
	env := setupAuthTestEnv(t)

	env.sendOTP(t, "user@example.com")

	w := env.postJSON(t, "/api/auth/register", map[string]string{
		"username": "newuser",
		"email":    "user@example.com",
		"password": "supersecret",
		"otp":      "000000",
	}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_RegisterDuplicateEmail(t *testing.T) {
	env := setupAuthTestEnv(t)

	env.register(t, "first", "user@example.com", "supersecret")

	code := env.sendOTP(t, "user@example.com")
	w := env.postJSON(t, "/api/auth/register", map[string]string{
		"username": "second",
		"email":    "user@example.com",
		"password": "supersecret",
		"otp":      code,
	}, "")
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthHandler_RegisterPrivilegedSkipsOTP(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := env.postJSON(t, "/api/auth/register", map[string]string{
		"username": "the-admin",
		"email":    "admin@comptrack.io",
		"password": "supersecret",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	var response struct {
		User struct {
			Role models.UserRole `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, models.RoleAdmin, response.User.Role)
}

func TestAuthHandler_Login(t *testing.T) {
	env := setupAuthTestEnv(t)

	env.register(t, "newuser", "user@example.com", "supersecret")

	w := env.postJSON(t, "/api/auth/login", map[string]string{
		"email":    "user@example.com",
		"password": "supersecret",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.NotEmpty(t, response.Token)
}

func TestAuthHandler_LoginBadCredentials(t *testing.T) {
	env := setupAuthTestEnv(t)

	env.register(t, "newuser", "user@example.com", "supersecret")

	wUnknown := env.postJSON(t, "/api/auth/login", map[string]string{
		"email":    "nobody@example.com",
		"password": "supersecret",
	}, "")
	wWrongPass := env.postJSON(t, "/api/auth/login", map[string]string{
		"email":    "user@example.com",
		"password": "wrongpassword",
	}, "")

	// Unknown email and wrong password are indistinguishable on the wire.
	require.Equal(t, http.StatusUnauthorized, wUnknown.Code)
	require.Equal(t, http.StatusUnauthorized, wWrongPass.Code)
	require.JSONEq(t, wUnknown.Body.String(), wWrongPass.Body.String())
}

func TestUserHandler_UpdateProfile(t *testing.T) {
	env := setupAuthTestEnv(t)

	userID, tokenStr := env.register(t, "newuser", "user@example.com", "supersecret")

	w := env.doJSON(t, http.MethodPut, fmt.Sprintf("/api/users/%d", userID), map[string]string{
		"username": "renamed",
	}, tokenStr)
	require.Equal(t, http.StatusOK, w.Code)

	var user models.User
	require.NoError(t, env.db.First(&user, userID).Error)
	require.Equal(t, "renamed", user.Username)
}

func TestUserHandler_UpdateProfileSelfOnly(t *testing.T) {
	env := setupAuthTestEnv(t)

	env.register(t, "victim", "victim@example.com", "supersecret")
	var victim models.User
	require.NoError(t, env.db.Where("email = ?", "victim@example.com").First(&victim).Error)

	_, attackerToken := env.register(t, "attacker", "attacker@example.com", "supersecret")

	w := env.doJSON(t, http.MethodPut, fmt.Sprintf("/api/users/%d", victim.ID), map[string]string{
		"username": "hijacked",
	}, attackerToken)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestUserHandler_UpdateProfileRequiresToken(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := env.doJSON(t, http.MethodPut, "/api/users/1", map[string]string{
		"username": "renamed",
	}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserHandler_DeleteAccount(t *testing.T) {
	env := setupAuthTestEnv(t)

	userID, tokenStr := env.register(t, "newuser", "user@example.com", "supersecret")

	w := env.doJSON(t, http.MethodDelete, fmt.Sprintf("/api/users/%d", userID), nil, tokenStr)
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, env.db.Model(&models.User{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestUserHandler_DeleteAccountSelfOnly(t *testing.T) {
	env := setupAuthTestEnv(t)

	victimID, _ := env.register(t, "victim", "victim@example.com", "supersecret")
	_, attackerToken := env.register(t, "attacker", "attacker@example.com", "supersecret")

	w := env.doJSON(t, http.MethodDelete, fmt.Sprintf("/api/users/%d", victimID), nil, attackerToken)
	require.Equal(t, http.StatusForbidden, w.Code)
}
