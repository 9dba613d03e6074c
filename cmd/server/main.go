package main

import (
	"log"

	"github.com/chandankhang/CompTrack/internal/config"
	"github.com/chandankhang/CompTrack/internal/constants"
	"github.com/chandankhang/CompTrack/internal/database"
	"github.com/chandankhang/CompTrack/internal/handlers"
	"github.com/chandankhang/CompTrack/internal/mail"
	"github.com/chandankhang/CompTrack/internal/middleware"
	"github.com/chandankhang/CompTrack/internal/models"
	"github.com/chandankhang/CompTrack/internal/otp"
	"github.com/chandankhang/CompTrack/internal/repository"
	"github.com/chandankhang/CompTrack/internal/services"
	"github.com/chandankhang/CompTrack/internal/token"
	"github.com/chandankhang/CompTrack/internal/upload"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if err := database.AddIndexes(database.GetDB()); err != nil {
		log.Fatalf("Failed to add indexes: %v", err)
	}

	// OTP store with periodic sweep of expired entries
	otps := otp.NewStore(otp.SystemClock())
	stopSweeper := otps.StartSweeper(constants.OTPSweepInterval)
	defer stopSweeper()

	// Session token manager
	tokens := token.NewManager(cfg.JWTSecret, constants.TokenLifetime)

	// Outbound mail
	var mailer mail.Mailer = mail.DisabledMailer{}
	if cfg.MailConfigured() {
		mailer = mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom)
	}

	// Attachment storage
	uploads, err := upload.NewSaver(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to prepare upload directory: %v", err)
	}

	// Repositories and services
	userRepo := repository.NewUserRepository(database.GetDB())
	complaintRepo := repository.NewComplaintRepository(database.GetDB())

	authService := services.NewAuthService(userRepo, otps, tokens, mailer, cfg.AdminEmail, cfg.SupportEmail)
	complaintService := services.NewComplaintService(complaintRepo, userRepo, mailer)
	chatService := services.NewChatService(complaintRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	complaintHandler := handlers.NewComplaintHandler(complaintService, uploads)
	userHandler := handlers.NewUserHandler(authService)
	chatHandler := handlers.NewChatHandler(chatService)

	// Initialize Gin router
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "CompTrack API is running",
		})
	})

	// Uploaded attachments are served back directly
	r.Static("/uploads", cfg.UploadDir)

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/send-otp", authHandler.SendOTP)
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// Complaint routes
		complaints := api.Group("/complaints")
		{
			// Public tracking lookup, no token required
			complaints.GET("/track/:complaintId", complaintHandler.Track)

			complaints.GET("/all",
				middleware.RequireAuth(tokens),
				middleware.RequireRoles(models.RoleAdmin, models.RoleSupport),
				complaintHandler.ListAll)

			complaints.POST("", middleware.RequireAuth(tokens), complaintHandler.Create)
			complaints.GET("/:id", middleware.RequireAuth(tokens), complaintHandler.ListByUser)

			complaints.PUT("/:id/resolve",
				middleware.RequireAuth(tokens),
				middleware.RequireRoles(models.RoleAdmin),
				complaintHandler.Resolve)
			complaints.DELETE("/:id",
				middleware.RequireAuth(tokens),
				middleware.RequireRoles(models.RoleAdmin),
				complaintHandler.Delete)

			complaints.PUT("/:id/assign",
				middleware.RequireAuth(tokens),
				middleware.RequireRoles(models.RoleSupport),
				complaintHandler.Assign)
			complaints.PUT("/:id/comment",
				middleware.RequireAuth(tokens),
				middleware.RequireRoles(models.RoleSupport),
				complaintHandler.Comment)
		}

		// Self-service account routes
		users := api.Group("/users")
		users.Use(middleware.RequireAuth(tokens))
		{
			users.PUT("/:userId", userHandler.UpdateProfile)
			users.DELETE("/:userId", userHandler.DeleteAccount)
		}

		// Public chat responder
		api.POST("/chat", chatHandler.Chat)
	}

	// Start server
	log.Printf("Server starting on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
