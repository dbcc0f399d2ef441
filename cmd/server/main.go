package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"edunion/internal/auth"
	"edunion/internal/database"
	"edunion/internal/handlers"
	"edunion/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize database
	if err := database.InitDB(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}

	// Wire services
	emailService := services.NewEmailService()
	eventService := services.NewEventService(database.GetDB(), emailService)
	notificationService := services.NewNotificationService(database.GetDB())
	preferenceService := services.NewPreferenceService(database.GetDB())
	handlers.Init(eventService, notificationService, preferenceService, emailService)

	// Background reminder scheduler
	scheduler := services.NewReminderScheduler(database.GetDB(), eventService)
	scheduler.Start()

	// Initialize Gin router
	router := gin.Default()
	router.SetTrustedProxies([]string{"127.0.0.1"})

	frontendOrigin := os.Getenv("FRONTEND_URL")
	if frontendOrigin == "" {
		frontendOrigin = "http://localhost:5173"
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{frontendOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	// Basic routes
	router.GET("/", handlers.HomeHandler)
	router.GET("/health", handlers.HealthHandler)

	// Auth routes (no auth required)
	router.POST("/auth/register", handlers.Register)
	router.POST("/auth/login", handlers.Login)
	router.POST("/auth/password-reset", handlers.RequestPasswordReset)
	router.POST("/auth/password-reset/confirm", handlers.ResetPassword)

	// Protected routes (auth required)
	protected := router.Group("")
	protected.Use(auth.AuthMiddleware())
	{
		protected.GET("/auth/me", handlers.GetCurrentUser)

		// Groups and membership
		protected.POST("/groups", handlers.CreateGroup)
		protected.GET("/groups", handlers.GetGroups)
		protected.GET("/groups/:group_id", handlers.GetGroupByID)
		protected.POST("/groups/:group_id/join", handlers.JoinGroup)
		protected.POST("/groups/:group_id/leave", handlers.LeaveGroup)
		protected.GET("/groups/:group_id/members", handlers.ListGroupMembers)
		protected.GET("/groups/:group_id/members/pending", handlers.ListPendingMembers)
		protected.POST("/groups/:group_id/members/:user_id/approve", handlers.ApproveMember)
		protected.POST("/groups/:group_id/members/:user_id/reject", handlers.RejectMember)

		// Events
		protected.POST("/groups/:group_id/events", handlers.CreateEvent)
		protected.GET("/groups/:group_id/events", handlers.ListGroupEvents)
		protected.GET("/events", handlers.ListMyEvents)
		protected.GET("/events/:event_id", handlers.GetEvent)
		protected.DELETE("/events/:event_id", handlers.DeleteEvent)

		// Notifications
		protected.GET("/notifications", handlers.GetNotifications)
		protected.GET("/notifications/unread", handlers.GetUnreadNotifications)
		protected.GET("/notifications/unread-count", handlers.GetUnreadCount)
		protected.POST("/notifications/mark-all-read", handlers.MarkAllNotificationsRead)
		protected.POST("/notifications/:notification_id/read", handlers.MarkNotificationRead)
		protected.POST("/notifications/:notification_id/unread", handlers.MarkNotificationUnread)
		protected.DELETE("/notifications/:notification_id", handlers.DeleteNotification)
		protected.DELETE("/notifications", handlers.DeleteAllNotifications)

		// Preferences
		protected.GET("/preferences", handlers.GetPreferences)
		protected.PUT("/preferences", handlers.UpdatePreferences)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on port %s...", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	// Wait for shutdown signal, then drain the scheduler and the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")

	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown failed: %v", err)
	}
}
