package handlers

import (
	"log"
	"net/http"

	"edunion/internal/services"

	"github.com/gin-gonic/gin"
)

var (
	eventService        *services.EventService
	notificationService *services.NotificationService
	preferenceService   *services.PreferenceService
	emailService        *services.EmailService
)

// Init wires the service singletons used by the handler functions.
// Must be called once from main before registering routes.
func Init(events *services.EventService, notifications *services.NotificationService, prefs *services.PreferenceService, email *services.EmailService) {
	eventService = events
	notificationService = notifications
	preferenceService = prefs
	emailService = email
}

// handleError provides a consistent way to handle and log errors
func handleError(c *gin.Context, status int, message string, err error) {
	log.Printf("Error: %v", err)
	c.JSON(status, gin.H{"error": message})
}

// HomeHandler handles requests to the root path "/"
func HomeHandler(c *gin.Context) {
	c.String(http.StatusOK, "Welcome to Edunion!")
}

// HealthHandler is a simple health check endpoint
func HealthHandler(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}
