package handlers

import (
	"net/http"

	"edunion/internal/auth"
	"edunion/internal/models"

	"github.com/gin-gonic/gin"
)

// GetPreferences returns the caller's delivery preferences, creating the
// default all-enabled record on first read.
func GetPreferences(c *gin.Context) {
	prefs, err := preferenceService.Get(auth.GetUserID(c))
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to fetch preferences", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"preferences": prefs})
}

// UpdatePreferences replaces all three delivery flags
func UpdatePreferences(c *gin.Context) {
	var request models.UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	prefs, err := preferenceService.Update(auth.GetUserID(c),
		*request.NotifyOnNewEvent, *request.NotifyOnReminder, *request.EmailEnabled)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to update preferences", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"preferences": prefs})
}
