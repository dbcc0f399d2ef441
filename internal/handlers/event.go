package handlers

import (
	"errors"
	"net/http"

	"edunion/internal/auth"
	"edunion/internal/models"
	"edunion/internal/services"

	"github.com/gin-gonic/gin"
)

// CreateEvent schedules a new event in a group. Creation synchronously
// triggers the notification fan-out (and the immediate reminder when the
// event starts within the reminder window).
func CreateEvent(c *gin.Context) {
	groupID, err := parseUintParam(c, "group_id")
	if err != nil {
		return
	}

	var request models.CreateEventRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	event, err := eventService.Create(request, groupID, auth.GetUserID(c))
	if err != nil {
		respondEventError(c, err)
		return
	}

	c.JSON(http.StatusCreated, event)
}

// GetEvent returns a single event
func GetEvent(c *gin.Context) {
	eventID, err := parseUintParam(c, "event_id")
	if err != nil {
		return
	}

	event, err := eventService.Get(eventID)
	if err != nil {
		respondEventError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// ListGroupEvents returns a group's events ordered by start time
func ListGroupEvents(c *gin.Context) {
	groupID, err := parseUintParam(c, "group_id")
	if err != nil {
		return
	}

	events, err := eventService.ListGroupEvents(groupID)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to fetch events", err)
		return
	}

	c.JSON(http.StatusOK, events)
}

// ListMyEvents returns upcoming events across the caller's groups
func ListMyEvents(c *gin.Context) {
	events, err := eventService.ListUserEvents(auth.GetUserID(c))
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to fetch events", err)
		return
	}

	c.JSON(http.StatusOK, events)
}

// DeleteEvent removes an event (group admins only)
func DeleteEvent(c *gin.Context) {
	eventID, err := parseUintParam(c, "event_id")
	if err != nil {
		return
	}

	if err := eventService.Delete(eventID, auth.GetUserID(c)); err != nil {
		respondEventError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Event deleted"})
}

// respondEventError maps event service errors to HTTP statuses
func respondEventError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrEventNotFound), errors.Is(err, services.ErrGroupNotFound):
		handleError(c, http.StatusNotFound, err.Error(), err)
	case errors.Is(err, services.ErrNotGroupMember), errors.Is(err, services.ErrNotGroupAdmin):
		handleError(c, http.StatusForbidden, err.Error(), err)
	case errors.Is(err, services.ErrEventInPast), errors.Is(err, services.ErrEventEndsBeforeStart):
		handleError(c, http.StatusBadRequest, err.Error(), err)
	default:
		handleError(c, http.StatusInternalServerError, "Internal error", err)
	}
}
