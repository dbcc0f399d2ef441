package handlers

import (
	"errors"
	"net/http"

	"edunion/internal/auth"
	"edunion/internal/services"

	"github.com/gin-gonic/gin"
)

// GetNotifications lists the caller's notifications, newest first
func GetNotifications(c *gin.Context) {
	notifications, err := notificationService.ListForUser(auth.GetUserID(c))
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to fetch notifications", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// GetUnreadNotifications lists the caller's unread notifications
func GetUnreadNotifications(c *gin.Context) {
	notifications, err := notificationService.ListUnread(auth.GetUserID(c))
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to fetch notifications", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// GetUnreadCount returns the caller's unread notification count
func GetUnreadCount(c *gin.Context) {
	count, err := notificationService.UnreadCount(auth.GetUserID(c))
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to count notifications", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// MarkNotificationRead marks one notification as read
func MarkNotificationRead(c *gin.Context) {
	setNotificationRead(c, true)
}

// MarkNotificationUnread marks one notification as unread again
func MarkNotificationUnread(c *gin.Context) {
	setNotificationRead(c, false)
}

func setNotificationRead(c *gin.Context, read bool) {
	notificationID, err := parseUintParam(c, "notification_id")
	if err != nil {
		return
	}

	notification, err := notificationService.SetRead(notificationID, auth.GetUserID(c), read)
	if err != nil {
		respondNotificationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notification": notification})
}

// MarkAllNotificationsRead marks every unread notification as read
func MarkAllNotificationsRead(c *gin.Context) {
	if err := notificationService.MarkAllRead(auth.GetUserID(c)); err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to mark notifications read", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read"})
}

// DeleteNotification removes one notification owned by the caller
func DeleteNotification(c *gin.Context) {
	notificationID, err := parseUintParam(c, "notification_id")
	if err != nil {
		return
	}

	if err := notificationService.Delete(notificationID, auth.GetUserID(c)); err != nil {
		respondNotificationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted"})
}

// DeleteAllNotifications removes every notification of the caller
func DeleteAllNotifications(c *gin.Context) {
	if err := notificationService.DeleteAll(auth.GetUserID(c)); err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to delete notifications", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All notifications deleted"})
}

func respondNotificationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotificationNotFound):
		handleError(c, http.StatusNotFound, "Notification not found", err)
	case errors.Is(err, services.ErrNotNotificationOwner):
		handleError(c, http.StatusForbidden, "Notification belongs to another user", err)
	default:
		handleError(c, http.StatusInternalServerError, "Internal error", err)
	}
}
