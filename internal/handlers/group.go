package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"edunion/internal/auth"
	"edunion/internal/database"
	"edunion/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateGroup handles the creation of a new study group. The creator
// becomes an ACTIVE admin member.
func CreateGroup(c *gin.Context) {
	var request models.CreateGroupRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	userID := auth.GetUserID(c)
	db := database.GetDB()

	group := models.Group{
		Name:        request.Name,
		Description: request.Description,
		CreatedByID: userID,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := db.Create(&group).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to create group", err)
		return
	}

	member := models.GroupMember{
		GroupID:  group.ID,
		UserID:   userID,
		Role:     models.RoleAdmin,
		Status:   models.MemberStatusActive,
		JoinedAt: time.Now(),
	}
	if err := db.Create(&member).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to add creator as member", err)
		return
	}

	c.JSON(http.StatusCreated, group)
}

// GetGroups lists all groups
func GetGroups(c *gin.Context) {
	db := database.GetDB()
	var groups []models.Group

	query := db.Order("created_at DESC")
	if name := c.Query("name"); name != "" {
		query = query.Where("name LIKE ?", "%"+name+"%")
	}

	if err := query.Find(&groups).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to fetch groups", err)
		return
	}

	c.JSON(http.StatusOK, groups)
}

// GetGroupByID returns a single group with its members
func GetGroupByID(c *gin.Context) {
	groupID := c.Param("group_id")
	db := database.GetDB()

	var group models.Group
	if err := db.Preload("Members.User").Where("id = ?", groupID).First(&group).Error; err != nil {
		handleError(c, http.StatusNotFound, "Group not found", err)
		return
	}

	c.JSON(http.StatusOK, group)
}

// JoinGroup creates a PENDING membership and notifies the group's admins
func JoinGroup(c *gin.Context) {
	groupID, err := parseUintParam(c, "group_id")
	if err != nil {
		return
	}
	userID := auth.GetUserID(c)
	db := database.GetDB()

	var group models.Group
	if err := db.First(&group, groupID).Error; err != nil {
		handleError(c, http.StatusNotFound, "Group not found", err)
		return
	}

	var member models.GroupMember
	if err := db.Where("group_id = ? AND user_id = ?", groupID, userID).First(&member).Error; err == nil {
		switch member.Status {
		case models.MemberStatusActive:
			c.JSON(http.StatusConflict, gin.H{"error": "Already a member"})
		case models.MemberStatusPending:
			c.JSON(http.StatusConflict, gin.H{"error": "Join request already pending"})
		}
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		handleError(c, http.StatusInternalServerError, "Failed to check membership", err)
		return
	}

	newMember := models.GroupMember{
		GroupID:  groupID,
		UserID:   userID,
		Role:     models.RoleMember,
		Status:   models.MemberStatusPending,
		JoinedAt: time.Now(),
	}
	if err := db.Create(&newMember).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to request to join group", err)
		return
	}

	var requester models.User
	if err := db.First(&requester, userID).Error; err != nil {
		log.Printf("Warning: failed to load requester %d: %v", userID, err)
	}

	notifyGroupAdmins(db, &group, "New Join Request",
		requester.Name+" requested to join your group '"+group.Name+"'",
		models.NotificationJoinRequest)

	c.JSON(http.StatusCreated, gin.H{"message": "Join request submitted"})
}

// ApproveMember flips a PENDING membership to ACTIVE (admins only)
func ApproveMember(c *gin.Context) {
	groupID, err := parseUintParam(c, "group_id")
	if err != nil {
		return
	}
	targetID, err := parseUintParam(c, "user_id")
	if err != nil {
		return
	}

	db := database.GetDB()
	group, ok := requireGroupAdmin(c, db, groupID)
	if !ok {
		return
	}

	var member models.GroupMember
	if err := db.Where("group_id = ? AND user_id = ? AND status = ?",
		groupID, targetID, models.MemberStatusPending).First(&member).Error; err != nil {
		handleError(c, http.StatusNotFound, "Pending join request not found", err)
		return
	}

	if err := db.Model(&member).Update("status", models.MemberStatusActive).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to approve member", err)
		return
	}

	createMembershipNotification(db, targetID, "Join Request Approved",
		"Your request to join group '"+group.Name+"' was approved",
		models.NotificationJoinApproved, group.ID)

	c.JSON(http.StatusOK, gin.H{"message": "Member approved"})
}

// RejectMember removes a PENDING membership (admins only)
func RejectMember(c *gin.Context) {
	groupID, err := parseUintParam(c, "group_id")
	if err != nil {
		return
	}
	targetID, err := parseUintParam(c, "user_id")
	if err != nil {
		return
	}

	db := database.GetDB()
	group, ok := requireGroupAdmin(c, db, groupID)
	if !ok {
		return
	}

	var member models.GroupMember
	if err := db.Where("group_id = ? AND user_id = ? AND status = ?",
		groupID, targetID, models.MemberStatusPending).First(&member).Error; err != nil {
		handleError(c, http.StatusNotFound, "Pending join request not found", err)
		return
	}

	if err := db.Delete(&member).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to reject member", err)
		return
	}

	createMembershipNotification(db, targetID, "Join Request Rejected",
		"Your request to join group '"+group.Name+"' was rejected",
		models.NotificationJoinRejected, group.ID)

	c.JSON(http.StatusOK, gin.H{"message": "Member rejected"})
}

// LeaveGroup removes the caller's membership row
func LeaveGroup(c *gin.Context) {
	groupID, err := parseUintParam(c, "group_id")
	if err != nil {
		return
	}
	userID := auth.GetUserID(c)
	db := database.GetDB()

	var group models.Group
	if err := db.First(&group, groupID).Error; err != nil {
		handleError(c, http.StatusNotFound, "Group not found", err)
		return
	}

	if group.CreatedByID == userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Group creator cannot leave their own group"})
		return
	}

	var member models.GroupMember
	if err := db.Where("group_id = ? AND user_id = ?", groupID, userID).First(&member).Error; err != nil {
		handleError(c, http.StatusNotFound, "Not a group member", err)
		return
	}

	if err := db.Delete(&member).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to leave group", err)
		return
	}

	var user models.User
	if err := db.First(&user, userID).Error; err == nil {
		notifyGroupAdmins(db, &group, "Member Left",
			user.Name+" has left your group '"+group.Name+"'",
			models.NotificationMemberLeft)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Left group successfully"})
}

// ListGroupMembers returns a group's ACTIVE members
func ListGroupMembers(c *gin.Context) {
	groupID := c.Param("group_id")
	db := database.GetDB()

	var members []models.GroupMember
	err := db.Where("group_id = ? AND status = ?", groupID, models.MemberStatusActive).
		Preload("User").
		Find(&members).Error
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to fetch members", err)
		return
	}

	c.JSON(http.StatusOK, members)
}

// ListPendingMembers returns a group's pending join requests (admins only)
func ListPendingMembers(c *gin.Context) {
	groupID, err := parseUintParam(c, "group_id")
	if err != nil {
		return
	}

	db := database.GetDB()
	if _, ok := requireGroupAdmin(c, db, groupID); !ok {
		return
	}

	var members []models.GroupMember
	err2 := db.Where("group_id = ? AND status = ?", groupID, models.MemberStatusPending).
		Preload("User").
		Find(&members).Error
	if err2 != nil {
		handleError(c, http.StatusInternalServerError, "Failed to fetch pending members", err2)
		return
	}

	c.JSON(http.StatusOK, members)
}

// requireGroupAdmin loads the group and verifies the caller is one of its
// ACTIVE admins, writing the error response itself on failure.
func requireGroupAdmin(c *gin.Context, db *gorm.DB, groupID uint) (*models.Group, bool) {
	var group models.Group
	if err := db.First(&group, groupID).Error; err != nil {
		handleError(c, http.StatusNotFound, "Group not found", err)
		return nil, false
	}

	userID := auth.GetUserID(c)
	var membership models.GroupMember
	err := db.Where("group_id = ? AND user_id = ? AND role = ? AND status = ?",
		groupID, userID, models.RoleAdmin, models.MemberStatusActive).First(&membership).Error
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only group admins can do this"})
		return nil, false
	}
	return &group, true
}

// notifyGroupAdmins creates an in-app notification for every active admin
func notifyGroupAdmins(db *gorm.DB, group *models.Group, title, message string, kind models.NotificationType) {
	var admins []models.GroupMember
	err := db.Where("group_id = ? AND role = ? AND status = ?",
		group.ID, models.RoleAdmin, models.MemberStatusActive).Find(&admins).Error
	if err != nil {
		log.Printf("Warning: failed to load admins of group %d: %v", group.ID, err)
		return
	}
	for _, admin := range admins {
		createMembershipNotification(db, admin.UserID, title, message, kind, group.ID)
	}
}

func createMembershipNotification(db *gorm.DB, userID uint, title, message string, kind models.NotificationType, groupID uint) {
	notification := models.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    kind,
		GroupID: &groupID,
	}
	if err := db.Create(&notification).Error; err != nil {
		log.Printf("Warning: failed to create notification for user %d: %v", userID, err)
	}
}

func parseUintParam(c *gin.Context, name string) (uint, error) {
	value, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		handleError(c, http.StatusBadRequest, "Invalid "+name, err)
		return 0, err
	}
	return uint(value), nil
}
