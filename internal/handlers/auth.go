package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"edunion/internal/auth"
	"edunion/internal/database"
	"edunion/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Register creates a new user account
func Register(c *gin.Context) {
	var request models.RegisterRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	db := database.GetDB()

	var existing models.User
	if err := db.Where("email = ?", request.Email).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		handleError(c, http.StatusInternalServerError, "Failed to create account", err)
		return
	}

	hashed, err := auth.HashPassword(request.Password)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to create account", err)
		return
	}

	user := models.User{
		Name:       request.Name,
		Email:      request.Email,
		HashedPass: hashed,
	}
	if err := db.Create(&user).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to create account", err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// Login verifies credentials and issues a JWT
func Login(c *gin.Context) {
	var request models.LoginRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	db := database.GetDB()

	var user models.User
	if err := db.Where("email = ?", request.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	if !auth.CheckPassword(user.HashedPass, request.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := auth.GenerateToken(user.ID, user.Email)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to issue token", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// GetCurrentUser returns the authenticated user's profile
func GetCurrentUser(c *gin.Context) {
	userID := auth.GetUserID(c)

	var user models.User
	if err := database.GetDB().First(&user, userID).Error; err != nil {
		handleError(c, http.StatusNotFound, "User not found", err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// RequestPasswordReset mails a one-time reset token to the user.
// Responds 200 whether or not the email exists.
func RequestPasswordReset(c *gin.Context) {
	var request models.PasswordResetRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	db := database.GetDB()

	var user models.User
	if err := db.Where("email = ?", request.Email).First(&user).Error; err != nil {
		// Don't reveal whether the address is registered
		c.JSON(http.StatusOK, gin.H{"message": "If the email is registered, a reset link has been sent"})
		return
	}

	reset := models.PasswordReset{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(24 * time.Hour),
		CreatedAt: time.Now(),
	}
	if err := db.Create(&reset).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to create reset token", err)
		return
	}

	if err := emailService.SendPasswordResetEmail(user.Email, user.Name, reset.Token); err != nil {
		log.Printf("Warning: failed to send password reset email to %s: %v", user.Email, err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "If the email is registered, a reset link has been sent"})
}

// ResetPassword redeems a reset token for a new password
func ResetPassword(c *gin.Context) {
	var request models.PasswordResetConfirm
	if err := c.ShouldBindJSON(&request); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	db := database.GetDB()

	var reset models.PasswordReset
	if err := db.Where("token = ?", request.Token).First(&reset).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired reset token"})
		return
	}
	if time.Now().After(reset.ExpiresAt) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired reset token"})
		return
	}

	hashed, err := auth.HashPassword(request.NewPassword)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to reset password", err)
		return
	}

	if err := db.Model(&models.User{}).Where("id = ?", reset.UserID).Update("hashed_pass", hashed).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to reset password", err)
		return
	}

	// Token is single use
	if err := db.Delete(&reset).Error; err != nil {
		log.Printf("Warning: failed to delete used reset token: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}
