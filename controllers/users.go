package controllers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"qraccess/middleware"
	models "qraccess/models/postgres"
	"qraccess/services/qr"
	redissvc "qraccess/services/redis"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type updateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// @Summary List users
// @Description Returns every active user
// @Tags users
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Success 200 {object} object{users=array,count=integer}
// @Failure 500 {object} object{error=string}
// @Router /users [get]
// @Security ApiKeyAuth
func GetAllUsers(db *gorm.DB, qrService *qr.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var users []models.User
		if err := db.Where("is_active = ?", true).Order("date_joined DESC").Find(&users).Error; err != nil {
			log.Printf("Error listing users: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		payload := make([]gin.H, len(users))
		for i := range users {
			payload[i] = userPayload(&users[i], qrService.Locate(users[i].QrID))
		}

		c.JSON(http.StatusOK, gin.H{"users": payload, "count": len(users)})
	}
}

// @Summary Get a user
// @Description Returns a user's detail; non-admins can only read themselves
// @Tags users
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param id path string true "User id"
// @Success 200 {object} object{id=string,name=string,email=string,role=string,qr_id=string}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /users/{id} [get]
// @Security ApiKeyAuth
func GetUser(db *gorm.DB, qrService *qr.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := middleware.GetClaims(c)
		targetID := c.Param("id")

		if !middleware.IsSelfOrAdmin(claims, targetID) {
			c.JSON(http.StatusForbidden, gin.H{"error": "You can only access your own data unless you are an admin."})
			return
		}

		var user models.User
		if err := db.Where("id = ?", targetID).First(&user).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		payload := userPayload(&user, qrService.Locate(user.QrID))
		payload["is_active"] = user.IsActive
		payload["date_joined"] = user.DateJoined
		payload["last_login"] = user.LastLogin
		c.JSON(http.StatusOK, payload)
	}
}

// @Summary Delete a user
// @Description Removes a user and their QR artifact (admin only, never yourself)
// @Tags users
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param id path string true "User id"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} object{detail=string}
// @Failure 404 {object} object{error=string}
// @Router /users/{id} [delete]
// @Security ApiKeyAuth
func DeleteUser(db *gorm.DB, qrService *qr.Service, redisClient *redissvc.RedisClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := middleware.GetClaims(c)
		targetID := c.Param("id")

		if claims.UserID == targetID {
			c.JSON(http.StatusForbidden, gin.H{"detail": "You cannot delete your own account"})
			return
		}

		var user models.User
		if err := db.Where("id = ?", targetID).First(&user).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		// Weak back-reference: results verified by this admin keep their
		// verified flag but lose the verifier reference.
		if err := db.Model(&models.GameResult{}).Where("admin_user_id = ?", user.ID).
			Update("admin_user_id", nil).Error; err != nil {
			log.Printf("Error clearing verifier references for %s: %v", user.ID, err)
		}

		if err := db.Delete(&user).Error; err != nil {
			log.Printf("Error deleting user %s: %v", user.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		qrService.Remove(user.QrID)
		if redisClient != nil {
			if err := redisClient.DeleteVerification(user.QrID); err != nil {
				log.Printf("Error invalidating verification cache for %s: %v", user.QrID, err)
			}
		}

		log.Printf("User deleted: %s by %s", user.Email, claims.Email)
		c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("User %s deleted successfully", user.Email)})
	}
}

// @Summary Update a user's role
// @Description Sets the role to user or admin (admin only)
// @Tags users
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param id path string true "User id"
// @Param request body object{role=string} true "New role"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /users/{id}/role [patch]
// @Security ApiKeyAuth
func UpdateUserRole(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateRoleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields: role"})
			return
		}
		if req.Role != models.RoleUser && req.Role != models.RoleAdmin {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Role must be 'user' or 'admin'"})
			return
		}

		var user models.User
		if err := db.Where("id = ?", c.Param("id")).First(&user).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		if err := db.Model(&user).Update("role", req.Role).Error; err != nil {
			log.Printf("Error updating role for %s: %v", user.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Role updated successfully"})
	}
}

// @Summary Deactivate a user
// @Description Clears the active flag; the user fails login and verification from now on (admin only)
// @Tags users
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param id path string true "User id"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} object{error=string}
// @Router /users/{id}/deactivate [patch]
// @Security ApiKeyAuth
func DeactivateUser(db *gorm.DB, redisClient *redissvc.RedisClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		var user models.User
		if err := db.Where("id = ?", c.Param("id")).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		if err := db.Model(&user).Update("is_active", false).Error; err != nil {
			log.Printf("Error deactivating user %s: %v", user.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		if redisClient != nil {
			if err := redisClient.DeleteVerification(user.QrID); err != nil {
				log.Printf("Error invalidating verification cache for %s: %v", user.QrID, err)
			}
		}

		log.Printf("User deactivated: %s", user.Email)
		c.JSON(http.StatusOK, gin.H{"message": "User deactivated successfully"})
	}
}
