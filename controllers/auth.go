package controllers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"qraccess/middleware"
	models "qraccess/models/postgres"
	"qraccess/services/qr"
	"qraccess/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type registerRequest struct {
	Name            string `json:"name" binding:"required"`
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password" binding:"required"`
	PasswordConfirm string `json:"password_confirm" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type logoutRequest struct {
	Refresh string `json:"refresh"`
}

// userPayload is the user object returned by register, login and me.
func userPayload(user *models.User, qrImageURL string) gin.H {
	return gin.H{
		"id":           user.ID,
		"name":         user.Name,
		"email":        user.Email,
		"role":         user.Role,
		"qr_id":        user.QrID,
		"qr_image_url": qrImageURL,
	}
}

// @Summary Register a new user
// @Description Creates an account with an auto-issued QR identity badge and returns the session token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{name=string,email=string,password=string,password_confirm=string} true "Registration data"
// @Success 201 {object} object{user=object,tokens=object{access=string,refresh=string},message=string}
// @Failure 400 {object} object{error=string}
// @Router /register [post]
func Register(db *gorm.DB, qrService *qr.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields: name, email, password, password_confirm"})
			return
		}

		email := utils.NormalizeEmail(req.Email)
		if err := utils.ValidateEmailFormat(email); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.Password != req.PasswordConfirm {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Password fields didn't match."})
			return
		}
		if err := utils.ValidatePasswordStrength(req.Password); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var existing models.User
		if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "A user with this email already exists."})
			return
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Error checking email uniqueness: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("Error hashing password: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		// The identifier must be assigned before the record is considered
		// created; only the image may be produced lazily.
		qrID, err := qrService.IssueID()
		if err != nil {
			log.Printf("Error issuing QR id: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		user := models.User{
			Email:        email,
			Name:         req.Name,
			PasswordHash: string(hash),
			Role:         models.RoleUser,
			QrID:         qrID,
			IsActive:     true,
		}
		if err := db.Create(&user).Error; err != nil {
			// Unique index races surface here; duplicate email is a hard
			// validation failure, never a silent merge.
			log.Printf("Error creating user: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "A user with this email already exists."})
			return
		}

		qrURL := qrService.EnsureImage(user.QrID, user.Name)
		if qrURL != "" {
			if err := db.Model(&user).Update("qr_image", qrURL).Error; err != nil {
				// The badge still renders from disk; a stale column is recoverable.
				log.Printf("Error saving qr_image for %s: %v", user.Email, err)
			}
		}

		access, refresh, err := middleware.GenerateTokens(user.ID, user.Email, user.Role)
		if err != nil {
			log.Printf("Error generating tokens for %s: %v", user.Email, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		log.Printf("User registered successfully: %s", user.Email)
		c.JSON(http.StatusCreated, gin.H{
			"user":    userPayload(&user, qrURL),
			"tokens":  gin.H{"access": access, "refresh": refresh},
			"message": "User registered successfully",
		})
	}
}

// @Summary Log in
// @Description Validates credentials, refreshes last_login and returns the session token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Credentials"
// @Success 200 {object} object{user=object,tokens=object{access=string,refresh=string},message=string}
// @Failure 400 {object} object{detail=string}
// @Router /login [post]
func Login(db *gorm.DB, qrService *qr.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid email or password."})
			return
		}

		email := utils.NormalizeEmail(req.Email)

		var user models.User
		if err := db.Where("email = ?", email).First(&user).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				log.Printf("Error looking up user %s: %v", email, err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
				return
			}
			// Same response as a wrong password: no user-existence oracle.
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid email or password."})
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid email or password."})
			return
		}

		if !user.IsActive {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Account disabled."})
			return
		}

		now := time.Now()
		if err := db.Model(&user).Update("last_login", &now).Error; err != nil {
			log.Printf("Error updating last_login for %s: %v", user.Email, err)
		}

		qrURL := qrService.EnsureImage(user.QrID, user.Name)

		access, refresh, err := middleware.GenerateTokens(user.ID, user.Email, user.Role)
		if err != nil {
			log.Printf("Error generating tokens for %s: %v", user.Email, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		log.Printf("User logged in: %s", user.Email)
		c.JSON(http.StatusOK, gin.H{
			"user":    userPayload(&user, qrURL),
			"tokens":  gin.H{"access": access, "refresh": refresh},
			"message": "Login successful",
		})
	}
}

// @Summary Log out
// @Description Validates the refresh token shape; the session ends by client-side token discard
// @Tags auth
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param request body object{refresh=string} true "Refresh token"
// @Success 205 {object} object{message=string}
// @Failure 400 {object} object{detail=string}
// @Router /logout [post]
// @Security ApiKeyAuth
func Logout(c *gin.Context) {
	var req logoutRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Refresh == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Refresh token is required"})
		return
	}

	// There is no server-side revocation list: logout only checks the token
	// shape and the client discards its copy.
	claims, err := middleware.ParseToken(req.Refresh)
	if err != nil || claims.TokenType != middleware.TokenTypeRefresh {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid token"})
		return
	}

	log.Printf("User logged out: %s", claims.Email)
	c.JSON(http.StatusResetContent, gin.H{"message": "Logout successful"})
}

// @Summary Current user
// @Description Returns the authenticated user's detail
// @Tags auth
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Success 200 {object} object{id=string,name=string,email=string,role=string,qr_id=string,qr_image_url=string}
// @Failure 404 {object} object{error=string}
// @Router /me [get]
// @Security ApiKeyAuth
func Me(db *gorm.DB, qrService *qr.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := middleware.GetClaims(c)

		var user models.User
		if err := db.Where("id = ?", claims.UserID).First(&user).Error; err != nil {
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
