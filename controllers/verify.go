package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	models "qraccess/models/postgres"
	redissvc "qraccess/services/redis"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// VerifyQR answers the unauthenticated kiosk question: is this QR identifier
// a currently active, known identity. Negative verification is a structured
// body, never an empty transport error, because the callers are unattended
// scanners. Store unavailability is reported as a server error instead, so
// scanners can retry rather than deny access.
//
// A nil cache disables caching; the endpoint never hard-depends on Redis.
//
// @Summary Verify a QR identifier
// @Description Public lookup reporting whether the QR id belongs to an active user
// @Tags verify
// @Produce json
// @Param qr_id path string true "QR identifier (QR-XXXXXXXX)"
// @Success 200 {object} object{status=string,name=string,email=string,role=string,qr_id=string,message=string}
// @Failure 404 {object} object{status=string,message=string}
// @Failure 500 {object} object{status=string,message=string}
// @Router /verify/{qr_id} [get]
func VerifyQR(db *gorm.DB, redisClient *redissvc.RedisClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		qrID := c.Param("qr_id")

		if redisClient != nil {
			if cached, err := redisClient.GetVerification(qrID); err == nil {
				c.Data(http.StatusOK, "application/json; charset=utf-8", cached)
				return
			}
		}

		var user models.User
		err := db.Where("qr_id = ? AND is_active = ?", qrID, true).First(&user).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				log.Printf("QR verification failed: %s", qrID)
				c.JSON(http.StatusNotFound, gin.H{
					"status":  "failure",
					"message": "User not found or inactive",
				})
				return
			}
			log.Printf("QR verification error for %s: %v", qrID, err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"status":  "error",
				"message": "Internal server error",
			})
			return
		}

		response := gin.H{
			"status":  "success",
			"name":    user.Name,
			"email":   user.Email,
			"role":    user.Role,
			"qr_id":   user.QrID,
			"message": "User verified successfully",
		}

		// Only positive results are cached; the TTL bounds staleness after a
		// deactivation even if the eager invalidation is missed.
		if redisClient != nil {
			if payload, err := json.Marshal(response); err == nil {
				if err := redisClient.SaveVerification(qrID, payload); err != nil {
					log.Printf("Error caching verification for %s: %v", qrID, err)
				}
			}
		}

		log.Printf("QR verification successful: %s - %s", qrID, user.Email)
		c.JSON(http.StatusOK, response)
	}
}
