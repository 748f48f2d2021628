package controllers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"qraccess/middleware"
	models "qraccess/models/postgres"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type createResultRequest struct {
	TeamID       string     `json:"team_id" binding:"required"`
	GameID       string     `json:"game_id" binding:"required"`
	PointsScored *int       `json:"points_scored" binding:"required"`
	Notes        string     `json:"notes"`
	PlayedAt     *time.Time `json:"played_at"`
}

type adminUpdateResultRequest struct {
	PointsScored *int    `json:"points_scored"`
	Notes        *string `json:"notes"`
	Verified     *bool   `json:"verified"`
}

func resultPayload(r *models.GameResult) gin.H {
	return gin.H{
		"result_id":         r.ResultID,
		"user_id":           r.UserID,
		"team_id":           r.TeamID,
		"game_id":           r.GameID,
		"points_scored":     r.PointsScored,
		"notes":             r.Notes,
		"played_at":         r.PlayedAt,
		"verified_by_admin": r.VerifiedByAdmin,
		"admin_user_id":     r.AdminUserID,
	}
}

// checkPointsRange enforces the hard validation game.min <= points <= game.max.
func checkPointsRange(game *models.Game, points int) error {
	if points < game.MinPoints || points > game.MaxPoints {
		return fmt.Errorf("Points must be between %d and %d", game.MinPoints, game.MaxPoints)
	}
	return nil
}

// @Summary List game results
// @Description Returns the caller's results; admins see everything
// @Tags results
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Success 200 {object} object{results=array,count=integer}
// @Router /results [get]
// @Security ApiKeyAuth
func ListResults(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := middleware.GetClaims(c)

		query := db.Order("played_at DESC")
		if claims.Role != models.RoleAdmin {
			query = query.Where("user_id = ?", claims.UserID)
		}

		var results []models.GameResult
		if err := query.Find(&results).Error; err != nil {
			log.Printf("Error listing results: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		payload := make([]gin.H, len(results))
		for i := range results {
			payload[i] = resultPayload(&results[i])
		}
		c.JSON(http.StatusOK, gin.H{"results": payload, "count": len(results)})
	}
}

// @Summary Record a game result
// @Description Creates an unverified result for one of the caller's teams; points are hard-validated against the game's scoring range
// @Tags results
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param request body object{team_id=string,game_id=string,points_scored=integer,notes=string} true "Result data"
// @Success 201 {object} object{result_id=string,points_scored=integer}
// @Failure 400 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /results [post]
// @Security ApiKeyAuth
func CreateResult(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := middleware.GetClaims(c)

		var req createResultRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields: team_id, game_id, points_scored"})
			return
		}

		var team models.Team
		if err := db.Where("team_id = ? AND is_active = ?", req.TeamID, true).First(&team).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Team not found"})
			return
		}
		if !middleware.IsSelfOrAdmin(claims, team.UserID) {
			c.JSON(http.StatusForbidden, gin.H{"error": "You can only record results for your own teams."})
			return
		}

		var game models.Game
		if err := db.Where("game_id = ? AND is_active = ?", req.GameID, true).First(&game).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
			return
		}

		if err := checkPointsRange(&game, *req.PointsScored); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		result := models.GameResult{
			UserID:       claims.UserID,
			TeamID:       team.TeamID,
			GameID:       game.GameID,
			PointsScored: *req.PointsScored,
			Notes:        req.Notes,
		}
		if req.PlayedAt != nil {
			result.PlayedAt = *req.PlayedAt
		} else {
			result.PlayedAt = time.Now()
		}

		if err := db.Create(&result).Error; err != nil {
			log.Printf("Error creating result: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating result"})
			return
		}

		c.JSON(http.StatusCreated, resultPayload(&result))
	}
}

// @Summary List all game results
// @Description Admin view over every recorded result
// @Tags results
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Success 200 {object} object{results=array,count=integer}
// @Router /admin/results [get]
// @Security ApiKeyAuth
func AdminListResults(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var results []models.GameResult
		if err := db.Order("played_at DESC").Find(&results).Error; err != nil {
			log.Printf("Error listing results: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		payload := make([]gin.H, len(results))
		for i := range results {
			payload[i] = resultPayload(&results[i])
		}
		c.JSON(http.StatusOK, gin.H{"results": payload, "count": len(results)})
	}
}

// @Summary Verify or adjust a game result
// @Description Admin may adjust points and set verification plus the verifier reference in one write
// @Tags results
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param result_id path string true "Result id"
// @Param request body object{points_scored=integer,notes=string,verified=boolean} true "Fields to update"
// @Success 200 {object} object{result_id=string,verified_by_admin=boolean}
// @Failure 400 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /admin/results/{result_id} [put]
// @Security ApiKeyAuth
func AdminUpdateResult(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := middleware.GetClaims(c)

		var result models.GameResult
		if err := db.Where("result_id = ?", c.Param("result_id")).First(&result).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Result not found"})
			return
		}

		var req adminUpdateResultRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		updates := map[string]interface{}{}
		if req.PointsScored != nil {
			var game models.Game
			if err := db.Where("game_id = ?", result.GameID).First(&game).Error; err != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
				return
			}
			if err := checkPointsRange(&game, *req.PointsScored); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			updates["points_scored"] = *req.PointsScored
		}
		if req.Notes != nil {
			updates["notes"] = *req.Notes
		}
		if req.Verified != nil {
			// Verification and the verifier reference move together.
			updates["verified_by_admin"] = *req.Verified
			if *req.Verified {
				updates["admin_user_id"] = claims.UserID
			} else {
				updates["admin_user_id"] = nil
			}
		}

		if len(updates) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
			return
		}

		if err := db.Model(&result).Updates(updates).Error; err != nil {
			log.Printf("Error updating result %s: %v", result.ResultID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		c.JSON(http.StatusOK, resultPayload(&result))
	}
}
