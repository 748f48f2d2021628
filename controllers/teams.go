package controllers

import (
	"log"
	"net/http"

	"qraccess/middleware"
	models "qraccess/models/postgres"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type teamRequest struct {
	TeamName string `json:"team_name" binding:"required"`
}

func teamPayload(t *models.Team) gin.H {
	return gin.H{
		"team_id":    t.TeamID,
		"team_name":  t.TeamName,
		"user_id":    t.UserID,
		"is_active":  t.IsActive,
		"created_at": t.CreatedAt,
		"updated_at": t.UpdatedAt,
	}
}

// @Summary List teams
// @Description Returns the caller's active teams; admins see every active team
// @Tags teams
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Success 200 {object} object{teams=array,count=integer}
// @Router /teams [get]
// @Security ApiKeyAuth
func ListTeams(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := middleware.GetClaims(c)

		query := db.Where("is_active = ?", true)
		if claims.Role != models.RoleAdmin {
			query = query.Where("user_id = ?", claims.UserID)
		}

		var teams []models.Team
		if err := query.Order("created_at DESC").Find(&teams).Error; err != nil {
			log.Printf("Error listing teams: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		payload := make([]gin.H, len(teams))
		for i := range teams {
			payload[i] = teamPayload(&teams[i])
		}
		c.JSON(http.StatusOK, gin.H{"teams": payload, "count": len(teams)})
	}
}

// @Summary Create a team
// @Description Creates a team owned by the caller
// @Tags teams
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param request body object{team_name=string} true "Team data"
// @Success 201 {object} object{team_id=string,team_name=string}
// @Failure 400 {object} object{error=string}
// @Router /teams [post]
// @Security ApiKeyAuth
func CreateTeam(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := middleware.GetClaims(c)

		var req teamRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields: team_name"})
			return
		}

		team := models.Team{
			TeamName: req.TeamName,
			UserID:   claims.UserID,
			IsActive: true,
		}
		if err := db.Create(&team).Error; err != nil {
			log.Printf("Error creating team: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating team"})
			return
		}

		c.JSON(http.StatusCreated, teamPayload(&team))
	}
}

// loadOwnedTeam fetches an active team the claims may act on, writing the
// error response itself when that fails.
func loadOwnedTeam(c *gin.Context, db *gorm.DB) (*models.Team, bool) {
	claims := middleware.GetClaims(c)

	var team models.Team
	if err := db.Where("team_id = ? AND is_active = ?", c.Param("team_id"), true).First(&team).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Team not found"})
		return nil, false
	}
	if !middleware.IsSelfOrAdmin(claims, team.UserID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only access your own teams unless you are an admin."})
		return nil, false
	}
	return &team, true
}

// @Summary Get a team
// @Tags teams
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param team_id path string true "Team id"
// @Success 200 {object} object{team_id=string,team_name=string}
// @Failure 404 {object} object{error=string}
// @Router /teams/{team_id} [get]
// @Security ApiKeyAuth
func GetTeam(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		team, ok := loadOwnedTeam(c, db)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, teamPayload(team))
	}
}

// @Summary Rename a team
// @Tags teams
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param team_id path string true "Team id"
// @Param request body object{team_name=string} true "Team data"
// @Success 200 {object} object{team_id=string,team_name=string}
// @Failure 404 {object} object{error=string}
// @Router /teams/{team_id} [put]
// @Security ApiKeyAuth
func UpdateTeam(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		team, ok := loadOwnedTeam(c, db)
		if !ok {
			return
		}

		var req teamRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields: team_name"})
			return
		}

		if err := db.Model(team).Update("team_name", req.TeamName).Error; err != nil {
			log.Printf("Error updating team %s: %v", team.TeamID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		c.JSON(http.StatusOK, teamPayload(team))
	}
}

// @Summary Delete a team
// @Description Soft-deletes by clearing the active flag
// @Tags teams
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param team_id path string true "Team id"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} object{error=string}
// @Router /teams/{team_id} [delete]
// @Security ApiKeyAuth
func DeleteTeam(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		team, ok := loadOwnedTeam(c, db)
		if !ok {
			return
		}

		if err := db.Model(team).Update("is_active", false).Error; err != nil {
			log.Printf("Error deleting team %s: %v", team.TeamID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Team deleted successfully"})
	}
}
