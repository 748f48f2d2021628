package controllers

import (
	"errors"
	"log"
	"net/http"

	models "qraccess/models/postgres"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type createGameRequest struct {
	GameName        string `json:"game_name" binding:"required"`
	GameDescription string `json:"game_description"`
	MinPoints       *int   `json:"min_points"`
	MaxPoints       *int   `json:"max_points"`
}

type updateGameRequest struct {
	GameName        *string `json:"game_name"`
	GameDescription *string `json:"game_description"`
	MinPoints       *int    `json:"min_points"`
	MaxPoints       *int    `json:"max_points"`
	IsActive        *bool   `json:"is_active"`
}

func gamePayload(g *models.Game) gin.H {
	return gin.H{
		"game_id":          g.GameID,
		"game_name":        g.GameName,
		"game_description": g.GameDescription,
		"min_points":       g.MinPoints,
		"max_points":       g.MaxPoints,
		"is_active":        g.IsActive,
		"created_at":       g.CreatedAt,
		"updated_at":       g.UpdatedAt,
	}
}

// @Summary List games
// @Description Returns every active game; readable by any authenticated user
// @Tags games
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Success 200 {object} object{games=array,count=integer}
// @Router /games [get]
// @Security ApiKeyAuth
func ListGames(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var games []models.Game
		if err := db.Where("is_active = ?", true).Order("game_name").Find(&games).Error; err != nil {
			log.Printf("Error listing games: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		payload := make([]gin.H, len(games))
		for i := range games {
			payload[i] = gamePayload(&games[i])
		}
		c.JSON(http.StatusOK, gin.H{"games": payload, "count": len(games)})
	}
}

// @Summary Create a game
// @Description Creates a game with its scoring range (admin only)
// @Tags games
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param request body object{game_name=string,game_description=string,min_points=integer,max_points=integer} true "Game data"
// @Success 201 {object} object{game_id=string,game_name=string}
// @Failure 400 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Router /admin/games [post]
// @Security ApiKeyAuth
func CreateGame(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createGameRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields: game_name"})
			return
		}

		game := models.Game{
			GameName:        req.GameName,
			GameDescription: req.GameDescription,
			MinPoints:       0,
			MaxPoints:       100,
			IsActive:        true,
		}
		if req.MinPoints != nil {
			game.MinPoints = *req.MinPoints
		}
		if req.MaxPoints != nil {
			game.MaxPoints = *req.MaxPoints
		}
		if game.MinPoints > game.MaxPoints {
			c.JSON(http.StatusBadRequest, gin.H{"error": "min_points must not exceed max_points"})
			return
		}

		var existing models.Game
		if err := db.Where("game_name = ?", game.GameName).First(&existing).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "A game with this name already exists"})
			return
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Error checking game name uniqueness: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		if err := db.Create(&game).Error; err != nil {
			log.Printf("Error creating game: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating game"})
			return
		}

		c.JSON(http.StatusCreated, gamePayload(&game))
	}
}

// @Summary Update a game
// @Description Partially updates a game; the scoring range invariant is re-checked (admin only)
// @Tags games
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param game_id path string true "Game id"
// @Param request body object{game_name=string,game_description=string,min_points=integer,max_points=integer,is_active=boolean} true "Fields to update"
// @Success 200 {object} object{game_id=string,game_name=string}
// @Failure 400 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Router /admin/games/{game_id} [put]
// @Security ApiKeyAuth
func UpdateGame(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var game models.Game
		if err := db.Where("game_id = ?", c.Param("game_id")).First(&game).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
			return
		}

		var req updateGameRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		if req.GameName != nil && *req.GameName != game.GameName {
			var existing models.Game
			if err := db.Where("game_name = ?", *req.GameName).First(&existing).Error; err == nil {
				c.JSON(http.StatusConflict, gin.H{"error": "A game with this name already exists"})
				return
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				log.Printf("Error checking game name uniqueness: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
				return
			}
			game.GameName = *req.GameName
		}
		if req.GameDescription != nil {
			game.GameDescription = *req.GameDescription
		}
		if req.MinPoints != nil {
			game.MinPoints = *req.MinPoints
		}
		if req.MaxPoints != nil {
			game.MaxPoints = *req.MaxPoints
		}
		if req.IsActive != nil {
			game.IsActive = *req.IsActive
		}

		if game.MinPoints > game.MaxPoints {
			c.JSON(http.StatusBadRequest, gin.H{"error": "min_points must not exceed max_points"})
			return
		}

		if err := db.Save(&game).Error; err != nil {
			log.Printf("Error updating game %s: %v", game.GameID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		c.JSON(http.StatusOK, gamePayload(&game))
	}
}
