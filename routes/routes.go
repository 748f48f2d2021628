package routes

import (
	"qraccess/controllers"
	"qraccess/middleware"
	"qraccess/services/qr"
	redissvc "qraccess/services/redis"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, db *gorm.DB, redisClient *redissvc.RedisClient, qrService *qr.Service) {
	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// QR artifacts are plain files below the media root
	router.Static(qrService.MediaURL, qrService.MediaRoot)

	api := router.Group("/")

	api.GET("/ping", controllers.Ping)

	// Public endpoints
	api.POST("/register", controllers.Register(db, qrService))
	api.POST("/login", controllers.Login(db, qrService))
	api.GET("/verify/:qr_id", controllers.VerifyQR(db, redisClient))

	// Routes that require authentication
	authenticated := api.Group("/")
	authenticated.Use(middleware.AuthRequired)
	{
		authenticated.POST("/logout", controllers.Logout)
		authenticated.GET("/me", controllers.Me(db, qrService))

		authenticated.GET("/users", controllers.GetAllUsers(db, qrService))
		authenticated.GET("/users/:id", controllers.GetUser(db, qrService))

		teams := authenticated.Group("/teams")
		{
			teams.GET("", controllers.ListTeams(db))
			teams.POST("", controllers.CreateTeam(db))
			teams.GET("/:team_id", controllers.GetTeam(db))
			teams.PUT("/:team_id", controllers.UpdateTeam(db))
			teams.DELETE("/:team_id", controllers.DeleteTeam(db))
		}

		authenticated.GET("/games", controllers.ListGames(db))

		results := authenticated.Group("/results")
		{
			results.GET("", controllers.ListResults(db))
			results.POST("", controllers.CreateResult(db))
		}

		// Admin-only endpoints
		admin := authenticated.Group("/")
		admin.Use(middleware.AdminRequired)
		{
			admin.DELETE("/users/:id", controllers.DeleteUser(db, qrService, redisClient))
			admin.PATCH("/users/:id/role", controllers.UpdateUserRole(db))
			admin.PATCH("/users/:id/deactivate", controllers.DeactivateUser(db, redisClient))

			admin.POST("/admin/games", controllers.CreateGame(db))
			admin.PUT("/admin/games/:game_id", controllers.UpdateGame(db))
			admin.GET("/admin/results", controllers.AdminListResults(db))
			admin.PUT("/admin/results/:result_id", controllers.AdminUpdateResult(db))
		}
	}
}
