package match

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pitchside/crease/config"
	"github.com/pitchside/crease/internal/livefeed"
	mw "github.com/pitchside/crease/internal/middleware"
)

// MatchRoutes sets up all match-related routes.
func MatchRoutes(router *gin.RouterGroup, db *gorm.DB, feed *livefeed.Cache, appConfig *config.Config, jwtSecret string) {
	matchRepo := NewGormMatchRepository(db)
	matchController := NewMatchController(matchRepo, feed, appConfig)

	// Public read routes
	publicRoutes := router.Group("/matches")
	{
		publicRoutes.GET("", matchController.GetMatches)
		publicRoutes.GET("/:id", matchController.GetMatchByID)
		publicRoutes.GET("/:id/live", matchController.GetLiveScorecard)
	}

	// Scoring routes, restricted to the owning scorer
	authRoutes := router.Group("/matches")
	authRoutes.Use(mw.AuthMiddleware(jwtSecret))
	{
		authRoutes.POST("", matchController.CreateMatch)
		authRoutes.POST("/:id/setup", matchController.CompleteSetup)

		// Ball-by-ball scoring
		authRoutes.POST("/:id/balls", matchController.RecordBall)
		authRoutes.POST("/:id/balls/undo", matchController.UndoLastBall)
		authRoutes.PATCH("/:id/live", matchController.UpdateLiveState)

		// Innings and match lifecycle
		authRoutes.POST("/:id/innings/next", matchController.StartSecondInnings)
		authRoutes.POST("/:id/complete", matchController.CompleteMatch)
		authRoutes.POST("/:id/cancel", matchController.CancelMatch)
	}
}
