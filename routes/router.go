package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/pitchside/crease/config"
	"github.com/pitchside/crease/internal/livefeed"
	"github.com/pitchside/crease/internal/match"
)

func SetupRoutes() *gin.Engine {
	r := gin.Default()
	r.Use(cors.Default()) // allows all origins, GET/POST/PUT

	cfg := config.GetConfig()

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Swagger route
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	var feed *livefeed.Cache
	if config.RDB != nil {
		feed = livefeed.NewCache(config.RDB)
	}

	// API routes
	api := r.Group("/api")
	match.MatchRoutes(api, config.DB, feed, cfg, cfg.JWT.Secret)

	return r
}
