package main

import (
	"log"

	"github.com/pitchside/crease/config"
	"github.com/pitchside/crease/internal/match"
	"github.com/pitchside/crease/routes"
)

// @title Crease Live Scoring API
// @version 1.0
// @description Ball-by-ball cricket scoring service.
// @host localhost:8088
// @BasePath /api
func main() {
	if err := config.Initialize(); err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	cfg := config.GetConfig()

	if err := config.DB.AutoMigrate(&match.Match{}); err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}
	log.Println("AutoMigrate successful")

	r := routes.SetupRoutes()

	log.Printf("Starting server on port %s in %s mode\n", cfg.App.Port, cfg.App.Env)
	if err := r.Run(":" + cfg.App.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
