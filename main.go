// @title Quiz Review API
// @version 1.0
// @description Scoring and manual review backend for long-answer contest submissions.

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"log"

	"quiz_review_backend/internal/app"
	"quiz_review_backend/internal/config"
	"quiz_review_backend/pkg/configwatcher"
	"quiz_review_backend/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	// Scoring policy changes (rounding step, priority bands, claim TTL)
	// take effect without a restart.
	go configwatcher.WatchConfig("configs/config.yaml", application.Policy.Reload)

	application.Run()
}
