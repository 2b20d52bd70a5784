package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/lumenworks/sitecms/internal/config"
	"github.com/lumenworks/sitecms/internal/database"
	"github.com/lumenworks/sitecms/internal/services"
	"github.com/lumenworks/sitecms/internal/utils"
)

func main() {
	// Optional .env for local development
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Perform health check
	result := services.HealthCheck(cfg, db, nil)

	// Check the HTTP server is accepting connections
	if err := utils.PingService(cfg.PublicBaseURL, 1500*time.Millisecond); err != nil {
		result.Status = "unhealthy"
		if result.Details == nil {
			result.Details = make(map[string]string)
		}
		result.Details["server_error"] = err.Error()
	}

	// Output result as JSON
	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal health check result: %v", err)
	}

	fmt.Println(string(output))

	// Exit with appropriate code
	if result.Status != "healthy" {
		os.Exit(1)
	}
	os.Exit(0)
}
