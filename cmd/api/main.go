package main

import (
	"fmt"
	"os"

	"github.com/Raiterion-coder/finance-manager/internal/config"
	"github.com/Raiterion-coder/finance-manager/internal/database"
	"github.com/Raiterion-coder/finance-manager/internal/logger"
	"github.com/Raiterion-coder/finance-manager/internal/routes"
	"github.com/Raiterion-coder/finance-manager/internal/validator"
)

// @title           Finance Manager API
// @version         1.0
// @description     Local personal finance ledger: accounts, transactions, receipt photos and balance charts.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
// @description Shared key, required only when the server sets API_KEY.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig(appConfig)
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if cerr := dbManager.Close(); cerr != nil {
			log.Warnf("database close error: %v", cerr)
		}
	}()

	if appConfig.AutoMigrate {
		if err := dbManager.RunMigrations(); err != nil {
			return fmt.Errorf("failed to run database migrations: %w", err)
		}
	}

	validator.Register()
	router := routes.Setup(appConfig, dbManager.DB())

	log.Infow("Starting finance manager API",
		"port", appConfig.Port,
		"driver", dbConfig.Driver,
		"api_key_required", appConfig.APIKey != "",
	)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
