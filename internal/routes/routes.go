// Package routes assembles the gin engine serving the ledger API.
package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/Raiterion-coder/finance-manager/internal/config"
	_ "github.com/Raiterion-coder/finance-manager/internal/docs" // Import swagger docs
	"github.com/Raiterion-coder/finance-manager/internal/handlers"
	"github.com/Raiterion-coder/finance-manager/internal/middleware"
	"github.com/Raiterion-coder/finance-manager/internal/services"
)

// Setup wires services and handlers over db and registers every route.
func Setup(cfg *config.Config, db *gorm.DB) *gin.Engine {
	// Initialize services
	accountService := services.NewAccountService(db)
	transactionService := services.NewTransactionService(db, accountService, cfg.MaxPhotoBytes)
	reportService := services.NewReportService(db, accountService)

	// Initialize handlers
	accountHandler := handlers.NewAccountHandler(accountService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, cfg.MaxPhotoBytes)
	reportHandler := handlers.NewReportHandler(reportService)

	router := gin.New()
	router.Use(middleware.RequestLogging())
	router.Use(middleware.Recovery())
	router.Use(middleware.ErrorHandler())
	router.Use(cors())
	// multipart bodies beyond this spill to temp files
	router.MaxMultipartMemory = cfg.MaxPhotoBytes + 1<<20

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", health(db))

	v1 := router.Group("/api/v1")
	v1.Use(middleware.APIKey(cfg.APIKey))

	// Account routes
	accounts := v1.Group("/accounts")
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.ListAccounts)
	accounts.GET("/:id", accountHandler.GetAccountByID)
	accounts.PUT("/:id", accountHandler.RenameAccount)
	accounts.DELETE("/:id", accountHandler.DeleteAccount)
	accounts.GET("/:id/transactions", transactionHandler.GetAccountTransactions)
	accounts.GET("/:id/balance-history", reportHandler.GetBalanceHistory)
	accounts.GET("/:id/reconciliation", reportHandler.ReconcileAccount)
	accounts.POST("/:id/reconciliation", reportHandler.RepairBalance)

	// Transaction routes
	transactions := v1.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.ListTransactions)
	transactions.GET("/lookup", transactionHandler.FindTransactions)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)
	transactions.GET("/:id/photo", transactionHandler.GetTransactionPhoto)
	transactions.PUT("/:id/photo", transactionHandler.AttachPhoto)
	transactions.DELETE("/:id/photo", transactionHandler.RemovePhoto)

	// Report routes
	reports := v1.Group("/reports")
	reports.GET("/categories", reportHandler.GetCategorySummary)

	return router
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+middleware.APIKeyHeader)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// health reports ok when the database answers a ping.
func health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
