package main

import (
	"fmt"
	"net/http"
	"os"

	"centavo/internal/config"
	"centavo/internal/database"
	"centavo/internal/handlers"
	"centavo/internal/logger"
	"centavo/internal/middleware"
	"centavo/internal/quotes"
	"centavo/internal/services"
	"centavo/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "centavo/internal/docs" // Import swagger docs
)

// @title           Centavo API
// @version         1.0
// @description     Centavo is a personal finance backend for tracking expenses, investments, savings goals and financial health, with an AI assistant.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

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
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Register custom binding validators
	validator.Register()

	// Market data providers. Yahoo answers B3 tickers, CoinGecko answers crypto.
	yahoo := quotes.NewYahooProvider(nil, appConfig.YahooBaseURL)
	coingecko := quotes.NewCoinGeckoProvider(nil, appConfig.CoinGeckoBaseURL)

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	transactionService := services.NewTransactionService(db)
	recurringService := services.NewRecurringService(db)
	goalService := services.NewGoalService(db)
	investmentService := services.NewInvestmentService(db, []quotes.Provider{yahoo, coingecko})
	noteService := services.NewNoteService(db)
	insightService := services.NewInsightService(db, transactionService)
	streakService := services.NewStreakService(db, transactionService)
	adviceService := services.NewAdviceService(db, transactionService, coingecko, appConfig.GeminiAPIKey, appConfig.GeminiModel)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, streakService)
	transactionHandler := handlers.NewTransactionHandler(transactionService)
	recurringHandler := handlers.NewRecurringHandler(recurringService)
	goalHandler := handlers.NewGoalHandler(goalService)
	investmentHandler := handlers.NewInvestmentHandler(investmentService)
	noteHandler := handlers.NewNoteHandler(noteService)
	insightHandler := handlers.NewInsightHandler(insightService)
	adviceHandler := handlers.NewAdviceHandler(adviceService)
	streakHandler := handlers.NewStreakHandler(streakService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)

	// Transaction routes
	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetUserTransactions)
	transactions.GET("/stats", transactionHandler.GetStats)
	transactions.GET("/export", transactionHandler.ExportCSV)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	// Recurring transaction routes
	recurring := protected.Group("/recurring")
	recurring.POST("", recurringHandler.CreateRecurring)
	recurring.GET("", recurringHandler.GetUserRecurring)
	recurring.POST("/process", recurringHandler.ProcessDue)
	recurring.PATCH("/:id/active", recurringHandler.SetActive)
	recurring.DELETE("/:id", recurringHandler.DeleteRecurring)

	// Goal routes
	goals := protected.Group("/goals")
	goals.POST("", goalHandler.CreateGoal)
	goals.GET("", goalHandler.GetUserGoals)
	goals.GET("/:id", goalHandler.GetGoalByID)
	goals.PUT("/:id", goalHandler.UpdateGoal)
	goals.DELETE("/:id", goalHandler.DeleteGoal)
	goals.GET("/:id/projection", insightHandler.GetGoalProjection)

	// Investment routes
	investments := protected.Group("/investments")
	investments.POST("", investmentHandler.AddLot)
	investments.GET("", investmentHandler.GetUserInvestments)
	investments.GET("/portfolio", investmentHandler.GetPortfolio)
	investments.POST("/refresh-quotes", investmentHandler.RefreshQuotes)
	investments.GET("/:id", investmentHandler.GetInvestmentByID)
	investments.POST("/:id/sell", investmentHandler.Sell)
	investments.PATCH("/:id/value", investmentHandler.UpdateValue)
	investments.DELETE("/:id", investmentHandler.DeleteInvestment)

	// Note routes
	notes := protected.Group("/notes")
	notes.POST("", noteHandler.CreateNote)
	notes.GET("", noteHandler.GetUserNotes)
	notes.GET("/:id", noteHandler.GetNoteByID)
	notes.PUT("/:id", noteHandler.UpdateNote)
	notes.DELETE("/:id", noteHandler.DeleteNote)

	// Insight routes
	insights := protected.Group("/insights")
	insights.GET("", insightHandler.GetInsights)
	insights.POST("/simulate", insightHandler.SimulatePurchase)
	insights.GET("/health", insightHandler.GetHealthScore)

	// AI assistant
	protected.POST("/assistant", adviceHandler.GetAdvice)

	// Gamification routes
	protected.POST("/streak/touch", streakHandler.Touch)
	protected.GET("/streak", streakHandler.GetStreak)
	protected.GET("/badges", streakHandler.GetBadges)

	log.Infof("Starting Centavo backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
