package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "fintrack/internal/docs" // registers the swagger spec
	"fintrack/internal/handlers"
	"fintrack/internal/middleware"
)

// NewRouter builds the Gin engine with every API route. The internal routes
// require pipelineAPIKey in the X-API-Key header.
func NewRouter(svc *Services, pipelineAPIKey string) *gin.Engine {
	authHandler := handlers.NewAuthHandler(svc.Users, svc.Audit)
	categoryHandler := handlers.NewCategoryHandler(svc.Categories, svc.Audit)
	operationHandler := handlers.NewOperationHandler(svc.Operations, svc.Audit)
	assetHandler := handlers.NewAssetHandler(svc.Assets, svc.Audit)
	savingsHandler := handlers.NewSavingsHandler(svc.Savings, svc.Audit)
	loanHandler := handlers.NewLoanHandler(svc.Loans, svc.Audit)
	goalHandler := handlers.NewGoalHandler(svc.Goals, svc.Audit)
	notificationHandler := handlers.NewNotificationHandler(svc.Notifications)
	dashboardHandler := handlers.NewDashboardHandler(svc.Dashboard)
	reminderHandler := handlers.NewReminderHandler(svc.Reminders)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(cors())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.RefreshToken)

	// Pipeline routes
	internal := v1.Group("/internal")
	internal.Use(middleware.PipelineAuthMiddleware(pipelineAPIKey))
	internal.POST("/reminders/run", reminderHandler.RunReminders)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/profile", authHandler.GetProfile)
	protected.PUT("/profile", authHandler.UpdateProfile)

	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetUserCategories)
	categories.GET("/spending", categoryHandler.GetSpending)
	categories.POST("/limits", categoryHandler.CreateLimit)
	categories.GET("/limits", categoryHandler.GetLimits)
	categories.PUT("/limits/:id", categoryHandler.UpdateLimit)
	categories.DELETE("/limits/:id", categoryHandler.DeleteLimit)
	categories.GET("/:id", categoryHandler.GetCategoryByID)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	operations := protected.Group("/operations")
	operations.POST("", operationHandler.CreateOperation)
	operations.GET("", operationHandler.GetUserOperations)
	operations.GET("/summary", operationHandler.GetSummary)
	operations.GET("/export", operationHandler.ExportOperations)
	operations.GET("/:id", operationHandler.GetOperationByID)
	operations.PUT("/:id", operationHandler.UpdateOperation)
	operations.DELETE("/:id", operationHandler.DeleteOperation)

	assets := protected.Group("/assets")
	assets.POST("", assetHandler.CreateAsset)
	assets.GET("", assetHandler.GetUserAssets)
	assets.GET("/summary", assetHandler.GetSummary)
	assets.GET("/:id", assetHandler.GetAssetByID)
	assets.PUT("/:id", assetHandler.UpdateAsset)
	assets.DELETE("/:id", assetHandler.DeleteAsset)

	savings := protected.Group("/savings")
	savings.POST("", savingsHandler.CreateAccount)
	savings.GET("", savingsHandler.GetUserAccounts)
	savings.GET("/summary", savingsHandler.GetSummary)
	savings.GET("/:id", savingsHandler.GetAccountByID)
	savings.PUT("/:id", savingsHandler.UpdateAccount)
	savings.DELETE("/:id", savingsHandler.DeleteAccount)

	loans := protected.Group("/loans")
	loans.POST("", loanHandler.CreateLoan)
	loans.GET("", loanHandler.GetUserLoans)
	loans.GET("/summary", loanHandler.GetSummary)
	loans.GET("/:id", loanHandler.GetLoanByID)
	loans.PUT("/:id", loanHandler.UpdateLoan)
	loans.DELETE("/:id", loanHandler.DeleteLoan)
	loans.GET("/:id/schedule", loanHandler.GetSchedule)
	loans.POST("/:id/payments", loanHandler.RecordPayment)

	goals := protected.Group("/goals")
	goals.POST("", goalHandler.CreateGoal)
	goals.GET("", goalHandler.GetUserGoals)
	goals.GET("/summary", goalHandler.GetSummary)
	goals.GET("/:id", goalHandler.GetGoalByID)
	goals.PUT("/:id", goalHandler.UpdateGoal)
	goals.DELETE("/:id", goalHandler.DeleteGoal)

	notifications := protected.Group("/notifications")
	notifications.GET("", notificationHandler.GetNotifications)
	notifications.DELETE("", notificationHandler.ClearNotifications)
	notifications.DELETE("/:id", notificationHandler.DeleteNotification)

	protected.GET("/dashboard", dashboardHandler.GetDashboard)

	return router
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
