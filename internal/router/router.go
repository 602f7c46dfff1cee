// Package router assembles the HTTP API: middleware, services, handlers and
// routes.
package router

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"moneylens/internal/cache"
	"moneylens/internal/config"
	"moneylens/internal/database"
	"moneylens/internal/handlers"
	"moneylens/internal/middleware"
	"moneylens/internal/models"
	"moneylens/internal/observability"
	"moneylens/internal/services"

	_ "moneylens/internal/docs" // swagger docs
)

// healthTimeout bounds the database ping behind /api/health.
const healthTimeout = 2 * time.Second

// Deps is everything the router needs from the process.
type Deps struct {
	DB     *gorm.DB
	Config *config.Config
	// Metrics may be nil, which disables /metrics and the request counters.
	Metrics *observability.Metrics
	// Suggester may be nil, in which case suggestions answer 503.
	Suggester services.CategorySuggester
	// Previews holds bulk-upload previews until they are committed.
	Previews *cache.InMemory[models.BulkPayload]
}

// New builds the Gin engine with every route registered.
func New(deps Deps) *gin.Engine {
	db := deps.DB

	// Services
	userService := services.NewUserService(db)
	auditService := services.NewAuditService(db)
	transactionService := services.NewTransactionService(db)
	totalsService := services.NewTotalsService(db)
	categoryService := services.NewCategoryService(db)
	tagService := services.NewTagService(db)
	bankAccountService := services.NewBankAccountService(db)
	safeDeleter := services.NewSafeDeleter(db)
	bulkUploadService := services.NewBulkUploadService(db, deps.Previews)
	statementService := services.NewStatementService(db)
	suggestionService := services.NewSuggestionService(db, deps.Suggester)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, auditService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, auditService)
	totalsHandler := handlers.NewTotalsHandler(totalsService)
	categoryHandler := handlers.NewCategoryHandler(categoryService, safeDeleter, auditService, deps.Metrics)
	tagHandler := handlers.NewTagHandler(tagService, safeDeleter, auditService, deps.Metrics)
	bankAccountHandler := handlers.NewBankAccountHandler(bankAccountService, safeDeleter, auditService, deps.Metrics)
	bulkUploadHandler := handlers.NewBulkUploadHandler(bulkUploadService, auditService, deps.Metrics)
	statementHandler := handlers.NewStatementHandler(statementService)
	suggestionHandler := handlers.NewSuggestionHandler(suggestionService, deps.Metrics)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(observability.TracingMiddleware())
	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware())
	}
	router.Use(middleware.ErrorHandler())
	router.Use(cors.New(corsConfig(deps.Config.CORSOrigin)))

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()
		if err := database.Ping(ctx, db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if deps.Metrics != nil {
		router.GET("/metrics", middleware.APIKeyAuth(deps.Config.MetricsAPIKey), gin.WrapH(deps.Metrics.Handler()))
	}

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)

	transactions := protected.Group("/transactions")
	transactions.GET("", transactionHandler.ListTransactions)
	transactions.DELETE("", transactionHandler.DeleteTransactions)
	transactions.POST("/spend", transactionHandler.CreateSpend)
	transactions.POST("/earn", transactionHandler.CreateEarn)
	transactions.POST("/save", transactionHandler.CreateSave)
	transactions.GET("/sum", transactionHandler.SumTransactions)
	transactions.POST("/bulk", bulkUploadHandler.BulkInsert)
	transactions.GET("/suggestions", suggestionHandler.SuggestCategories)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PATCH("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	totals := protected.Group("/totals")
	totals.GET("/monthly", totalsHandler.MonthlyTotals)
	totals.GET("/yearly", totalsHandler.YearlyTotals)
	totals.GET("/monthly/categories", totalsHandler.MonthlyCategoryTotals)
	totals.GET("/yearly/categories", totalsHandler.YearlyCategoryTotals)
	totals.GET("/monthly/tagged", totalsHandler.MonthlyTaggedTypeTotals)
	totals.GET("/yearly/tagged", totalsHandler.YearlyTaggedTypeTotals)
	totals.GET("/tagged", totalsHandler.TaggedTypeTotals)
	totals.GET("/current-month/categories", totalsHandler.CurrentMonthCategoryTotals)
	totals.GET("/current-year/categories", totalsHandler.CurrentYearCategoryTotals)
	totals.GET("/overview", totalsHandler.MonthOverview)

	categories := protected.Group("/categories")
	categories.GET("", categoryHandler.ListCategories)
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("/:id", categoryHandler.GetCategoryByID)
	categories.PATCH("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	tags := protected.Group("/tags")
	tags.GET("", tagHandler.ListTags)
	tags.POST("", tagHandler.CreateTag)
	tags.GET("/:id", tagHandler.GetTagByID)
	tags.PATCH("/:id", tagHandler.UpdateTag)
	tags.DELETE("/:id", tagHandler.DeleteTag)

	bankAccounts := protected.Group("/bank-accounts")
	bankAccounts.GET("", bankAccountHandler.ListBankAccounts)
	bankAccounts.POST("", bankAccountHandler.CreateBankAccount)
	bankAccounts.GET("/:id", bankAccountHandler.GetBankAccountByID)
	bankAccounts.PATCH("/:id", bankAccountHandler.UpdateBankAccount)
	bankAccounts.DELETE("/:id", bankAccountHandler.DeleteBankAccount)

	bulkUpload := protected.Group("/bulk-upload")
	bulkUpload.POST("/preview", bulkUploadHandler.Preview)
	bulkUpload.POST("/commit", bulkUploadHandler.Commit)

	protected.GET("/statements", statementHandler.GetStatement)

	return router
}

// corsConfig allows the configured origins, a comma-separated list where
// "*" or an empty value allows any origin.
func corsConfig(origins string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID", "X-API-Key"}
	cfg.ExposeHeaders = []string{"X-Request-ID"}
	cfg.MaxAge = 12 * time.Hour

	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" && o != "*" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, o)
		}
	}
	if len(cfg.AllowOrigins) == 0 {
		cfg.AllowAllOrigins = true
	}
	return cfg
}
