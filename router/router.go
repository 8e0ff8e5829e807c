package router

import (
	"time"

	"expensetracker/api"
	"expensetracker/config"
	_ "expensetracker/docs"
	"expensetracker/middleware"
	"expensetracker/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRouter builds the HTTP engine with all routes registered.
func SetupRouter(cfg *config.Config, mailer service.Mailer) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	r.Use(cors.New(corsConfig))

	// Uploaded profile images are served directly.
	r.Static("/uploads", "./uploads")

	// Swagger docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authHandler := api.NewAuthHandler(cfg)
	expenseHandler := api.NewExpenseHandler(mailer)
	incomeHandler := api.NewIncomeHandler()
	budgetHandler := api.NewBudgetHandler(mailer)
	dashboardHandler := api.NewDashboardHandler(mailer)
	analyticsHandler := api.NewAnalyticsHandler()
	reportHandler := api.NewReportHandler(mailer)

	v1 := r.Group("/api/v1")
	{
		// Credential routes are rate limited per client IP.
		loginLimiter := middleware.AuthRateLimit(10, time.Minute)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", loginLimiter, authHandler.Register)
			auth.POST("/login", loginLimiter, authHandler.Login)
		}

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth())
		{
			authorized.GET("/auth/getUser", authHandler.GetUser)
			authorized.PUT("/auth/update", authHandler.UpdateProfile)
			authorized.PUT("/auth/change-password", authHandler.ChangePassword)
			authorized.POST("/auth/upload-image", authHandler.UploadImage)

			expense := authorized.Group("/expense")
			{
				expense.POST("/add", expenseHandler.Add)
				expense.GET("/get", expenseHandler.List)
				expense.GET("/downloadexcel", expenseHandler.DownloadExcel)
				expense.DELETE("/:id", expenseHandler.Delete)
			}

			income := authorized.Group("/income")
			{
				income.POST("/add", incomeHandler.Add)
				income.GET("/get", incomeHandler.List)
				income.GET("/downloadexcel", incomeHandler.DownloadExcel)
				income.DELETE("/:id", incomeHandler.Delete)
			}

			authorized.GET("/budget", budgetHandler.Get)
			authorized.POST("/budget", budgetHandler.Set)

			authorized.GET("/dashboard", dashboardHandler.Get)

			analytics := authorized.Group("/analytics")
			{
				analytics.GET("/category-breakdown", analyticsHandler.CategoryBreakdown)
				analytics.GET("/summary", analyticsHandler.Summary)
			}

			authorized.POST("/reports/monthly", reportHandler.RunMonthly)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
