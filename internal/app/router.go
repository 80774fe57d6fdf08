package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"budgetbell/internal/handlers"
	"budgetbell/internal/middleware"
	"budgetbell/internal/validator"

	_ "budgetbell/internal/docs" // Import swagger docs
)

// Router builds the HTTP API.
func (a *App) Router() *gin.Engine {
	validator.Register()

	notificationHandler := handlers.NewNotificationHandler(a.Notifications, a.Audit)
	preferencesHandler := handlers.NewPreferencesHandler(a.Preferences, a.Audit)
	recurringHandler := handlers.NewRecurringExpenseHandler(a.Recurring, a.Audit)
	schedulerHandler := handlers.NewSchedulerHandler(a.Trigger, a.Audit)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/api/health", a.health)
	if a.registry != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))
	}

	// API v1 group
	v1 := router.Group("/api/v1")

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(a.Config.JWTSecret))

	notifications := protected.Group("/notifications")
	notifications.GET("", notificationHandler.GetNotifications)
	notifications.GET("/unread-count", notificationHandler.GetUnreadCount)
	notifications.PUT("/read-all", notificationHandler.MarkAllAsRead)
	notifications.PUT("/:id/read", notificationHandler.MarkAsRead)

	protected.GET("/preferences", preferencesHandler.GetPreferences)
	protected.PUT("/preferences", preferencesHandler.UpdatePreferences)

	protected.POST("/recurring-expenses/:id/payments", recurringHandler.RecordPayment)

	// Operator routes
	admin := v1.Group("/admin")
	admin.Use(middleware.AdminAuthMiddleware(a.Config.AdminAPIKey))
	admin.POST("/reminders/run", schedulerHandler.RunReminders)

	return router
}

func (a *App) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := gin.H{"status": "ok", "database": "ok", "scheduler_running": a.Trigger.Running()}
	code := http.StatusOK
	if err := a.DB.Health(ctx); err != nil {
		status["status"], status["database"] = "degraded", err.Error()
		code = http.StatusServiceUnavailable
	}
	if a.Redis != nil {
		if err := a.Redis.Health(ctx); err != nil {
			status["status"], status["redis"] = "degraded", err.Error()
			code = http.StatusServiceUnavailable
		} else {
			status["redis"] = "ok"
		}
	}
	c.JSON(code, status)
}
