package routes

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/EveryDayApps/LinkLock-sub001/internal/api/handlers"
	"github.com/EveryDayApps/LinkLock-sub001/internal/api/middleware"
	"github.com/EveryDayApps/LinkLock-sub001/internal/config"
	"github.com/EveryDayApps/LinkLock-sub001/internal/metrics"
	"github.com/EveryDayApps/LinkLock-sub001/internal/models"
	"github.com/EveryDayApps/LinkLock-sub001/internal/services"
)

// Register migrates the schema, boots the application service and wires up
// the API routes. The returned App is fully initialized.
func Register(router *gin.Engine, db *gorm.DB, cfg config.Config) (*services.App, error) {
	if err := db.AutoMigrate(
		&models.StoredRecord{},
		&models.SecurityConfig{},
		&models.Notification{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	app := services.NewApp(db, cfg)
	if err := app.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize application: %w", err)
	}

	registry := prometheus.NewRegistry()
	metrics.Register(registry)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	router.GET("/api/v1/health", handlers.HealthHandler)

	api := router.Group("/api/v1")

	evaluateHandler := handlers.NewEvaluateHandler(app)
	unlockHandler := handlers.NewUnlockHandler(app)
	authHandler := handlers.NewAuthHandler(app, cfg.JWTSecret)
	ruleHandler := handlers.NewRuleHandler(app.Rules, app.Profiles)
	profileHandler := handlers.NewProfileHandler(app)
	securityHandler := handlers.NewSecurityHandler(app)
	activityHandler := handlers.NewActivityHandler(app.Activity)
	notificationHandler := handlers.NewNotificationHandler(app.Notifications)

	// Interception data path: the unlock gate is guarded by the password
	// machinery itself, not by a management session.
	api.POST("/evaluate", evaluateHandler.Evaluate)
	api.POST("/unlock", unlockHandler.Unlock)
	api.POST("/lock", unlockHandler.Lock)
	api.POST("/snooze", unlockHandler.Snooze)

	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("/")
	protected.Use(middleware.Auth(cfg.JWTSecret))
	{
		protected.POST("/auth/change-password", authHandler.ChangePassword)

		protected.GET("/rules", ruleHandler.List)
		protected.POST("/rules", ruleHandler.Create)
		protected.PUT("/rules/:id", ruleHandler.Update)
		protected.POST("/rules/:id/toggle", ruleHandler.Toggle)
		protected.DELETE("/rules/:id", ruleHandler.Delete)
		protected.POST("/rules/copy", ruleHandler.Copy)

		protected.GET("/profiles", profileHandler.List)
		protected.POST("/profiles", profileHandler.Create)
		protected.PUT("/profiles/:id", profileHandler.Rename)
		protected.DELETE("/profiles/:id", profileHandler.Delete)
		protected.POST("/profiles/:id/switch", profileHandler.Switch)
		protected.DELETE("/profiles/:id/rules", profileHandler.DeleteRules)

		protected.GET("/security", securityHandler.Get)
		protected.PUT("/security", securityHandler.Update)

		protected.GET("/activity", activityHandler.List)

		protected.GET("/notifications", notificationHandler.List)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllRead)
		protected.DELETE("/notifications/:id", notificationHandler.Delete)
	}

	return app, nil
}
