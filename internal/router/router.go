package router

import (
	"net/http"
	"time"

	"sentra/config"
	"sentra/internal/handler"
	"sentra/internal/middleware"
	"sentra/internal/repository"
	"sentra/internal/service"
	"sentra/internal/ws"
	"sentra/pkg/cloudinary"
	"sentra/pkg/logger"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Setup wires repositories, services and handlers onto a gin engine. It
// returns the live-share manager as well so main can hook the expiry sweep.
func Setup(cfg *config.Config, db *gorm.DB, cloud cloudinary.Client, log *logger.Logger) (*gin.Engine, *service.LiveShareManager) {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	fenceRepo := repository.NewGeofenceRepository(db)
	alertRepo := repository.NewAlertRepository(db)
	shareRepo := repository.NewShareRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	shareHub := ws.NewShareHub()

	// Services
	authSvc := service.NewAuthService(cfg, userRepo, orgRepo)
	fcmSvc := service.NewFCMService(cfg.Firebase.ServiceAccountPath, log)
	if fcmSvc != nil {
		log.Info("push notifications enabled")
	} else {
		log.Info("push notifications disabled: set FIREBASE_SERVICE_ACCOUNT_PATH to enable")
	}
	notifSvc := service.NewNotificationService(notificationRepo, userRepo, fcmSvc, log)
	fenceIndex := service.NewGeofenceIndex(fenceRepo, log)
	alertRouter := service.NewAlertRouter(db, fenceRepo, userRepo, alertRepo, notifSvc, log)
	shareManager := service.NewLiveShareManager(db, shareRepo, cfg.LiveShare, shareHub, log)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc, userRepo, auditRepo)
	alertHandler := handler.NewAlertHandler(alertRouter, alertRepo, auditRepo, cloud)
	fenceHandler := handler.NewGeofenceHandler(fenceIndex, fenceRepo, auditRepo)
	shareHandler := handler.NewShareHandler(shareManager, userRepo)
	notificationHandler := handler.NewNotificationHandler(notificationRepo)

	authMw := middleware.AuthRequired(&cfg.JWT)
	officerMw := middleware.RequireRole("OFFICER", "ADMIN")
	adminMw := middleware.AdminRequired()

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.POST("/provision", authMw, adminMw, authHandler.ProvisionAccount)
			authGroup.PATCH("/fcm-token", authMw, authHandler.UpdateFCMToken)
		}

		alerts := api.Group("/alerts")
		alerts.Use(authMw)
		{
			alerts.POST("", alertHandler.Submit)
			alerts.POST("/:id/photo", alertHandler.UploadPhoto)
			alerts.GET("/assigned", officerMw, alertHandler.Assigned)
			alerts.POST("/:id/complete", officerMw, alertHandler.Complete)
			alerts.GET("/unassigned", adminMw, alertHandler.Unassigned)
			alerts.POST("/:id/reassign", adminMw, alertHandler.Reassign)
		}

		fences := api.Group("/geofences")
		fences.Use(authMw)
		{
			fences.GET("", officerMw, fenceHandler.List)
			fences.POST("", adminMw, fenceHandler.Create)
			fences.DELETE("/:id", adminMw, fenceHandler.Deactivate)
			fences.PUT("/:id/officers", adminMw, fenceHandler.SetOfficers)
		}

		shares := api.Group("/shares")
		shares.Use(authMw)
		{
			shares.POST("", shareHandler.Start)
			shares.POST("/:id/location", shareHandler.PostLocation)
			shares.POST("/:id/stop", shareHandler.Stop)
			shares.DELETE("/:id", shareHandler.Delete)
		}

		// public viewer endpoints, token is the credential
		api.GET("/shared/:token", shareHandler.View)
		api.GET("/ws/shared/:token", ws.UpgradeShareWS(shareManager, shareHub))

		notifications := api.Group("/notifications")
		notifications.Use(authMw)
		{
			notifications.GET("", notificationHandler.List)
			notifications.POST("/:id/read", notificationHandler.MarkRead)
		}
	}

	return r, shareManager
}
