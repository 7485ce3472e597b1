package main

import (
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/faculty-achievement-api/internal/handler"
	"github.com/noah-isme/faculty-achievement-api/internal/middleware"
	"github.com/noah-isme/faculty-achievement-api/internal/models"
	"github.com/noah-isme/faculty-achievement-api/internal/service"
	"github.com/noah-isme/faculty-achievement-api/pkg/config"
	"github.com/noah-isme/faculty-achievement-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/faculty-achievement-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/faculty-achievement-api/pkg/middleware/requestid"
)

type routerDeps struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *service.MetricsService
	auth    middleware.TokenValidator
	audit   middleware.AuditWriter
	checks  map[string]handler.Pinger

	achievements  *handler.AchievementHandler
	faculty       *handler.FacultyHandler
	notifications *handler.NotificationHandler
	dashboard     *handler.DashboardHandler
	authHandler   *handler.AuthHandler
}

func newRouter(deps routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.logger))
	r.Use(corsmiddleware.New(deps.cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.metrics))

	system := handler.NewMetricsHandler(deps.metrics, deps.checks)
	r.GET("/health", system.Health)
	r.GET("/ready", system.Ready)
	r.GET("/metrics", system.Prometheus)

	if deps.cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	reviewers := middleware.RequireReviewer()
	admins := middleware.RequireRoles(models.RoleAdmin)
	adminOrSelf := middleware.RBAC(string(models.RoleAdmin), string(models.RoleHOD), middleware.RoleSelf)

	api := r.Group(apiPrefix(deps.cfg.APIPrefix), middleware.JWT(deps.auth), middleware.WithResponseMeta())

	api.GET("/auth/me", deps.authHandler.Me)
	api.POST("/auth/tokens", admins, middleware.Audit(deps.audit, deps.logger, models.AuditActionTokenIssue, "token"), deps.authHandler.IssueToken)

	achievements := api.Group("/achievements")
	achievements.POST("", deps.achievements.Submit)
	achievements.GET("", deps.achievements.List)
	achievements.GET("/pending", reviewers, deps.achievements.Pending)
	achievements.GET("/approving", admins, deps.achievements.Stuck)
	achievements.GET("/:id", deps.achievements.Get)
	achievements.GET("/:id/pdf", deps.achievements.Download)
	achievements.POST("/:id/review", reviewers, deps.achievements.Review)
	achievements.POST("/:id/reconcile", admins, deps.achievements.Reconcile)

	faculty := api.Group("/faculty")
	faculty.GET("", reviewers, deps.faculty.List)
	faculty.POST("", admins, deps.faculty.Create)
	faculty.GET("/:id", adminOrSelf, deps.faculty.Get)
	faculty.PATCH("/:id", middleware.RBAC(string(models.RoleAdmin), middleware.RoleSelf), deps.faculty.UpdateProfile)
	faculty.GET("/:id/achievements", adminOrSelf, deps.faculty.Achievements)
	faculty.GET("/:id/notifications", adminOrSelf, deps.notifications.List)
	faculty.POST("/:id/notifications/:notificationId/read", middleware.RBAC(middleware.RoleSelf), deps.notifications.MarkRead)

	api.GET("/dashboard", reviewers, deps.dashboard.Summary)
	reports := api.Group("/reports", reviewers, middleware.Audit(deps.audit, deps.logger, models.AuditActionReportExport, "report"))
	reports.GET("/faculty", deps.dashboard.FacultyReport)
	reports.GET("/submissions", deps.dashboard.SubmissionReport)

	api.GET("/system/metrics", admins, system.Snapshot)

	return r
}

func apiPrefix(prefix string) string {
	prefix = "/" + strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "/" {
		return "/api/v1"
	}
	return prefix
}
