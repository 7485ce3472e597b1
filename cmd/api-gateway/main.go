package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/faculty-achievement-api/api/swagger"
	"github.com/noah-isme/faculty-achievement-api/internal/handler"
	"github.com/noah-isme/faculty-achievement-api/internal/models"
	"github.com/noah-isme/faculty-achievement-api/internal/repository"
	"github.com/noah-isme/faculty-achievement-api/internal/service"
	"github.com/noah-isme/faculty-achievement-api/pkg/cache"
	"github.com/noah-isme/faculty-achievement-api/pkg/config"
	"github.com/noah-isme/faculty-achievement-api/pkg/database"
	"github.com/noah-isme/faculty-achievement-api/pkg/jobs"
	"github.com/noah-isme/faculty-achievement-api/pkg/logger"
	"github.com/noah-isme/faculty-achievement-api/pkg/mailer"
	"github.com/noah-isme/faculty-achievement-api/pkg/storage"
)

// @title Faculty Achievement API
// @version 1.0.0
// @description Submission and review workflow for faculty achievement counters.
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if err := models.ValidateCounterRegistry(); err != nil {
		logr.Fatal("counter registry does not match faculty schema", zap.Error(err))
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	redisClient := connectRedis(ctx, cfg.Redis, logr)
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
	}

	app, err := buildApp(ctx, cfg, db, redisClient, logr)
	if err != nil {
		logr.Fatal("failed to wire application", zap.Error(err))
	}
	defer app.shutdown()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           app.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

type application struct {
	router   *gin.Engine
	shutdown func()
}

func connectRedis(ctx context.Context, cfg config.RedisConfig, logr *zap.Logger) *redis.Client {
	if !cfg.Enabled {
		return nil
	}
	client, err := cache.NewRedis(ctx, cfg)
	if err != nil {
		logr.Warn("redis unavailable, dashboard cache disabled", zap.Error(err))
		return nil
	}
	return client
}

func buildApp(ctx context.Context, cfg *config.Config, db *sqlx.DB, redisClient *redis.Client, logr *zap.Logger) (*application, error) {
	validate := validator.New()
	metrics := service.NewMetricsService()

	submissionRepo := repository.NewSubmissionRepository(db)
	facultyRepo := repository.NewFacultyRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// A nil *redis.Client must not be boxed into the UniversalClient parameter.
	var cacheRepo *repository.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	} else {
		cacheRepo = repository.NewCacheRepository(nil, logr)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr, redisClient != nil)

	files, err := storage.NewLocalStorage(cfg.Achievements.StorageDir)
	if err != nil {
		return nil, fmt.Errorf("init achievement storage: %w", err)
	}
	blobs := storage.NewBlobStore(files, cfg.Achievements.PublicPrefix)
	signer := storage.NewSignedURLSigner(cfg.Achievements.SignedURLSecret, cfg.Achievements.SignedURLTTL)

	authSvc := service.NewAuthService(validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})

	notificationSvc := service.NewNotificationService(notificationRepo, facultyRepo, logr)
	notificationSvc.UseMetrics(metrics)
	var queue *jobs.Queue
	if cfg.SMTP.Enabled() {
		smtp, err := mailer.New(cfg.SMTP)
		if err != nil {
			return nil, fmt.Errorf("init mailer: %w", err)
		}
		queue = jobs.NewQueue("notifications", notificationSvc.HandleEmailJob, jobs.QueueConfig{
			Workers:    cfg.Notifications.Workers,
			MaxRetries: cfg.Notifications.MaxRetries,
			RetryDelay: cfg.Notifications.RetryDelay,
			OnGiveUp:   notificationSvc.HandleGiveUp,
			Logger:     logr,
		})
		queue.Start(ctx)
		notificationSvc.UseMailer(smtp, queue)
	} else {
		logr.Info("smtp not configured, review e-mails disabled")
	}

	dashboardSvc := service.NewDashboardService(submissionRepo, cacheSvc, logr, service.DashboardServiceConfig{CacheTTL: cfg.Dashboard.CacheTTL})
	exportSvc := service.NewExportService(facultyRepo, submissionRepo, logr, nil, nil)
	facultySvc := service.NewFacultyService(facultyRepo, auditRepo, validate, logr)
	achievementSvc := service.NewAchievementService(
		submissionRepo,
		facultyRepo,
		blobs,
		auditRepo,
		validate,
		logr,
		service.AchievementServiceConfig{
			MaxFileSize:    cfg.Achievements.MaxFileSizeBytes,
			APIPrefix:      cfg.APIPrefix,
			ReconcileGrace: cfg.Achievements.ReconcileGrace,
		},
		service.WithDownloadSigner(signer),
		service.WithReviewNotifier(notificationSvc),
		service.WithSummaryInvalidator(dashboardSvc),
		service.WithReviewObserver(metrics),
	)

	router := newRouter(routerDeps{
		cfg:      cfg,
		logger:   logr,
		metrics:  metrics,
		auth:     authSvc,
		audit:    auditRepo,
		checks: map[string]handler.Pinger{
			"postgres": handler.PingFunc(db.PingContext),
			"redis":    cacheRepo,
		},
		achievements:  handler.NewAchievementHandler(achievementSvc),
		faculty:       handler.NewFacultyHandler(facultySvc, achievementSvc),
		notifications: handler.NewNotificationHandler(notificationSvc),
		dashboard:     handler.NewDashboardHandler(dashboardSvc, exportSvc),
		authHandler:   handler.NewAuthHandler(authSvc),
	})

	return &application{
		router: router,
		shutdown: func() {
			if queue != nil {
				queue.Stop()
			}
		},
	}, nil
}
