package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/study-mission-api/api/swagger"
	"github.com/noah-isme/study-mission-api/internal/handler"
	internalmiddleware "github.com/noah-isme/study-mission-api/internal/middleware"
	"github.com/noah-isme/study-mission-api/internal/repository"
	"github.com/noah-isme/study-mission-api/internal/service"
	"github.com/noah-isme/study-mission-api/pkg/cache"
	"github.com/noah-isme/study-mission-api/pkg/config"
	"github.com/noah-isme/study-mission-api/pkg/database"
	"github.com/noah-isme/study-mission-api/pkg/export"
	"github.com/noah-isme/study-mission-api/pkg/jobs"
	"github.com/noah-isme/study-mission-api/pkg/logger"
	"github.com/noah-isme/study-mission-api/pkg/messaging"
	corsmiddleware "github.com/noah-isme/study-mission-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/study-mission-api/pkg/middleware/requestid"
	"github.com/noah-isme/study-mission-api/pkg/tracing"
)

// @title Study Mission API
// @version 1.0.0
// @description Turns study plans and weekly routines into daily study missions.
// @BasePath /api/v1
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to init tracing", "error", err)
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect database", "error", err)
	}
	defer db.Close() //nolint:errcheck

	var redisClient *redis.Client
	if cfg.Summary.CacheEnabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, summaries will not be cached", zap.Error(err))
			redisClient = nil
		}
	}
	cacheRepo := repository.NewCacheRepository(redisClient, "study-mission", logr)
	defer cacheRepo.Close() //nolint:errcheck

	var events messaging.Channel
	if cfg.Messaging.Enabled {
		conn, err := messaging.Dial(cfg.Messaging)
		if err != nil {
			logr.Warn("amqp unavailable, mission events disabled", zap.Error(err))
		} else {
			defer conn.Close() //nolint:errcheck
			events = conn.Channel()
		}
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(
		cacheRepo,
		metricsSvc,
		cfg.Summary.CacheTTL,
		logr,
		cfg.Summary.CacheEnabled && redisClient != nil,
	)

	plans := repository.NewStudyPlanRepository(db)
	routines := repository.NewRoutineRepository(db)
	missions := repository.NewMissionRepository(db)

	authSvc := service.NewAuthService(logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		Issuer:            cfg.JWT.Issuer,
		Leeway:            30 * time.Second,
	})

	distributionSvc := service.NewMissionDistributionService(service.MissionDistributionServiceParams{
		Plans:     plans,
		Routines:  routines,
		Missions:  missions,
		DB:        db,
		Events:    service.NewMissionEventPublisher(events, cfg.Messaging.Exchange, logr),
		Metrics:   metricsSvc,
		Validator: validate,
		Logger:    logr,
		Config: service.MissionDistributionConfig{
			MaxWindowDays: cfg.Distribution.MaxWindowDays,
			AsyncEnabled:  cfg.Distribution.AsyncEnabled,
		},
	})

	var queue *jobs.Queue
	if cfg.Distribution.AsyncEnabled {
		queue = jobs.NewQueue("mission-distribution", distributionSvc.HandleJob, jobs.QueueConfig{
			Workers:    cfg.Distribution.Workers,
			MaxRetries: cfg.Distribution.Retries,
			RetryDelay: cfg.Distribution.RetryDelay,
			Logger:     logr,
		})
		distributionSvc.AttachQueue(queue)
		queue.Start(ctx)
	}

	exportSvc := service.NewExportService(
		export.NewCSVExporter(cfg.Export.CSVWithBOM),
		export.NewPDFExporter(cfg.Export.PDFFontPath),
		logr,
	)
	missionSvc := service.NewMissionService(missions, exportSvc, cfg.Distribution.MaxWindowDays, validate, logr)
	summarySvc := service.NewStudySummaryService(plans, routines, cacheSvc, cfg.Summary.CacheTTL, validate, logr)

	r := newRouter(cfg, logr, routerDeps{
		auth:         authSvc,
		metrics:      metricsSvc,
		distribution: handler.NewMissionDistributionHandler(distributionSvc),
		missions:     handler.NewMissionHandler(missionSvc),
		summaries:    handler.NewSummaryHandler(summarySvc),
		ops:          handler.NewMetricsHandler(metricsSvc, readinessChecks(db, cacheRepo, redisClient != nil), logr),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
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
		logr.Warn("http shutdown", zap.Error(err))
	}
	if queue != nil {
		queue.Stop()
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logr.Warn("tracing shutdown", zap.Error(err))
	}
}

type routerDeps struct {
	auth         internalmiddleware.TokenValidator
	metrics      *service.MetricsService
	distribution *handler.MissionDistributionHandler
	missions     *handler.MissionHandler
	summaries    *handler.SummaryHandler
	ops          *handler.MetricsHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, deps routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(deps.metrics))

	r.GET("/health", deps.ops.Health)
	r.GET("/ready", deps.ops.Ready)
	r.GET("/metrics", deps.ops.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	limiter := internalmiddleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, logr)

	api := r.Group(cfg.APIPrefix)
	api.Use(internalmiddleware.JWT(deps.auth), internalmiddleware.WithResponseMeta())

	missions := api.Group("/missions")
	missions.GET("", deps.missions.List)
	missions.GET("/export", deps.missions.Export)

	distribution := missions.Group("/distribution")
	distribution.POST("/preview", deps.distribution.Preview)
	distribution.GET("/jobs/:id", deps.distribution.JobStatus)
	distribution.POST("", limiter.Middleware(), deps.distribution.Apply)
	distribution.POST("/async", limiter.Middleware(), deps.distribution.Enqueue)

	summaries := api.Group("/summaries")
	summaries.GET("/weekly", deps.summaries.Weekly)
	summaries.GET("/available-time", deps.summaries.AvailableTime)

	return r
}

func readinessChecks(db *sqlx.DB, cacheRepo *repository.CacheRepository, withRedis bool) map[string]handler.Pinger {
	checks := map[string]handler.Pinger{"database": db}
	if withRedis {
		checks["redis"] = handler.PingerFunc(cacheRepo.Ping)
	}
	return checks
}
