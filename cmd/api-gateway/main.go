package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/campushq/timetable-api/api/swagger"
	"github.com/campushq/timetable-api/internal/ai"
	"github.com/campushq/timetable-api/internal/handler"
	"github.com/campushq/timetable-api/internal/middleware"
	"github.com/campushq/timetable-api/internal/repository"
	"github.com/campushq/timetable-api/internal/scheduler"
	"github.com/campushq/timetable-api/internal/service"
	"github.com/campushq/timetable-api/pkg/cache"
	"github.com/campushq/timetable-api/pkg/config"
	"github.com/campushq/timetable-api/pkg/database"
	"github.com/campushq/timetable-api/pkg/jobs"
	"github.com/campushq/timetable-api/pkg/logger"
	corsmiddleware "github.com/campushq/timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campushq/timetable-api/pkg/middleware/requestid"
)

// @title CampusHQ Timetable API
// @version 1.0.0
// @description Automated academic timetable generation with conflict detection
// @BasePath /api/v1
// @schemes http

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	courseRepo := repository.NewCourseRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	lecturerRepo := repository.NewLecturerRepository(db)
	slotRepo := repository.NewTimeSlotRepository(db)
	entryRepo := repository.NewTimetableEntryRepository(db)
	conflictRepo := repository.NewConflictRepository(db)
	attemptRepo := repository.NewGenerationAttemptRepository(db)

	metricsSvc := service.NewMetricsService(attemptRepo)

	notifier := service.NewNotificationService(nil, jobs.QueueConfig{
		Workers:    cfg.Notify.Workers,
		BufferSize: cfg.Notify.BufferSize,
		MaxRetries: cfg.Notify.MaxRetries,
		RetryDelay: cfg.Notify.RetryDelay,
		Logger:     logr,
	}, logr)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	notifier.Start(rootCtx)
	defer notifier.Stop()

	proposer := ai.NewClient(ai.Config{
		Endpoint: cfg.AI.Endpoint,
		APIKey:   cfg.AI.APIKey,
		Model:    cfg.AI.Model,
		Timeout:  cfg.AI.Timeout,
	}, logr)

	policy := scheduler.Policy{
		MaxCoursesPerDay: cfg.Policy.MaxCoursesPerDay,
		DayStart:         cfg.Policy.DayStart,
		DayEnd:           cfg.Policy.DayEnd,
	}
	engineCfg := scheduler.Config{
		PopulationSize:  cfg.Genetic.PopulationSize,
		MaxGenerations:  cfg.Genetic.MaxGenerations,
		MutationRate:    cfg.Genetic.MutationRate,
		ElitismCount:    cfg.Genetic.ElitismCount,
		TournamentSize:  cfg.Genetic.TournamentSize,
		StagnationLimit: cfg.Genetic.StagnationLimit,
		RetryLimit:      cfg.Genetic.RetryLimit,
		Parallelism:     cfg.Genetic.Parallelism,
	}

	termLock := service.NewTermLock(redisClient, cfg.Generation.LockTTL, logr)

	generationSvc := service.NewGenerationService(
		courseRepo, roomRepo, lecturerRepo, slotRepo,
		entryRepo, conflictRepo, attemptRepo,
		proposer, termLock, db, metricsSvc, notifier,
		nil, logr,
		service.GenerationConfig{
			Engine:         engineCfg,
			Policy:         policy,
			AIEnabled:      cfg.AI.Enabled,
			FailureWindow:  cfg.Generation.FailureWindow,
			MinAIAttempts:  cfg.Generation.MinAIAttempts,
			MinSuccessRate: cfg.Generation.MinSuccessRate,
			Seed:           cfg.Genetic.Seed,
		},
	)
	conflictSvc := service.NewConflictService(entryRepo, conflictRepo, courseRepo, roomRepo, lecturerRepo, slotRepo, db, policy, nil, logr)
	timetableSvc := service.NewTimetableService(entryRepo, logr)

	timetableHandler := handler.NewTimetableHandler(generationSvc, timetableSvc, conflictSvc)
	conflictHandler := handler.NewConflictHandler(conflictSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unavailable"})
			return
		}
		if err := redisClient.Ping(ctx).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "redis unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/timetable/generate", timetableHandler.Generate)
		api.GET("/timetable", timetableHandler.List)
		api.GET("/timetable/:id", timetableHandler.Get)
		api.POST("/timetable/check", timetableHandler.CheckEntry)
		api.POST("/timetable/validate", timetableHandler.Validate)
		api.GET("/conflicts", conflictHandler.List)
		api.PUT("/conflicts/:id/resolve", conflictHandler.Resolve)
		api.GET("/metrics/generation", metricsHandler.Performance)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
