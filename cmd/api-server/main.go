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
	"go.uber.org/zap"

	"github.com/noah-isme/lms-instructor-api/internal/handler"
	"github.com/noah-isme/lms-instructor-api/internal/repository"
	"github.com/noah-isme/lms-instructor-api/internal/service"
	"github.com/noah-isme/lms-instructor-api/pkg/cache"
	"github.com/noah-isme/lms-instructor-api/pkg/config"
	"github.com/noah-isme/lms-instructor-api/pkg/database"
	"github.com/noah-isme/lms-instructor-api/pkg/jobs"
	"github.com/noah-isme/lms-instructor-api/pkg/logger"
	"github.com/noah-isme/lms-instructor-api/pkg/mail"
)

const shutdownTimeout = 15 * time.Second

// @title LMS Instructor API
// @version 1.0.0
// @description Instructor profiles, class sessions, schedules, student ratings and account flows.
// @BasePath /api/v1
// @schemes http https
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

	if err := run(ctx, cfg, logr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	cacheRepo := repository.NewCacheRepository(redisClient, "lms:", logr)
	defer cacheRepo.Close() //nolint:errcheck

	validate := validator.New()
	metrics := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Analytics.CacheTTL, logr, cfg.Analytics.CacheEnabled)

	accounts := repository.NewAccountRepository(db)
	profiles := repository.NewUserProfileRepository(db)
	authSessions := repository.NewAuthSessionRepository(db)
	instructors := repository.NewInstructorProfileRepository(db)
	assignments := repository.NewClassAssignmentRepository(db)
	sessions := repository.NewClassSessionRepository(db)
	ratings := repository.NewStudentRatingRepository(db)
	schedules := repository.NewInstructorScheduleRepository(db)
	onlineSessions := repository.NewOnlineSessionRepository(db)

	queue := jobs.NewQueue("lms", jobs.QueueConfig{
		Workers:    cfg.Jobs.Workers,
		MaxRetries: cfg.Jobs.MaxRetries,
		RetryDelay: cfg.Jobs.RetryDelay,
		Logger:     logr,
		Observer:   metrics.ObserveJob,
	})
	aggregator := service.NewRatingAggregator(instructors, ratings, queue, logr)
	queue.Register(service.JobRecomputeInstructorRating, aggregator.Handle)

	analyticsSvc := service.NewAnalyticsService(sessions, ratings, cacheSvc, metrics, logr)
	authSvc := service.NewAuthService(accounts, profiles, authSessions, mail.New(cfg.Mail, logr), metrics, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		SessionExpiry:     cfg.JWT.SessionExpiration,
		Issuer:            cfg.JWT.Issuer,
		PasswordResetURL:  cfg.Mail.PasswordResetURL,
		PasswordResetTTL:  cfg.Mail.PasswordResetTTL,
	})
	instructorSvc := service.NewInstructorService(instructors, validate, logr)
	assignmentSvc := service.NewClassAssignmentService(assignments, validate, logr)
	sessionSvc := service.NewClassSessionService(sessions, analyticsSvc, validate, logr)
	ratingSvc := service.NewStudentRatingService(ratings, queue, analyticsSvc, validate, logr)
	scheduleSvc := service.NewInstructorScheduleService(schedules, validate, logr)
	onlineSvc := service.NewOnlineSessionService(onlineSessions, validate, logr)
	calendarSvc := service.NewCalendarService(sessionSvc, scheduleSvc, assignmentSvc, logr)
	exportSvc := service.NewExportService(sessions, ratings, logr)
	userSvc := service.NewUserService(profiles, validate, logr)

	queue.Start(ctx)
	defer queue.Stop()

	scheduler := jobs.NewScheduler(logr)
	if cfg.Jobs.ReconcileCron != "" {
		if err := scheduler.Add(cfg.Jobs.ReconcileCron, "rating-reconcile", aggregator.ReconcileAll); err != nil {
			return err
		}
	}
	scheduler.Start()
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		scheduler.Stop(stopCtx)
	}()

	router := newRouter(cfg, logr, metrics, authSvc, routeHandlers{
		auth:        handler.NewAuthHandler(authSvc),
		instructors: handler.NewInstructorHandler(instructorSvc),
		assignments: handler.NewAssignmentHandler(assignmentSvc),
		sessions:    handler.NewSessionHandler(sessionSvc),
		ratings:     handler.NewRatingHandler(ratingSvc, exportSvc),
		schedules:   handler.NewScheduleHandler(scheduleSvc),
		online:      handler.NewOnlineSessionHandler(onlineSvc),
		analytics:   handler.NewAnalyticsHandler(analyticsSvc, calendarSvc),
		users:       handler.NewUserHandler(userSvc),
		metrics: handler.NewMetricsHandler(metrics, map[string]handler.ReadinessCheck{
			"postgres": db.PingContext,
			"redis":    cacheRepo.Ping,
		}, logr),
		profiles: instructorSvc,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
