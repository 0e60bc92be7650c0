package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nurpe/academy-automation/internal/auth"
	"github.com/nurpe/academy-automation/internal/config"
	"github.com/nurpe/academy-automation/internal/db"
	"github.com/nurpe/academy-automation/internal/excel"
	httphandler "github.com/nurpe/academy-automation/internal/http"
	"github.com/nurpe/academy-automation/internal/http/middleware"
	"github.com/nurpe/academy-automation/internal/logger"
	"github.com/nurpe/academy-automation/internal/metrics"
	"github.com/nurpe/academy-automation/internal/pdf"
	"github.com/nurpe/academy-automation/internal/repository"
	"github.com/nurpe/academy-automation/internal/resilience"
	"github.com/nurpe/academy-automation/internal/service"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment, cfg.LogLevel)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	studentRepo := repository.NewStudentRepository(database)
	clientRepo := repository.NewClientRepository(database)
	staffRepo := repository.NewStaffRepository(database)
	noteRepo := repository.NewHRNoteRepository(database)
	certificateRepo := repository.NewCertificateRepository(database)

	executor := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts:    cfg.Resilience.RetryMaxAttempts,
		RetryInitialBackoff: cfg.Resilience.RetryInitialBackoff,
		RetryMaxBackoff:     cfg.Resilience.RetryMaxBackoff,
		BreakerEnabled:      cfg.Resilience.BreakerEnabled,
		BreakerMinRequests:  cfg.Resilience.BreakerMinRequests,
		BreakerFailureRatio: cfg.Resilience.BreakerFailureRatio,
		BreakerOpenTimeout:  cfg.Resilience.BreakerOpenTimeout,
	}, log)
	producer := service.NewGuardedProducer(pdf.NewGenerator(cfg.Graduation.AcademyName), executor)

	graduationService := service.NewGraduationService(studentRepo, producer, cfg.Graduation, log)
	billingService, err := service.NewBillingService(clientRepo, cfg.Billing, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init billing service")
	}
	noteService := service.NewHRNoteService(staffRepo, noteRepo, cfg.HRNotes, log)
	certificateService := service.NewCertificateService(studentRepo, certificateRepo, producer, excel.NewGenerator(), cfg.Graduation, log)

	taskMetrics := metrics.NewTaskMetrics()
	taskRunner := service.NewTaskRunner(graduationService, noteService, taskMetrics, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var scheduler *service.Scheduler
	if cfg.Scheduler.Enabled {
		scheduler = service.NewScheduler(taskRunner, cfg.Scheduler.Interval, log)
		if err := scheduler.Start(ctx, cfg.Scheduler.RunOnStart); err != nil {
			log.Fatal().Err(err).Msg("failed to start scheduler")
		}
	}

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(billingService, noteService, certificateService, taskRunner, log)
	router := httphandler.NewRouter(handler, middleware.Auth(tokenParser), httphandler.RouterConfig{
		Environment: cfg.Environment,
		CORSOrigins: cfg.HTTP.CORSOrigins,
		Metrics:     taskMetrics.Handler(),
	}, log)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("starting academy automation service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err, ok := <-serverErr:
		if ok {
			log.Error().Err(err).Msg("server stopped")
			exitCode = 1
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	if scheduler != nil {
		if err := scheduler.Stop(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("scheduler did not stop in time")
		}
	}
	if sqlDB, err := database.DB(); err == nil {
		_ = sqlDB.Close()
	}

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
