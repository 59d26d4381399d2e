package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/lokeshloki65/college-event/internal/app"
	"github.com/lokeshloki65/college-event/internal/clock"
	"github.com/lokeshloki65/college-event/internal/config"
	"github.com/lokeshloki65/college-event/internal/logger"
	"github.com/lokeshloki65/college-event/internal/notifier"
	"github.com/lokeshloki65/college-event/internal/storage/postgres"
	transporthttp "github.com/lokeshloki65/college-event/internal/transport/http"
	"github.com/lokeshloki65/college-event/migrations"
)

func main() {
	cfg, loc, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zl, err := logger.New(cfg.Environment)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		zl.Fatal("connect to db", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		zl.Fatal("db ping", zap.Error(err))
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		zl.Fatal("apply migrations", zap.Error(err))
	}

	regRepo := postgres.NewRegistrationRepository(pool)
	eventDir := postgres.NewEventDirectory(pool)
	ledger := postgres.NewCapacityLedger(pool)
	allocator := postgres.NewSequenceAllocator(pool)
	hub := notifier.NewHub()

	admissionSvc := app.NewAdmissionService(
		regRepo, eventDir, ledger, allocator, hub, clock.NewSystem(),
		app.WithAdmissionLocation(loc),
		app.WithAdmissionLogger(zl),
	)
	lifecycleSvc := app.NewLifecycleService(
		regRepo, eventDir, ledger, hub, clock.NewSystem(),
		app.WithLifecycleLogger(zl),
	)

	handler := transporthttp.NewRouter(transporthttp.RouterDeps{
		Admission:   admissionSvc,
		Lifecycle:   lifecycleSvc,
		Reviewer:    lifecycleSvc,
		Hub:         hub,
		Logger:      zl,
		CORSOrigins: cfg.CORSOrigins,
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	zl.Info("api listening", zap.String("port", cfg.Port), zap.String("timezone", loc.String()))

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Error("server error", zap.Error(err))
		}
	case <-stopCtx.Done():
		zl.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		zl.Error("server shutdown error", zap.Error(err))
	}
	hub.Close()
	zl.Info("server stopped")
}
