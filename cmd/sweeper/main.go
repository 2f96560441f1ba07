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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/lock-sweeper/config"
	cronjob "github.com/GoSim-25-26J-441/lock-sweeper/internal/editlock/cron"
	sweephttp "github.com/GoSim-25-26J-441/lock-sweeper/internal/editlock/http"
	"github.com/GoSim-25-26J-441/lock-sweeper/internal/editlock/repository"
	"github.com/GoSim-25-26J-441/lock-sweeper/internal/editlock/service"
	"github.com/GoSim-25-26J-441/lock-sweeper/internal/firebase"
)

const serviceName = "lock-sweeper"

func main() {
	command := "sweep"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := service.NewZapLogger(cfg.App.Environment, cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case "sweep":
		err = runOnce(ctx, cfg, logger, cfg.Sweep.DryRun)
	case "check":
		err = runOnce(ctx, cfg, logger, true)
	case "schedule":
		err = runScheduled(ctx, cfg, logger)
	default:
		err = fmt.Errorf("unknown command: %s (usage: sweeper [sweep|check|schedule])", command)
	}

	if err != nil {
		logger.Error("sweeper exited with error", zap.Error(err))
		_ = logger.Sync()
		stop()
		os.Exit(1)
	}
}

// app holds the wired dependencies shared by every command
type app struct {
	sweeper  *service.Sweeper
	reports  *repository.ReportRepository
	registry *prometheus.Registry
	closers  []func() error
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
}

func wire(ctx context.Context, cfg *config.Config, logger *zap.Logger, dryRun bool) (*app, error) {
	a := &app{registry: prometheus.NewRegistry()}
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	client, err := firebase.NewFirestore(ctx, &cfg.Firebase)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, client.Close)

	store := repository.NewFirestoreStore(client, repository.FirestoreOptions{
		GroupsCollection:      cfg.Sweep.GroupsCollection,
		WhiteboardsCollection: cfg.Sweep.WhiteboardsCollection,
		LockField:             cfg.Sweep.LockField,
		PageSize:              cfg.Sweep.PageSize,
	})

	opts := service.Options{
		DryRun:          dryRun,
		MalformedPolicy: cfg.Sweep.MalformedPolicy,
		DeleteRPS:       cfg.Sweep.DeleteRPS,
		DeleteBurst:     cfg.Sweep.DeleteBurst,
		Logger:          logger,
		Metrics:         service.NewMetrics(a.registry),
	}

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		a.closers = append(a.closers, rdb.Close)
		a.reports = repository.NewReportRepository(rdb, cfg.Redis.HistoryTTL)
		opts.Reports = a.reports
	}

	a.sweeper = service.NewSweeper(store, opts)
	return a, nil
}

func runOnce(ctx context.Context, cfg *config.Config, logger *zap.Logger, dryRun bool) error {
	a, err := wire(ctx, cfg, logger, dryRun)
	if err != nil {
		return err
	}
	defer a.Close()

	_, err = a.sweeper.Run(ctx)
	return err
}

func runScheduled(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	a, err := wire(ctx, cfg, logger, cfg.Sweep.DryRun)
	if err != nil {
		return err
	}
	defer a.Close()

	scheduler := cronjob.NewScheduler(a.sweeper, cfg.Sweep.Schedule, logger)
	if err := scheduler.Start(ctx); err != nil {
		return err
	}
	defer scheduler.Stop()

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	deps := sweephttp.RouterDeps{
		ServiceName: serviceName,
		Version:     cfg.App.Version,
		Sweeping:    a.sweeper.Running,
		Trigger:     a.sweeper,
		Gatherer:    a.registry,
		Logger:      logger,
	}
	if a.reports != nil {
		deps.Health = a.reports
		deps.Reports = a.reports
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           sweephttp.BuildRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
