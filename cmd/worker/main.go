package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/noah-isme/matita-boutique/internal/app"
	"github.com/noah-isme/matita-boutique/internal/config"
	"github.com/noah-isme/matita-boutique/internal/obs"
)

func main() {
	cfg := config.MustLoad()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	deps, err := app.New(startCtx, cfg, "worker")
	cancel()
	if err != nil {
		panic(err)
	}
	logger := deps.Logger.With().Str("component", "worker").Logger()
	defer deps.Close(context.Background())

	svcs, err := deps.Services()
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise services")
	}

	opt, err := app.TaskRedisOpt(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("task queue connection")
	}
	srv := app.NewTaskServer(cfg, opt, logger)
	mux := asynq.NewServeMux()
	svcs.SaleWorker.Register(mux)

	if cfg.Obs.EnablePrometheus {
		metricsSrv := &http.Server{
			Addr:              cfg.HTTPAddr(),
			Handler:           obs.MetricsHandler(deps.MetricsRegistry),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("metrics server")
			}
		}()
		defer func() { _ = metricsSrv.Close() }()
	}

	if err := srv.Start(mux); err != nil {
		logger.Fatal().Err(err).Msg("start task server")
	}
	logger.Info().Str("queue", cfg.SalesQueue).Int("concurrency", cfg.WorkerConcurrency).Msg("worker started")

	<-ctx.Done()
	srv.Shutdown()
	logger.Info().Msg("worker shutdown complete")
}
