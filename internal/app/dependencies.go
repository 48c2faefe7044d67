// Package app assembles the infrastructure and services shared by the API and the worker.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/matita-boutique/internal/config"
	"github.com/noah-isme/matita-boutique/internal/db"
	"github.com/noah-isme/matita-boutique/internal/obs"
)

// Dependencies enumerates the infrastructure shared across modules.
type Dependencies struct {
	Config          *config.Config
	Logger          zerolog.Logger
	DB              *pgxpool.Pool
	Redis           *redis.Client
	TaskClient      *asynq.Client
	MetricsRegistry *prometheus.Registry

	closers []func(context.Context) error
}

// New connects Postgres, Redis and the task queue and configures logging, metrics and
// tracing for component ("api" or "worker").
func New(ctx context.Context, cfg *config.Config, component string) (*Dependencies, error) {
	service := "matita-" + component
	d := &Dependencies{
		Config: cfg,
		Logger: obs.NewLogger(service, cfg.Obs.LogFormat, cfg.Obs.LogLevel).With().Str("env", cfg.AppEnv).Logger(),
	}

	shutdown, err := obs.InitTracer(ctx, obs.TracingConfig{
		Enabled:       cfg.Obs.EnableTracing,
		ServiceName:   service,
		Endpoint:      cfg.Obs.OTLPEndpoint,
		SamplingRatio: cfg.Obs.SamplingRatio,
		Environment:   cfg.AppEnv,
	})
	if err != nil {
		d.Logger.Error().Err(err).Msg("initialise tracing")
	} else {
		d.closers = append(d.closers, shutdown)
	}

	d.MetricsRegistry = obs.NewRegistry()
	obs.MustRegisterDomainMetrics(cfg.Obs.MetricsNamespace, d.MetricsRegistry)

	if d.DB, err = db.Connect(ctx, cfg.DatabaseURL, service); err != nil {
		d.Close(ctx)
		return nil, err
	}
	d.closers = append(d.closers, func(context.Context) error { d.DB.Close(); return nil })

	if d.Redis, err = NewRedis(ctx, cfg.RedisURL, cfg.Obs.EnablePrometheus); err != nil {
		d.Close(ctx)
		return nil, err
	}
	d.closers = append(d.closers, func(context.Context) error { return d.Redis.Close() })

	opt, err := TaskRedisOpt(cfg)
	if err != nil {
		d.Close(ctx)
		return nil, err
	}
	d.TaskClient = asynq.NewClient(opt)
	d.closers = append(d.closers, func(context.Context) error { return d.TaskClient.Close() })

	return d, nil
}

// Close releases resources in reverse order of acquisition.
func (d *Dependencies) Close(ctx context.Context) {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](ctx); err != nil {
			d.Logger.Error().Err(err).Msg("close dependency")
		}
	}
	d.closers = nil
}

// NewRedis opens an instrumented Redis client and verifies connectivity.
func NewRedis(ctx context.Context, url string, metrics bool) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	var instrumentErr error
	if err := redisotel.InstrumentTracing(client); err != nil {
		instrumentErr = fmt.Errorf("instrument redis tracing: %w", err)
	}
	if metrics {
		if err := redisotel.InstrumentMetrics(client); err != nil {
			instrumentErr = errors.Join(instrumentErr, fmt.Errorf("instrument redis metrics: %w", err))
		}
	}
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Join(fmt.Errorf("ping redis: %w", err), instrumentErr)
	}
	if instrumentErr != nil {
		zerolog.Ctx(ctx).Warn().Err(instrumentErr).Msg("redis instrumentation")
	}
	return client, nil
}

// TaskRedisOpt derives the asynq connection from REDIS_URL.
func TaskRedisOpt(cfg *config.Config) (asynq.RedisConnOpt, error) {
	opt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse task queue redis url: %w", err)
	}
	return opt, nil
}
