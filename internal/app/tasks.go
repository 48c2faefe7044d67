package app

import (
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/noah-isme/matita-boutique/internal/config"
)

// NewTaskServer builds the asynq server consuming the sales queue.
func NewTaskServer(cfg *config.Config, opt asynq.RedisConnOpt, logger zerolog.Logger) *asynq.Server {
	return asynq.NewServer(opt, asynq.Config{
		Concurrency: cfg.WorkerConcurrency,
		Queues:      map[string]int{cfg.SalesQueue: 1},
		Logger:      TaskLogger{L: logger.With().Str("component", "asynq").Logger()},
		LogLevel:    asynq.InfoLevel,
	})
}

// TaskLogger adapts zerolog to the asynq logger interface.
type TaskLogger struct {
	L zerolog.Logger
}

func (t TaskLogger) Debug(args ...interface{}) { t.L.Debug().Msg(fmt.Sprint(args...)) }
func (t TaskLogger) Info(args ...interface{})  { t.L.Info().Msg(fmt.Sprint(args...)) }
func (t TaskLogger) Warn(args ...interface{})  { t.L.Warn().Msg(fmt.Sprint(args...)) }
func (t TaskLogger) Error(args ...interface{}) { t.L.Error().Msg(fmt.Sprint(args...)) }
func (t TaskLogger) Fatal(args ...interface{}) { t.L.Fatal().Msg(fmt.Sprint(args...)) }
