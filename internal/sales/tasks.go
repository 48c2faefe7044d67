package sales

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/noah-isme/matita-boutique/internal/obs"
)

// TypeRecordSale is the asynq task type carrying a sale to persist.
const TypeRecordSale = "sales:record"

// RecordPayload is the body of a TypeRecordSale task.
type RecordPayload struct {
	Sale           Sale  `json:"sale"`
	PointsToDeduct int64 `json:"pointsToDeduct"`
}

// NewRecordTask encodes payload as an asynq task. The sale id doubles as the task id so a
// duplicate submit cannot enqueue the same sale twice.
func NewRecordTask(p RecordPayload, queue string) (*asynq.Task, error) {
	if p.Sale.ID == "" {
		return nil, errors.New("sales: sale id is required")
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode sale task: %w", err)
	}
	opts := []asynq.Option{asynq.TaskID(p.Sale.ID), asynq.MaxRetry(10), asynq.Timeout(30 * time.Second)}
	if queue != "" {
		opts = append(opts, asynq.Queue(queue))
	}
	return asynq.NewTask(TypeRecordSale, raw, opts...), nil
}

// TaskClient is the subset of *asynq.Client the enqueuer uses.
type TaskClient interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Enqueuer publishes sale tasks.
type Enqueuer struct {
	Client TaskClient
	Queue  string
}

// Enqueue schedules p for recording. A task that already exists is not an error.
func (e Enqueuer) Enqueue(ctx context.Context, p RecordPayload) error {
	if e.Client == nil {
		return errors.New("sales: task client not configured")
	}
	task, err := NewRecordTask(p, e.Queue)
	if err != nil {
		return err
	}
	if _, err := e.Client.EnqueueContext(ctx, task); err != nil && !errors.Is(err, asynq.ErrTaskIDConflict) {
		return fmt.Errorf("enqueue sale: %w", err)
	}
	return nil
}

// Worker persists sales delivered by the task queue.
type Worker struct {
	Repo   Repository
	Logger zerolog.Logger
}

// Register attaches the worker handlers to mux.
func (w *Worker) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeRecordSale, w.HandleRecord)
}

// HandleRecord stores the sale together with the redeemed points. Store errors are returned
// as is so asynq retries the task; a replay of a committed sale is a no-op.
func (w *Worker) HandleRecord(ctx context.Context, t *asynq.Task) error {
	var p RecordPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		obs.IncSalesRecorded("invalid")
		return fmt.Errorf("decode sale task: %v: %w", err, asynq.SkipRetry)
	}
	log := w.Logger.With().Str("sale_id", p.Sale.ID).Logger()

	res, err := w.Repo.Record(ctx, p.Sale, p.PointsToDeduct)
	if err != nil {
		obs.IncSalesRecorded("error")
		log.Error().Err(err).Int64("points", p.PointsToDeduct).Msg("record sale")
		return fmt.Errorf("record sale: %w", err)
	}
	if !res.Inserted {
		obs.IncSalesRecorded("duplicate")
		log.Info().Msg("sale already recorded")
		return nil
	}
	if res.Deducted {
		log.Info().Int64("points", p.PointsToDeduct).Int64("balance", res.Balance).Msg("points redeemed")
	} else if p.PointsToDeduct > 0 && p.Sale.UserID != "" {
		log.Warn().Int64("points", p.PointsToDeduct).Msg("no loyalty profile to deduct from")
	}
	obs.IncSalesRecorded("recorded")
	log.Info().Str("total", p.Sale.Total.StringFixed(2)).Int("items", p.Sale.ItemsCount).Msg("sale_recorded")
	return nil
}
