package aggregator

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/vzahanych/weatherpulse/internal/weather"
	"github.com/vzahanych/weatherpulse/pkg/logger"
)

var ErrAlreadyRunning = errors.New("aggregator workers already running")

// Task asks a worker to refresh the cached record for one location.
type Task struct {
	ID        string
	Location  weather.Location
	Context   context.Context
	CreatedAt time.Time
}

type AggregatorWorker struct {
	aggregator *Aggregator
	workerID   int
	logger     *zap.Logger
}

func NewAggregatorWorker(aggregator *Aggregator, workerID int) *AggregatorWorker {
	return &AggregatorWorker{
		aggregator: aggregator,
		workerID:   workerID,
		logger:     aggregator.logger.With(zap.Int("worker_id", workerID)),
	}
}

func (w *AggregatorWorker) Start(ctx context.Context) {
	defer w.aggregator.workerWg.Done()

	w.logger.Info("Worker started")

	for {
		select {
		case task := <-w.aggregator.taskQueue:
			w.logger.Debug("Processing task", zap.String("task_id", task.ID))
			w.processTask(ctx, task)

		case <-w.aggregator.shutdownCh:
			w.logger.Info("Shutdown signal received, worker stopping")
			return
		case <-ctx.Done():
			w.logger.Info("Context cancelled, worker stopping")
			return
		}
	}
}

func (w *AggregatorWorker) processTask(ctx context.Context, task *Task) {
	taskCtx := task.Context
	if taskCtx == nil {
		taskCtx = ctx
	}

	tracer := w.aggregator.tele.GetTracer()
	taskCtx, span := tracer.Start(taskCtx, "aggregator.processTask")
	defer span.End()

	span.SetAttributes(
		attribute.String("task_id", task.ID),
		attribute.String("city", task.Location.City),
		attribute.Int("worker_id", w.workerID),
	)

	taskLogger := logger.ForContext(taskCtx, w.logger)

	if _, err := w.aggregator.refresh(taskCtx, task.Location); err != nil {
		span.SetAttributes(attribute.Bool("success", false))
		taskLogger.Warn("Task failed",
			zap.String("task_id", task.ID),
			zap.String("city", task.Location.City),
			zap.Error(err))
		return
	}

	span.SetAttributes(attribute.Bool("success", true))
	taskLogger.Debug("Task completed",
		zap.String("task_id", task.ID),
		zap.Duration("queued_for", time.Since(task.CreatedAt)))
}

// Start launches the worker pool, queues the configured prefetch locations
// and, when a refresh interval is set, re-queues them on every tick.
func (a *Aggregator) Start(ctx context.Context) error {
	a.lifecycle.Lock()
	defer a.lifecycle.Unlock()

	if a.running {
		return ErrAlreadyRunning
	}

	a.taskQueue = make(chan *Task, a.workers*4+len(a.prefetch))
	a.shutdownCh = make(chan struct{})
	a.running = true

	for i := 0; i < a.workers; i++ {
		a.workerWg.Add(1)
		go NewAggregatorWorker(a, i+1).Start(ctx)
	}

	if a.refreshInterval > 0 && len(a.prefetch) > 0 {
		a.workerWg.Add(1)
		go a.refreshLoop(ctx)
	}

	a.logger.Info("Aggregator workers started",
		zap.Int("workers", a.workers),
		zap.Int("prefetch", len(a.prefetch)),
		zap.Duration("refresh_interval", a.refreshInterval))

	a.enqueue(ctx, a.prefetch)
	return nil
}

// Warm queues locs for background refresh and returns how many were
// accepted. Locations are dropped when the pool is stopped or the queue is
// full.
func (a *Aggregator) Warm(ctx context.Context, locs []weather.Location) int {
	a.lifecycle.Lock()
	defer a.lifecycle.Unlock()

	if !a.running {
		return 0
	}
	return a.enqueue(ctx, locs)
}

func (a *Aggregator) enqueue(ctx context.Context, locs []weather.Location) int {
	queued := 0
	for _, loc := range locs {
		task := &Task{
			ID:        uuid.New().String(),
			Location:  loc,
			Context:   context.WithoutCancel(ctx),
			CreatedAt: time.Now(),
		}

		select {
		case a.taskQueue <- task:
			queued++
		default:
			a.logger.Warn("Task queue full, dropping refresh",
				zap.String("city", loc.City))
		}
	}
	return queued
}

func (a *Aggregator) refreshLoop(ctx context.Context) {
	defer a.workerWg.Done()

	ticker := time.NewTicker(a.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n := a.Warm(ctx, a.prefetch)
			a.logger.Debug("Scheduled refresh", zap.Int("queued", n))
		case <-a.shutdownCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop signals every worker and waits for them until ctx expires.
func (a *Aggregator) Stop(ctx context.Context) error {
	a.lifecycle.Lock()
	if !a.running {
		a.lifecycle.Unlock()
		return nil
	}
	a.running = false
	close(a.shutdownCh)
	a.lifecycle.Unlock()

	done := make(chan struct{})
	go func() {
		a.workerWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		a.logger.Info("Aggregator workers stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
