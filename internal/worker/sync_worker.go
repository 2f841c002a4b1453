package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/export"
	applog "fintrack/internal/log"
	"fintrack/internal/sheets"
)

// DefaultStatsInterval is how often Run logs the processed counters.
const DefaultStatsInterval = 5 * time.Minute

// EventSource delivers transaction events to a handler until ctx is done.
type EventSource interface {
	ConsumeTransactionEvents(ctx context.Context, handler amqp.EventHandler) error
}

// SyncWorker mirrors transaction events into a spreadsheet. Events carry the
// full record, so the worker never reads the producer's store.
type SyncWorker struct {
	mirror        sheets.TransactionMirror
	logger        *applog.Logger
	statsInterval time.Duration

	processed atomic.Int64
	failed    atomic.Int64
}

func NewSyncWorker(mirror sheets.TransactionMirror, logger *applog.Logger) *SyncWorker {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &SyncWorker{
		mirror:        mirror,
		logger:        logger.WithComponent(applog.ComponentWorker),
		statsInterval: DefaultStatsInterval,
	}
}

// SetStatsInterval changes how often Run logs counters. Non-positive values
// keep the current interval. Call before Run.
func (w *SyncWorker) SetStatsInterval(d time.Duration) {
	if d > 0 {
		w.statsInterval = d
	}
}

// HandleEvent applies one event to the mirror. Created and updated events
// replace any row already carrying the id, so a redelivered event never
// leaves a duplicate behind. Deleting an absent row is not an error.
func (w *SyncWorker) HandleEvent(ctx context.Context, ev *amqp.TransactionEvent) error {
	if ev == nil {
		return errors.New("nil event")
	}
	id := ev.Transaction.ID

	var err error
	switch ev.Action {
	case amqp.ActionCreated, amqp.ActionUpdated:
		err = w.replace(ctx, ev)
	case amqp.ActionDeleted:
		var n int
		n, err = w.mirror.DeleteRows(ctx, id)
		if err == nil {
			w.logger.InfoContext(ctx, "Transaction removed from sheet",
				applog.FieldTransactionID, id,
				"rows", n)
		}
	default:
		err = fmt.Errorf("unknown event action %q", ev.Action)
	}

	if err != nil {
		w.failed.Add(1)
		w.logger.ErrorContext(ctx, "Failed to mirror transaction event",
			applog.FieldTransactionID, id,
			"action", ev.Action,
			applog.FieldError, err)
		return err
	}
	w.processed.Add(1)
	return nil
}

func (w *SyncWorker) replace(ctx context.Context, ev *amqp.TransactionEvent) error {
	t := ev.Transaction
	stale, err := w.mirror.DeleteRows(ctx, t.ID)
	if err != nil {
		return fmt.Errorf("delete stale rows: %w", err)
	}
	if err := w.mirror.AppendRow(ctx, export.RowOf(t)); err != nil {
		return fmt.Errorf("append row: %w", err)
	}
	w.logger.InfoContext(ctx, "Transaction mirrored to sheet",
		applog.FieldTransactionID, t.ID,
		applog.FieldOwnerID, t.OwnerID,
		"action", ev.Action,
		"replaced_rows", stale)
	return nil
}

// Run consumes events and periodically logs counters until ctx is done.
// A cancelled context is a clean shutdown and returns nil.
func (w *SyncWorker) Run(ctx context.Context, src EventSource) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := src.ConsumeTransactionEvents(ctx, w.HandleEvent)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		ticker := time.NewTicker(w.statsInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				w.logStats(ctx)
			}
		}
	})

	err := g.Wait()
	w.logStats(context.WithoutCancel(ctx))
	return err
}

func (w *SyncWorker) logStats(ctx context.Context) {
	w.logger.InfoContext(ctx, "Sync worker stats",
		"processed", w.processed.Load(),
		"failed", w.failed.Load())
}

// Stats returns the processed and failed event counts.
func (w *SyncWorker) Stats() (processed, failed int64) {
	return w.processed.Load(), w.failed.Load()
}
