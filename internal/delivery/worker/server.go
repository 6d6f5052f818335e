// Package worker runs the check-in lifecycle loop as a background delivery.
package worker

import (
	"context"
	"log/slog"

	"checkin/internal/delivery"
	"checkin/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

type lifecycleWorker struct {
	logger    *slog.Logger
	checkInUC usecase.CheckInUsecase
	cancel    context.CancelFunc
	done      chan struct{}
}

// WorkerParams holds dependencies for the lifecycle worker
type WorkerParams struct {
	fx.In

	Lc        fx.Lifecycle
	Logger    *slog.Logger
	CheckInUC usecase.CheckInUsecase
}

// NewWorker creates the background delivery that restores persisted check-in
// state and then drives the lifecycle from location updates and clock ticks.
func NewWorker(params WorkerParams) (delivery.Delivery, error) {
	worker := &lifecycleWorker{
		logger:    params.Logger,
		checkInUC: params.CheckInUC,
		done:      make(chan struct{}),
	}

	params.Lc.Append(fx.Hook{
		OnStop: worker.stop,
	})

	return worker, nil
}

// Serve restores state and blocks in the lifecycle loop until stopped.
func (w *lifecycleWorker) Serve(ctx context.Context) error {
	ctx, w.cancel = context.WithCancel(ctx)
	defer close(w.done)

	if err := w.checkInUC.Restore(ctx); err != nil {
		return errors.Wrap(err, "failed to restore check-in state")
	}

	w.logger.Info("Starting check-in lifecycle worker")

	return errors.WithStack(w.checkInUC.Run(ctx))
}

// stop cancels the lifecycle loop and waits for it to drain.
func (w *lifecycleWorker) stop(ctx context.Context) error {
	w.logger.Info("Shutting down check-in lifecycle worker")

	if w.cancel != nil {
		w.cancel()
		select {
		case <-w.done:
		case <-ctx.Done():
			return errors.WithStack(ctx.Err())
		}
	}

	return nil
}
