package gate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/muralikrishna-27/aeroface-rec/internal/domain"
	"github.com/muralikrishna-27/aeroface-rec/internal/provider"
)

// Handler receives each stable capture the gate produces. Returning an error
// stops the runner.
type Handler func(ctx context.Context, capture *domain.StableCapture) error

// Runner drives a gate from a frame source: read a frame, detect, observe.
// Detection failures reset the gate instead of stopping the stream, so a
// flaky detector degrades to a longer hold rather than a dead kiosk.
type Runner struct {
	source   provider.FrameSource
	detector provider.Detector
	gate     *Gate
	logger   *slog.Logger
}

func NewRunner(source provider.FrameSource, detector provider.Detector, g *Gate, logger *slog.Logger) *Runner {
	return &Runner{
		source:   source,
		detector: detector,
		gate:     g,
		logger:   logger,
	}
}

// Run consumes frames until the stream closes, the context is cancelled or
// the handler returns an error. A closed stream is a clean stop and returns
// nil.
func (r *Runner) Run(ctx context.Context, handle Handler) error {
	for {
		frame, err := r.source.Next(ctx)
		if err != nil {
			if errors.Is(err, provider.ErrStreamClosed) {
				r.gate.Reset()
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read frame: %w", err)
		}

		det, err := r.detector.Detect(ctx, frame)
		if err != nil {
			r.gate.Reset()
			r.logger.Warn("detection failed, gate reset", slog.String("error", err.Error()))
			continue
		}

		state, capture := r.gate.Observe(frame, det)
		if state != StateReady {
			continue
		}

		if err := handle(ctx, capture); err != nil {
			return fmt.Errorf("handle capture: %w", err)
		}
	}
}
