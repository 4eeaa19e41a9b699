package fanout

import (
	"context"
	"time"

	"techconnect-matcher/internal/models"

	"go.uber.org/zap"
)

const (
	popTimeout   = 5 * time.Second
	eventTimeout = 2 * time.Minute
)

// EventSource is the blocking side of the change queue.
type EventSource interface {
	Next(ctx context.Context, timeout time.Duration) (*models.ChangeEvent, error)
}

// ParsePipeline is the CV side of candidate and analysis events.
type ParsePipeline interface {
	HandleCandidateWritten(ctx context.Context, event *models.ChangeEvent) error
	HandleAnalysisRequested(ctx context.Context, event *models.ChangeEvent) error
}

// Worker drains the change queue and dispatches events to the parse pipeline
// and the fan-out controller. Errors are logged and the event dropped;
// redelivery is the producer's concern, and every handler is idempotent.
type Worker struct {
	queue      EventSource
	controller *Controller
	parser     ParsePipeline
	logger     *zap.Logger
}

func NewWorker(queue EventSource, controller *Controller, parser ParsePipeline, logger *zap.Logger) *Worker {
	return &Worker{
		queue:      queue,
		controller: controller,
		parser:     parser,
		logger:     logger,
	}
}

func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("fanout worker started")

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("fanout worker stopped")
			return
		default:
		}

		event, err := w.queue.Next(ctx, popTimeout)
		if err != nil {
			if ctx.Err() != nil {
				w.logger.Info("fanout worker stopped")
				return
			}
			w.logger.Error("failed to pop event", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		if event == nil {
			continue
		}

		w.handle(ctx, event)
	}
}

func (w *Worker) handle(ctx context.Context, event *models.ChangeEvent) {
	ctx, cancel := context.WithTimeout(ctx, eventTimeout)
	defer cancel()

	start := time.Now()
	var err error

	switch event.Kind {
	case models.EventCandidateWritten:
		// CV parse runs first: it may rewrite the skill set the fan-out
		// pass is about to index.
		if err = w.parser.HandleCandidateWritten(ctx, event); err == nil {
			err = w.controller.HandleCandidateWritten(ctx, event)
		}
	case models.EventJobWritten:
		err = w.controller.HandleJobWritten(ctx, event)
	case models.EventJobDeleted:
		err = w.controller.HandleJobDeleted(ctx, event)
	case models.EventAnalysisRequested:
		err = w.parser.HandleAnalysisRequested(ctx, event)
	default:
		w.logger.Warn("unknown event kind", zap.String("kind", event.Kind))
		return
	}

	if err != nil {
		w.logger.Error("event handling failed",
			zap.String("kind", event.Kind),
			zap.String("candidate_id", event.CandidateID),
			zap.String("job_id", event.JobID),
			zap.Error(err),
		)
		return
	}

	w.logger.Debug("event handled",
		zap.String("kind", event.Kind),
		zap.Duration("elapsed", time.Since(start)),
	)
}
