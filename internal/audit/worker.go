package audit

import (
	"context"
	"log/slog"
)

// Sink is an optional secondary destination for audit events (e.g. the Kafka
// publisher). Like the store, sink failures are tolerated.
type Sink interface {
	Publish(ctx context.Context, event Event)
}

// Worker drains the recorder inbox and persists events. Append failures are
// logged and the event is abandoned — the audit trail is best-effort and a
// failed write must never ripple back into the primary operation, which has
// already completed by the time the event reaches the worker.
type Worker struct {
	store  Store
	sink   Sink
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(store Store, inbox <-chan Event, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{store: store, inbox: inbox, logger: logger}
}

// WithSink attaches a secondary destination.
func (w *Worker) WithSink(sink Sink) *Worker {
	w.sink = sink
	return w
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				w.logger.Warn("audit append failed, event dropped",
					"error", err,
					"action", event.Action,
					"target_id", event.TargetID,
				)
			}
			if w.sink != nil {
				w.sink.Publish(ctx, event)
			}
		}
	}
}
