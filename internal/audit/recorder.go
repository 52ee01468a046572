package audit

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"docket/internal/identity"
	"docket/internal/platform/metrics"
	"docket/pkg/requestcontext"
)

// Recorder appends immutable log entries for state-changing actions with
// fire-and-forget semantics: Record never blocks, never fails the caller,
// and never retries. Events are handed to a channel worker; when the inbox
// is full the event is dropped, logged, and counted. Record must only be
// called after the primary mutation has durably succeeded — the trail
// describes facts that already happened.
type Recorder struct {
	inbox   chan Event
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type RecorderOption func(*Recorder)

func WithLogger(logger *slog.Logger) RecorderOption {
	return func(r *Recorder) { r.logger = logger }
}

func WithMetrics(m *metrics.Metrics) RecorderOption {
	return func(r *Recorder) { r.metrics = m }
}

// NewRecorder creates a recorder with a bounded inbox.
func NewRecorder(buffer int, opts ...RecorderOption) *Recorder {
	if buffer <= 0 {
		buffer = 1024
	}
	r := &Recorder{
		inbox:  make(chan Event, buffer),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Inbox exposes the event channel for the worker.
func (r *Recorder) Inbox() <-chan Event { return r.inbox }

// Record enqueues one audit event. Timestamp and request id come from the
// request context so the entry matches the action it describes.
func (r *Recorder) Record(ctx context.Context, actor identity.Identity, action Action, targetType, targetID, description string) {
	event := Event{
		ID:          uuid.New(),
		Timestamp:   requestcontext.Now(ctx),
		ActorID:     actor.ID,
		ActorRole:   actor.Role,
		Action:      action,
		TargetType:  targetType,
		TargetID:    targetID,
		Description: description,
		RequestID:   requestcontext.RequestID(ctx),
	}

	select {
	case r.inbox <- event:
	default:
		r.logger.Warn("audit inbox full, dropping event",
			"action", action,
			"target_type", targetType,
			"target_id", targetID,
		)
		if r.metrics != nil {
			r.metrics.AuditDropped.Inc()
		}
	}
}
