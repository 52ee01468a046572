package notification

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	casemodels "docket/internal/cases/models"
	"docket/internal/identity"
	"docket/internal/platform/metrics"
	id "docket/pkg/domain"
	dErrors "docket/pkg/domain-errors"
	"docket/pkg/platform/sentinel"
	"docket/pkg/requestcontext"
)

// Service owns notification fan-out and the read/push state of stored
// notifications.
type Service struct {
	store   Store
	queue   Queue
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithQueue(queue Queue) Option {
	return func(s *Service) { s.queue = queue }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Notify computes the case's participant set, removes duplicates and the
// acting identity, and creates one Notification per remaining participant.
// Creations run as a scatter/gather: each attempt's outcome is captured
// individually and one failure never prevents the others. The returned
// outcomes are also logged here so callers can fire and forget.
func (s *Service) Notify(ctx context.Context, c *casemodels.Case, event Event, excludeActor id.ActorID) []DeliveryOutcome {
	recipients := make([]id.ActorID, 0, len(c.ParticipantIDs()))
	for _, participant := range c.ParticipantIDs() {
		if participant != excludeActor {
			recipients = append(recipients, participant)
		}
	}
	if len(recipients) == 0 {
		return nil
	}

	now := requestcontext.Now(ctx)
	outcomes := make([]DeliveryOutcome, len(recipients))

	g, gctx := errgroup.WithContext(ctx)
	for i, recipient := range recipients {
		g.Go(func() error {
			n := &Notification{
				ID:          id.NotificationID(uuid.New()),
				RecipientID: recipient,
				Type:        event.Type,
				Priority:    event.Priority,
				Title:       event.Title,
				Message:     event.Message,
				CaseID:      event.CaseID,
				EvidenceID:  event.EvidenceID,
				ObjectionID: event.ObjectionID,
				PushState:   PushPending,
				CreatedAt:   now,
			}
			if err := s.store.Create(gctx, n); err != nil {
				outcomes[i] = DeliveryOutcome{RecipientID: recipient, Reason: err.Error()}
				return nil // tolerate: other recipients still get theirs
			}
			outcomes[i] = DeliveryOutcome{RecipientID: recipient, NotificationID: n.ID, Delivered: true}
			s.enqueuePush(gctx, n.ID)
			return nil
		})
	}
	_ = g.Wait() // goroutines never return errors; outcomes carry failures

	for _, outcome := range outcomes {
		if outcome.Delivered {
			if s.metrics != nil {
				s.metrics.NotificationsSent.Inc()
			}
			continue
		}
		if s.metrics != nil {
			s.metrics.NotificationErrors.Inc()
		}
		s.logger.Warn("notification delivery failed",
			"recipient_id", outcome.RecipientID,
			"case_id", event.CaseID,
			"reason", outcome.Reason,
		)
	}
	return outcomes
}

func (s *Service) enqueuePush(ctx context.Context, notifID id.NotificationID) {
	if s.queue == nil {
		return
	}
	if err := s.queue.Enqueue(ctx, notifID); err != nil {
		s.logger.Warn("push enqueue failed, notification stays pending",
			"notification_id", notifID,
			"error", err,
		)
	}
}

// CreateDirect lets an administrative actor address one recipient directly.
func (s *Service) CreateDirect(ctx context.Context, actor identity.Identity, recipient id.ActorID, event Event) (*Notification, error) {
	if !actor.Valid() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing or invalid identity")
	}
	if actor.Role != identity.RoleAdmin {
		return nil, dErrors.New(dErrors.CodeForbidden, "only admins may create notifications directly")
	}
	if recipient.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "recipient is required")
	}
	if event.Title == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "title is required")
	}
	if event.Type == "" {
		event.Type = TypeSystem
	}
	if event.Priority == "" {
		event.Priority = PriorityNormal
	}

	n := &Notification{
		ID:          id.NotificationID(uuid.New()),
		RecipientID: recipient,
		Type:        event.Type,
		Priority:    event.Priority,
		Title:       event.Title,
		Message:     event.Message,
		CaseID:      event.CaseID,
		PushState:   PushPending,
		CreatedAt:   requestcontext.Now(ctx),
	}
	if err := s.store.Create(ctx, n); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create notification")
	}
	s.enqueuePush(ctx, n.ID)
	return n, nil
}

// List returns the actor's own notifications, newest first.
func (s *Service) List(ctx context.Context, actor identity.Identity) ([]*Notification, error) {
	if !actor.Valid() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing or invalid identity")
	}
	list, err := s.store.ListByRecipient(ctx, actor.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list notifications")
	}
	return list, nil
}

// MarkRead flips the read flag. Only the recipient may read their own
// notification.
func (s *Service) MarkRead(ctx context.Context, actor identity.Identity, notifID id.NotificationID) error {
	if !actor.Valid() {
		return dErrors.New(dErrors.CodeUnauthorized, "missing or invalid identity")
	}
	n, err := s.store.FindByID(ctx, notifID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "notification not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load notification")
	}
	if n.RecipientID != actor.ID {
		return dErrors.New(dErrors.CodeForbidden, "not the recipient of this notification")
	}
	if err := s.store.MarkRead(ctx, notifID, requestcontext.Now(ctx)); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark notification read")
	}
	return nil
}
