package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"docket/internal/audit"
	"docket/internal/cases/models"
	"docket/internal/identity"
	"docket/internal/notification"
	"docket/internal/platform/metrics"
	"docket/internal/policy"
	id "docket/pkg/domain"
	dErrors "docket/pkg/domain-errors"
	"docket/pkg/platform/sentinel"
	"docket/pkg/requestcontext"
)

// Store is the persistence surface the workflow engine needs. The case
// document is the unit of consistency: ApplyTransition must perform the
// stage compare-and-swap and the timeline append atomically.
type Store interface {
	Create(ctx context.Context, c *models.Case, initial models.TimelineEntry) error
	FindByID(ctx context.Context, caseID id.CaseID) (*models.Case, error)
	Update(ctx context.Context, c *models.Case) error
	Delete(ctx context.Context, caseID id.CaseID) error
	ApplyTransition(ctx context.Context, caseID id.CaseID, from, to models.Stage, entry models.TimelineEntry) (*models.Case, error)
	Timeline(ctx context.Context, caseID id.CaseID) ([]models.TimelineEntry, error)
}

// Notifier fans a case event out to the participant set. Best-effort; the
// engine never inspects the outcomes.
type Notifier interface {
	Notify(ctx context.Context, c *models.Case, event notification.Event, excludeActor id.ActorID) []notification.DeliveryOutcome
}

// Recorder appends audit entries. Fire-and-forget by contract.
type Recorder interface {
	Record(ctx context.Context, actor identity.Identity, action audit.Action, targetType, targetID, description string)
}

// Service owns the case state machine: creation, stage transitions, timeline
// reads, and generic updates. All stage-transition authorization flows
// through the transition table in the models package.
type Service struct {
	store    Store
	logger   *slog.Logger
	auditor  Recorder
	notifier Notifier
	metrics  *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithRecorder(auditor Recorder) Option {
	return func(s *Service) { s.auditor = auditor }
}

func WithNotifier(notifier Notifier) Option {
	return func(s *Service) { s.notifier = notifier }
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

// CreateCaseRequest carries the participant assignments for a new case. The
// owning police identity is the acting identity, never a payload field.
type CreateCaseRequest struct {
	Number             string
	Title              string
	Type               models.CaseType
	ProsecutorIDs      []id.ActorID
	PlaintiffLawyerIDs []id.ActorID
	DefendantLawyerIDs []id.ActorID
	JudgeID            *id.ActorID
}

// CreateCase opens a case in the INVESTIGATION stage. Only police actors may
// open cases; the initial timeline entry is written atomically with the case.
func (s *Service) CreateCase(ctx context.Context, actor identity.Identity, req CreateCaseRequest) (*models.Case, error) {
	if !actor.Valid() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing or invalid identity")
	}
	if actor.Role != identity.RolePolice {
		return nil, dErrors.New(dErrors.CodeForbidden, "only police officers may open cases")
	}

	now := requestcontext.Now(ctx)
	c, err := models.NewCase(id.NewCaseID(), req.Number, req.Title, req.Type, actor.ID,
		req.ProsecutorIDs, req.PlaintiffLawyerIDs, req.DefendantLawyerIDs, req.JudgeID, now)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeBadRequest, dErrors.Message(err))
		}
		return nil, err
	}

	initial := models.NewTimelineEntry(c.ID, models.StageInvestigation, actor, "case opened", now)
	if err := s.store.Create(ctx, c, initial); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "case number already in use")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create case")
	}

	s.record(ctx, actor, audit.ActionCaseCreated, c.ID, "case "+c.Number+" opened")
	s.notify(ctx, actor, c, notification.Event{
		Type:     notification.TypeCaseUpdate,
		Priority: notification.PriorityNormal,
		Title:    "Case " + c.Number + " opened",
		CaseID:   c.ID,
	})
	if s.metrics != nil {
		s.metrics.CasesCreated.Inc()
	}
	return c, nil
}

// AdvanceCase applies one stage transition per the workflow table:
//
//	INVESTIGATION + POLICE     -> PROSECUTORATE
//	PROSECUTORATE + PROSECUTOR -> COURT_TRIAL
//	COURT_TRIAL   + JUDGE      -> CLOSED
//
// The stage change and its timeline entry are applied atomically; concurrent
// requests on the same case serialize at the store and the loser receives
// Conflict.
func (s *Service) AdvanceCase(ctx context.Context, actor identity.Identity, caseID id.CaseID, target models.Stage, comment string) (*models.Case, error) {
	if !actor.Valid() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing or invalid identity")
	}

	c, err := s.load(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if !policy.IsParticipant(c, actor) {
		return nil, dErrors.New(dErrors.CodeForbidden, "not a participant of this case")
	}
	if c.Stage.Terminal() {
		return nil, dErrors.New(dErrors.CodeInvalidState, "case is closed")
	}
	if target == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "target stage is required")
	}
	if !target.Valid() {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "unknown stage %q", target)
	}
	if !models.CanTransition(c.Stage, actor.Role, target) {
		if s.metrics != nil {
			s.metrics.TransitionDenied.Inc()
		}
		return nil, dErrors.Newf(dErrors.CodeBadRequest,
			"transition from %s to %s is not permitted for role %s", c.Stage, target, actor.Role)
	}

	entry := models.NewTimelineEntry(caseID, target, actor, comment, requestcontext.Now(ctx))
	updated, err := s.store.ApplyTransition(ctx, caseID, c.Stage, target, entry)
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "case not found")
		case errors.Is(err, sentinel.ErrConflict):
			return nil, dErrors.New(dErrors.CodeConflict, "case stage changed concurrently, retry with current stage")
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to apply stage transition")
		}
	}

	s.record(ctx, actor, audit.ActionCaseAdvanced, caseID, fmt.Sprintf("stage %s -> %s", c.Stage, target))
	s.notify(ctx, actor, updated, notification.Event{
		Type:     notification.TypeJudicialUpdate,
		Priority: notification.PriorityHigh,
		Title:    fmt.Sprintf("Case %s advanced to %s", updated.Number, target),
		Message:  comment,
		CaseID:   caseID,
	})
	if s.metrics != nil {
		s.metrics.StageTransitions.WithLabelValues(string(target)).Inc()
	}
	return updated, nil
}

// GetCase returns the case document to any of its participants.
func (s *Service) GetCase(ctx context.Context, actor identity.Identity, caseID id.CaseID) (*models.Case, error) {
	if !actor.Valid() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing or invalid identity")
	}
	c, err := s.load(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if !policy.IsParticipant(c, actor) {
		return nil, dErrors.New(dErrors.CodeForbidden, "not a participant of this case")
	}
	return c, nil
}

// GetTimeline returns the append-only stage history, participants only.
func (s *Service) GetTimeline(ctx context.Context, actor identity.Identity, caseID id.CaseID) ([]models.TimelineEntry, error) {
	if _, err := s.GetCase(ctx, actor, caseID); err != nil {
		return nil, err
	}
	entries, err := s.store.Timeline(ctx, caseID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load timeline")
	}
	return entries, nil
}

// UpdateCaseRequest carries the generic mutable fields. Number, type, and
// stage are never updated through this path.
type UpdateCaseRequest struct {
	Title   *string
	JudgeID *id.ActorID
}

// UpdateCase applies generic field updates. Lawyers are participants but may
// not edit the case document itself; that is reserved for the owning police
// officer, assigned prosecutors, and the judge.
func (s *Service) UpdateCase(ctx context.Context, actor identity.Identity, caseID id.CaseID, req UpdateCaseRequest) (*models.Case, error) {
	if !actor.Valid() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing or invalid identity")
	}
	c, err := s.load(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if !policy.IsParticipant(c, actor) {
		return nil, dErrors.New(dErrors.CodeForbidden, "not a participant of this case")
	}
	if actor.Role == identity.RoleLawyer {
		return nil, dErrors.New(dErrors.CodeForbidden, "wrong role: lawyers may not edit the case document")
	}
	if c.Stage.Terminal() {
		return nil, dErrors.New(dErrors.CodeForbidden, "case is closed")
	}

	if req.Title != nil {
		if *req.Title == "" {
			return nil, dErrors.New(dErrors.CodeBadRequest, "title cannot be empty")
		}
		c.Title = *req.Title
	}
	if req.JudgeID != nil {
		c.JudgeID = req.JudgeID
	}
	c.UpdatedAt = requestcontext.Now(ctx)

	if err := s.store.Update(ctx, c); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "case not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update case")
	}

	s.record(ctx, actor, audit.ActionCaseUpdated, caseID, "case fields updated")
	return c, nil
}

// DeleteCase removes a case. Restricted to the owning police officer and the
// assigned judge; cascading cleanup of dependent records is out of scope.
func (s *Service) DeleteCase(ctx context.Context, actor identity.Identity, caseID id.CaseID) error {
	if !actor.Valid() {
		return dErrors.New(dErrors.CodeUnauthorized, "missing or invalid identity")
	}
	c, err := s.load(ctx, caseID)
	if err != nil {
		return err
	}
	if !c.IsOwner(actor.ID) && !c.IsJudge(actor.ID) {
		return dErrors.New(dErrors.CodeForbidden, "only the owning police officer or the assigned judge may delete a case")
	}

	if err := s.store.Delete(ctx, caseID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "case not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete case")
	}

	s.record(ctx, actor, audit.ActionCaseDeleted, caseID, "case "+c.Number+" deleted")
	s.notify(ctx, actor, c, notification.Event{
		Type:     notification.TypeCaseUpdate,
		Priority: notification.PriorityHigh,
		Title:    "Case " + c.Number + " deleted",
		CaseID:   caseID,
	})
	return nil
}

func (s *Service) load(ctx context.Context, caseID id.CaseID) (*models.Case, error) {
	c, err := s.store.FindByID(ctx, caseID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "case not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load case")
	}
	return c, nil
}

// record emits one audit entry; side effects run only after the primary
// mutation has durably succeeded.
func (s *Service) record(ctx context.Context, actor identity.Identity, action audit.Action, caseID id.CaseID, description string) {
	s.logger.InfoContext(ctx, string(action),
		"log_type", "audit",
		"case_id", caseID,
		"actor_id", actor.ID,
		"actor_role", actor.Role,
		"request_id", requestcontext.RequestID(ctx),
	)
	if s.auditor != nil {
		s.auditor.Record(ctx, actor, action, "case", caseID.String(), description)
	}
}

func (s *Service) notify(ctx context.Context, actor identity.Identity, c *models.Case, event notification.Event) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, c, event, actor.ID)
}
