package objection

import (
	"context"
	"errors"
	"log/slog"

	"docket/internal/audit"
	casemodels "docket/internal/cases/models"
	"docket/internal/evidence"
	"docket/internal/identity"
	"docket/internal/notification"
	"docket/internal/policy"
	id "docket/pkg/domain"
	dErrors "docket/pkg/domain-errors"
	"docket/pkg/platform/sentinel"
	"docket/pkg/requestcontext"
)

// Store is the persistence surface for objections.
type Store interface {
	Create(ctx context.Context, o *Objection) error
	FindByID(ctx context.Context, objectionID id.ObjectionID) (*Objection, error)
	ListByCase(ctx context.Context, caseID id.CaseID) ([]*Objection, error)
	Update(ctx context.Context, o *Objection) error
	Delete(ctx context.Context, objectionID id.ObjectionID) error
}

// CaseFinder loads the case document the stage gate evaluates against.
type CaseFinder interface {
	FindByID(ctx context.Context, caseID id.CaseID) (*casemodels.Case, error)
}

// EvidenceFinder resolves the evidence an objection targets.
type EvidenceFinder interface {
	FindByID(ctx context.Context, evidenceID id.EvidenceID) (*evidence.Evidence, error)
}

type Notifier interface {
	Notify(ctx context.Context, c *casemodels.Case, event notification.Event, excludeActor id.ActorID) []notification.DeliveryOutcome
}

type Recorder interface {
	Record(ctx context.Context, actor identity.Identity, action audit.Action, targetType, targetID, description string)
}

// Service handles objections against evidence. Who may raise one depends on
// the case type: lawyers on any case, prosecutors only on public prosecution
// cases. Only the case's assigned judge rules.
type Service struct {
	store    Store
	cases    CaseFinder
	evidence EvidenceFinder
	logger   *slog.Logger
	auditor  Recorder
	notifier Notifier
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

func New(store Store, cases CaseFinder, evidenceFinder EvidenceFinder, opts ...Option) *Service {
	s := &Service{store: store, cases: cases, evidence: evidenceFinder, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type CreateRequest struct {
	CaseID     id.CaseID
	EvidenceID id.EvidenceID
	Content    string
}

// Create raises an objection against evidence of the same case, during the
// prosecutorate stage only.
func (s *Service) Create(ctx context.Context, actor identity.Identity, req CreateRequest) (*Objection, error) {
	c, err := s.loadCase(ctx, req.CaseID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(c, actor, policy.EntityObjection, policy.OpMutate); err != nil {
		return nil, err
	}

	target, err := s.evidence.FindByID(ctx, req.EvidenceID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "evidence not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load evidence")
	}
	if target.CaseID != c.ID {
		return nil, dErrors.New(dErrors.CodeBadRequest, "evidence belongs to a different case")
	}

	now := requestcontext.Now(ctx)
	o, err := NewObjection(id.NewObjectionID(), c.ID, target.ID, req.Content, actor.ID, now)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeBadRequest, dErrors.Message(err))
		}
		return nil, err
	}
	if err := s.store.Create(ctx, o); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create objection")
	}

	s.record(ctx, actor, audit.ActionObjectionRaised, o.ID, "objection raised against evidence "+target.ID.String())
	s.notify(ctx, actor, c, notification.Event{
		Type:        notification.TypeJudicialUpdate,
		Priority:    notification.PriorityHigh,
		Title:       "Objection raised on case " + c.Number,
		Message:     o.Content,
		CaseID:      c.ID,
		EvidenceID:  &o.EvidenceID,
		ObjectionID: &o.ID,
	})
	return o, nil
}

// Get returns one objection; participant-gated with no stage restriction.
func (s *Service) Get(ctx context.Context, actor identity.Identity, objectionID id.ObjectionID) (*Objection, error) {
	o, err := s.load(ctx, objectionID)
	if err != nil {
		return nil, err
	}
	c, err := s.loadCase(ctx, o.CaseID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(c, actor, policy.EntityObjection, policy.OpView); err != nil {
		return nil, err
	}
	return o, nil
}

// ListByCase returns the case's objections, oldest first.
func (s *Service) ListByCase(ctx context.Context, actor identity.Identity, caseID id.CaseID) ([]*Objection, error) {
	c, err := s.loadCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(c, actor, policy.EntityObjection, policy.OpView); err != nil {
		return nil, err
	}
	list, err := s.store.ListByCase(ctx, caseID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list objections")
	}
	return list, nil
}

type HandleRequest struct {
	Outcome bool
	Result  string
}

// Handle records the ruling. Only the judge assigned to the objection's case
// may rule, and only once; the handler identity and timestamp are written
// with the outcome.
func (s *Service) Handle(ctx context.Context, actor identity.Identity, objectionID id.ObjectionID, req HandleRequest) (*Objection, error) {
	if !actor.Valid() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing or invalid identity")
	}
	o, err := s.load(ctx, objectionID)
	if err != nil {
		return nil, err
	}
	c, err := s.loadCase(ctx, o.CaseID)
	if err != nil {
		return nil, err
	}
	if !c.IsJudge(actor.ID) {
		return nil, dErrors.New(dErrors.CodeForbidden, "not the judge assigned to this case")
	}
	if o.Handled() {
		return nil, dErrors.New(dErrors.CodeInvalidState, "objection already handled")
	}
	if req.Result == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "ruling result text is required")
	}

	now := requestcontext.Now(ctx)
	o.HandlerID = &actor.ID
	o.HandledAt = &now
	o.Outcome = req.Outcome
	o.Result = req.Result
	if req.Outcome {
		o.Status = StatusAccepted
	} else {
		o.Status = StatusRejected
	}
	o.UpdatedAt = now

	if err := s.store.Update(ctx, o); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "objection not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record ruling")
	}

	s.record(ctx, actor, audit.ActionObjectionHandled, objectionID, "objection ruled "+string(o.Status))
	s.notify(ctx, actor, c, notification.Event{
		Type:        notification.TypeJudicialUpdate,
		Priority:    notification.PriorityHigh,
		Title:       "Objection ruled " + string(o.Status) + " on case " + c.Number,
		Message:     o.Result,
		CaseID:      c.ID,
		ObjectionID: &o.ID,
	})
	return o, nil
}

type UpdateRequest struct {
	Content *string
}

// Update edits the objection text, submitter only, while still pending.
func (s *Service) Update(ctx context.Context, actor identity.Identity, objectionID id.ObjectionID, req UpdateRequest) (*Objection, error) {
	o, err := s.loadForMutation(ctx, actor, objectionID)
	if err != nil {
		return nil, err
	}

	if req.Content != nil {
		if *req.Content == "" {
			return nil, dErrors.New(dErrors.CodeBadRequest, "content cannot be empty")
		}
		o.Content = *req.Content
	}
	o.UpdatedAt = requestcontext.Now(ctx)

	if err := s.store.Update(ctx, o); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "objection not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update objection")
	}
	return o, nil
}

// Delete withdraws a pending objection, submitter only.
func (s *Service) Delete(ctx context.Context, actor identity.Identity, objectionID id.ObjectionID) error {
	o, err := s.loadForMutation(ctx, actor, objectionID)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, o.ID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "objection not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete objection")
	}
	return nil
}

func (s *Service) loadForMutation(ctx context.Context, actor identity.Identity, objectionID id.ObjectionID) (*Objection, error) {
	o, err := s.load(ctx, objectionID)
	if err != nil {
		return nil, err
	}
	c, err := s.loadCase(ctx, o.CaseID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(c, actor, policy.EntityObjection, policy.OpMutate); err != nil {
		return nil, err
	}
	if !o.IsSubmitter(actor.ID) {
		return nil, dErrors.New(dErrors.CodeForbidden, "not the submitter of this objection")
	}
	if o.Handled() {
		return nil, dErrors.New(dErrors.CodeInvalidState, "objection already handled")
	}
	return o, nil
}

func (s *Service) load(ctx context.Context, objectionID id.ObjectionID) (*Objection, error) {
	o, err := s.store.FindByID(ctx, objectionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "objection not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load objection")
	}
	return o, nil
}

func (s *Service) loadCase(ctx context.Context, caseID id.CaseID) (*casemodels.Case, error) {
	c, err := s.cases.FindByID(ctx, caseID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "case not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load case")
	}
	return c, nil
}

func (s *Service) record(ctx context.Context, actor identity.Identity, action audit.Action, objectionID id.ObjectionID, description string) {
	s.logger.InfoContext(ctx, string(action),
		"log_type", "audit",
		"objection_id", objectionID,
		"actor_id", actor.ID,
		"actor_role", actor.Role,
		"request_id", requestcontext.RequestID(ctx),
	)
	if s.auditor != nil {
		s.auditor.Record(ctx, actor, action, "objection", objectionID.String(), description)
	}
}

func (s *Service) notify(ctx context.Context, actor identity.Identity, c *casemodels.Case, event notification.Event) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, c, event, actor.ID)
}
