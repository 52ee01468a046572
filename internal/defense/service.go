package defense

import (
	"context"
	"errors"
	"log/slog"

	"docket/internal/audit"
	casemodels "docket/internal/cases/models"
	"docket/internal/identity"
	"docket/internal/ledger"
	"docket/internal/notification"
	"docket/internal/platform/metrics"
	"docket/internal/policy"
	id "docket/pkg/domain"
	dErrors "docket/pkg/domain-errors"
	"docket/pkg/platform/sentinel"
	"docket/pkg/requestcontext"
)

// Store is the persistence surface for defense materials.
type Store interface {
	Create(ctx context.Context, m *Material) error
	FindByID(ctx context.Context, materialID id.DefenseMaterialID) (*Material, error)
	ListByCase(ctx context.Context, caseID id.CaseID) ([]*Material, error)
	Update(ctx context.Context, m *Material) error
	Delete(ctx context.Context, materialID id.DefenseMaterialID) error
}

// CaseFinder loads the case document the stage gate evaluates against.
type CaseFinder interface {
	FindByID(ctx context.Context, caseID id.CaseID) (*casemodels.Case, error)
}

type Notifier interface {
	Notify(ctx context.Context, c *casemodels.Case, event notification.Event, excludeActor id.ActorID) []notification.DeliveryOutcome
}

type Recorder interface {
	Record(ctx context.Context, actor identity.Identity, action audit.Action, targetType, targetID, description string)
}

// Service gates defense material operations. Lawyers author materials during
// trial; each record is anchored to the ledger before it is persisted.
type Service struct {
	store    Store
	cases    CaseFinder
	anchors  ledger.Client
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

func New(store Store, cases CaseFinder, anchors ledger.Client, opts ...Option) *Service {
	s := &Service{store: store, cases: cases, anchors: anchors, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type CreateRequest struct {
	CaseID      id.CaseID
	Title       string
	Description string
	Fingerprint string
	FileName    string
	FileType    string
	FileSize    int64
}

// Create submits one defense material. The ledger anchor is obtained first;
// an anchoring failure aborts the creation so no record exists unanchored.
func (s *Service) Create(ctx context.Context, actor identity.Identity, req CreateRequest) (*Material, error) {
	c, err := s.loadCase(ctx, req.CaseID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(c, actor, policy.EntityDefenseMaterial, policy.OpMutate); err != nil {
		return nil, err
	}

	anchor, err := s.anchors.Anchor(ctx, ledger.Request{
		CaseNumber:  c.Number,
		Fingerprint: req.Fingerprint,
	})
	if err != nil {
		if s.metrics != nil {
			s.metrics.AnchorsFailed.Inc()
		}
		s.logger.ErrorContext(ctx, "defense material anchoring failed, creation aborted",
			"case_id", req.CaseID,
			"error", err,
		)
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.AnchorsSubmitted.Inc()
	}

	now := requestcontext.Now(ctx)
	m, err := NewMaterial(id.NewDefenseMaterialID(), c.ID, req.Title, req.Description, req.Fingerprint, req.FileName, req.FileType, req.FileSize, actor.ID, anchor, now)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeBadRequest, dErrors.Message(err))
		}
		return nil, err
	}
	if err := s.store.Create(ctx, m); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create defense material")
	}

	s.record(ctx, actor, audit.ActionDefenseCreated, m.ID, "defense material "+m.Title+" submitted")
	s.notify(ctx, actor, c, notification.Event{
		Type:     notification.TypeJudicialUpdate,
		Priority: notification.PriorityNormal,
		Title:    "Defense material submitted on case " + c.Number,
		Message:  m.Title,
		CaseID:   c.ID,
	})
	return m, nil
}

// Get returns one material per the view stage table.
func (s *Service) Get(ctx context.Context, actor identity.Identity, materialID id.DefenseMaterialID) (*Material, error) {
	m, err := s.load(ctx, materialID)
	if err != nil {
		return nil, err
	}
	c, err := s.loadCase(ctx, m.CaseID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(c, actor, policy.EntityDefenseMaterial, policy.OpView); err != nil {
		return nil, err
	}
	return m, nil
}

// ListByCase returns the case's defense materials, oldest first.
func (s *Service) ListByCase(ctx context.Context, actor identity.Identity, caseID id.CaseID) ([]*Material, error) {
	c, err := s.loadCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(c, actor, policy.EntityDefenseMaterial, policy.OpView); err != nil {
		return nil, err
	}
	list, err := s.store.ListByCase(ctx, caseID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list defense materials")
	}
	return list, nil
}

type UpdateRequest struct {
	Title       *string
	Description *string
}

// Update mutates the descriptive fields, submitter only, trial stage only.
func (s *Service) Update(ctx context.Context, actor identity.Identity, materialID id.DefenseMaterialID, req UpdateRequest) (*Material, error) {
	m, err := s.loadForMutation(ctx, actor, materialID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if *req.Title == "" {
			return nil, dErrors.New(dErrors.CodeBadRequest, "title cannot be empty")
		}
		m.Title = *req.Title
	}
	if req.Description != nil {
		m.Description = *req.Description
	}
	m.UpdatedAt = requestcontext.Now(ctx)

	if err := s.store.Update(ctx, m); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "defense material not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update defense material")
	}

	s.record(ctx, actor, audit.ActionDefenseUpdated, materialID, "defense material updated")
	return m, nil
}

// Delete removes a material, submitter only.
func (s *Service) Delete(ctx context.Context, actor identity.Identity, materialID id.DefenseMaterialID) error {
	m, err := s.loadForMutation(ctx, actor, materialID)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, m.ID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "defense material not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete defense material")
	}

	s.record(ctx, actor, audit.ActionDefenseDeleted, materialID, "defense material deleted")
	return nil
}

func (s *Service) loadForMutation(ctx context.Context, actor identity.Identity, materialID id.DefenseMaterialID) (*Material, error) {
	m, err := s.load(ctx, materialID)
	if err != nil {
		return nil, err
	}
	c, err := s.loadCase(ctx, m.CaseID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(c, actor, policy.EntityDefenseMaterial, policy.OpMutate); err != nil {
		return nil, err
	}
	if !m.IsSubmitter(actor.ID) {
		return nil, dErrors.New(dErrors.CodeForbidden, "not the submitter of this defense material")
	}
	return m, nil
}

func (s *Service) load(ctx context.Context, materialID id.DefenseMaterialID) (*Material, error) {
	m, err := s.store.FindByID(ctx, materialID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "defense material not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load defense material")
	}
	return m, nil
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

func (s *Service) record(ctx context.Context, actor identity.Identity, action audit.Action, materialID id.DefenseMaterialID, description string) {
	s.logger.InfoContext(ctx, string(action),
		"log_type", "audit",
		"defense_material_id", materialID,
		"actor_id", actor.ID,
		"actor_role", actor.Role,
		"request_id", requestcontext.RequestID(ctx),
	)
	if s.auditor != nil {
		s.auditor.Record(ctx, actor, action, "defense_material", materialID.String(), description)
	}
}

func (s *Service) notify(ctx context.Context, actor identity.Identity, c *casemodels.Case, event notification.Event) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, c, event, actor.ID)
}
