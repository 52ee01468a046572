package correction

import (
	"context"
	"errors"
	"log/slog"

	"docket/internal/audit"
	casemodels "docket/internal/cases/models"
	"docket/internal/evidence"
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

// Store is the persistence surface for corrections.
type Store interface {
	Create(ctx context.Context, c *Correction) error
	FindByID(ctx context.Context, correctionID id.CorrectionID) (*Correction, error)
	ListByCase(ctx context.Context, caseID id.CaseID) ([]*Correction, error)
	Update(ctx context.Context, c *Correction) error
	Delete(ctx context.Context, correctionID id.CorrectionID) error
}

// CaseFinder loads the case document the stage gate evaluates against.
type CaseFinder interface {
	FindByID(ctx context.Context, caseID id.CaseID) (*casemodels.Case, error)
}

// EvidenceFinder resolves the original evidence a correction targets.
type EvidenceFinder interface {
	FindByID(ctx context.Context, evidenceID id.EvidenceID) (*evidence.Evidence, error)
}

type Notifier interface {
	Notify(ctx context.Context, c *casemodels.Case, event notification.Event, excludeActor id.ActorID) []notification.DeliveryOutcome
}

type Recorder interface {
	Record(ctx context.Context, actor identity.Identity, action audit.Action, targetType, targetID, description string)
}

// Service handles prosecutor corrections. A correction targets an anchored
// evidence record of the same case and chains its own anchor to the
// original's.
type Service struct {
	store    Store
	cases    CaseFinder
	evidence EvidenceFinder
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

func New(store Store, cases CaseFinder, evidenceFinder EvidenceFinder, anchors ledger.Client, opts ...Option) *Service {
	s := &Service{store: store, cases: cases, evidence: evidenceFinder, anchors: anchors, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type CreateRequest struct {
	CaseID             id.CaseID
	OriginalEvidenceID id.EvidenceID
	Reason             string
	NewFingerprint     string
}

// Create submits a correction. Only a prosecutor assigned to the case may
// submit, only while the case sits with the prosecutorate, and only against
// anchored evidence of that same case. The ledger anchor links to the
// original's anchor id; an anchoring failure aborts the creation.
func (s *Service) Create(ctx context.Context, actor identity.Identity, req CreateRequest) (*Correction, error) {
	if !actor.Valid() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing or invalid identity")
	}
	c, err := s.loadCase(ctx, req.CaseID)
	if err != nil {
		return nil, err
	}
	if actor.Role == identity.RoleProsecutor && !c.HasProsecutor(actor.ID) {
		return nil, dErrors.New(dErrors.CodeForbidden, "not the assigned prosecutor")
	}
	if err := policy.Authorize(c, actor, policy.EntityCorrection, policy.OpMutate); err != nil {
		return nil, err
	}

	original, err := s.evidence.FindByID(ctx, req.OriginalEvidenceID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "original evidence not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load original evidence")
	}
	if original.CaseID != c.ID {
		return nil, dErrors.New(dErrors.CodeBadRequest, "original evidence belongs to a different case")
	}
	if !original.Anchored() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "original evidence is not anchored")
	}

	anchor, err := s.anchors.Anchor(ctx, ledger.Request{
		CaseNumber:     c.Number,
		Fingerprint:    req.NewFingerprint,
		LinkedAnchorID: original.Anchor.ID,
	})
	if err != nil {
		if s.metrics != nil {
			s.metrics.AnchorsFailed.Inc()
		}
		s.logger.ErrorContext(ctx, "correction anchoring failed, creation aborted",
			"case_id", req.CaseID,
			"original_evidence_id", req.OriginalEvidenceID,
			"error", err,
		)
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.AnchorsSubmitted.Inc()
	}

	now := requestcontext.Now(ctx)
	corr, err := NewCorrection(id.NewCorrectionID(), c.ID, original.ID, req.Reason, req.NewFingerprint, actor.ID, anchor, now)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeBadRequest, dErrors.Message(err))
		}
		return nil, err
	}
	if err := s.store.Create(ctx, corr); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create correction")
	}

	s.record(ctx, actor, audit.ActionCorrectionCreated, corr.ID, "correction submitted for evidence "+original.ID.String())
	s.notify(ctx, actor, c, notification.Event{
		Type:       notification.TypeCaseUpdate,
		Priority:   notification.PriorityHigh,
		Title:      "Evidence correction submitted on case " + c.Number,
		Message:    corr.Reason,
		CaseID:     c.ID,
		EvidenceID: &corr.OriginalEvidenceID,
	})
	return corr, nil
}

// Get returns one correction; every participant may view at any stage.
func (s *Service) Get(ctx context.Context, actor identity.Identity, correctionID id.CorrectionID) (*Correction, error) {
	corr, err := s.load(ctx, correctionID)
	if err != nil {
		return nil, err
	}
	c, err := s.loadCase(ctx, corr.CaseID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(c, actor, policy.EntityCorrection, policy.OpView); err != nil {
		return nil, err
	}
	return corr, nil
}

// ListByCase returns the case's corrections, oldest first.
func (s *Service) ListByCase(ctx context.Context, actor identity.Identity, caseID id.CaseID) ([]*Correction, error) {
	c, err := s.loadCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(c, actor, policy.EntityCorrection, policy.OpView); err != nil {
		return nil, err
	}
	list, err := s.store.ListByCase(ctx, caseID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list corrections")
	}
	return list, nil
}

type UpdateRequest struct {
	Reason *string
	Status *Status
}

// Update mutates the reason or review status, submitter only.
func (s *Service) Update(ctx context.Context, actor identity.Identity, correctionID id.CorrectionID, req UpdateRequest) (*Correction, error) {
	corr, _, err := s.loadForMutation(ctx, actor, correctionID)
	if err != nil {
		return nil, err
	}

	if req.Reason != nil {
		if *req.Reason == "" {
			return nil, dErrors.New(dErrors.CodeBadRequest, "reason cannot be empty")
		}
		corr.Reason = *req.Reason
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, dErrors.New(dErrors.CodeBadRequest, "unknown correction status")
		}
		corr.Status = *req.Status
	}
	corr.UpdatedAt = requestcontext.Now(ctx)

	if err := s.store.Update(ctx, corr); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "correction not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update correction")
	}

	s.record(ctx, actor, audit.ActionCorrectionUpdated, correctionID, "correction updated")
	return corr, nil
}

// Delete removes a correction record entirely, submitter only. This is a real
// delete, not a status flip.
func (s *Service) Delete(ctx context.Context, actor identity.Identity, correctionID id.CorrectionID) error {
	corr, _, err := s.loadForMutation(ctx, actor, correctionID)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, corr.ID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "correction not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete correction")
	}

	s.record(ctx, actor, audit.ActionCorrectionDeleted, correctionID, "correction deleted")
	return nil
}

func (s *Service) loadForMutation(ctx context.Context, actor identity.Identity, correctionID id.CorrectionID) (*Correction, *casemodels.Case, error) {
	corr, err := s.load(ctx, correctionID)
	if err != nil {
		return nil, nil, err
	}
	c, err := s.loadCase(ctx, corr.CaseID)
	if err != nil {
		return nil, nil, err
	}
	if actor.Role == identity.RoleProsecutor && !c.HasProsecutor(actor.ID) {
		return nil, nil, dErrors.New(dErrors.CodeForbidden, "not the assigned prosecutor")
	}
	if err := policy.Authorize(c, actor, policy.EntityCorrection, policy.OpMutate); err != nil {
		return nil, nil, err
	}
	if !corr.IsSubmitter(actor.ID) {
		return nil, nil, dErrors.New(dErrors.CodeForbidden, "not the submitter of this correction")
	}
	return corr, c, nil
}

func (s *Service) load(ctx context.Context, correctionID id.CorrectionID) (*Correction, error) {
	corr, err := s.store.FindByID(ctx, correctionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "correction not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load correction")
	}
	return corr, nil
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

func (s *Service) record(ctx context.Context, actor identity.Identity, action audit.Action, correctionID id.CorrectionID, description string) {
	s.logger.InfoContext(ctx, string(action),
		"log_type", "audit",
		"correction_id", correctionID,
		"actor_id", actor.ID,
		"actor_role", actor.Role,
		"request_id", requestcontext.RequestID(ctx),
	)
	if s.auditor != nil {
		s.auditor.Record(ctx, actor, action, "correction", correctionID.String(), description)
	}
}

func (s *Service) notify(ctx context.Context, actor identity.Identity, c *casemodels.Case, event notification.Event) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, c, event, actor.ID)
}
