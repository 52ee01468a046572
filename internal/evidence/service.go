package evidence

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

// Store is the persistence surface for evidence records.
type Store interface {
	Create(ctx context.Context, e *Evidence) error
	FindByID(ctx context.Context, evidenceID id.EvidenceID) (*Evidence, error)
	ListByCase(ctx context.Context, caseID id.CaseID) ([]*Evidence, error)
	Update(ctx context.Context, e *Evidence) error
	Delete(ctx context.Context, evidenceID id.EvidenceID) error
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

// Service gates evidence operations through the stage-gate tables and anchors
// every new record to the ledger before it is persisted.
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
	Fingerprint string
	FileName    string
	FileType    string
	FileSize    int64
	Category    Category
}

// Create uploads one evidence record. The ledger anchor is obtained first and
// embedded in the stored record; an anchoring failure aborts the creation so
// no record ever exists without an anchor.
func (s *Service) Create(ctx context.Context, actor identity.Identity, req CreateRequest) (*Evidence, error) {
	c, err := s.loadCase(ctx, req.CaseID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(c, actor, policy.EntityEvidence, policy.OpMutate); err != nil {
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
		s.logger.ErrorContext(ctx, "evidence anchoring failed, creation aborted",
			"case_id", req.CaseID,
			"error", err,
		)
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.AnchorsSubmitted.Inc()
	}

	now := requestcontext.Now(ctx)
	e, err := NewEvidence(id.NewEvidenceID(), c.ID, req.Fingerprint, req.FileName, req.FileType, req.FileSize, req.Category, actor.ID, anchor, now)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeBadRequest, dErrors.Message(err))
		}
		return nil, err
	}
	if err := s.store.Create(ctx, e); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create evidence")
	}

	s.record(ctx, actor, audit.ActionEvidenceCreated, e.ID, "evidence "+e.FileName+" uploaded")
	s.notify(ctx, actor, c, notification.Event{
		Type:       notification.TypeCaseUpdate,
		Priority:   notification.PriorityNormal,
		Title:      "New evidence on case " + c.Number,
		Message:    e.FileName,
		CaseID:     c.ID,
		EvidenceID: &e.ID,
	})
	return e, nil
}

// Get returns one evidence record to an actor whose role and the case's
// current stage allow viewing.
func (s *Service) Get(ctx context.Context, actor identity.Identity, evidenceID id.EvidenceID) (*Evidence, error) {
	e, err := s.load(ctx, evidenceID)
	if err != nil {
		return nil, err
	}
	c, err := s.loadCase(ctx, e.CaseID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(c, actor, policy.EntityEvidence, policy.OpView); err != nil {
		return nil, err
	}
	return e, nil
}

// ListByCase returns the case's evidence records, oldest first.
func (s *Service) ListByCase(ctx context.Context, actor identity.Identity, caseID id.CaseID) ([]*Evidence, error) {
	c, err := s.loadCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(c, actor, policy.EntityEvidence, policy.OpView); err != nil {
		return nil, err
	}
	list, err := s.store.ListByCase(ctx, caseID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list evidence")
	}
	return list, nil
}

type UpdateRequest struct {
	FileName *string
	Category *Category
	Status   *Status
}

// Update mutates metadata and status. On top of the stage gate, only the
// original uploader may modify the record; the anchor and fingerprint never
// change.
func (s *Service) Update(ctx context.Context, actor identity.Identity, evidenceID id.EvidenceID, req UpdateRequest) (*Evidence, error) {
	e, err := s.load(ctx, evidenceID)
	if err != nil {
		return nil, err
	}
	c, err := s.loadCase(ctx, e.CaseID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(c, actor, policy.EntityEvidence, policy.OpMutate); err != nil {
		return nil, err
	}
	if !e.IsUploader(actor.ID) {
		return nil, dErrors.New(dErrors.CodeForbidden, "not the uploader of this evidence")
	}

	if req.FileName != nil {
		if *req.FileName == "" {
			return nil, dErrors.New(dErrors.CodeBadRequest, "file name cannot be empty")
		}
		e.FileName = *req.FileName
	}
	if req.Category != nil {
		if !req.Category.Valid() {
			return nil, dErrors.New(dErrors.CodeBadRequest, "unknown evidence category")
		}
		e.Category = *req.Category
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, dErrors.New(dErrors.CodeBadRequest, "unknown evidence status")
		}
		e.Status = *req.Status
	}
	e.UpdatedAt = requestcontext.Now(ctx)

	if err := s.store.Update(ctx, e); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "evidence not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update evidence")
	}

	s.record(ctx, actor, audit.ActionEvidenceUpdated, evidenceID, "evidence "+e.FileName+" updated")
	return e, nil
}

// Delete removes an evidence record, uploader only. Corrections or objections
// referencing the record are left dangling; the reference check is not
// enforced here.
func (s *Service) Delete(ctx context.Context, actor identity.Identity, evidenceID id.EvidenceID) error {
	e, err := s.load(ctx, evidenceID)
	if err != nil {
		return err
	}
	c, err := s.loadCase(ctx, e.CaseID)
	if err != nil {
		return err
	}
	if err := policy.Authorize(c, actor, policy.EntityEvidence, policy.OpMutate); err != nil {
		return err
	}
	if !e.IsUploader(actor.ID) {
		return dErrors.New(dErrors.CodeForbidden, "not the uploader of this evidence")
	}

	if err := s.store.Delete(ctx, evidenceID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "evidence not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete evidence")
	}

	s.record(ctx, actor, audit.ActionEvidenceDeleted, evidenceID, "evidence "+e.FileName+" deleted")
	return nil
}

func (s *Service) load(ctx context.Context, evidenceID id.EvidenceID) (*Evidence, error) {
	e, err := s.store.FindByID(ctx, evidenceID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "evidence not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load evidence")
	}
	return e, nil
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

func (s *Service) record(ctx context.Context, actor identity.Identity, action audit.Action, evidenceID id.EvidenceID, description string) {
	s.logger.InfoContext(ctx, string(action),
		"log_type", "audit",
		"evidence_id", evidenceID,
		"actor_id", actor.ID,
		"actor_role", actor.Role,
		"request_id", requestcontext.RequestID(ctx),
	)
	if s.auditor != nil {
		s.auditor.Record(ctx, actor, action, "evidence", evidenceID.String(), description)
	}
}

func (s *Service) notify(ctx context.Context, actor identity.Identity, c *casemodels.Case, event notification.Event) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, c, event, actor.ID)
}
