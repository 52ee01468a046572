package registry

import (
	"context"
	"errors"
	"log/slog"

	"docket/internal/audit"
	"docket/internal/identity"
	"docket/internal/ledger"
	id "docket/pkg/domain"
	dErrors "docket/pkg/domain-errors"
	"docket/pkg/platform/sentinel"
	"docket/pkg/requestcontext"
)

// AssignmentStore is the persistence surface for role assignments.
type AssignmentStore interface {
	Create(ctx context.Context, a *RoleAssignment) error
	FindByID(ctx context.Context, assignmentID id.AssignmentID) (*RoleAssignment, error)
	FindActive(ctx context.Context, address string, role identity.Role) (*RoleAssignment, error)
	ListByAddress(ctx context.Context, address string) ([]*RoleAssignment, error)
	Update(ctx context.Context, a *RoleAssignment) error
}

type Recorder interface {
	Record(ctx context.Context, actor identity.Identity, action audit.Action, targetType, targetID, description string)
}

// Service manages role grants and revocations for external addresses.
type Service struct {
	store   AssignmentStore
	anchors ledger.Client
	logger  *slog.Logger
	auditor Recorder
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithRecorder(auditor Recorder) Option {
	return func(s *Service) { s.auditor = auditor }
}

func NewService(store AssignmentStore, anchors ledger.Client, opts ...Option) *Service {
	s := &Service{store: store, anchors: anchors, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GrantRole grants a role to an address, admin only. The grant is anchored to
// the ledger; unlike record creation, a ledger failure here is logged and the
// grant proceeds with an empty TxRef. The assignment is then eventually
// consistent with the ledger and may need a manual re-anchor.
func (s *Service) GrantRole(ctx context.Context, actor identity.Identity, address string, role identity.Role) (*RoleAssignment, error) {
	if !actor.Valid() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing or invalid identity")
	}
	if actor.Role != identity.RoleAdmin {
		return nil, dErrors.New(dErrors.CodeForbidden, "only admins may grant roles")
	}

	txRef := ""
	anchor, err := s.anchors.Anchor(ctx, ledger.Request{
		CaseNumber:  "role-grant",
		Fingerprint: address + ":" + string(role),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "role grant anchoring failed, grant proceeds without tx ref",
			"address", address,
			"role", role,
			"error", err,
		)
	} else {
		txRef = anchor.TxRef
	}

	a, err := NewRoleAssignment(id.NewAssignmentID(), address, role, txRef, actor.ID, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeBadRequest, dErrors.Message(err))
		}
		return nil, err
	}
	if err := s.store.Create(ctx, a); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "an active assignment already exists for this address and role")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create role assignment")
	}

	if s.auditor != nil {
		s.auditor.Record(ctx, actor, audit.ActionRoleGranted, "role_assignment", a.ID.String(), string(role)+" granted to "+a.Address)
	}
	return a, nil
}

// RevokeRole flips an active assignment to REVOKED, admin only.
func (s *Service) RevokeRole(ctx context.Context, actor identity.Identity, address string, role identity.Role) (*RoleAssignment, error) {
	if !actor.Valid() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing or invalid identity")
	}
	if actor.Role != identity.RoleAdmin {
		return nil, dErrors.New(dErrors.CodeForbidden, "only admins may revoke roles")
	}

	a, err := s.store.FindActive(ctx, address, role)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no active assignment for this address and role")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load role assignment")
	}

	now := requestcontext.Now(ctx)
	a.Status = AssignmentRevoked
	a.RevokedAt = &now
	if err := s.store.Update(ctx, a); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke role assignment")
	}

	if s.auditor != nil {
		s.auditor.Record(ctx, actor, audit.ActionRoleRevoked, "role_assignment", a.ID.String(), string(role)+" revoked from "+a.Address)
	}
	return a, nil
}

// ListAssignments returns every grant recorded for an address, admin only.
func (s *Service) ListAssignments(ctx context.Context, actor identity.Identity, address string) ([]*RoleAssignment, error) {
	if !actor.Valid() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing or invalid identity")
	}
	if actor.Role != identity.RoleAdmin {
		return nil, dErrors.New(dErrors.CodeForbidden, "only admins may list role assignments")
	}
	list, err := s.store.ListByAddress(ctx, address)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list role assignments")
	}
	return list, nil
}
