package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"docket/internal/identity"
	"docket/internal/ledger"
	"docket/internal/ledger/mocks"
	id "docket/pkg/domain"
	dErrors "docket/pkg/domain-errors"
)

type RegistrySuite struct {
	suite.Suite

	ctx     context.Context
	ctrl    *gomock.Controller
	anchors *mocks.MockClient
	store   *MemoryStore
	svc     *Service

	admin  identity.Identity
	police identity.Identity
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.anchors = mocks.NewMockClient(s.ctrl)
	s.store = NewMemoryStore()
	s.svc = NewService(s.store, s.anchors)

	s.admin = identity.Identity{ID: id.NewActorID(), Role: identity.RoleAdmin}
	s.police = identity.Identity{ID: id.NewActorID(), Role: identity.RolePolice}
}

func (s *RegistrySuite) TestGrantRole() {
	s.anchors.EXPECT().
		Anchor(gomock.Any(), gomock.Any()).
		Return(ledger.Anchor{ID: "anchor-grant", TxRef: "0x77"}, nil)

	a, err := s.svc.GrantRole(s.ctx, s.admin, "0xDEAD", identity.RoleJudge)
	s.Require().NoError(err)
	s.Equal(AssignmentActive, a.Status)
	s.Equal("0x77", a.TxRef)
	s.Equal(s.admin.ID, a.GrantedBy)
}

func (s *RegistrySuite) TestGrantRoleNonAdminIsForbidden() {
	_, err := s.svc.GrantRole(s.ctx, s.police, "0xDEAD", identity.RoleJudge)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func (s *RegistrySuite) TestGrantRoleLedgerFailureProceedsWithoutTxRef() {
	s.anchors.EXPECT().
		Anchor(gomock.Any(), gomock.Any()).
		Return(ledger.Anchor{}, dErrors.New(dErrors.CodeExternalFailure, "ledger unavailable"))

	a, err := s.svc.GrantRole(s.ctx, s.admin, "0xDEAD", identity.RoleJudge)
	s.Require().NoError(err)
	s.Equal(AssignmentActive, a.Status)
	s.Empty(a.TxRef)
}

func (s *RegistrySuite) TestDuplicateActiveGrantConflicts() {
	s.anchors.EXPECT().
		Anchor(gomock.Any(), gomock.Any()).
		Return(ledger.Anchor{ID: "anchor-grant", TxRef: "0x77"}, nil).
		Times(2)

	_, err := s.svc.GrantRole(s.ctx, s.admin, "0xDEAD", identity.RoleJudge)
	s.Require().NoError(err)

	_, err = s.svc.GrantRole(s.ctx, s.admin, "0xDEAD", identity.RoleJudge)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *RegistrySuite) TestRevokeThenRegrant() {
	s.anchors.EXPECT().
		Anchor(gomock.Any(), gomock.Any()).
		Return(ledger.Anchor{ID: "anchor-grant", TxRef: "0x77"}, nil).
		Times(2)

	_, err := s.svc.GrantRole(s.ctx, s.admin, "0xDEAD", identity.RoleJudge)
	s.Require().NoError(err)

	revoked, err := s.svc.RevokeRole(s.ctx, s.admin, "0xDEAD", identity.RoleJudge)
	s.Require().NoError(err)
	s.Equal(AssignmentRevoked, revoked.Status)
	s.NotNil(revoked.RevokedAt)

	// The pair is free again once the previous grant is revoked.
	_, err = s.svc.GrantRole(s.ctx, s.admin, "0xDEAD", identity.RoleJudge)
	s.Require().NoError(err)

	list, err := s.svc.ListAssignments(s.ctx, s.admin, "0xDEAD")
	s.Require().NoError(err)
	s.Len(list, 2)
}

func (s *RegistrySuite) TestRevokeWithoutActiveGrantIsNotFound() {
	_, err := s.svc.RevokeRole(s.ctx, s.admin, "0xBEEF", identity.RoleLawyer)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
