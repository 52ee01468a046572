package defense

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"docket/internal/cases/models"
	casestore "docket/internal/cases/store"
	"docket/internal/identity"
	"docket/internal/ledger"
	"docket/internal/ledger/mocks"
	id "docket/pkg/domain"
	dErrors "docket/pkg/domain-errors"
)

type DefenseServiceSuite struct {
	suite.Suite

	ctx     context.Context
	ctrl    *gomock.Controller
	anchors *mocks.MockClient
	cases   *casestore.Memory
	store   *MemoryStore
	svc     *Service

	police     identity.Identity
	prosecutor identity.Identity
	judge      identity.Identity
	lawyer     identity.Identity
	theCase    *models.Case
}

func TestDefenseServiceSuite(t *testing.T) {
	suite.Run(t, new(DefenseServiceSuite))
}

func (s *DefenseServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.anchors = mocks.NewMockClient(s.ctrl)
	s.cases = casestore.NewMemory()
	s.store = NewMemoryStore()
	s.svc = New(s.store, s.cases, s.anchors)

	s.police = identity.Identity{ID: id.NewActorID(), Role: identity.RolePolice}
	s.prosecutor = identity.Identity{ID: id.NewActorID(), Role: identity.RoleProsecutor}
	s.judge = identity.Identity{ID: id.NewActorID(), Role: identity.RoleJudge}
	s.lawyer = identity.Identity{ID: id.NewActorID(), Role: identity.RoleLawyer}

	judgeID := s.judge.ID
	var err error
	s.theCase, err = models.NewCase(id.NewCaseID(), "CR-2026-0200", "State v. Brandt",
		models.CaseTypePublicProsecution, s.police.ID,
		[]id.ActorID{s.prosecutor.ID}, nil, []id.ActorID{s.lawyer.ID}, &judgeID, time.Now())
	s.Require().NoError(err)

	initial := models.NewTimelineEntry(s.theCase.ID, models.StageInvestigation, s.police, "case opened", s.theCase.CreatedAt)
	s.Require().NoError(s.cases.Create(s.ctx, s.theCase, initial))
}

func (s *DefenseServiceSuite) moveToTrial() {
	entry := models.NewTimelineEntry(s.theCase.ID, models.StageProsecutorate, s.police, "", time.Now())
	_, err := s.cases.ApplyTransition(s.ctx, s.theCase.ID, models.StageInvestigation, models.StageProsecutorate, entry)
	s.Require().NoError(err)
	entry = models.NewTimelineEntry(s.theCase.ID, models.StageCourtTrial, s.prosecutor, "", time.Now())
	_, err = s.cases.ApplyTransition(s.ctx, s.theCase.ID, models.StageProsecutorate, models.StageCourtTrial, entry)
	s.Require().NoError(err)
}

func (s *DefenseServiceSuite) createRequest() CreateRequest {
	return CreateRequest{
		CaseID:      s.theCase.ID,
		Title:       "Alibi statement",
		Description: "Signed witness statement placing the defendant elsewhere",
		Fingerprint: "sha256:alibi",
		FileName:    "alibi-statement.pdf",
		FileType:    "application/pdf",
		FileSize:    2048,
	}
}

func (s *DefenseServiceSuite) TestCreateByLawyerDuringTrial() {
	s.moveToTrial()
	s.anchors.EXPECT().
		Anchor(gomock.Any(), ledger.Request{CaseNumber: "CR-2026-0200", Fingerprint: "sha256:alibi"}).
		Return(ledger.Anchor{ID: "anchor-dm", TxRef: "0x1f"}, nil)

	m, err := s.svc.Create(s.ctx, s.lawyer, s.createRequest())
	s.Require().NoError(err)
	s.Equal("anchor-dm", m.Anchor.ID)
	s.Equal(s.lawyer.ID, m.SubmitterID)
}

func (s *DefenseServiceSuite) TestCreateOutsideTrialIsForbidden() {
	_, err := s.svc.Create(s.ctx, s.lawyer, s.createRequest())
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	s.Contains(dErrors.Message(err), "wrong stage")
}

func (s *DefenseServiceSuite) TestCreateByNonLawyerIsForbidden() {
	s.moveToTrial()
	_, err := s.svc.Create(s.ctx, s.judge, s.createRequest())
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	s.Contains(dErrors.Message(err), "role JUDGE")
}

func (s *DefenseServiceSuite) TestAnchorFailureLeavesNoRecord() {
	s.moveToTrial()
	s.anchors.EXPECT().
		Anchor(gomock.Any(), gomock.Any()).
		Return(ledger.Anchor{}, dErrors.New(dErrors.CodeExternalFailure, "ledger unavailable"))

	_, err := s.svc.Create(s.ctx, s.lawyer, s.createRequest())
	s.True(dErrors.HasCode(err, dErrors.CodeExternalFailure))

	list, listErr := s.store.ListByCase(s.ctx, s.theCase.ID)
	s.Require().NoError(listErr)
	s.Empty(list)
}

func (s *DefenseServiceSuite) TestNonLawyerViewWindows() {
	s.moveToTrial()
	s.anchors.EXPECT().
		Anchor(gomock.Any(), gomock.Any()).
		Return(ledger.Anchor{ID: "anchor-dm", TxRef: "0x1f"}, nil)
	m, err := s.svc.Create(s.ctx, s.lawyer, s.createRequest())
	s.Require().NoError(err)

	// During trial everyone on the case may review.
	for _, actor := range []identity.Identity{s.police, s.prosecutor, s.judge, s.lawyer} {
		_, err := s.svc.Get(s.ctx, actor, m.ID)
		s.Require().NoError(err)
	}

	// After closure the authoring lawyer's window ends; the other roles keep
	// access.
	entry := models.NewTimelineEntry(s.theCase.ID, models.StageClosed, s.judge, "", time.Now())
	_, err = s.cases.ApplyTransition(s.ctx, s.theCase.ID, models.StageCourtTrial, models.StageClosed, entry)
	s.Require().NoError(err)

	_, err = s.svc.Get(s.ctx, s.lawyer, m.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	for _, actor := range []identity.Identity{s.police, s.prosecutor, s.judge} {
		_, err := s.svc.Get(s.ctx, actor, m.ID)
		s.Require().NoError(err)
	}
}

func (s *DefenseServiceSuite) TestUpdateAndDeleteBySubmitterOnly() {
	s.moveToTrial()
	s.anchors.EXPECT().
		Anchor(gomock.Any(), gomock.Any()).
		Return(ledger.Anchor{ID: "anchor-dm", TxRef: "0x1f"}, nil)
	m, err := s.svc.Create(s.ctx, s.lawyer, s.createRequest())
	s.Require().NoError(err)

	otherLawyer := identity.Identity{ID: id.NewActorID(), Role: identity.RoleLawyer}
	s.theCase.DefendantLawyerIDs = append(s.theCase.DefendantLawyerIDs, otherLawyer.ID)
	s.Require().NoError(s.cases.Update(s.ctx, s.theCase))

	title := "Amended alibi statement"
	_, err = s.svc.Update(s.ctx, otherLawyer, m.ID, UpdateRequest{Title: &title})
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	s.Contains(dErrors.Message(err), "not the submitter")

	updated, err := s.svc.Update(s.ctx, s.lawyer, m.ID, UpdateRequest{Title: &title})
	s.Require().NoError(err)
	s.Equal(title, updated.Title)

	s.Require().NoError(s.svc.Delete(s.ctx, s.lawyer, m.ID))
	_, err = s.svc.Get(s.ctx, s.lawyer, m.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
