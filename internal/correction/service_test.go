package correction

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"docket/internal/cases/models"
	casestore "docket/internal/cases/store"
	"docket/internal/evidence"
	"docket/internal/identity"
	"docket/internal/ledger"
	"docket/internal/ledger/mocks"
	id "docket/pkg/domain"
	dErrors "docket/pkg/domain-errors"
)

type CorrectionServiceSuite struct {
	suite.Suite

	ctx      context.Context
	ctrl     *gomock.Controller
	anchors  *mocks.MockClient
	cases    *casestore.Memory
	evStore  *evidence.MemoryStore
	store    *MemoryStore
	svc      *Service
	original *evidence.Evidence

	police     identity.Identity
	prosecutor identity.Identity
	judge      identity.Identity
	lawyer     identity.Identity
	theCase    *models.Case
}

func TestCorrectionServiceSuite(t *testing.T) {
	suite.Run(t, new(CorrectionServiceSuite))
}

func (s *CorrectionServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.anchors = mocks.NewMockClient(s.ctrl)
	s.cases = casestore.NewMemory()
	s.evStore = evidence.NewMemoryStore()
	s.store = NewMemoryStore()
	s.svc = New(s.store, s.cases, s.evStore, s.anchors)

	s.police = identity.Identity{ID: id.NewActorID(), Role: identity.RolePolice}
	s.prosecutor = identity.Identity{ID: id.NewActorID(), Role: identity.RoleProsecutor}
	s.judge = identity.Identity{ID: id.NewActorID(), Role: identity.RoleJudge}
	s.lawyer = identity.Identity{ID: id.NewActorID(), Role: identity.RoleLawyer}

	judgeID := s.judge.ID
	var err error
	s.theCase, err = models.NewCase(id.NewCaseID(), "CR-2026-0123", "State v. Okafor",
		models.CaseTypePublicProsecution, s.police.ID,
		[]id.ActorID{s.prosecutor.ID}, nil, []id.ActorID{s.lawyer.ID}, &judgeID, time.Now())
	s.Require().NoError(err)

	initial := models.NewTimelineEntry(s.theCase.ID, models.StageInvestigation, s.police, "case opened", s.theCase.CreatedAt)
	s.Require().NoError(s.cases.Create(s.ctx, s.theCase, initial))

	// Anchored original evidence uploaded during investigation.
	s.original, err = evidence.NewEvidence(id.NewEvidenceID(), s.theCase.ID, "sha256:orig",
		"ballistics-report.pdf", "application/pdf", 4096, evidence.CategoryDocument,
		s.police.ID, ledger.Anchor{ID: "anchor-orig", TxRef: "0x01"}, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.evStore.Create(s.ctx, s.original))

	// Corrections are a PROSECUTORATE instrument; move the case there.
	entry := models.NewTimelineEntry(s.theCase.ID, models.StageProsecutorate, s.police, "", time.Now())
	_, err = s.cases.ApplyTransition(s.ctx, s.theCase.ID, models.StageInvestigation, models.StageProsecutorate, entry)
	s.Require().NoError(err)
}

func (s *CorrectionServiceSuite) createRequest() CreateRequest {
	return CreateRequest{
		CaseID:             s.theCase.ID,
		OriginalEvidenceID: s.original.ID,
		Reason:             "page 3 transcription error",
		NewFingerprint:     "sha256:fixed",
	}
}

func (s *CorrectionServiceSuite) TestCreateByAssignedProsecutor() {
	s.anchors.EXPECT().
		Anchor(gomock.Any(), ledger.Request{
			CaseNumber:     "CR-2026-0123",
			Fingerprint:    "sha256:fixed",
			LinkedAnchorID: "anchor-orig",
		}).
		Return(ledger.Anchor{ID: "anchor-corr", TxRef: "0x02"}, nil)

	corr, err := s.svc.Create(s.ctx, s.prosecutor, s.createRequest())
	s.Require().NoError(err)
	s.Equal(StatusPending, corr.Status)
	s.Equal("anchor-corr", corr.Anchor.ID)
	s.Equal(s.original.ID, corr.OriginalEvidenceID)
}

func (s *CorrectionServiceSuite) TestCreateByUnassignedProsecutorIsForbidden() {
	other := identity.Identity{ID: id.NewActorID(), Role: identity.RoleProsecutor}
	_, err := s.svc.Create(s.ctx, other, s.createRequest())
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	s.Contains(dErrors.Message(err), "not the assigned prosecutor")
}

func (s *CorrectionServiceSuite) TestCreateByLawyerIsForbidden() {
	_, err := s.svc.Create(s.ctx, s.lawyer, s.createRequest())
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func (s *CorrectionServiceSuite) TestCreateOutsideProsecutorateIsForbidden() {
	entry := models.NewTimelineEntry(s.theCase.ID, models.StageCourtTrial, s.prosecutor, "", time.Now())
	_, err := s.cases.ApplyTransition(s.ctx, s.theCase.ID, models.StageProsecutorate, models.StageCourtTrial, entry)
	s.Require().NoError(err)

	_, err = s.svc.Create(s.ctx, s.prosecutor, s.createRequest())
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	s.Contains(dErrors.Message(err), "wrong stage")
}

func (s *CorrectionServiceSuite) TestCreateAgainstForeignEvidenceIsBadRequest() {
	otherPolice := identity.Identity{ID: id.NewActorID(), Role: identity.RolePolice}
	foreign, err := evidence.NewEvidence(id.NewEvidenceID(), id.NewCaseID(), "sha256:other",
		"other.pdf", "application/pdf", 1024, evidence.CategoryDocument,
		otherPolice.ID, ledger.Anchor{ID: "anchor-x", TxRef: "0x09"}, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.evStore.Create(s.ctx, foreign))

	req := s.createRequest()
	req.OriginalEvidenceID = foreign.ID
	_, err = s.svc.Create(s.ctx, s.prosecutor, req)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	s.Contains(dErrors.Message(err), "different case")
}

func (s *CorrectionServiceSuite) TestAnchorFailureLeavesNoRecord() {
	s.anchors.EXPECT().
		Anchor(gomock.Any(), gomock.Any()).
		Return(ledger.Anchor{}, dErrors.New(dErrors.CodeTimeout, "ledger request timed out"))

	_, err := s.svc.Create(s.ctx, s.prosecutor, s.createRequest())
	s.True(dErrors.HasCode(err, dErrors.CodeTimeout))

	list, listErr := s.store.ListByCase(s.ctx, s.theCase.ID)
	s.Require().NoError(listErr)
	s.Empty(list)
}

func (s *CorrectionServiceSuite) TestUpdateAndDeleteBySubmitterOnly() {
	s.anchors.EXPECT().
		Anchor(gomock.Any(), gomock.Any()).
		Return(ledger.Anchor{ID: "anchor-corr", TxRef: "0x02"}, nil)
	corr, err := s.svc.Create(s.ctx, s.prosecutor, s.createRequest())
	s.Require().NoError(err)

	status := StatusApproved
	updated, err := s.svc.Update(s.ctx, s.prosecutor, corr.ID, UpdateRequest{Status: &status})
	s.Require().NoError(err)
	s.Equal(StatusApproved, updated.Status)

	err = s.svc.Delete(s.ctx, s.lawyer, corr.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	s.Require().NoError(s.svc.Delete(s.ctx, s.prosecutor, corr.ID))
	_, err = s.svc.Get(s.ctx, s.prosecutor, corr.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *CorrectionServiceSuite) TestEveryParticipantMayView() {
	s.anchors.EXPECT().
		Anchor(gomock.Any(), gomock.Any()).
		Return(ledger.Anchor{ID: "anchor-corr", TxRef: "0x02"}, nil)
	corr, err := s.svc.Create(s.ctx, s.prosecutor, s.createRequest())
	s.Require().NoError(err)

	for _, actor := range []identity.Identity{s.police, s.judge, s.lawyer} {
		got, err := s.svc.Get(s.ctx, actor, corr.ID)
		s.Require().NoError(err)
		s.Equal(corr.ID, got.ID)
	}
}
