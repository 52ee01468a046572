package objection

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"docket/internal/cases/models"
	casestore "docket/internal/cases/store"
	"docket/internal/evidence"
	"docket/internal/identity"
	"docket/internal/ledger"
	id "docket/pkg/domain"
	dErrors "docket/pkg/domain-errors"
)

type ObjectionServiceSuite struct {
	suite.Suite

	ctx     context.Context
	cases   *casestore.Memory
	evStore *evidence.MemoryStore
	store   *MemoryStore
	svc     *Service

	police     identity.Identity
	prosecutor identity.Identity
	judge      identity.Identity
	lawyer     identity.Identity
}

func TestObjectionServiceSuite(t *testing.T) {
	suite.Run(t, new(ObjectionServiceSuite))
}

func (s *ObjectionServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.cases = casestore.NewMemory()
	s.evStore = evidence.NewMemoryStore()
	s.store = NewMemoryStore()
	s.svc = New(s.store, s.cases, s.evStore)

	s.police = identity.Identity{ID: id.NewActorID(), Role: identity.RolePolice}
	s.prosecutor = identity.Identity{ID: id.NewActorID(), Role: identity.RoleProsecutor}
	s.judge = identity.Identity{ID: id.NewActorID(), Role: identity.RoleJudge}
	s.lawyer = identity.Identity{ID: id.NewActorID(), Role: identity.RoleLawyer}
}

// newCase seeds a case in PROSECUTORATE with one anchored evidence record and
// returns both.
func (s *ObjectionServiceSuite) newCase(caseType models.CaseType, number string) (*models.Case, *evidence.Evidence) {
	judgeID := s.judge.ID
	var prosecutors, plaintiffs []id.ActorID
	if caseType == models.CaseTypePublicProsecution {
		prosecutors = []id.ActorID{s.prosecutor.ID}
	} else {
		plaintiffs = []id.ActorID{id.NewActorID()}
	}
	c, err := models.NewCase(id.NewCaseID(), number, "Test case", caseType, s.police.ID,
		prosecutors, plaintiffs, []id.ActorID{s.lawyer.ID}, &judgeID, time.Now())
	s.Require().NoError(err)

	initial := models.NewTimelineEntry(c.ID, models.StageInvestigation, s.police, "case opened", c.CreatedAt)
	s.Require().NoError(s.cases.Create(s.ctx, c, initial))

	entry := models.NewTimelineEntry(c.ID, models.StageProsecutorate, s.police, "", time.Now())
	_, err = s.cases.ApplyTransition(s.ctx, c.ID, models.StageInvestigation, models.StageProsecutorate, entry)
	s.Require().NoError(err)

	ev, err := evidence.NewEvidence(id.NewEvidenceID(), c.ID, "sha256:target", "exhibit-a.pdf",
		"application/pdf", 512, evidence.CategoryDocument, s.police.ID,
		ledger.Anchor{ID: "anchor-ev", TxRef: "0x11"}, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.evStore.Create(s.ctx, ev))
	return c, ev
}

func (s *ObjectionServiceSuite) TestLawyerObjectsOnAnyCaseType() {
	for i, caseType := range []models.CaseType{models.CaseTypePublicProsecution, models.CaseTypeCivilLitigation} {
		c, ev := s.newCase(caseType, "CR-2026-030"+string(rune('0'+i)))
		o, err := s.svc.Create(s.ctx, s.lawyer, CreateRequest{
			CaseID:     c.ID,
			EvidenceID: ev.ID,
			Content:    "chain of custody is broken",
		})
		s.Require().NoError(err)
		s.Equal(StatusPending, o.Status)
		s.Equal(s.lawyer.ID, o.SubmitterID)
	}
}

func (s *ObjectionServiceSuite) TestProsecutorObjectsOnPublicProsecutionOnly() {
	c, ev := s.newCase(models.CaseTypePublicProsecution, "CR-2026-0310")
	_, err := s.svc.Create(s.ctx, s.prosecutor, CreateRequest{
		CaseID:     c.ID,
		EvidenceID: ev.ID,
		Content:    "exhibit was tampered with",
	})
	s.Require().NoError(err)
}

func (s *ObjectionServiceSuite) TestProsecutorCannotObjectOnCivilCase() {
	c, ev := s.newCase(models.CaseTypeCivilLitigation, "CV-2026-0311")
	_, err := s.svc.Create(s.ctx, s.prosecutor, CreateRequest{
		CaseID:     c.ID,
		EvidenceID: ev.ID,
		Content:    "exhibit was tampered with",
	})
	// A prosecutor is never a participant of a civil case to begin with.
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func (s *ObjectionServiceSuite) TestCreateOutsideProsecutorateIsForbidden() {
	c, ev := s.newCase(models.CaseTypePublicProsecution, "CR-2026-0312")
	entry := models.NewTimelineEntry(c.ID, models.StageCourtTrial, s.prosecutor, "", time.Now())
	_, err := s.cases.ApplyTransition(s.ctx, c.ID, models.StageProsecutorate, models.StageCourtTrial, entry)
	s.Require().NoError(err)

	_, err = s.svc.Create(s.ctx, s.lawyer, CreateRequest{
		CaseID:     c.ID,
		EvidenceID: ev.ID,
		Content:    "late objection",
	})
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	s.Contains(dErrors.Message(err), "wrong stage")
}

func (s *ObjectionServiceSuite) TestCreateAgainstForeignEvidenceIsBadRequest() {
	c, _ := s.newCase(models.CaseTypePublicProsecution, "CR-2026-0313")
	_, foreignEv := s.newCase(models.CaseTypePublicProsecution, "CR-2026-0314")

	_, err := s.svc.Create(s.ctx, s.lawyer, CreateRequest{
		CaseID:     c.ID,
		EvidenceID: foreignEv.ID,
		Content:    "wrong exhibit",
	})
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func (s *ObjectionServiceSuite) TestHandleByAssignedJudge() {
	c, ev := s.newCase(models.CaseTypePublicProsecution, "CR-2026-0315")
	o, err := s.svc.Create(s.ctx, s.lawyer, CreateRequest{
		CaseID:     c.ID,
		EvidenceID: ev.ID,
		Content:    "hearsay",
	})
	s.Require().NoError(err)

	ruled, err := s.svc.Handle(s.ctx, s.judge, o.ID, HandleRequest{Outcome: true, Result: "objection sustained"})
	s.Require().NoError(err)
	s.Equal(StatusAccepted, ruled.Status)
	s.Require().NotNil(ruled.HandlerID)
	s.Equal(s.judge.ID, *ruled.HandlerID)
	s.NotNil(ruled.HandledAt)
	s.True(ruled.Outcome)
	s.Equal("objection sustained", ruled.Result)
}

func (s *ObjectionServiceSuite) TestHandleByOtherJudgeIsForbidden() {
	c, ev := s.newCase(models.CaseTypePublicProsecution, "CR-2026-0316")
	o, err := s.svc.Create(s.ctx, s.lawyer, CreateRequest{
		CaseID:     c.ID,
		EvidenceID: ev.ID,
		Content:    "hearsay",
	})
	s.Require().NoError(err)

	otherJudge := identity.Identity{ID: id.NewActorID(), Role: identity.RoleJudge}
	_, err = s.svc.Handle(s.ctx, otherJudge, o.ID, HandleRequest{Outcome: false, Result: "overruled"})
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	s.Contains(dErrors.Message(err), "not the judge assigned")
}

func (s *ObjectionServiceSuite) TestHandleTwiceIsInvalidState() {
	c, ev := s.newCase(models.CaseTypePublicProsecution, "CR-2026-0317")
	o, err := s.svc.Create(s.ctx, s.lawyer, CreateRequest{
		CaseID:     c.ID,
		EvidenceID: ev.ID,
		Content:    "hearsay",
	})
	s.Require().NoError(err)

	_, err = s.svc.Handle(s.ctx, s.judge, o.ID, HandleRequest{Outcome: false, Result: "overruled"})
	s.Require().NoError(err)

	_, err = s.svc.Handle(s.ctx, s.judge, o.ID, HandleRequest{Outcome: true, Result: "reconsidered"})
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
}

func (s *ObjectionServiceSuite) TestUpdateAndDeletePendingOnly() {
	c, ev := s.newCase(models.CaseTypePublicProsecution, "CR-2026-0318")
	o, err := s.svc.Create(s.ctx, s.lawyer, CreateRequest{
		CaseID:     c.ID,
		EvidenceID: ev.ID,
		Content:    "hearsay",
	})
	s.Require().NoError(err)

	content := "hearsay, amended"
	updated, err := s.svc.Update(s.ctx, s.lawyer, o.ID, UpdateRequest{Content: &content})
	s.Require().NoError(err)
	s.Equal(content, updated.Content)

	_, err = s.svc.Handle(s.ctx, s.judge, o.ID, HandleRequest{Outcome: false, Result: "overruled"})
	s.Require().NoError(err)

	err = s.svc.Delete(s.ctx, s.lawyer, o.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
}
