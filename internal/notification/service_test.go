package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	casemodels "docket/internal/cases/models"
	"docket/internal/identity"
	id "docket/pkg/domain"
	dErrors "docket/pkg/domain-errors"
	"docket/pkg/requestcontext"
)

// failingStore wraps the memory store and rejects creates for one recipient.
type failingStore struct {
	*MemoryStore
	rejectRecipient id.ActorID
}

func (s *failingStore) Create(ctx context.Context, n *Notification) error {
	if n.RecipientID == s.rejectRecipient {
		return errors.New("disk full")
	}
	return s.MemoryStore.Create(ctx, n)
}

type NotificationSuite struct {
	suite.Suite

	ctx   context.Context
	now   time.Time
	store *MemoryStore
	svc   *Service

	police     id.ActorID
	prosecutor id.ActorID
	lawyer     id.ActorID
	judge      id.ActorID
}

func TestNotificationSuite(t *testing.T) {
	suite.Run(t, new(NotificationSuite))
}

func (s *NotificationSuite) SetupTest() {
	s.now = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.store = NewMemoryStore()
	s.svc = New(s.store)

	s.police = id.NewActorID()
	s.prosecutor = id.NewActorID()
	s.lawyer = id.NewActorID()
	s.judge = id.NewActorID()
}

func (s *NotificationSuite) testCase() *casemodels.Case {
	judge := s.judge
	return &casemodels.Case{
		ID:                 id.NewCaseID(),
		Number:             "CASE-1",
		Type:               casemodels.CaseTypePublicProsecution,
		Stage:              casemodels.StageInvestigation,
		PoliceID:           s.police,
		ProsecutorIDs:      []id.ActorID{s.prosecutor},
		DefendantLawyerIDs: []id.ActorID{s.lawyer},
		JudgeID:            &judge,
	}
}

func (s *NotificationSuite) TestNotifyFansOutToAllButActor() {
	c := s.testCase()
	event := Event{Type: TypeCaseUpdate, Priority: PriorityNormal, Title: "case advanced", CaseID: c.ID}

	outcomes := s.svc.Notify(s.ctx, c, event, s.police)
	s.Require().Len(outcomes, 3)
	for _, outcome := range outcomes {
		s.True(outcome.Delivered)
		s.NotEqual(s.police, outcome.RecipientID)
	}

	list, err := s.store.ListByRecipient(s.ctx, s.lawyer)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal("case advanced", list[0].Title)
	s.Equal(PushPending, list[0].PushState)
	s.Equal(s.now, list[0].CreatedAt)

	mine, err := s.store.ListByRecipient(s.ctx, s.police)
	s.Require().NoError(err)
	s.Empty(mine)
}

func (s *NotificationSuite) TestNotifyDeduplicatesRecipients() {
	// One actor serving as both plaintiff and defendant counsel still gets
	// a single notification.
	c := s.testCase()
	c.PlaintiffLawyerIDs = []id.ActorID{s.lawyer}

	outcomes := s.svc.Notify(s.ctx, c, Event{Type: TypeCaseUpdate, Title: "t", CaseID: c.ID}, s.police)
	s.Len(outcomes, 3)

	list, err := s.store.ListByRecipient(s.ctx, s.lawyer)
	s.Require().NoError(err)
	s.Len(list, 1)
}

func (s *NotificationSuite) TestNotifyToleratesSingleFailure() {
	store := &failingStore{MemoryStore: NewMemoryStore(), rejectRecipient: s.lawyer}
	svc := New(store)
	c := s.testCase()

	outcomes := svc.Notify(s.ctx, c, Event{Type: TypeCaseUpdate, Title: "t", CaseID: c.ID}, s.police)
	s.Require().Len(outcomes, 3)

	var delivered, failed int
	for _, outcome := range outcomes {
		if outcome.Delivered {
			delivered++
		} else {
			failed++
			s.Equal(s.lawyer, outcome.RecipientID)
			s.Contains(outcome.Reason, "disk full")
		}
	}
	s.Equal(2, delivered)
	s.Equal(1, failed)
}

func (s *NotificationSuite) TestNotifyNoRecipients() {
	c := s.testCase()
	c.ProsecutorIDs = nil
	c.DefendantLawyerIDs = nil
	c.JudgeID = nil

	outcomes := s.svc.Notify(s.ctx, c, Event{Type: TypeCaseUpdate, Title: "t", CaseID: c.ID}, s.police)
	s.Nil(outcomes)
}

func (s *NotificationSuite) TestMarkReadRecipientOnly() {
	c := s.testCase()
	s.svc.Notify(s.ctx, c, Event{Type: TypeCaseUpdate, Title: "t", CaseID: c.ID}, s.police)

	list, err := s.store.ListByRecipient(s.ctx, s.lawyer)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	notifID := list[0].ID

	err = s.svc.MarkRead(s.ctx, identity.Identity{ID: s.judge, Role: identity.RoleJudge}, notifID)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	err = s.svc.MarkRead(s.ctx, identity.Identity{ID: s.lawyer, Role: identity.RoleLawyer}, notifID)
	s.Require().NoError(err)

	n, err := s.store.FindByID(s.ctx, notifID)
	s.Require().NoError(err)
	s.True(n.Read)
	s.Require().NotNil(n.ReadAt)
	s.Equal(s.now, *n.ReadAt)
}

func (s *NotificationSuite) TestMarkReadUnknownNotification() {
	err := s.svc.MarkRead(s.ctx, identity.Identity{ID: s.lawyer, Role: identity.RoleLawyer}, id.NewNotificationID())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *NotificationSuite) TestListReturnsOwnOnly() {
	c := s.testCase()
	s.svc.Notify(s.ctx, c, Event{Type: TypeCaseUpdate, Title: "t", CaseID: c.ID}, s.police)

	list, err := s.svc.List(s.ctx, identity.Identity{ID: s.prosecutor, Role: identity.RoleProsecutor})
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(s.prosecutor, list[0].RecipientID)
}

func (s *NotificationSuite) TestCreateDirectAdminOnly() {
	admin := identity.Identity{ID: id.NewActorID(), Role: identity.RoleAdmin}

	n, err := s.svc.CreateDirect(s.ctx, admin, s.lawyer, Event{Title: "maintenance window"})
	s.Require().NoError(err)
	s.Equal(TypeSystem, n.Type)
	s.Equal(PriorityNormal, n.Priority)
	s.Equal(s.lawyer, n.RecipientID)

	_, err = s.svc.CreateDirect(s.ctx, identity.Identity{ID: s.police, Role: identity.RolePolice}, s.lawyer, Event{Title: "t"})
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	_, err = s.svc.CreateDirect(s.ctx, admin, id.ActorID{}, Event{Title: "t"})
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))

	_, err = s.svc.CreateDirect(s.ctx, admin, s.lawyer, Event{})
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}
