package http

import (
	"context"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"

	casemodels "docket/internal/cases/models"
	caseservice "docket/internal/cases/service"
	"docket/internal/evidence"
	"docket/internal/identity"
	"docket/internal/objection"
	id "docket/pkg/domain"
	dErrors "docket/pkg/domain-errors"
	"docket/pkg/platform/middleware/auth"
	"docket/pkg/testutil"
)

const testSigningKey = "router-test-signing-key"

type fakeCaseService struct {
	CaseService

	lastActor   identity.Identity
	lastCreate  caseservice.CreateCaseRequest
	lastCaseID  id.CaseID
	lastTarget  casemodels.Stage
	lastComment string

	result *casemodels.Case
	err    error
}

func (f *fakeCaseService) CreateCase(_ context.Context, actor identity.Identity, req caseservice.CreateCaseRequest) (*casemodels.Case, error) {
	f.lastActor = actor
	f.lastCreate = req
	return f.result, f.err
}

func (f *fakeCaseService) GetCase(_ context.Context, actor identity.Identity, caseID id.CaseID) (*casemodels.Case, error) {
	f.lastActor = actor
	f.lastCaseID = caseID
	return f.result, f.err
}

func (f *fakeCaseService) AdvanceCase(_ context.Context, actor identity.Identity, caseID id.CaseID, target casemodels.Stage, comment string) (*casemodels.Case, error) {
	f.lastActor = actor
	f.lastCaseID = caseID
	f.lastTarget = target
	f.lastComment = comment
	return f.result, f.err
}

func (f *fakeCaseService) DeleteCase(_ context.Context, actor identity.Identity, caseID id.CaseID) error {
	f.lastActor = actor
	f.lastCaseID = caseID
	return f.err
}

type fakeEvidenceService struct {
	EvidenceService

	lastCreate evidence.CreateRequest
	result     *evidence.Evidence
	err        error
}

func (f *fakeEvidenceService) Create(_ context.Context, _ identity.Identity, req evidence.CreateRequest) (*evidence.Evidence, error) {
	f.lastCreate = req
	return f.result, f.err
}

type fakeObjectionService struct {
	ObjectionService

	lastID     id.ObjectionID
	lastHandle objection.HandleRequest
	result     *objection.Objection
	err        error
}

func (f *fakeObjectionService) Handle(_ context.Context, _ identity.Identity, objectionID id.ObjectionID, req objection.HandleRequest) (*objection.Objection, error) {
	f.lastID = objectionID
	f.lastHandle = req
	return f.result, f.err
}

type fakeNotificationService struct {
	NotificationService

	lastRead id.NotificationID
	err      error
}

func (f *fakeNotificationService) MarkRead(_ context.Context, _ identity.Identity, notifID id.NotificationID) error {
	f.lastRead = notifID
	return f.err
}

type RouterSuite struct {
	suite.Suite

	cases         *fakeCaseService
	evidenceSvc   *fakeEvidenceService
	objections    *fakeObjectionService
	notifications *fakeNotificationService
	router        http.Handler

	police identity.Identity
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	s.cases = &fakeCaseService{}
	s.evidenceSvc = &fakeEvidenceService{}
	s.objections = &fakeObjectionService{}
	s.notifications = &fakeNotificationService{}
	s.router = NewRouter(Handlers{
		Cases:         s.cases,
		Evidence:      s.evidenceSvc,
		Objections:    s.objections,
		Notifications: s.notifications,
		Logger:        slog.Default(),
		Validator:     auth.NewHMACValidator(testSigningKey),
	})
	s.police = identity.Identity{ID: id.NewActorID(), Role: identity.RolePolice}
}

func (s *RouterSuite) token(actor identity.Identity) string {
	claims := auth.Claims{
		Role: string(actor.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSigningKey))
	s.Require().NoError(err)
	return signed
}

func (s *RouterSuite) authed(req *http.Request, actor identity.Identity) *http.Request {
	req.Header.Set("Authorization", "Bearer "+s.token(actor))
	return req
}

func (s *RouterSuite) TestHealthzIsOpen() {
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/healthz"))
	testutil.AssertStatus(s.T(), rr, http.StatusOK)
}

func (s *RouterSuite) TestMetricsIsOpen() {
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/metrics"))
	testutil.AssertStatus(s.T(), rr, http.StatusOK)
}

func (s *RouterSuite) TestMissingTokenIsRejected() {
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/notifications"))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
}

func (s *RouterSuite) TestGarbageTokenIsRejected() {
	req := testutil.NewRequest(s.T(), http.MethodGet, "/notifications")
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
}

func (s *RouterSuite) TestWrongKeyTokenIsRejected() {
	claims := auth.Claims{Role: "POLICE", RegisteredClaims: jwt.RegisteredClaims{Subject: id.NewActorID().String()}}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("some-other-key"))
	s.Require().NoError(err)

	req := testutil.NewRequest(s.T(), http.MethodGet, "/notifications")
	req.Header.Set("Authorization", "Bearer "+signed)
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
}

func (s *RouterSuite) TestCreateCase() {
	judgeID := id.NewActorID()
	s.cases.result = &casemodels.Case{ID: id.NewCaseID(), Number: "CASE-1", Stage: casemodels.StageInvestigation}

	prosecutor := id.NewActorID()
	lawyer := id.NewActorID()
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/cases", map[string]any{
		"number":               "CASE-1",
		"title":                "State v. Doe",
		"type":                 "PUBLIC_PROSECUTION",
		"prosecutor_ids":       []string{prosecutor.String()},
		"defendant_lawyer_ids": []string{lawyer.String()},
		"judge_id":             judgeID.String(),
	})
	rr := testutil.DoRequest(s.router, s.authed(req, s.police))

	testutil.AssertStatus(s.T(), rr, http.StatusCreated)
	s.Equal(s.police, s.cases.lastActor)
	s.Equal("CASE-1", s.cases.lastCreate.Number)
	s.Equal(casemodels.CaseTypePublicProsecution, s.cases.lastCreate.Type)
	s.Equal([]id.ActorID{prosecutor}, s.cases.lastCreate.ProsecutorIDs)
	s.Require().NotNil(s.cases.lastCreate.JudgeID)
	s.Equal(judgeID, *s.cases.lastCreate.JudgeID)

	created := testutil.UnmarshalResponse[casemodels.Case](s.T(), rr)
	s.Equal("CASE-1", created.Number)
}

func (s *RouterSuite) TestCreateCaseMalformedBody() {
	req := testutil.NewRequest(s.T(), http.MethodPost, "/cases")
	rr := testutil.DoRequest(s.router, s.authed(req, s.police))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
}

func (s *RouterSuite) TestServiceErrorsMapToStatus() {
	s.cases.err = dErrors.New(dErrors.CodeForbidden, "not a participant of this case")

	req := testutil.NewRequest(s.T(), http.MethodGet, "/cases/"+id.NewCaseID().String())
	rr := testutil.DoRequest(s.router, s.authed(req, s.police))

	testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, "forbidden")
	s.Equal("not a participant of this case", testutil.UnmarshalErrorResponse(s.T(), rr)["error_description"])
}

func (s *RouterSuite) TestMalformedCaseIDIsRejected() {
	req := testutil.NewRequest(s.T(), http.MethodGet, "/cases/not-a-uuid")
	rr := testutil.DoRequest(s.router, s.authed(req, s.police))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")
}

func (s *RouterSuite) TestAdvanceCase() {
	caseID := id.NewCaseID()
	s.cases.result = &casemodels.Case{ID: caseID, Stage: casemodels.StageProsecutorate}

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/cases/"+caseID.String()+"/transitions", map[string]string{
		"target_stage": "PROSECUTORATE",
		"comment":      "investigation complete",
	})
	rr := testutil.DoRequest(s.router, s.authed(req, s.police))

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	s.Equal(caseID, s.cases.lastCaseID)
	s.Equal(casemodels.StageProsecutorate, s.cases.lastTarget)
	s.Equal("investigation complete", s.cases.lastComment)
}

func (s *RouterSuite) TestDeleteCase() {
	caseID := id.NewCaseID()
	req := testutil.NewRequest(s.T(), http.MethodDelete, "/cases/"+caseID.String())
	rr := testutil.DoRequest(s.router, s.authed(req, s.police))

	testutil.AssertStatus(s.T(), rr, http.StatusNoContent)
	s.Equal(caseID, s.cases.lastCaseID)
}

func (s *RouterSuite) TestCreateEvidenceTakesCaseFromPath() {
	caseID := id.NewCaseID()
	s.evidenceSvc.result = &evidence.Evidence{ID: id.NewEvidenceID(), CaseID: caseID}

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/cases/"+caseID.String()+"/evidence", map[string]any{
		"fingerprint": "sha256:deadbeef",
		"file_name":   "scene.jpg",
		"file_type":   "image/jpeg",
		"file_size":   1024,
		"category":    "PHOTO",
	})
	rr := testutil.DoRequest(s.router, s.authed(req, s.police))

	testutil.AssertStatus(s.T(), rr, http.StatusCreated)
	s.Equal(caseID, s.evidenceSvc.lastCreate.CaseID)
	s.Equal("sha256:deadbeef", s.evidenceSvc.lastCreate.Fingerprint)
	s.Equal(evidence.CategoryPhoto, s.evidenceSvc.lastCreate.Category)
	s.Equal(int64(1024), s.evidenceSvc.lastCreate.FileSize)
}

func (s *RouterSuite) TestObjectionRuling() {
	objectionID := id.NewObjectionID()
	s.objections.result = &objection.Objection{ID: objectionID, Status: objection.StatusAccepted}

	judge := identity.Identity{ID: id.NewActorID(), Role: identity.RoleJudge}
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/objections/"+objectionID.String()+"/ruling", map[string]any{
		"outcome": true,
		"result":  "objection sustained",
	})
	rr := testutil.DoRequest(s.router, s.authed(req, judge))

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	s.Equal(objectionID, s.objections.lastID)
	s.True(s.objections.lastHandle.Outcome)
	s.Equal("objection sustained", s.objections.lastHandle.Result)
}

func (s *RouterSuite) TestMarkNotificationRead() {
	notifID := id.NewNotificationID()
	req := testutil.NewRequest(s.T(), http.MethodPost, "/notifications/"+notifID.String()+"/read")
	rr := testutil.DoRequest(s.router, s.authed(req, s.police))

	testutil.AssertStatus(s.T(), rr, http.StatusNoContent)
	s.Equal(notifID, s.notifications.lastRead)
}

func (s *RouterSuite) TestConflictMapsTo409() {
	s.cases.err = dErrors.New(dErrors.CodeConflict, "case stage changed concurrently, retry with current stage")

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/cases/"+id.NewCaseID().String()+"/transitions", map[string]string{
		"target_stage": "PROSECUTORATE",
	})
	rr := testutil.DoRequest(s.router, s.authed(req, s.police))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, "conflict")
}
