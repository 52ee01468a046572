package http

import (
	"context"

	casemodels "docket/internal/cases/models"
	caseservice "docket/internal/cases/service"
	"docket/internal/correction"
	"docket/internal/defense"
	"docket/internal/evidence"
	"docket/internal/identity"
	"docket/internal/notification"
	"docket/internal/objection"
	"docket/internal/registry"
	id "docket/pkg/domain"
)

// Consumer-side views of the services, one per route group. Handlers depend
// on these so tests can substitute fakes without spinning up full services.

type CaseService interface {
	CreateCase(ctx context.Context, actor identity.Identity, req caseservice.CreateCaseRequest) (*casemodels.Case, error)
	AdvanceCase(ctx context.Context, actor identity.Identity, caseID id.CaseID, target casemodels.Stage, comment string) (*casemodels.Case, error)
	GetCase(ctx context.Context, actor identity.Identity, caseID id.CaseID) (*casemodels.Case, error)
	GetTimeline(ctx context.Context, actor identity.Identity, caseID id.CaseID) ([]casemodels.TimelineEntry, error)
	UpdateCase(ctx context.Context, actor identity.Identity, caseID id.CaseID, req caseservice.UpdateCaseRequest) (*casemodels.Case, error)
	DeleteCase(ctx context.Context, actor identity.Identity, caseID id.CaseID) error
}

type EvidenceService interface {
	Create(ctx context.Context, actor identity.Identity, req evidence.CreateRequest) (*evidence.Evidence, error)
	Get(ctx context.Context, actor identity.Identity, evidenceID id.EvidenceID) (*evidence.Evidence, error)
	ListByCase(ctx context.Context, actor identity.Identity, caseID id.CaseID) ([]*evidence.Evidence, error)
	Update(ctx context.Context, actor identity.Identity, evidenceID id.EvidenceID, req evidence.UpdateRequest) (*evidence.Evidence, error)
	Delete(ctx context.Context, actor identity.Identity, evidenceID id.EvidenceID) error
}

type CorrectionService interface {
	Create(ctx context.Context, actor identity.Identity, req correction.CreateRequest) (*correction.Correction, error)
	Get(ctx context.Context, actor identity.Identity, correctionID id.CorrectionID) (*correction.Correction, error)
	ListByCase(ctx context.Context, actor identity.Identity, caseID id.CaseID) ([]*correction.Correction, error)
	Update(ctx context.Context, actor identity.Identity, correctionID id.CorrectionID, req correction.UpdateRequest) (*correction.Correction, error)
	Delete(ctx context.Context, actor identity.Identity, correctionID id.CorrectionID) error
}

type DefenseService interface {
	Create(ctx context.Context, actor identity.Identity, req defense.CreateRequest) (*defense.Material, error)
	Get(ctx context.Context, actor identity.Identity, materialID id.DefenseMaterialID) (*defense.Material, error)
	ListByCase(ctx context.Context, actor identity.Identity, caseID id.CaseID) ([]*defense.Material, error)
	Update(ctx context.Context, actor identity.Identity, materialID id.DefenseMaterialID, req defense.UpdateRequest) (*defense.Material, error)
	Delete(ctx context.Context, actor identity.Identity, materialID id.DefenseMaterialID) error
}

type ObjectionService interface {
	Create(ctx context.Context, actor identity.Identity, req objection.CreateRequest) (*objection.Objection, error)
	Get(ctx context.Context, actor identity.Identity, objectionID id.ObjectionID) (*objection.Objection, error)
	ListByCase(ctx context.Context, actor identity.Identity, caseID id.CaseID) ([]*objection.Objection, error)
	Update(ctx context.Context, actor identity.Identity, objectionID id.ObjectionID, req objection.UpdateRequest) (*objection.Objection, error)
	Delete(ctx context.Context, actor identity.Identity, objectionID id.ObjectionID) error
	Handle(ctx context.Context, actor identity.Identity, objectionID id.ObjectionID, req objection.HandleRequest) (*objection.Objection, error)
}

type NotificationService interface {
	List(ctx context.Context, actor identity.Identity) ([]*notification.Notification, error)
	MarkRead(ctx context.Context, actor identity.Identity, notifID id.NotificationID) error
	CreateDirect(ctx context.Context, actor identity.Identity, recipient id.ActorID, event notification.Event) (*notification.Notification, error)
}

type RegistryService interface {
	GrantRole(ctx context.Context, actor identity.Identity, address string, role identity.Role) (*registry.RoleAssignment, error)
	RevokeRole(ctx context.Context, actor identity.Identity, address string, role identity.Role) (*registry.RoleAssignment, error)
	ListAssignments(ctx context.Context, actor identity.Identity, address string) ([]*registry.RoleAssignment, error)
}
