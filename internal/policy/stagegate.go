package policy

import (
	"docket/internal/cases/models"
	"docket/internal/identity"
	dErrors "docket/pkg/domain-errors"
)

// Entity names an entity type governed by the stage gate.
type Entity string

const (
	EntityEvidence        Entity = "evidence"
	EntityCorrection      Entity = "correction"
	EntityDefenseMaterial Entity = "defense_material"
	EntityObjection       Entity = "objection"
)

// Operation is the class of action being gated. Create, update, and delete
// are all mutations; reads are views.
type Operation string

const (
	OpMutate Operation = "mutate"
	OpView   Operation = "view"
)

type stageSet map[models.Stage]bool

func stages(list ...models.Stage) stageSet {
	set := make(stageSet, len(list))
	for _, s := range list {
		set[s] = true
	}
	return set
}

var allStages = stages(models.StageInvestigation, models.StageProsecutorate, models.StageCourtTrial, models.StageClosed)

// ruleTable holds the per-role stage sets for one entity type. A role absent
// from a map may never perform that operation class on the entity.
type ruleTable struct {
	mutate map[identity.Role]stageSet
	view   map[identity.Role]stageSet
}

var evidenceRules = ruleTable{
	mutate: map[identity.Role]stageSet{
		identity.RolePolice:     stages(models.StageInvestigation),
		identity.RoleProsecutor: stages(models.StageProsecutorate, models.StageCourtTrial),
		identity.RoleJudge:      stages(models.StageCourtTrial),
		identity.RoleLawyer:     stages(models.StageInvestigation, models.StageProsecutorate, models.StageCourtTrial),
	},
	view: map[identity.Role]stageSet{
		identity.RolePolice:     stages(models.StageInvestigation),
		identity.RoleProsecutor: stages(models.StageProsecutorate, models.StageCourtTrial, models.StageClosed),
		identity.RoleJudge:      stages(models.StageCourtTrial, models.StageClosed),
		identity.RoleLawyer:     stages(models.StageInvestigation, models.StageProsecutorate, models.StageCourtTrial),
	},
}

// Corrections are a prosecutor instrument: only the assigned prosecutor may
// create or modify, and only while the case sits with the prosecutorate.
// Every participant may read them at any stage.
var correctionRules = ruleTable{
	mutate: map[identity.Role]stageSet{
		identity.RoleProsecutor: stages(models.StageProsecutorate),
	},
	view: map[identity.Role]stageSet{
		identity.RolePolice:     allStages,
		identity.RoleProsecutor: allStages,
		identity.RoleJudge:      allStages,
		identity.RoleLawyer:     allStages,
	},
}

// Defense material is authored by lawyers during trial; the bench and the
// other parties may additionally review it during investigation and after
// closure.
var defenseMaterialRules = ruleTable{
	mutate: map[identity.Role]stageSet{
		identity.RoleLawyer: stages(models.StageCourtTrial),
	},
	view: map[identity.Role]stageSet{
		identity.RoleLawyer:     stages(models.StageCourtTrial),
		identity.RolePolice:     stages(models.StageInvestigation, models.StageCourtTrial, models.StageClosed),
		identity.RoleProsecutor: stages(models.StageInvestigation, models.StageCourtTrial, models.StageClosed),
		identity.RoleJudge:      stages(models.StageInvestigation, models.StageCourtTrial, models.StageClosed),
	},
}

// objectionRules depend on the case type: lawyers may object on any case,
// prosecutors only on public prosecution cases. Viewing is participant-gated
// with no extra stage restriction.
func objectionRules(caseType models.CaseType) ruleTable {
	mutate := map[identity.Role]stageSet{
		identity.RoleLawyer: stages(models.StageProsecutorate),
	}
	if caseType == models.CaseTypePublicProsecution {
		mutate[identity.RoleProsecutor] = stages(models.StageProsecutorate)
	}
	return ruleTable{
		mutate: mutate,
		view: map[identity.Role]stageSet{
			identity.RolePolice:     allStages,
			identity.RoleProsecutor: allStages,
			identity.RoleJudge:      allStages,
			identity.RoleLawyer:     allStages,
		},
	}
}

func rulesFor(entity Entity, caseType models.CaseType) ruleTable {
	switch entity {
	case EntityEvidence:
		return evidenceRules
	case EntityCorrection:
		return correctionRules
	case EntityDefenseMaterial:
		return defenseMaterialRules
	case EntityObjection:
		return objectionRules(caseType)
	default:
		return ruleTable{}
	}
}

// Authorize answers "may this actor perform this operation class on this
// entity type given the case's current stage". Checks run in a fixed order:
// authentication, participant membership, the closed-case mutation guard,
// then the entity's role×stage table. Denials carry a reason distinguishing
// "not a participant" from "wrong role" from "wrong stage".
//
// Ownership of a specific record (only the uploader may modify it) is layered
// on top by the owning service; the gate only sees case, actor, and entity
// type.
func Authorize(c *models.Case, actor identity.Identity, entity Entity, op Operation) error {
	if !actor.Valid() {
		return dErrors.New(dErrors.CodeUnauthorized, "missing or invalid identity")
	}
	if !IsParticipant(c, actor) {
		return dErrors.New(dErrors.CodeForbidden, "not a participant of this case")
	}
	if op == OpMutate && c.Stage.Terminal() {
		return dErrors.New(dErrors.CodeForbidden, "case is closed")
	}

	rules := rulesFor(entity, c.Type)
	var roleStages map[identity.Role]stageSet
	switch op {
	case OpMutate:
		roleStages = rules.mutate
	case OpView:
		roleStages = rules.view
	default:
		return dErrors.Newf(dErrors.CodeInternal, "unknown operation %q", op)
	}

	allowed, ok := roleStages[actor.Role]
	if !ok {
		return dErrors.Newf(dErrors.CodeForbidden, "role %s may not %s %s records", actor.Role, op, entity)
	}
	if !allowed[c.Stage] {
		return dErrors.Newf(dErrors.CodeForbidden, "wrong stage: %s %s is not permitted for %s while the case is in %s", entity, op, actor.Role, c.Stage)
	}
	return nil
}
