package models

import (
	"strings"
	"time"

	"docket/internal/identity"
	id "docket/pkg/domain"
	dErrors "docket/pkg/domain-errors"
)

// CaseType distinguishes the two procedural tracks. The type fixes which
// participant sets must be populated at creation.
type CaseType string

const (
	CaseTypePublicProsecution CaseType = "PUBLIC_PROSECUTION"
	CaseTypeCivilLitigation   CaseType = "CIVIL_LITIGATION"
)

// Valid reports whether t is a known case type.
func (t CaseType) Valid() bool {
	return t == CaseTypePublicProsecution || t == CaseTypeCivilLitigation
}

// Stage is the case's position in the fixed procedural lifecycle. Stages only
// move forward through the chain; CLOSED is terminal.
type Stage string

const (
	StageInvestigation Stage = "INVESTIGATION"
	StageProsecutorate Stage = "PROSECUTORATE"
	StageCourtTrial    Stage = "COURT_TRIAL"
	StageClosed        Stage = "CLOSED"
)

var stageOrder = map[Stage]int{
	StageInvestigation: 0,
	StageProsecutorate: 1,
	StageCourtTrial:    2,
	StageClosed:        3,
}

// Valid reports whether s is a known stage.
func (s Stage) Valid() bool {
	_, ok := stageOrder[s]
	return ok
}

// Terminal reports whether the stage has no outbound transitions.
func (s Stage) Terminal() bool { return s == StageClosed }

// Before reports whether s precedes other in the lifecycle chain.
func (s Stage) Before(other Stage) bool {
	return stageOrder[s] < stageOrder[other]
}

// transitionTable keys (current stage, actor role) to the single stage that
// role may advance the case to. Pairs absent from the table have no legal
// transition.
var transitionTable = map[Stage]map[identity.Role]Stage{
	StageInvestigation: {identity.RolePolice: StageProsecutorate},
	StageProsecutorate: {identity.RoleProsecutor: StageCourtTrial},
	StageCourtTrial:    {identity.RoleJudge: StageClosed},
}

// AllowedTarget returns the stage the given role may move the case to from
// the given stage, or false when no transition is permitted.
func AllowedTarget(from Stage, role identity.Role) (Stage, bool) {
	target, ok := transitionTable[from][role]
	return target, ok
}

// CanTransition reports whether role may move a case from one stage to
// another.
func CanTransition(from Stage, role identity.Role, to Stage) bool {
	target, ok := transitionTable[from][role]
	return ok && target == to
}

// Case is the root aggregate: an immutable case number, a procedural stage,
// and role-partitioned participant sets.
//
// Invariants:
//   - Number and Type are immutable after construction
//   - PUBLIC_PROSECUTION requires non-empty prosecutor and defendant-lawyer
//     sets
//   - CIVIL_LITIGATION requires non-empty plaintiff- and defendant-lawyer
//     sets and must not carry prosecutors
//   - Stage only advances through the transitionTable; the store applies the
//     change with a compare-and-swap on the current stage
type Case struct {
	ID     id.CaseID `json:"id"`
	Number string    `json:"number"`
	Title  string    `json:"title"`
	Type   CaseType  `json:"type"`
	Stage  Stage     `json:"stage"`

	PoliceID           id.ActorID   `json:"police_id"`
	ProsecutorIDs      []id.ActorID `json:"prosecutor_ids,omitempty"`
	PlaintiffLawyerIDs []id.ActorID `json:"plaintiff_lawyer_ids,omitempty"`
	DefendantLawyerIDs []id.ActorID `json:"defendant_lawyer_ids,omitempty"`
	JudgeID            *id.ActorID  `json:"judge_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCase constructs a Case in the INVESTIGATION stage, validating the
// case-type participant invariants.
func NewCase(caseID id.CaseID, number, title string, caseType CaseType, police id.ActorID, prosecutors, plaintiffLawyers, defendantLawyers []id.ActorID, judge *id.ActorID, now time.Time) (*Case, error) {
	number = strings.TrimSpace(number)
	title = strings.TrimSpace(title)
	if number == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "case number cannot be empty")
	}
	if title == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "case title cannot be empty")
	}
	if !caseType.Valid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "unknown case type")
	}
	if police.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "case requires an owning police officer")
	}

	switch caseType {
	case CaseTypePublicProsecution:
		if len(prosecutors) == 0 {
			return nil, dErrors.New(dErrors.CodeInvariantViolation, "public prosecution case requires at least one prosecutor")
		}
		if len(defendantLawyers) == 0 {
			return nil, dErrors.New(dErrors.CodeInvariantViolation, "public prosecution case requires at least one defendant lawyer")
		}
	case CaseTypeCivilLitigation:
		if len(prosecutors) > 0 {
			return nil, dErrors.New(dErrors.CodeInvariantViolation, "civil litigation case must not carry prosecutors")
		}
		if len(plaintiffLawyers) == 0 {
			return nil, dErrors.New(dErrors.CodeInvariantViolation, "civil litigation case requires at least one plaintiff lawyer")
		}
		if len(defendantLawyers) == 0 {
			return nil, dErrors.New(dErrors.CodeInvariantViolation, "civil litigation case requires at least one defendant lawyer")
		}
	}

	return &Case{
		ID:                 caseID,
		Number:             number,
		Title:              title,
		Type:               caseType,
		Stage:              StageInvestigation,
		PoliceID:           police,
		ProsecutorIDs:      dedup(prosecutors),
		PlaintiffLawyerIDs: dedup(plaintiffLawyers),
		DefendantLawyerIDs: dedup(defendantLawyers),
		JudgeID:            judge,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

// IsOwner reports whether the actor id is the owning police officer.
func (c *Case) IsOwner(actorID id.ActorID) bool { return c.PoliceID == actorID }

// HasProsecutor reports whether the actor id is in the prosecutor set.
func (c *Case) HasProsecutor(actorID id.ActorID) bool {
	return contains(c.ProsecutorIDs, actorID)
}

// HasLawyer reports whether the actor id is in either lawyer set.
func (c *Case) HasLawyer(actorID id.ActorID) bool {
	return contains(c.PlaintiffLawyerIDs, actorID) || contains(c.DefendantLawyerIDs, actorID)
}

// IsJudge reports whether the actor id is the assigned judge.
func (c *Case) IsJudge(actorID id.ActorID) bool {
	return c.JudgeID != nil && *c.JudgeID == actorID
}

// ParticipantIDs returns every participant identity exactly once: the police
// owner, all prosecutors, all lawyers, and the judge if assigned.
func (c *Case) ParticipantIDs() []id.ActorID {
	all := make([]id.ActorID, 0, 2+len(c.ProsecutorIDs)+len(c.PlaintiffLawyerIDs)+len(c.DefendantLawyerIDs))
	all = append(all, c.PoliceID)
	all = append(all, c.ProsecutorIDs...)
	all = append(all, c.PlaintiffLawyerIDs...)
	all = append(all, c.DefendantLawyerIDs...)
	if c.JudgeID != nil {
		all = append(all, *c.JudgeID)
	}
	return dedup(all)
}

// Clone returns a deep copy so store reads never alias internal state.
func (c *Case) Clone() *Case {
	cp := *c
	cp.ProsecutorIDs = append([]id.ActorID(nil), c.ProsecutorIDs...)
	cp.PlaintiffLawyerIDs = append([]id.ActorID(nil), c.PlaintiffLawyerIDs...)
	cp.DefendantLawyerIDs = append([]id.ActorID(nil), c.DefendantLawyerIDs...)
	if c.JudgeID != nil {
		judge := *c.JudgeID
		cp.JudgeID = &judge
	}
	return &cp
}

func contains(set []id.ActorID, actorID id.ActorID) bool {
	for _, member := range set {
		if member == actorID {
			return true
		}
	}
	return false
}

func dedup(set []id.ActorID) []id.ActorID {
	if len(set) == 0 {
		return nil
	}
	seen := make(map[id.ActorID]bool, len(set))
	out := make([]id.ActorID, 0, len(set))
	for _, member := range set {
		if !seen[member] {
			seen[member] = true
			out = append(out, member)
		}
	}
	return out
}
