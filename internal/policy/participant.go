package policy

import (
	"docket/internal/cases/models"
	"docket/internal/identity"
)

// IsParticipant decides whether the actor is a legitimate participant of the
// case, per role-specific membership rules:
//
//	POLICE      — the owning police identity
//	PROSECUTOR  — a member of the prosecutor set
//	JUDGE       — the assigned judge
//	LAWYER      — a member of either lawyer set
//	anything else — never a participant
//
// It is a pure function of the case's participant sets and the actor's role:
// no side effects, total, and absent/empty sets mean "not a participant"
// rather than an error.
func IsParticipant(c *models.Case, actor identity.Identity) bool {
	if c == nil || !actor.Valid() {
		return false
	}
	switch actor.Role {
	case identity.RolePolice:
		return c.IsOwner(actor.ID)
	case identity.RoleProsecutor:
		return c.HasProsecutor(actor.ID)
	case identity.RoleJudge:
		return c.IsJudge(actor.ID)
	case identity.RoleLawyer:
		return c.HasLawyer(actor.ID)
	default:
		return false
	}
}
