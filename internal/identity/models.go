package identity

import (
	"strings"

	id "docket/pkg/domain"
	dErrors "docket/pkg/domain-errors"
)

// Role is the procedural role an authenticated actor holds. Roles are
// assigned out of band (see RoleAssignment) and arrive on each request via
// the auth middleware.
type Role string

const (
	RolePolice     Role = "POLICE"
	RoleProsecutor Role = "PROSECUTOR"
	RoleJudge      Role = "JUDGE"
	RoleLawyer     Role = "LAWYER"
	RoleAdmin      Role = "ADMIN"
)

var validRoles = map[Role]bool{
	RolePolice:     true,
	RoleProsecutor: true,
	RoleJudge:      true,
	RoleLawyer:     true,
	RoleAdmin:      true,
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool { return validRoles[r] }

// ParseRole normalizes and validates a role string from an external source
// (JWT claim, role grant request).
func ParseRole(raw string) (Role, error) {
	role := Role(strings.ToUpper(strings.TrimSpace(raw)))
	if !role.Valid() {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown role %q", raw)
	}
	return role, nil
}

// Identity is the opaque authenticated-actor descriptor consumed by every
// authorization decision. It is supplied by the auth middleware; core
// services never construct one from request payloads.
type Identity struct {
	ID   id.ActorID
	Role Role
}

// Valid reports whether the identity carries both an actor id and a known
// role. Services treat an invalid identity as unauthenticated.
func (i Identity) Valid() bool {
	return !i.ID.IsNil() && i.Role.Valid()
}
