package registry

import (
	"strings"
	"time"

	"docket/internal/identity"
	id "docket/pkg/domain"
	dErrors "docket/pkg/domain-errors"
)

// AssignmentStatus is the lifecycle state of one role grant.
type AssignmentStatus string

const (
	AssignmentActive  AssignmentStatus = "ACTIVE"
	AssignmentRevoked AssignmentStatus = "REVOKED"
)

// RoleAssignment records a role grant for a wallet-style external address.
// At most one ACTIVE assignment exists per (address, role) pair; TxRef holds
// the ledger transaction of the grant and stays empty when anchoring failed
// at grant time (the soft-failure path).
type RoleAssignment struct {
	ID        id.AssignmentID  `json:"id"`
	Address   string           `json:"address"`
	Role      identity.Role    `json:"role"`
	Status    AssignmentStatus `json:"status"`
	TxRef     string           `json:"tx_ref,omitempty"`
	GrantedBy id.ActorID       `json:"granted_by"`
	GrantedAt time.Time        `json:"granted_at"`
	RevokedAt *time.Time       `json:"revoked_at,omitempty"`
}

// NewRoleAssignment constructs an active assignment, validating its fields.
func NewRoleAssignment(assignmentID id.AssignmentID, address string, role identity.Role, txRef string, grantedBy id.ActorID, now time.Time) (*RoleAssignment, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "assignment address cannot be empty")
	}
	if !role.Valid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "unknown role")
	}
	return &RoleAssignment{
		ID:        assignmentID,
		Address:   address,
		Role:      role,
		Status:    AssignmentActive,
		TxRef:     txRef,
		GrantedBy: grantedBy,
		GrantedAt: now,
	}, nil
}

// Active reports whether the grant is currently in force.
func (a *RoleAssignment) Active() bool { return a.Status == AssignmentActive }

// Clone returns a copy so store reads never alias internal state.
func (a *RoleAssignment) Clone() *RoleAssignment {
	cp := *a
	if a.RevokedAt != nil {
		at := *a.RevokedAt
		cp.RevokedAt = &at
	}
	return &cp
}
