// Package domain holds the typed identifiers shared across docket modules.
// Distinct UUID wrappers keep a CaseID from ever being passed where an
// EvidenceID is expected; the compiler enforces the boundary.
package domain

import (
	"github.com/google/uuid"

	dErrors "docket/pkg/domain-errors"
)

type (
	// ActorID identifies an authenticated participant (police officer,
	// prosecutor, judge, lawyer, or admin).
	ActorID uuid.UUID

	// CaseID identifies a case aggregate.
	CaseID uuid.UUID

	// EvidenceID identifies an evidence record within a case.
	EvidenceID uuid.UUID

	// CorrectionID identifies a prosecutor correction.
	CorrectionID uuid.UUID

	// DefenseMaterialID identifies a lawyer-submitted defense material.
	DefenseMaterialID uuid.UUID

	// ObjectionID identifies an objection raised against evidence.
	ObjectionID uuid.UUID

	// NotificationID identifies a per-recipient notification record.
	NotificationID uuid.UUID

	// AssignmentID identifies a role assignment record.
	AssignmentID uuid.UUID
)

func (id ActorID) String() string           { return uuid.UUID(id).String() }
func (id CaseID) String() string            { return uuid.UUID(id).String() }
func (id EvidenceID) String() string        { return uuid.UUID(id).String() }
func (id CorrectionID) String() string      { return uuid.UUID(id).String() }
func (id DefenseMaterialID) String() string { return uuid.UUID(id).String() }
func (id ObjectionID) String() string       { return uuid.UUID(id).String() }
func (id NotificationID) String() string    { return uuid.UUID(id).String() }
func (id AssignmentID) String() string      { return uuid.UUID(id).String() }

func (id ActorID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id CaseID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id EvidenceID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id ObjectionID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id NotificationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// NewActorID returns a fresh random actor identifier.
func NewActorID() ActorID { return ActorID(uuid.New()) }

// NewCaseID returns a fresh random case identifier.
func NewCaseID() CaseID { return CaseID(uuid.New()) }

func NewEvidenceID() EvidenceID               { return EvidenceID(uuid.New()) }
func NewCorrectionID() CorrectionID           { return CorrectionID(uuid.New()) }
func NewDefenseMaterialID() DefenseMaterialID { return DefenseMaterialID(uuid.New()) }
func NewObjectionID() ObjectionID             { return ObjectionID(uuid.New()) }
func NewNotificationID() NotificationID       { return NotificationID(uuid.New()) }
func NewAssignmentID() AssignmentID           { return AssignmentID(uuid.New()) }

func parse(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be empty")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must be a valid UUID")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be the nil UUID")
	}
	return parsed, nil
}

// ParseActorID parses and validates an actor id from its string form.
func ParseActorID(raw string) (ActorID, error) {
	parsed, err := parse(raw)
	if err != nil {
		return ActorID{}, err
	}
	return ActorID(parsed), nil
}

// ParseCaseID parses and validates a case id from its string form.
func ParseCaseID(raw string) (CaseID, error) {
	parsed, err := parse(raw)
	if err != nil {
		return CaseID{}, err
	}
	return CaseID(parsed), nil
}

// ParseEvidenceID parses and validates an evidence id from its string form.
func ParseEvidenceID(raw string) (EvidenceID, error) {
	parsed, err := parse(raw)
	if err != nil {
		return EvidenceID{}, err
	}
	return EvidenceID(parsed), nil
}

// ParseCorrectionID parses and validates a correction id from its string form.
func ParseCorrectionID(raw string) (CorrectionID, error) {
	parsed, err := parse(raw)
	if err != nil {
		return CorrectionID{}, err
	}
	return CorrectionID(parsed), nil
}

// ParseDefenseMaterialID parses and validates a defense material id.
func ParseDefenseMaterialID(raw string) (DefenseMaterialID, error) {
	parsed, err := parse(raw)
	if err != nil {
		return DefenseMaterialID{}, err
	}
	return DefenseMaterialID(parsed), nil
}

// ParseObjectionID parses and validates an objection id from its string form.
func ParseObjectionID(raw string) (ObjectionID, error) {
	parsed, err := parse(raw)
	if err != nil {
		return ObjectionID{}, err
	}
	return ObjectionID(parsed), nil
}

// ParseNotificationID parses and validates a notification id.
func ParseNotificationID(raw string) (NotificationID, error) {
	parsed, err := parse(raw)
	if err != nil {
		return NotificationID{}, err
	}
	return NotificationID(parsed), nil
}
