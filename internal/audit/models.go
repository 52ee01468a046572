package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"docket/internal/identity"
	id "docket/pkg/domain"
)

// Action names a state-changing operation for the audit trail.
type Action string

const (
	ActionCaseCreated       Action = "case_created"
	ActionCaseAdvanced      Action = "case_advanced"
	ActionCaseUpdated       Action = "case_updated"
	ActionCaseDeleted       Action = "case_deleted"
	ActionEvidenceCreated   Action = "evidence_created"
	ActionEvidenceUpdated   Action = "evidence_updated"
	ActionEvidenceDeleted   Action = "evidence_deleted"
	ActionCorrectionCreated Action = "correction_created"
	ActionCorrectionUpdated Action = "correction_updated"
	ActionCorrectionDeleted Action = "correction_deleted"
	ActionDefenseCreated    Action = "defense_material_created"
	ActionDefenseUpdated    Action = "defense_material_updated"
	ActionDefenseDeleted    Action = "defense_material_deleted"
	ActionObjectionRaised   Action = "objection_raised"
	ActionObjectionHandled  Action = "objection_handled"
	ActionRoleGranted       Action = "role_granted"
	ActionRoleRevoked       Action = "role_revoked"
	ActionNotificationSent  Action = "notification_sent"
)

// Event is an immutable log entry describing a state change that already
// happened. Keep it transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID          uuid.UUID     `json:"id"`
	Timestamp   time.Time     `json:"timestamp"`
	ActorID     id.ActorID    `json:"actor_id"`
	ActorRole   identity.Role `json:"actor_role"`
	Action      Action        `json:"action"`
	TargetType  string        `json:"target_type"`
	TargetID    string        `json:"target_id"`
	Description string        `json:"description,omitempty"`
	RequestID   string        `json:"request_id,omitempty"`
}

// Store persists audit events. Append failures are tolerated by the worker;
// the trail is best-effort by design.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByTarget(ctx context.Context, targetType, targetID string) ([]Event, error)
}
