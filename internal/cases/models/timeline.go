package models

import (
	"time"

	"github.com/google/uuid"

	"docket/internal/identity"
	id "docket/pkg/domain"
)

// TimelineEntry is an append-only record of a case reaching a stage. Exactly
// one entry is written per successful transition, plus the initial
// INVESTIGATION entry at creation. Entries are never mutated or deleted.
type TimelineEntry struct {
	ID           uuid.UUID     `json:"id"`
	CaseID       id.CaseID     `json:"case_id"`
	Stage        Stage         `json:"stage"`
	OperatorID   id.ActorID    `json:"operator_id"`
	OperatorRole identity.Role `json:"operator_role"`
	Comment      string        `json:"comment,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}

// NewTimelineEntry records the operator who moved the case into stage.
func NewTimelineEntry(caseID id.CaseID, stage Stage, operator identity.Identity, comment string, now time.Time) TimelineEntry {
	return TimelineEntry{
		ID:           uuid.New(),
		CaseID:       caseID,
		Stage:        stage,
		OperatorID:   operator.ID,
		OperatorRole: operator.Role,
		Comment:      comment,
		CreatedAt:    now,
	}
}
