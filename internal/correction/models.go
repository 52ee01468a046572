package correction

import (
	"strings"
	"time"

	"docket/internal/ledger"
	id "docket/pkg/domain"
	dErrors "docket/pkg/domain-errors"
)

// Status tracks the review lifecycle of a correction.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Correction supersedes an anchored evidence record with a new fingerprint.
// Its anchor is chained to the original evidence's anchor at submission time.
type Correction struct {
	ID                 id.CorrectionID `json:"id"`
	CaseID             id.CaseID       `json:"case_id"`
	OriginalEvidenceID id.EvidenceID   `json:"original_evidence_id"`
	Reason             string          `json:"reason"`
	NewFingerprint     string          `json:"new_fingerprint"`
	Status             Status          `json:"status"`
	SubmitterID        id.ActorID      `json:"submitter_id"`
	Anchor             ledger.Anchor   `json:"anchor"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// NewCorrection constructs a pending Correction, validating the record-level fields.
func NewCorrection(correctionID id.CorrectionID, caseID id.CaseID, original id.EvidenceID, reason, newFingerprint string, submitter id.ActorID, anchor ledger.Anchor, now time.Time) (*Correction, error) {
	reason = strings.TrimSpace(reason)
	newFingerprint = strings.TrimSpace(newFingerprint)
	if reason == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "correction reason cannot be empty")
	}
	if newFingerprint == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "correction fingerprint cannot be empty")
	}
	if original.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "correction requires an original evidence reference")
	}
	if anchor.ID == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "correction requires a ledger anchor")
	}
	return &Correction{
		ID:                 correctionID,
		CaseID:             caseID,
		OriginalEvidenceID: original,
		Reason:             reason,
		NewFingerprint:     newFingerprint,
		Status:             StatusPending,
		SubmitterID:        submitter,
		Anchor:             anchor,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

// IsSubmitter reports whether the actor id submitted this correction.
func (c *Correction) IsSubmitter(actorID id.ActorID) bool { return c.SubmitterID == actorID }

// Clone returns a copy so store reads never alias internal state.
func (c *Correction) Clone() *Correction {
	cp := *c
	return &cp
}
