package defense

import (
	"strings"
	"time"

	"docket/internal/ledger"
	id "docket/pkg/domain"
	dErrors "docket/pkg/domain-errors"
)

// Material is a lawyer-submitted defense artifact with its own ledger anchor.
// Creation and modification are restricted to the trial stage by the stage
// gate; the model itself only guards record-level invariants.
type Material struct {
	ID          id.DefenseMaterialID `json:"id"`
	CaseID      id.CaseID            `json:"case_id"`
	Title       string               `json:"title"`
	Description string               `json:"description,omitempty"`
	Fingerprint string               `json:"fingerprint"`
	FileName    string               `json:"file_name"`
	FileType    string               `json:"file_type"`
	FileSize    int64                `json:"file_size"`
	SubmitterID id.ActorID           `json:"submitter_id"`
	Anchor      ledger.Anchor        `json:"anchor"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// NewMaterial constructs a defense material record, validating required fields.
func NewMaterial(materialID id.DefenseMaterialID, caseID id.CaseID, title, description, fingerprint, fileName, fileType string, fileSize int64, submitter id.ActorID, anchor ledger.Anchor, now time.Time) (*Material, error) {
	title = strings.TrimSpace(title)
	fingerprint = strings.TrimSpace(fingerprint)
	fileName = strings.TrimSpace(fileName)
	if title == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "defense material title cannot be empty")
	}
	if fingerprint == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "defense material fingerprint cannot be empty")
	}
	if fileName == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "defense material file name cannot be empty")
	}
	if fileSize < 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "defense material file size cannot be negative")
	}
	if anchor.ID == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "defense material requires a ledger anchor")
	}
	return &Material{
		ID:          materialID,
		CaseID:      caseID,
		Title:       title,
		Description: description,
		Fingerprint: fingerprint,
		FileName:    fileName,
		FileType:    fileType,
		FileSize:    fileSize,
		SubmitterID: submitter,
		Anchor:      anchor,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// IsSubmitter reports whether the actor id submitted this material.
func (m *Material) IsSubmitter(actorID id.ActorID) bool { return m.SubmitterID == actorID }

// Clone returns a copy so store reads never alias internal state.
func (m *Material) Clone() *Material {
	cp := *m
	return &cp
}
