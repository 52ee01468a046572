package evidence

import (
	"strings"
	"time"

	"docket/internal/ledger"
	id "docket/pkg/domain"
	dErrors "docket/pkg/domain-errors"
)

// Category classifies the evidentiary artifact.
type Category string

const (
	CategoryDocument Category = "DOCUMENT"
	CategoryPhoto    Category = "PHOTO"
	CategoryVideo    Category = "VIDEO"
	CategoryAudio    Category = "AUDIO"
	CategoryPhysical Category = "PHYSICAL"
	CategoryOther    Category = "OTHER"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryDocument, CategoryPhoto, CategoryVideo, CategoryAudio, CategoryPhysical, CategoryOther:
		return true
	}
	return false
}

// Status tracks the verification lifecycle of one evidence record.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusVerified  Status = "VERIFIED"
	StatusRejected  Status = "REJECTED"
	StatusCorrected Status = "CORRECTED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusVerified, StatusRejected, StatusCorrected:
		return true
	}
	return false
}

// Evidence is an anchored artifact belonging to exactly one case. The anchor
// is assigned once at creation and never changes; a record without an anchor
// must never be persisted.
type Evidence struct {
	ID          id.EvidenceID `json:"id"`
	CaseID      id.CaseID     `json:"case_id"`
	Fingerprint string        `json:"fingerprint"`
	FileName    string        `json:"file_name"`
	FileType    string        `json:"file_type"`
	FileSize    int64         `json:"file_size"`
	Category    Category      `json:"category"`
	Status      Status        `json:"status"`
	UploaderID  id.ActorID    `json:"uploader_id"`
	Anchor      ledger.Anchor `json:"anchor"`

	// OriginalID points back to the evidence this record supersedes when it
	// was produced by an approved correction.
	OriginalID *id.EvidenceID `json:"original_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewEvidence constructs an Evidence record in PENDING status, validating the
// fields that must hold for every record regardless of who creates it.
func NewEvidence(evidenceID id.EvidenceID, caseID id.CaseID, fingerprint, fileName, fileType string, fileSize int64, category Category, uploader id.ActorID, anchor ledger.Anchor, now time.Time) (*Evidence, error) {
	fingerprint = strings.TrimSpace(fingerprint)
	fileName = strings.TrimSpace(fileName)
	if fingerprint == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "evidence fingerprint cannot be empty")
	}
	if fileName == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "evidence file name cannot be empty")
	}
	if fileSize < 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "evidence file size cannot be negative")
	}
	if !category.Valid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "unknown evidence category")
	}
	if anchor.ID == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "evidence requires a ledger anchor")
	}
	return &Evidence{
		ID:          evidenceID,
		CaseID:      caseID,
		Fingerprint: fingerprint,
		FileName:    fileName,
		FileType:    fileType,
		FileSize:    fileSize,
		Category:    category,
		Status:      StatusPending,
		UploaderID:  uploader,
		Anchor:      anchor,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Anchored reports whether the record carries a ledger anchor. Corrections
// may only target anchored evidence.
func (e *Evidence) Anchored() bool { return e.Anchor.ID != "" }

// IsUploader reports whether the actor id uploaded this record.
func (e *Evidence) IsUploader(actorID id.ActorID) bool { return e.UploaderID == actorID }

// Clone returns a copy so store reads never alias internal state.
func (e *Evidence) Clone() *Evidence {
	cp := *e
	if e.OriginalID != nil {
		orig := *e.OriginalID
		cp.OriginalID = &orig
	}
	return &cp
}
