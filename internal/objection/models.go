package objection

import (
	"strings"
	"time"

	id "docket/pkg/domain"
	dErrors "docket/pkg/domain-errors"
)

// Status tracks whether the bench has ruled on the objection.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// Objection challenges one evidence record of a case. Raised during the
// prosecutorate stage; ruled on only by the case's assigned judge, at which
// point the handler fields are set exactly once.
type Objection struct {
	ID          id.ObjectionID `json:"id"`
	CaseID      id.CaseID      `json:"case_id"`
	EvidenceID  id.EvidenceID  `json:"evidence_id"`
	Content     string         `json:"content"`
	Status      Status         `json:"status"`
	SubmitterID id.ActorID     `json:"submitter_id"`

	HandlerID *id.ActorID `json:"handler_id,omitempty"`
	HandledAt *time.Time  `json:"handled_at,omitempty"`
	Outcome   bool        `json:"outcome"`
	Result    string      `json:"result,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewObjection constructs a pending Objection, validating the record-level fields.
func NewObjection(objectionID id.ObjectionID, caseID id.CaseID, evidenceID id.EvidenceID, content string, submitter id.ActorID, now time.Time) (*Objection, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "objection content cannot be empty")
	}
	if evidenceID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "objection requires an evidence reference")
	}
	return &Objection{
		ID:          objectionID,
		CaseID:      caseID,
		EvidenceID:  evidenceID,
		Content:     content,
		Status:      StatusPending,
		SubmitterID: submitter,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Handled reports whether a ruling has been recorded.
func (o *Objection) Handled() bool { return o.Status != StatusPending }

// IsSubmitter reports whether the actor id raised this objection.
func (o *Objection) IsSubmitter(actorID id.ActorID) bool { return o.SubmitterID == actorID }

// Clone returns a copy so store reads never alias internal state.
func (o *Objection) Clone() *Objection {
	cp := *o
	if o.HandlerID != nil {
		handler := *o.HandlerID
		cp.HandlerID = &handler
	}
	if o.HandledAt != nil {
		at := *o.HandledAt
		cp.HandledAt = &at
	}
	return &cp
}
