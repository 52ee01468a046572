package notification

import (
	"context"
	"time"

	id "docket/pkg/domain"
)

// Type classifies a notification for client-side routing.
type Type string

const (
	TypeCaseUpdate     Type = "CASE_UPDATE"
	TypeJudicialUpdate Type = "JUDICIAL_UPDATE"
	TypeSystem         Type = "SYSTEM"
)

// Priority hints at delivery urgency.
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// PushState tracks out-of-band push delivery for one notification.
type PushState string

const (
	PushPending PushState = "pending"
	PushSent    PushState = "sent"
	PushFailed  PushState = "failed"
)

// Notification targets exactly one recipient. Only the read flag and push
// state change after creation.
type Notification struct {
	ID          id.NotificationID `json:"id"`
	RecipientID id.ActorID        `json:"recipient_id"`
	Type        Type              `json:"type"`
	Priority    Priority          `json:"priority"`
	Title       string            `json:"title"`
	Message     string            `json:"message,omitempty"`
	CaseID      id.CaseID         `json:"case_id"`
	EvidenceID  *id.EvidenceID    `json:"evidence_id,omitempty"`
	ObjectionID *id.ObjectionID   `json:"objection_id,omitempty"`
	Read        bool              `json:"read"`
	ReadAt      *time.Time        `json:"read_at,omitempty"`
	PushState   PushState         `json:"push_state"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Event is what a service reports when a case changes; the fan-out turns it
// into one Notification per participant.
type Event struct {
	Type        Type
	Priority    Priority
	Title       string
	Message     string
	CaseID      id.CaseID
	EvidenceID  *id.EvidenceID
	ObjectionID *id.ObjectionID
}

// DeliveryOutcome reports the result of one recipient's notification
// creation. Fan-out never short-circuits; every attempt yields an outcome.
type DeliveryOutcome struct {
	RecipientID    id.ActorID
	NotificationID id.NotificationID
	Delivered      bool
	Reason         string
}

// Store persists notification records.
type Store interface {
	Create(ctx context.Context, n *Notification) error
	FindByID(ctx context.Context, notifID id.NotificationID) (*Notification, error)
	ListByRecipient(ctx context.Context, recipient id.ActorID) ([]*Notification, error)
	MarkRead(ctx context.Context, notifID id.NotificationID, readAt time.Time) error
	SetPushState(ctx context.Context, notifID id.NotificationID, state PushState) error
}

// Queue hands notification ids to the push delivery worker. Enqueue is
// best-effort; a queue failure leaves the notification in push state
// pending.
type Queue interface {
	Enqueue(ctx context.Context, notifID id.NotificationID) error
}
