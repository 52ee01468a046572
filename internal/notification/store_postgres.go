package notification

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	id "docket/pkg/domain"
	"docket/pkg/platform/sentinel"
)

// PostgresStore persists notifications in PostgreSQL.
//
// Schema:
//
//	CREATE TABLE notifications (
//	    id            UUID PRIMARY KEY,
//	    recipient_id  UUID NOT NULL,
//	    type          TEXT NOT NULL,
//	    priority      TEXT NOT NULL,
//	    title         TEXT NOT NULL,
//	    message       TEXT NOT NULL DEFAULT '',
//	    case_id       UUID,
//	    evidence_id   UUID,
//	    objection_id  UUID,
//	    read          BOOLEAN NOT NULL DEFAULT FALSE,
//	    read_at       TIMESTAMPTZ,
//	    push_state    TEXT NOT NULL,
//	    created_at    TIMESTAMPTZ NOT NULL
//	);
//	CREATE INDEX notifications_recipient_idx ON notifications (recipient_id, created_at DESC);
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Create(ctx context.Context, n *Notification) error {
	var evidenceID, objectionID *uuid.UUID
	if n.EvidenceID != nil {
		v := uuid.UUID(*n.EvidenceID)
		evidenceID = &v
	}
	if n.ObjectionID != nil {
		v := uuid.UUID(*n.ObjectionID)
		objectionID = &v
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO notifications
			(id, recipient_id, type, priority, title, message, case_id, evidence_id, objection_id, read, read_at, push_state, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		uuid.UUID(n.ID), uuid.UUID(n.RecipientID), string(n.Type), string(n.Priority),
		n.Title, n.Message, uuid.UUID(n.CaseID), evidenceID, objectionID,
		n.Read, n.ReadAt, string(n.PushState), n.CreatedAt,
	)
	return err
}

func (s *PostgresStore) FindByID(ctx context.Context, notifID id.NotificationID) (*Notification, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, recipient_id, type, priority, title, message, case_id, evidence_id, objection_id, read, read_at, push_state, created_at
		FROM notifications WHERE id = $1`, uuid.UUID(notifID))
	return scanNotification(row)
}

func (s *PostgresStore) ListByRecipient(ctx context.Context, recipient id.ActorID) ([]*Notification, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, recipient_id, type, priority, title, message, case_id, evidence_id, objection_id, read, read_at, push_state, created_at
		FROM notifications WHERE recipient_id = $1 ORDER BY created_at DESC`, uuid.UUID(recipient))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *PostgresStore) MarkRead(ctx context.Context, notifID id.NotificationID, readAt time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE notifications SET read = TRUE, read_at = $2 WHERE id = $1`,
		uuid.UUID(notifID), readAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) SetPushState(ctx context.Context, notifID id.NotificationID, state PushState) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE notifications SET push_state = $2 WHERE id = $1`,
		uuid.UUID(notifID), string(state))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNotification(row rowScanner) (*Notification, error) {
	var (
		n                      Notification
		notifID, recipient     uuid.UUID
		caseID                 uuid.UUID
		evidenceID, objection  *uuid.UUID
		notifType, prio, state string
	)
	err := row.Scan(&notifID, &recipient, &notifType, &prio, &n.Title, &n.Message,
		&caseID, &evidenceID, &objection, &n.Read, &n.ReadAt, &state, &n.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	n.ID = id.NotificationID(notifID)
	n.RecipientID = id.ActorID(recipient)
	n.Type = Type(notifType)
	n.Priority = Priority(prio)
	n.CaseID = id.CaseID(caseID)
	if evidenceID != nil {
		v := id.EvidenceID(*evidenceID)
		n.EvidenceID = &v
	}
	if objection != nil {
		v := id.ObjectionID(*objection)
		n.ObjectionID = &v
	}
	n.PushState = PushState(state)
	return &n, nil
}
