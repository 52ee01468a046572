package audit

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"docket/internal/identity"
	id "docket/pkg/domain"
)

// PostgresStore persists audit events in PostgreSQL. The table is
// append-only; rows are never updated or deleted.
//
// Schema:
//
//	CREATE TABLE audit_events (
//	    id           UUID PRIMARY KEY,
//	    occurred_at  TIMESTAMPTZ NOT NULL,
//	    actor_id     UUID NOT NULL,
//	    actor_role   TEXT NOT NULL,
//	    action       TEXT NOT NULL,
//	    target_type  TEXT NOT NULL,
//	    target_id    TEXT NOT NULL,
//	    description  TEXT NOT NULL DEFAULT '',
//	    request_id   TEXT NOT NULL DEFAULT ''
//	);
//	CREATE INDEX audit_events_target_idx ON audit_events (target_type, target_id);
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO audit_events
			(id, occurred_at, actor_id, actor_role, action, target_type, target_id, description, request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		event.ID,
		event.Timestamp,
		event.ActorID.String(),
		string(event.ActorRole),
		string(event.Action),
		event.TargetType,
		event.TargetID,
		event.Description,
		event.RequestID,
	)
	return err
}

func (s *PostgresStore) ListByTarget(ctx context.Context, targetType, targetID string) ([]Event, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, occurred_at, actor_id, actor_role, action, target_type, target_id, description, request_id
		FROM audit_events
		WHERE target_type = $1 AND target_id = $2
		ORDER BY occurred_at`,
		targetType, targetID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var event Event
		var actorID, actorRole, action string
		if err := rows.Scan(&event.ID, &event.Timestamp, &actorID, &actorRole, &action,
			&event.TargetType, &event.TargetID, &event.Description, &event.RequestID); err != nil {
			return nil, err
		}
		if parsed, perr := id.ParseActorID(actorID); perr == nil {
			event.ActorID = parsed
		}
		event.ActorRole = identity.Role(actorRole)
		event.Action = Action(action)
		out = append(out, event)
	}
	return out, rows.Err()
}
