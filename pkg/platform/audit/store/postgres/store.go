// Package postgres appends audit events to the audit_events table.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "bloodbank/pkg/domain"
	audit "bloodbank/pkg/platform/audit"
)

const eventColumns = `occurred_at, action, actor_id, resource, subject, decision, reason, email, device, request_id`

const (
	insertEvent = `INSERT INTO audit_events (id, ` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	selectRecent = `SELECT ` + eventColumns + ` FROM audit_events ORDER BY occurred_at DESC LIMIT $1`
)

// maxRecent caps ListRecent so a careless caller cannot pull the whole table.
const maxRecent = 1000

// Store is an append-only audit sink backed by PostgreSQL.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append writes event under a fresh row ID. Anonymous events store a NULL actor.
func (s *Store) Append(ctx context.Context, e audit.Event) error {
	actor := uuid.NullUUID{UUID: uuid.UUID(e.ActorID), Valid: !e.ActorID.IsNil()}
	_, err := s.db.ExecContext(ctx, insertEvent,
		uuid.New(), e.Timestamp, string(e.Action), actor,
		e.Resource, e.Subject, e.Decision, e.Reason, e.Email, e.Device, e.RequestID,
	)
	if err != nil {
		return fmt.Errorf("append %s audit event: %w", e.Action, err)
	}
	return nil
}

// ListRecent returns up to limit events, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	limit = min(max(limit, 0), maxRecent)
	rows, err := s.db.QueryContext(ctx, selectRecent, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	events := make([]audit.Event, 0, limit)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	return events, nil
}

func scanEvent(rows *sql.Rows) (audit.Event, error) {
	var (
		e      audit.Event
		action string
		actor  uuid.NullUUID
	)
	err := rows.Scan(&e.Timestamp, &action, &actor,
		&e.Resource, &e.Subject, &e.Decision, &e.Reason, &e.Email, &e.Device, &e.RequestID)
	if err != nil {
		return e, fmt.Errorf("scan audit event: %w", err)
	}
	e.Action = audit.Action(action)
	if actor.Valid {
		e.ActorID = id.UserID(actor.UUID)
	}
	return e, nil
}
