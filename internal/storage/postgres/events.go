package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/skirmish/internal/audit"
	"github.com/cory-johannsen/skirmish/internal/game/event"
)

// EventRepository appends combat events and reads them back. It implements
// audit.Writer and audit.Reader.
type EventRepository struct {
	db *pgxpool.Pool
}

var (
	_ audit.Writer = (*EventRepository)(nil)
	_ audit.Reader = (*EventRepository)(nil)
)

// NewEventRepository creates an EventRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

// Write appends e.
//
// Precondition: e.SessionID must be a UUID and e.Payload non-nil.
func (r *EventRepository) Write(ctx context.Context, e event.Event) error {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return fmt.Errorf("encoding %s payload: %w", e.Kind(), err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO combat_events (session_id, round, kind, payload, occurred_at)
		VALUES ($1, $2, $3, $4, $5)`,
		e.SessionID, e.Round, string(e.Kind()), payload, e.At,
	)
	if err != nil {
		return fmt.Errorf("inserting %s event: %w", e.Kind(), err)
	}
	return nil
}

// ListBySession returns every event for sessionID in insertion order.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error. A
// sessionID that is not a UUID has no events.
func (r *EventRepository) ListBySession(ctx context.Context, sessionID string) ([]audit.Record, error) {
	if _, err := uuid.Parse(sessionID); err != nil {
		return []audit.Record{}, nil
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, session_id, round, kind, payload, occurred_at
		FROM combat_events WHERE session_id = $1 ORDER BY id ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()

	out := []audit.Record{}
	for rows.Next() {
		var e audit.Record
		var kind string
		var payload []byte
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Round, &kind, &payload, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		e.Kind = event.Kind(kind)
		e.Payload = payload
		out = append(out, e)
	}
	return out, rows.Err()
}
