package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/skirmish/internal/game/session"
	"github.com/cory-johannsen/skirmish/internal/store"
)

// SessionRepository stores whole sessions as JSONB documents. status and
// round_number are duplicated into columns for querying.
// It implements store.Store.
type SessionRepository struct {
	db *pgxpool.Pool
}

var (
	_ store.Store         = (*SessionRepository)(nil)
	_ store.StatusCounter = (*SessionRepository)(nil)
)

// NewSessionRepository creates a SessionRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: db}
}

// Get loads the session with the given id.
//
// Postcondition: Returns a validated session, or an error wrapping store.ErrNotFound.
// Ids that are not UUIDs can never be stored and are reported as not found.
func (r *SessionRepository) Get(ctx context.Context, id string) (*session.GameSession, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	var state []byte
	err := r.db.QueryRow(ctx, `SELECT state FROM game_sessions WHERE id = $1`, id).Scan(&state)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying session %s: %w", id, err)
	}
	return store.Decode(state)
}

// Put inserts s or replaces the stored copy.
//
// Precondition: s.ID must be a UUID.
func (r *SessionRepository) Put(ctx context.Context, s *session.GameSession) error {
	state, err := store.Encode(s)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO game_sessions (id, status, round_number, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET status = EXCLUDED.status,
		    round_number = EXCLUDED.round_number,
		    state = EXCLUDED.state,
		    updated_at = EXCLUDED.updated_at`,
		s.ID, string(s.Status), s.RoundNumber, state, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upserting session %s: %w", s.ID, err)
	}
	return nil
}

// Delete removes the session with the given id. Unknown ids are not an error.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return nil
	}
	if _, err := r.db.Exec(ctx, `DELETE FROM game_sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	return nil
}

// CountByStatus returns how many stored sessions are in each status.
//
// Postcondition: Returns a map (may be empty) or a non-nil error.
func (r *SessionRepository) CountByStatus(ctx context.Context) (map[session.Status]int, error) {
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM game_sessions GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("counting sessions: %w", err)
	}
	defer rows.Close()

	out := make(map[session.Status]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scanning session count: %w", err)
		}
		out[session.Status(status)] = n
	}
	return out, rows.Err()
}

// Health pings the database.
func (r *SessionRepository) Health(ctx context.Context) error {
	return r.db.Ping(ctx)
}
