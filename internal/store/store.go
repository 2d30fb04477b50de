// Package store holds game sessions between turns.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cory-johannsen/skirmish/internal/game/session"
)

// ErrNotFound is returned when no session exists for an id.
var ErrNotFound = errors.New("session not found")

// Store persists sessions by id. Implementations must return ErrNotFound
// (possibly wrapped) for unknown ids and must hand back sessions that pass
// GameSession.Validate.
type Store interface {
	Get(ctx context.Context, id string) (*session.GameSession, error)
	Put(ctx context.Context, s *session.GameSession) error
	Delete(ctx context.Context, id string) error
}

// StatusCounter is implemented by stores that can report how many sessions
// they hold in each status.
type StatusCounter interface {
	CountByStatus(ctx context.Context) (map[session.Status]int, error)
}

// Encode serialises s for storage.
//
// Precondition: s must be non-nil with a non-empty ID.
func Encode(s *session.GameSession) ([]byte, error) {
	if s == nil || s.ID == "" {
		return nil, errors.New("store: session must have an id")
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding session %s: %w", s.ID, err)
	}
	return data, nil
}

// Decode rebuilds a session from data and validates it.
//
// Postcondition: Returns a session that passes Validate, or an error.
func Decode(data []byte) (*session.GameSession, error) {
	var s session.GameSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decoding session: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("decoded session failed validation: %w", err)
	}
	return &s, nil
}
