// Package session owns the game session state machine: creation, turn
// resolution, and victory/defeat detection.
package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/cory-johannsen/skirmish/internal/game/character"
)

// Status is the lifecycle state of a session.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusVictory    Status = "victory"
	StatusDefeat     Status = "defeat"
)

// Terminal reports whether no further turns are permitted.
func (s Status) Terminal() bool {
	return s == StatusVictory || s == StatusDefeat
}

// Valid reports whether s is one of the three known states.
func (s Status) Valid() bool {
	return s == StatusInProgress || s.Terminal()
}

// GameSession is the full state of one encounter. Only Engine mutates it;
// callers hold it between turns and must serialise access themselves.
//
// Invariant:
//   - Status == Victory implies CurrentOpponentIndex >= len(Opponents).
//   - Status == Defeat implies Player.Health == 0.
//   - Status == InProgress implies CurrentOpponentIndex < len(Opponents) and
//     Opponents[CurrentOpponentIndex].Health > 0.
type GameSession struct {
	ID                   string                 `json:"id"`
	Player               *character.Character   `json:"player"`
	Opponents            []*character.Character `json:"opponents"`
	CurrentOpponentIndex int                    `json:"current_opponent_index"`
	RoundNumber          int                    `json:"round_number"`
	Status               Status                 `json:"status"`
	AttacksResolved      int                    `json:"attacks_resolved"`
	CreatedAt            time.Time              `json:"created_at"`
	UpdatedAt            time.Time              `json:"updated_at"`
}

// CurrentOpponent returns the opponent the player is fighting, or nil once
// the roster is exhausted.
func (s *GameSession) CurrentOpponent() *character.Character {
	if s.CurrentOpponentIndex < 0 || s.CurrentOpponentIndex >= len(s.Opponents) {
		return nil
	}
	return s.Opponents[s.CurrentOpponentIndex]
}

// OpponentsRemaining counts opponents with health left.
func (s *GameSession) OpponentsRemaining() int {
	n := 0
	for _, o := range s.Opponents {
		if !o.IsDefeated() {
			n++
		}
	}
	return n
}

// Stats is a read-only summary of a session.
type Stats struct {
	Status             Status `json:"status"`
	RoundNumber        int    `json:"round_number"`
	PlayerHealth       int    `json:"player_health"`
	PlayerMaxHealth    int    `json:"player_max_health"`
	OpponentsRemaining int    `json:"opponents_remaining"`
	AttacksResolved    int    `json:"attacks_resolved"`
}

// Stats summarises s without mutating it. It is valid in every state.
func (s *GameSession) Stats() Stats {
	return Stats{
		Status:             s.Status,
		RoundNumber:        s.RoundNumber,
		PlayerHealth:       s.Player.Health,
		PlayerMaxHealth:    s.Player.MaxHealth,
		OpponentsRemaining: s.OpponentsRemaining(),
		AttacksResolved:    s.AttacksResolved,
	}
}

// Validate checks every structural and state invariant. Stores call it on
// sessions reconstructed from serialized form.
//
// Postcondition: Returns nil iff s is a state the Engine could have produced.
func (s *GameSession) Validate() error {
	var errs []string
	if strings.TrimSpace(s.ID) == "" {
		errs = append(errs, "id must not be empty")
	}
	if s.Player == nil {
		return fmt.Errorf("session %q: player must not be nil", s.ID)
	}
	if err := s.Player.Validate(); err != nil {
		errs = append(errs, err.Error())
	}
	if !s.Player.Role.IsPlayer() {
		errs = append(errs, fmt.Sprintf("player has role %q", s.Player.Role))
	}
	for i, o := range s.Opponents {
		if o == nil {
			errs = append(errs, fmt.Sprintf("opponent %d is nil", i))
			continue
		}
		if err := o.Validate(); err != nil {
			errs = append(errs, err.Error())
		}
		if o.Role.IsPlayer() {
			errs = append(errs, fmt.Sprintf("opponent %d has the player role", i))
		}
		if i < s.CurrentOpponentIndex && !o.IsDefeated() {
			errs = append(errs, fmt.Sprintf("opponent %d is behind the current index but alive", i))
		}
	}
	if s.RoundNumber < 1 {
		errs = append(errs, fmt.Sprintf("round_number must be >= 1, got %d", s.RoundNumber))
	}
	if s.AttacksResolved < 0 {
		errs = append(errs, "attacks_resolved must not be negative")
	}
	if s.CurrentOpponentIndex < 0 || s.CurrentOpponentIndex > len(s.Opponents) {
		errs = append(errs, fmt.Sprintf("current_opponent_index %d outside [0,%d]", s.CurrentOpponentIndex, len(s.Opponents)))
	}

	switch s.Status {
	case StatusInProgress:
		if cur := s.CurrentOpponent(); cur == nil || cur.IsDefeated() {
			errs = append(errs, "in_progress session has no living current opponent")
		}
		if s.Player.IsDefeated() {
			errs = append(errs, "in_progress session has a defeated player")
		}
	case StatusVictory:
		if s.CurrentOpponentIndex < len(s.Opponents) {
			errs = append(errs, "victory before every opponent is defeated")
		}
	case StatusDefeat:
		if !s.Player.IsDefeated() {
			errs = append(errs, "defeat while the player still has health")
		}
	default:
		errs = append(errs, fmt.Sprintf("unknown status %q", s.Status))
	}

	if len(errs) > 0 {
		return fmt.Errorf("session %q invalid: %s", s.ID, strings.Join(errs, "; "))
	}
	return nil
}
