package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/event"
	"github.com/cory-johannsen/skirmish/internal/game/narrative"
	"github.com/cory-johannsen/skirmish/internal/game/roster"
)

var (
	// ErrInvalidArgument is returned for malformed creation input. No session is created.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidState is returned when a turn is requested on a session that
	// cannot take one. The session is left untouched.
	ErrInvalidState = errors.New("invalid state")
)

// MaxPlayerNameLength bounds player names, in runes.
const MaxPlayerNameLength = 64

// TurnResult is everything one ResolveTurn call produced.
type TurnResult struct {
	PlayerOutcome   combat.Outcome  `json:"player_outcome"`
	PlayerLine      *narrative.Line `json:"player_line,omitempty"`
	OpponentOutcome *combat.Outcome `json:"opponent_outcome"`
	OpponentLine    *narrative.Line `json:"opponent_line,omitempty"`
	Status          Status          `json:"status"`
	RoundNumber     int             `json:"round_number"`
}

// Engine creates sessions and advances them one turn at a time. It holds no
// per-session state; all state lives in the GameSession the caller passes in.
type Engine struct {
	roster       *roster.Factory
	die          combat.Die
	narrator     *narrative.Narrator
	events       event.Emitter
	logger       *zap.Logger
	maxOpponents int
	now          func() time.Time
}

// NewEngine creates an Engine.
//
// Precondition: factory, die, narrator, events and logger must be non-nil.
// maxOpponents <= 0 means unbounded.
// Postcondition: Returns a ready Engine.
func NewEngine(
	factory *roster.Factory,
	die combat.Die,
	narrator *narrative.Narrator,
	events event.Emitter,
	logger *zap.Logger,
	maxOpponents int,
) *Engine {
	return &Engine{
		roster:       factory,
		die:          die,
		narrator:     narrator,
		events:       events,
		logger:       logger,
		maxOpponents: maxOpponents,
		now:          time.Now,
	}
}

// WithEmitter returns a copy of e that sends its events to em. The copy
// shares everything else with e.
func (e *Engine) WithEmitter(em event.Emitter) *Engine {
	c := *e
	c.events = em
	return &c
}

// Events returns the emitter e sends its events to.
func (e *Engine) Events() event.Emitter { return e.events }

// NormalizePlayerName trims name and validates it. A blank name is allowed
// and resolves to the roster default.
//
// Postcondition: Returns the trimmed name or an ErrInvalidArgument error.
func NormalizePlayerName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if !utf8.ValidString(name) {
		return "", fmt.Errorf("%w: player name is not valid UTF-8", ErrInvalidArgument)
	}
	if n := utf8.RuneCountInString(name); n > MaxPlayerNameLength {
		return "", fmt.Errorf("%w: player name has %d characters, max %d", ErrInvalidArgument, n, MaxPlayerNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return "", fmt.Errorf("%w: player name contains control characters", ErrInvalidArgument)
		}
	}
	return name, nil
}

// Create starts a new session. A zero opponentCount produces a session that
// is already won.
//
// Precondition: opponentCount >= 0 and, when bounded, <= the engine maximum.
// Postcondition: Returns a valid session, or ErrInvalidArgument with no session.
func (e *Engine) Create(ctx context.Context, playerName string, opponentCount int) (*GameSession, error) {
	if opponentCount < 0 {
		return nil, fmt.Errorf("%w: opponent count must be >= 0, got %d", ErrInvalidArgument, opponentCount)
	}
	if e.maxOpponents > 0 && opponentCount > e.maxOpponents {
		return nil, fmt.Errorf("%w: opponent count %d exceeds max %d", ErrInvalidArgument, opponentCount, e.maxOpponents)
	}
	name, err := NormalizePlayerName(playerName)
	if err != nil {
		return nil, err
	}

	player := e.roster.CreatePlayer(name)
	if player.Name == "" {
		return nil, fmt.Errorf("%w: player name is empty", ErrInvalidArgument)
	}

	now := e.now()
	s := &GameSession{
		ID:                   uuid.NewString(),
		Player:               player,
		Opponents:            e.roster.CreateOpponents(opponentCount),
		CurrentOpponentIndex: 0,
		RoundNumber:          1,
		Status:               StatusInProgress,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if opponentCount == 0 {
		s.Status = StatusVictory
	}

	e.logger.Info("session created",
		zap.String("session_id", s.ID),
		zap.String("player", player.Name),
		zap.Int("opponents", opponentCount),
		zap.String("status", string(s.Status)),
	)
	e.emit(ctx, s, s.RoundNumber, event.SessionCreated{PlayerName: player.Name, OpponentCount: opponentCount})
	if s.Status.Terminal() {
		e.emitEnded(ctx, s)
	}
	return s, nil
}

// ResolveTurn plays one turn: the player attacks the current opponent and, if
// that opponent survives, it counter-attacks. The round number advances by one.
//
// Precondition: s.Status == StatusInProgress. Any other state returns
// ErrInvalidState before anything is mutated.
// Postcondition: s reflects the turn; the result carries both outcomes, with a
// nil OpponentOutcome when the opponent fell to the player's attack.
func (e *Engine) ResolveTurn(ctx context.Context, s *GameSession) (TurnResult, error) {
	if s == nil {
		return TurnResult{}, fmt.Errorf("%w: session is nil", ErrInvalidArgument)
	}
	if err := checkPlayable(s); err != nil {
		return TurnResult{}, err
	}

	round := s.RoundNumber
	opponent := s.Opponents[s.CurrentOpponentIndex]
	result := TurnResult{}

	result.PlayerOutcome = combat.Resolve(s.Player, opponent, e.die)
	s.AttacksResolved++
	result.PlayerLine = e.recordAttack(ctx, s, round, result.PlayerOutcome)

	if result.PlayerOutcome.DefenderDefeated {
		s.CurrentOpponentIndex++
		e.logger.Info("opponent defeated",
			zap.String("session_id", s.ID),
			zap.String("opponent", opponent.Name),
			zap.Int("round", round),
		)
		if s.CurrentOpponentIndex >= len(s.Opponents) {
			s.Status = StatusVictory
		}
	} else {
		out := combat.Resolve(opponent, s.Player, e.die)
		s.AttacksResolved++
		result.OpponentOutcome = &out
		result.OpponentLine = e.recordAttack(ctx, s, round, out)
		if out.DefenderDefeated {
			s.Status = StatusDefeat
		}
	}

	s.RoundNumber++
	s.UpdatedAt = e.now()

	result.Status = s.Status
	result.RoundNumber = s.RoundNumber

	if s.Status.Terminal() {
		e.logger.Info("session ended",
			zap.String("session_id", s.ID),
			zap.String("status", string(s.Status)),
			zap.Int("round", s.RoundNumber),
		)
		e.emitEnded(ctx, s)
	}
	return result, nil
}

// checkPlayable rejects terminal sessions and in-progress sessions whose
// state would make the turn impossible.
func checkPlayable(s *GameSession) error {
	if s.Status != StatusInProgress {
		return fmt.Errorf("%w: session %s is %s", ErrInvalidState, s.ID, s.Status)
	}
	if s.Player == nil || s.Player.IsDefeated() {
		return fmt.Errorf("%w: session %s has no living player", ErrInvalidState, s.ID)
	}
	if cur := s.CurrentOpponent(); cur == nil || cur.IsDefeated() {
		return fmt.Errorf("%w: session %s has no living current opponent", ErrInvalidState, s.ID)
	}
	return nil
}

// recordAttack emits the attack event and, for attacks that landed, obtains
// and emits a narrative line.
func (e *Engine) recordAttack(ctx context.Context, s *GameSession, round int, out combat.Outcome) *narrative.Line {
	e.emit(ctx, s, round, event.AttackResolved{
		Attacker: out.AttackerName,
		Defender: out.DefenderName,
		Roll:     out.Roll,
		Success:  out.Success,
		Damage:   out.Damage,
		Defeated: out.DefenderDefeated,
	})
	if !out.Success {
		return nil
	}
	line := e.narrator.Attempt(ctx, narrative.Request{
		Role:      out.AttackerRole,
		Situation: combat.Situation(out),
		Roll:      out.Roll,
		Success:   out.Success,
	})
	e.emit(ctx, s, round, event.NarrativeLine{
		Role:   string(line.Role),
		Line:   line.Text,
		Source: string(line.Source),
	})
	return &line
}

func (e *Engine) emitEnded(ctx context.Context, s *GameSession) {
	e.emit(ctx, s, s.RoundNumber, event.SessionEnded{Status: string(s.Status), RoundNumber: s.RoundNumber})
}

func (e *Engine) emit(ctx context.Context, s *GameSession, round int, p event.Payload) {
	e.events.Emit(ctx, event.Event{
		SessionID: s.ID,
		Round:     round,
		At:        e.now(),
		Payload:   p,
	})
}
