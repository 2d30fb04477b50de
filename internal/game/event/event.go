// Package event defines the structured audit events emitted by the game engine.
package event

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap/zapcore"
)

// Kind names an event type.
type Kind string

const (
	KindSessionCreated Kind = "session_created"
	KindAttackResolved Kind = "attack_resolved"
	KindNarrativeLine  Kind = "narrative_line"
	KindSessionEnded   Kind = "session_ended"
)

// Payload is the kind-specific body of an Event.
type Payload interface {
	zapcore.ObjectMarshaler
	Kind() Kind
}

// Event is one meaningful transition of a game session.
type Event struct {
	SessionID string
	Round     int
	At        time.Time
	Payload   Payload
}

// Kind returns the payload kind.
func (e Event) Kind() Kind { return e.Payload.Kind() }

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (e Event) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("kind", string(e.Kind()))
	enc.AddString("session_id", e.SessionID)
	enc.AddInt("round", e.Round)
	enc.AddTime("at", e.At)
	return enc.AddObject("payload", e.Payload)
}

// SessionCreated is emitted once per new session.
type SessionCreated struct {
	PlayerName    string `json:"player_name"`
	OpponentCount int    `json:"opponent_count"`
}

func (SessionCreated) Kind() Kind { return KindSessionCreated }

func (p SessionCreated) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("player_name", p.PlayerName)
	enc.AddInt("opponent_count", p.OpponentCount)
	return nil
}

// AttackResolved is emitted for every resolved attack.
type AttackResolved struct {
	Attacker string `json:"attacker"`
	Defender string `json:"defender"`
	Roll     int    `json:"roll"`
	Success  bool   `json:"success"`
	Damage   int    `json:"damage"`
	Defeated bool   `json:"defeated"`
}

func (AttackResolved) Kind() Kind { return KindAttackResolved }

func (p AttackResolved) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("attacker", p.Attacker)
	enc.AddString("defender", p.Defender)
	enc.AddInt("roll", p.Roll)
	enc.AddBool("success", p.Success)
	enc.AddInt("damage", p.Damage)
	enc.AddBool("defeated", p.Defeated)
	return nil
}

// NarrativeLine is emitted for every flavor line attached to an attack.
type NarrativeLine struct {
	Role   string `json:"role"`
	Line   string `json:"line"`
	Source string `json:"source"`
}

func (NarrativeLine) Kind() Kind { return KindNarrativeLine }

func (p NarrativeLine) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("role", p.Role)
	enc.AddString("line", p.Line)
	enc.AddString("source", p.Source)
	return nil
}

// SessionEnded is emitted when a session reaches Victory or Defeat.
type SessionEnded struct {
	Status      string `json:"status"`
	RoundNumber int    `json:"round_number"`
}

func (SessionEnded) Kind() Kind { return KindSessionEnded }

func (p SessionEnded) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("status", p.Status)
	enc.AddInt("round_number", p.RoundNumber)
	return nil
}

// Emitter receives events. Emit is fire-and-forget: it must not block on
// durable storage and has no error to report.
type Emitter interface {
	Emit(ctx context.Context, e Event)
}

// Discard drops every event.
var Discard Emitter = discard{}

type discard struct{}

func (discard) Emit(context.Context, Event) {}

// Multi fans an event out to every emitter in order.
type Multi []Emitter

// Emit forwards e to each emitter.
func (m Multi) Emit(ctx context.Context, e Event) {
	for _, em := range m {
		em.Emit(ctx, e)
	}
}

// Recorder keeps every event in memory. It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Emit appends e.
func (r *Recorder) Emit(_ context.Context, e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Replay emits everything recorded so far to dst, in order.
func (r *Recorder) Replay(ctx context.Context, dst Emitter) {
	for _, e := range r.Events() {
		dst.Emit(ctx, e)
	}
}

// Kinds returns the kinds of every recorded event in order.
func (r *Recorder) Kinds() []Kind {
	events := r.Events()
	out := make([]Kind, len(events))
	for i, e := range events {
		out[i] = e.Kind()
	}
	return out
}
