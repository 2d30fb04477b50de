// Package gameserver exposes game sessions over HTTP and reports process
// health over gRPC.
package gameserver

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/audit"
	"github.com/cory-johannsen/skirmish/internal/game/event"
	"github.com/cory-johannsen/skirmish/internal/game/narrative"
	"github.com/cory-johannsen/skirmish/internal/game/session"
	"github.com/cory-johannsen/skirmish/internal/store"
)

// ErrHistoryUnavailable is returned by History when no durable event sink
// is configured.
var ErrHistoryUnavailable = errors.New("event history is not recorded by this server")

// HealthChecker is implemented by store backends that can probe their
// connection.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Health describes the readiness of the service.
type Health struct {
	Status              string `json:"status"`
	NarrativeGeneration bool   `json:"narrative_generation"`
	Store               string `json:"store"`
	StoreError          string `json:"store_error,omitempty"`
	// Sessions counts stored sessions by status when the store supports it.
	Sessions map[session.Status]int `json:"sessions,omitempty"`
}

// Healthy reports whether every dependency responded.
func (h Health) Healthy() bool { return h.Status == "ok" }

// Service loads a session, hands it to the Engine, and writes it back. Turns
// on the same session are serialised with a keyed lock; the Engine itself
// takes no locks. Events produced by a call reach the Engine's emitter only
// after the session has been stored.
type Service struct {
	engine           *session.Engine
	store            store.Store
	locker           *store.Locker
	narrator         *narrative.Narrator
	history          audit.Reader
	logger           *zap.Logger
	defaultOpponents int
}

// NewService creates a Service.
//
// Precondition: all pointer arguments must be non-nil; defaultOpponents >= 0.
// history may be nil, in which case History returns ErrHistoryUnavailable.
func NewService(
	engine *session.Engine,
	st store.Store,
	locker *store.Locker,
	narrator *narrative.Narrator,
	history audit.Reader,
	logger *zap.Logger,
	defaultOpponents int,
) *Service {
	return &Service{
		engine:           engine,
		store:            st,
		locker:           locker,
		narrator:         narrator,
		history:          history,
		logger:           logger,
		defaultOpponents: defaultOpponents,
	}
}

// CreateGame starts and stores a new session. A nil opponentCount uses the
// configured default.
//
// Postcondition: Returns the stored session, or session.ErrInvalidArgument
// and nothing stored.
func (s *Service) CreateGame(ctx context.Context, playerName string, opponentCount *int) (*session.GameSession, error) {
	count := s.defaultOpponents
	if opponentCount != nil {
		count = *opponentCount
	}
	buf := &event.Recorder{}
	gs, err := s.engine.WithEmitter(buf).Create(ctx, playerName, count)
	if err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, gs); err != nil {
		s.dropEvents(gs.ID, buf, err)
		return nil, fmt.Errorf("storing new session: %w", err)
	}
	buf.Replay(ctx, s.engine.Events())
	return gs, nil
}

// GetGame returns the stored session with id.
func (s *Service) GetGame(ctx context.Context, id string) (*session.GameSession, error) {
	return s.store.Get(ctx, id)
}

// PlayTurn resolves one turn of session id and stores the result.
//
// Postcondition: On error nothing is written and no event is emitted;
// session.ErrInvalidState for a finished game, store.ErrNotFound for an
// unknown id.
func (s *Service) PlayTurn(ctx context.Context, id string) (session.TurnResult, *session.GameSession, error) {
	unlock := s.locker.Lock(id)
	defer unlock()

	gs, err := s.store.Get(ctx, id)
	if err != nil {
		return session.TurnResult{}, nil, err
	}
	buf := &event.Recorder{}
	res, err := s.engine.WithEmitter(buf).ResolveTurn(ctx, gs)
	if err != nil {
		return session.TurnResult{}, nil, err
	}
	if err := s.store.Put(ctx, gs); err != nil {
		s.dropEvents(id, buf, err)
		return session.TurnResult{}, nil, fmt.Errorf("storing session after turn: %w", err)
	}
	buf.Replay(ctx, s.engine.Events())
	return res, gs, nil
}

func (s *Service) dropEvents(id string, buf *event.Recorder, cause error) {
	s.logger.Warn("discarding events of unstored session",
		zap.String("session_id", id),
		zap.Int("events", len(buf.Events())),
		zap.Error(cause),
	)
}

// Stats returns the summary of session id. It never mutates the session.
func (s *Service) Stats(ctx context.Context, id string) (session.Stats, error) {
	gs, err := s.store.Get(ctx, id)
	if err != nil {
		return session.Stats{}, err
	}
	return gs.Stats(), nil
}

// History returns the recorded events of session id.
//
// Postcondition: store.ErrNotFound for an unknown id; ErrHistoryUnavailable
// when no reader is configured.
func (s *Service) History(ctx context.Context, id string) ([]audit.Record, error) {
	if _, err := s.store.Get(ctx, id); err != nil {
		return nil, err
	}
	if s.history == nil {
		return nil, ErrHistoryUnavailable
	}
	records, err := s.history.ListBySession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reading history of %s: %w", id, err)
	}
	return records, nil
}

// Health probes the store, counts its sessions when it can, and reports
// whether a real narrative generator is configured.
func (s *Service) Health(ctx context.Context) Health {
	h := Health{
		Status:              "ok",
		NarrativeGeneration: s.narrator.Available(),
		Store:               "ok",
	}
	if hc, ok := s.store.(HealthChecker); ok {
		if err := hc.Health(ctx); err != nil {
			h.Status = "degraded"
			h.Store = "unavailable"
			h.StoreError = err.Error()
			s.logger.Warn("store health check failed", zap.Error(err))
			return h
		}
	}
	if sc, ok := s.store.(store.StatusCounter); ok {
		counts, err := sc.CountByStatus(ctx)
		if err != nil {
			s.logger.Warn("counting sessions failed", zap.Error(err))
			return h
		}
		h.Sessions = counts
	}
	return h
}

// isClientError reports whether err was caused by the request rather than the server.
func isClientError(err error) bool {
	return errors.Is(err, session.ErrInvalidArgument) ||
		errors.Is(err, session.ErrInvalidState) ||
		errors.Is(err, store.ErrNotFound) ||
		errors.Is(err, ErrHistoryUnavailable)
}
