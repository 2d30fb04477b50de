// Package postgres persists game sessions and combat events in PostgreSQL using pgx v5.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/config"
)

const (
	connectAttempts = 5
	connectBackoff  = 500 * time.Millisecond
	pingTimeout     = 2 * time.Second
)

// Pool is the pgx pool shared by SessionRepository and EventRepository.
type Pool struct {
	db *pgxpool.Pool
}

// Connect opens a pool sized from cfg and waits for the server to answer a
// ping, retrying with a linear backoff while the database is still starting.
//
// Precondition: cfg passes config validation; logger is non-nil.
// Postcondition: Returns a pool that answered a ping, or the last ping error.
func Connect(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	db, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	p := &Pool{db: db}
	for attempt := 1; ; attempt++ {
		err = p.Health(ctx)
		if err == nil {
			return p, nil
		}
		if attempt == connectAttempts {
			break
		}
		wait := time.Duration(attempt) * connectBackoff
		logger.Warn("database not ready, retrying",
			zap.String("host", cfg.Host),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			db.Close()
			return nil, fmt.Errorf("waiting for database: %w", ctx.Err())
		case <-time.After(wait):
		}
	}
	db.Close()
	return nil, fmt.Errorf("pinging database after %d attempts: %w", connectAttempts, err)
}

// Health pings the server, bounded by a short timeout.
func (p *Pool) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return p.db.Ping(ctx)
}

// Close releases all connections.
func (p *Pool) Close() {
	p.db.Close()
}

// DB returns the underlying pgx pool for the repositories.
func (p *Pool) DB() *pgxpool.Pool {
	return p.db
}
