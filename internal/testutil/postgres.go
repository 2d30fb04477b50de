package testutil

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/storage/postgres"
)

// PostgresContainer is a running Postgres with a connected pool.
type PostgresContainer struct {
	Pool    *postgres.Pool
	RawPool *pgxpool.Pool
	Config  config.DatabaseConfig
}

// NewPostgresContainer starts postgres:16-alpine and connects to it.
//
// Precondition: Docker must be available.
// Postcondition: Returns a connected container or fails the test. The schema is empty.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()
	ep := startContainer(t, "postgres:16-alpine", "5432", map[string]string{
		"POSTGRES_USER":     "skirmish",
		"POSTGRES_PASSWORD": "skirmish",
		"POSTGRES_DB":       "skirmish_test",
	}, "database system is ready to accept connections", 2)

	cfg := config.DatabaseConfig{
		Host:            ep.host,
		Port:            ep.port,
		User:            "skirmish",
		Password:        "skirmish",
		Name:            "skirmish_test",
		SSLMode:         "disable",
		MaxConns:        4,
		MinConns:        1,
		MaxConnLifetime: 5 * time.Minute,
	}
	pool, err := postgres.Connect(context.Background(), cfg, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("connecting to test postgres: %v", err)
	}
	t.Cleanup(pool.Close)

	return &PostgresContainer{Pool: pool, RawPool: pool.DB(), Config: cfg}
}

// NewMigratedPostgres is NewPostgresContainer followed by ApplyMigrations.
func NewMigratedPostgres(t *testing.T) *PostgresContainer {
	t.Helper()
	pc := NewPostgresContainer(t)
	pc.ApplyMigrations(t)
	return pc
}

// MigrationsDir returns the absolute path of the repository's migrations directory.
func MigrationsDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "migrations")
}

// ApplyMigrations runs every up migration in MigrationsDir, the same files
// cmd/migrate applies.
//
// Postcondition: The schema is at the latest version or the test has failed.
func (pc *PostgresContainer) ApplyMigrations(t *testing.T) {
	t.Helper()
	m, err := migrate.New("file://"+MigrationsDir(), pc.Config.DSN())
	if err != nil {
		t.Fatalf("creating migrator: %v", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		t.Fatalf("applying migrations: %v", err)
	}
	version, dirty, _ := m.Version()
	if dirty {
		t.Fatalf("schema left dirty at version %d", version)
	}
}
