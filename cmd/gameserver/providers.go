package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/audit"
	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/event"
	"github.com/cory-johannsen/skirmish/internal/game/narrative"
	"github.com/cory-johannsen/skirmish/internal/game/roster"
	"github.com/cory-johannsen/skirmish/internal/game/session"
	"github.com/cory-johannsen/skirmish/internal/gameserver"
	"github.com/cory-johannsen/skirmish/internal/observability"
	"github.com/cory-johannsen/skirmish/internal/server"
	"github.com/cory-johannsen/skirmish/internal/storage/postgres"
	"github.com/cory-johannsen/skirmish/internal/store"
)

// healthProbeInterval is how often the gRPC health status is refreshed.
const healthProbeInterval = 15 * time.Second

var providerSet = wire.NewSet(
	provideLogger,
	provideRoller,
	provideRosterFactory,
	provideNarrator,
	providePool,
	provideStore,
	provideEmitter,
	provideHistory,
	provideEngine,
	store.NewLocker,
	provideService,
	provideLifecycle,
)

func provideLogger(cfg config.Config) (*zap.Logger, func(), error) {
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing logger: %w", err)
	}
	return logger, func() { _ = logger.Sync() }, nil
}

func provideRoller(logger *zap.Logger) *dice.Roller {
	return dice.NewLoggedRoller(dice.NewCryptoSource(), logger)
}

func provideRosterFactory(cfg config.Config, roller *dice.Roller, logger *zap.Logger) (*roster.Factory, error) {
	baselines, err := roster.LoadBaselines(cfg.Game.RosterFile)
	if err != nil {
		return nil, err
	}
	logger.Info("roster loaded",
		zap.String("file", cfg.Game.RosterFile),
		zap.Int("roles", len(baselines)),
	)
	return roster.NewFactory(baselines.WithPlayerName(cfg.Game.DefaultPlayerName), roller)
}

func provideNarrator(cfg config.Config, logger *zap.Logger) (*narrative.Narrator, func(), error) {
	return narrative.NewFromConfig(cfg.Narrative, logger)
}

// providePool connects to PostgreSQL only when a session backend or audit
// sink needs it; otherwise it returns a nil pool.
func providePool(ctx context.Context, cfg config.Config, logger *zap.Logger) (*postgres.Pool, func(), error) {
	if !cfg.NeedsDatabase() {
		return nil, func() {}, nil
	}
	start := time.Now()
	pool, err := postgres.Connect(ctx, cfg.Database, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}
	logger.Info("database connected",
		zap.String("host", cfg.Database.Host),
		zap.Duration("elapsed", time.Since(start)),
	)
	return pool, pool.Close, nil
}

func provideStore(ctx context.Context, cfg config.Config, pool *postgres.Pool, logger *zap.Logger) (store.Store, func(), error) {
	noop := func() {}
	switch cfg.Session.Backend {
	case config.BackendMemory:
		logger.Info("session store: memory")
		return store.NewMemoryStore(), noop, nil
	case config.BackendRedis:
		client, err := store.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("session store: redis",
			zap.String("addr", cfg.Redis.Addr),
			zap.Duration("ttl", cfg.Redis.SessionTTL),
		)
		return store.NewRedisStore(client, cfg.Redis.SessionTTL), func() { _ = client.Close() }, nil
	case config.BackendPostgres:
		logger.Info("session store: postgres")
		return postgres.NewSessionRepository(pool.DB()), noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}
}

// provideEmitter builds the audit pipeline: every enabled sink behind one
// AsyncSink so that turns never wait on disk or database writes.
func provideEmitter(cfg config.Config, pool *postgres.Pool, logger *zap.Logger) (event.Emitter, func(), error) {
	var writers audit.MultiWriter
	var cleanups []func()

	if cfg.Audit.HasSink(config.SinkLog) {
		fileLogger, err := observability.NewFileLogger(cfg.Audit.FilePath)
		if err != nil {
			return nil, nil, err
		}
		sink := audit.NewLogSink(fileLogger)
		writers = append(writers, sink)
		cleanups = append(cleanups, func() { _ = sink.Sync() })
	}
	if cfg.Audit.HasSink(config.SinkPostgres) {
		writers = append(writers, postgres.NewEventRepository(pool.DB()))
	}
	if len(writers) == 0 {
		logger.Info("audit disabled")
		return event.Discard, func() {}, nil
	}

	async := audit.NewAsyncSink(writers, cfg.Audit.BufferSize, logger)
	async.Start()
	logger.Info("audit enabled",
		zap.Strings("sinks", cfg.Audit.Sinks),
		zap.Int("buffer_size", cfg.Audit.BufferSize),
	)
	return async, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := async.Close(ctx); err != nil {
			logger.Warn("audit drain incomplete", zap.Error(err), zap.Int64("dropped", async.Dropped()))
		}
		for _, c := range cleanups {
			c()
		}
	}, nil
}

// provideHistory returns the PostgreSQL event reader when the postgres audit
// sink is enabled, and a nil reader otherwise.
func provideHistory(cfg config.Config, pool *postgres.Pool) audit.Reader {
	if !cfg.Audit.HasSink(config.SinkPostgres) {
		return nil
	}
	return postgres.NewEventRepository(pool.DB())
}

func provideEngine(
	cfg config.Config,
	factory *roster.Factory,
	roller *dice.Roller,
	narrator *narrative.Narrator,
	emitter event.Emitter,
	logger *zap.Logger,
) *session.Engine {
	return session.NewEngine(factory, roller, narrator, emitter, logger, cfg.Game.MaxOpponents)
}

func provideService(
	cfg config.Config,
	engine *session.Engine,
	st store.Store,
	locker *store.Locker,
	narrator *narrative.Narrator,
	history audit.Reader,
	logger *zap.Logger,
) *gameserver.Service {
	return gameserver.NewService(engine, st, locker, narrator, history, logger, cfg.Game.DefaultOpponentCount)
}

func provideLifecycle(cfg config.Config, svc *gameserver.Service, logger *zap.Logger) *server.Lifecycle {
	lc := server.NewLifecycle(logger, cfg.Server.ShutdownTimeout)
	lc.Add("http", gameserver.NewHTTPService(cfg.Server.Addr(), gameserver.NewRouter(svc, logger), logger))
	lc.Add("grpc-health", gameserver.NewHealthService(cfg.Server.HealthAddr(), svc, healthProbeInterval, logger))
	return lc
}
