// Package config provides Viper-based configuration loading for the skirmish server.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds listener settings.
type ServerConfig struct {
	// Host is the bind address for both listeners.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the HTTP game API.
	Port int `mapstructure:"port"`
	// HealthPort is the TCP port for the gRPC health service.
	HealthPort int `mapstructure:"health_port"`
	// ShutdownTimeout bounds graceful shutdown of every service.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns the "host:port" HTTP listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// HealthAddr returns the "host:port" gRPC health listen address.
func (s ServerConfig) HealthAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.HealthPort)
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// RedisConfig holds Redis connection settings for the session store.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	// SessionTTL is refreshed on every write. Zero keeps sessions forever.
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// Narrative provider names.
const (
	ProviderStatic    = "static"
	ProviderAnthropic = "anthropic"
	ProviderLua       = "lua"
)

// AnthropicConfig configures the hosted flavor-line generator.
type AnthropicConfig struct {
	APIKey    string `mapstructure:"api_key"`
	Model     string `mapstructure:"model"`
	MaxTokens int64  `mapstructure:"max_tokens"`
}

// LuaConfig configures the scripted flavor-line generator.
type LuaConfig struct {
	Script           string `mapstructure:"script"`
	InstructionLimit int    `mapstructure:"instruction_limit"`
}

// NarrativeConfig selects and configures the flavor-line generator.
type NarrativeConfig struct {
	// Provider is one of "static", "anthropic", "lua". "static" uses only the
	// fallback table.
	Provider string `mapstructure:"provider"`
	// Timeout bounds a single generation attempt.
	Timeout   time.Duration   `mapstructure:"timeout"`
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Lua       LuaConfig       `mapstructure:"lua"`
}

// GameConfig holds gameplay settings.
type GameConfig struct {
	// DefaultPlayerName replaces the roster's player name when non-empty.
	DefaultPlayerName string `mapstructure:"default_player_name"`
	// DefaultOpponentCount is used when a create request omits the count.
	DefaultOpponentCount int `mapstructure:"default_opponent_count"`
	// MaxOpponents caps opponent_count. Zero means unbounded.
	MaxOpponents int `mapstructure:"max_opponents"`
	// RosterFile optionally overrides the built-in baselines.
	RosterFile string `mapstructure:"roster_file"`
}

// Session backends.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// SessionConfig selects where sessions live between turns.
type SessionConfig struct {
	Backend string `mapstructure:"backend"`
}

// Audit sinks.
const (
	SinkLog      = "log"
	SinkPostgres = "postgres"
)

// AuditConfig controls where combat events are recorded.
type AuditConfig struct {
	Sinks      []string `mapstructure:"sinks"`
	FilePath   string   `mapstructure:"file_path"`
	BufferSize int      `mapstructure:"buffer_size"`
}

// HasSink reports whether name is enabled.
func (a AuditConfig) HasSink(name string) bool {
	for _, s := range a.Sinks {
		if s == name {
			return true
		}
	}
	return false
}

// Config is the top-level application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Narrative NarrativeConfig `mapstructure:"narrative"`
	Game      GameConfig      `mapstructure:"game"`
	Session   SessionConfig   `mapstructure:"session"`
	Audit     AuditConfig     `mapstructure:"audit"`
}

// NeedsDatabase reports whether any configured component uses PostgreSQL.
func (c Config) NeedsDatabase() bool {
	return c.Session.Backend == BackendPostgres || c.Audit.HasSink(SinkPostgres)
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	for _, err := range []error{
		validateServer(c.Server),
		validateDatabase(c.Database),
		validateRedis(c.Redis, c.Session.Backend == BackendRedis),
		validateLogging(c.Logging),
		validateNarrative(c.Narrative),
		validateGame(c.Game),
		validateSession(c.Session),
		validateAudit(c.Audit),
	} {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validPort(p int) bool { return p >= 1 && p <= 65535 }

func joinErrs(errs []string) error {
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateServer(s ServerConfig) error {
	var errs []string
	if s.Host == "" {
		errs = append(errs, "server.host must not be empty")
	}
	if !validPort(s.Port) {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", s.Port))
	}
	if !validPort(s.HealthPort) {
		errs = append(errs, fmt.Sprintf("server.health_port must be 1-65535, got %d", s.HealthPort))
	}
	if s.Port == s.HealthPort {
		errs = append(errs, "server.port and server.health_port must differ")
	}
	if s.ShutdownTimeout <= 0 {
		errs = append(errs, "server.shutdown_timeout must be positive")
	}
	return joinErrs(errs)
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if !validPort(d.Port) {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	return joinErrs(errs)
}

func validateRedis(r RedisConfig, required bool) error {
	var errs []string
	if required && r.Addr == "" {
		errs = append(errs, "redis.addr must not be empty when session.backend is redis")
	}
	if r.DB < 0 {
		errs = append(errs, fmt.Sprintf("redis.db must be >= 0, got %d", r.DB))
	}
	if r.SessionTTL < 0 {
		errs = append(errs, "redis.session_ttl must not be negative")
	}
	return joinErrs(errs)
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateNarrative(n NarrativeConfig) error {
	var errs []string
	switch n.Provider {
	case ProviderStatic:
	case ProviderAnthropic:
		if n.Anthropic.APIKey == "" {
			errs = append(errs, "narrative.anthropic.api_key must not be empty when provider is anthropic")
		}
		if n.Anthropic.MaxTokens < 1 {
			errs = append(errs, fmt.Sprintf("narrative.anthropic.max_tokens must be >= 1, got %d", n.Anthropic.MaxTokens))
		}
	case ProviderLua:
		if n.Lua.Script == "" {
			errs = append(errs, "narrative.lua.script must not be empty when provider is lua")
		}
		if n.Lua.InstructionLimit < 0 {
			errs = append(errs, "narrative.lua.instruction_limit must not be negative")
		}
	default:
		errs = append(errs, fmt.Sprintf("narrative.provider must be one of [static, anthropic, lua], got %q", n.Provider))
	}
	if n.Timeout <= 0 {
		errs = append(errs, "narrative.timeout must be positive")
	}
	return joinErrs(errs)
}

func validateGame(g GameConfig) error {
	var errs []string
	if g.DefaultOpponentCount < 0 {
		errs = append(errs, fmt.Sprintf("game.default_opponent_count must be >= 0, got %d", g.DefaultOpponentCount))
	}
	if g.MaxOpponents < 0 {
		errs = append(errs, fmt.Sprintf("game.max_opponents must be >= 0, got %d", g.MaxOpponents))
	}
	if g.MaxOpponents > 0 && g.DefaultOpponentCount > g.MaxOpponents {
		errs = append(errs, "game.default_opponent_count must not exceed game.max_opponents")
	}
	return joinErrs(errs)
}

func validateSession(s SessionConfig) error {
	switch s.Backend {
	case BackendMemory, BackendRedis, BackendPostgres:
		return nil
	}
	return fmt.Errorf("session.backend must be one of [memory, redis, postgres], got %q", s.Backend)
}

func validateAudit(a AuditConfig) error {
	var errs []string
	for _, s := range a.Sinks {
		if s != SinkLog && s != SinkPostgres {
			errs = append(errs, fmt.Sprintf("audit.sinks entries must be one of [log, postgres], got %q", s))
		}
	}
	if a.HasSink(SinkLog) && a.FilePath == "" {
		errs = append(errs, "audit.file_path must not be empty when the log sink is enabled")
	}
	if a.BufferSize < 1 {
		errs = append(errs, fmt.Sprintf("audit.buffer_size must be >= 1, got %d", a.BufferSize))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with SKIRMISH_ prefix
	v.SetEnvPrefix("SKIRMISH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Defaults returns a Viper instance holding only the built-in defaults.
func Defaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.health_port", 50051)
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "skirmish")
	v.SetDefault("database.password", "skirmish")
	v.SetDefault("database.name", "skirmish")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.username", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.session_ttl", "24h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("narrative.provider", ProviderStatic)
	v.SetDefault("narrative.timeout", "3s")
	v.SetDefault("narrative.anthropic.api_key", "")
	v.SetDefault("narrative.anthropic.model", "claude-3-5-haiku-latest")
	v.SetDefault("narrative.anthropic.max_tokens", 100)
	v.SetDefault("narrative.lua.script", "")
	v.SetDefault("narrative.lua.instruction_limit", 100000)

	v.SetDefault("game.default_player_name", "")
	v.SetDefault("game.default_opponent_count", 3)
	v.SetDefault("game.max_opponents", 20)
	v.SetDefault("game.roster_file", "")

	v.SetDefault("session.backend", BackendMemory)

	v.SetDefault("audit.sinks", []string{SinkLog})
	v.SetDefault("audit.file_path", "logs/combat.log")
	v.SetDefault("audit.buffer_size", 256)
}
