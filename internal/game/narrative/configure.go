package narrative

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/config"
)

// NewFromConfig builds a Narrator for the configured provider. The returned
// cleanup releases provider resources and is always non-nil.
//
// Postcondition: Returns a Narrator, or an error if the provider cannot be built.
func NewFromConfig(cfg config.NarrativeConfig, logger *zap.Logger) (*Narrator, func(), error) {
	noop := func() {}
	switch cfg.Provider {
	case config.ProviderStatic, "":
		logger.Info("narrative generation disabled, using fallback lines")
		return NewNarrator(nil, cfg.Timeout, logger), noop, nil
	case config.ProviderAnthropic:
		p := NewAnthropicProvider(AnthropicConfig{
			APIKey:    cfg.Anthropic.APIKey,
			Model:     cfg.Anthropic.Model,
			MaxTokens: cfg.Anthropic.MaxTokens,
		})
		logger.Info("narrative generation via anthropic", zap.String("model", cfg.Anthropic.Model))
		return NewNarrator(p, cfg.Timeout, logger), noop, nil
	case config.ProviderLua:
		p, err := NewLuaProvider(cfg.Lua.Script, cfg.Lua.InstructionLimit)
		if err != nil {
			return nil, noop, fmt.Errorf("loading narrative script: %w", err)
		}
		logger.Info("narrative generation via lua", zap.String("script", cfg.Lua.Script))
		return NewNarrator(p, cfg.Timeout, logger), p.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown narrative provider %q", cfg.Provider)
	}
}
