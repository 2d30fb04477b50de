// Package narrative produces short flavor lines for resolved attacks. A
// pluggable Provider is tried first; any failure falls back to a fixed table.
package narrative

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/character"
)

var (
	// ErrEmptyLine is recorded when a provider answers with only whitespace.
	ErrEmptyLine = errors.New("narrative: provider returned an empty line")
	// ErrUnavailable is recorded when no provider is configured.
	ErrUnavailable = errors.New("narrative: no provider configured")
)

// Source records where a Line came from.
type Source string

const (
	SourceGenerated Source = "generated"
	SourceFallback  Source = "fallback"
)

// Request is the input to one generation attempt.
type Request struct {
	Role      character.Role
	Situation string
	Roll      int
	Success   bool
}

// Line is a flavor line attributed to a role.
type Line struct {
	Role   character.Role `json:"role"`
	Text   string         `json:"text"`
	Source Source         `json:"source"`
}

// Provider generates a line for req. Implementations may be slow or fail;
// the Narrator bounds and recovers both.
type Provider interface {
	GenerateLine(ctx context.Context, req Request) (string, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, req Request) (string, error)

// GenerateLine calls f.
func (f ProviderFunc) GenerateLine(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// Narrator makes a single bounded attempt against its Provider and substitutes
// the fallback table on any failure. It never returns an error.
type Narrator struct {
	provider Provider
	timeout  time.Duration
	logger   *zap.Logger
}

// NewNarrator creates a Narrator.
//
// Precondition: logger must be non-nil. provider may be nil, in which case
// every line comes from the fallback table. timeout <= 0 disables the budget.
func NewNarrator(provider Provider, timeout time.Duration, logger *zap.Logger) *Narrator {
	return &Narrator{provider: provider, timeout: timeout, logger: logger}
}

// Available reports whether a generating provider is configured.
func (n *Narrator) Available() bool { return n.provider != nil }

type attemptResult struct {
	text string
	err  error
}

// Attempt returns a generated line for req, or the fallback line if the
// provider is missing, fails, panics, answers blank, or exceeds the timeout.
// There is no retry.
//
// Postcondition: Returns a Line with non-empty Text.
func (n *Narrator) Attempt(ctx context.Context, req Request) Line {
	if n.provider == nil {
		return n.fallback(req, ErrUnavailable)
	}

	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	// Buffered so an abandoned provider goroutine can still complete its send.
	done := make(chan attemptResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- attemptResult{err: fmt.Errorf("narrative: provider panic: %v", r)}
			}
		}()
		text, err := n.provider.GenerateLine(ctx, req)
		done <- attemptResult{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return n.fallback(req, ctx.Err())
	case res := <-done:
		if res.err != nil {
			return n.fallback(req, res.err)
		}
		text := strings.TrimSpace(res.text)
		if text == "" {
			return n.fallback(req, ErrEmptyLine)
		}
		return Line{Role: req.Role, Text: text, Source: SourceGenerated}
	}
}

func (n *Narrator) fallback(req Request, cause error) Line {
	if errors.Is(cause, ErrUnavailable) {
		n.logger.Debug("narrative provider not configured, using fallback",
			zap.String("role", req.Role.String()),
		)
	} else {
		n.logger.Warn("narrative generation failed, using fallback",
			zap.String("role", req.Role.String()),
			zap.Bool("success", req.Success),
			zap.Error(cause),
		)
	}
	return Line{Role: req.Role, Text: FallbackLine(req.Role, req.Success), Source: SourceFallback}
}
