package narrative

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultAnthropicModel is used when AnthropicConfig.Model is empty.
const DefaultAnthropicModel = "claude-3-5-haiku-latest"

// AnthropicConfig configures the Messages API generator.
type AnthropicConfig struct {
	APIKey    string
	Model     string
	MaxTokens int64
}

// AnthropicProvider generates lines with the Anthropic Messages API.
type AnthropicProvider struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// NewAnthropicProvider builds a provider. Retries are disabled: the Narrator
// makes exactly one attempt per line.
//
// Precondition: cfg.APIKey must be non-empty.
// Postcondition: Returns a ready provider; extra options are applied after the defaults.
func NewAnthropicProvider(cfg AnthropicConfig, opts ...option.RequestOption) *AnthropicProvider {
	model := cfg.Model
	if model == "" {
		model = DefaultAnthropicModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 100
	}
	base := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	return &AnthropicProvider{
		client:    anthropic.NewClient(append(base, opts...)...),
		model:     anthropic.Model(model),
		maxTokens: maxTokens,
	}
}

// GenerateLine asks the model for a battle cry matching req.
//
// Postcondition: Returns the concatenated text blocks of the reply, or an error.
func (p *AnthropicProvider) GenerateLine(ctx context.Context, req Request) (string, error) {
	msg, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     p.model,
		MaxTokens: p.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(Prompt(req))),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", ErrEmptyLine
	}
	return text, nil
}
