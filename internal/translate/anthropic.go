package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultAnthropicModel is used when no model is configured.
const DefaultAnthropicModel = "claude-sonnet-4-20250514"

// anthropicMaxTokens bounds the reply; translations are short.
const anthropicMaxTokens = 2048

// Anthropic translates through the Anthropic messages API.
type Anthropic struct {
	client anthropic.Client
	model  string
}

// NewAnthropic creates an Anthropic-backed translator. Extra request
// options (base URL, HTTP client) pass through to the SDK.
func NewAnthropic(apiKey, model string, opts ...option.RequestOption) (*Anthropic, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w (anthropic)", ErrMissingAPIKey)
	}
	if model == "" {
		model = DefaultAnthropicModel
	}
	all := append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &Anthropic{client: anthropic.NewClient(all...), model: model}, nil
}

// Translate implements Service.
func (a *Anthropic) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if text == "" {
		return "", ErrEmptyText
	}

	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: anthropicMaxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt(targetLang)},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("translate: anthropic: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("%w: anthropic returned no text blocks", ErrBadResponse)
	}
	return strings.TrimSpace(sb.String()), nil
}
