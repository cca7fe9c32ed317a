package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultOpenAIModel matches the model the notebook backend uses for
// tutoring chat.
const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAI translates through the OpenAI chat completions API.
type OpenAI struct {
	client openai.Client
	model  string
}

// NewOpenAI creates an OpenAI-backed translator. Extra request options
// (base URL, HTTP client) pass through to the SDK.
func NewOpenAI(apiKey, model string, opts ...option.RequestOption) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w (openai)", ErrMissingAPIKey)
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	all := append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &OpenAI{client: openai.NewClient(all...), model: model}, nil
}

// Translate implements Service.
func (o *OpenAI) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if text == "" {
		return "", ErrEmptyText
	}

	completion, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt(targetLang)),
			openai.UserMessage(text),
		},
	})
	if err != nil {
		return "", fmt.Errorf("translate: openai: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%w: openai returned no choices", ErrBadResponse)
	}
	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}
