package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-1.5-flash"

// Gemini translates through the Google Generative AI API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini-backed translator. The client keeps a
// connection; call Close when done.
func NewGemini(ctx context.Context, apiKey, model string, opts ...option.ClientOption) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w (gemini)", ErrMissingAPIKey)
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	all := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	client, err := genai.NewClient(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("translate: gemini client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// Translate implements Service.
func (g *Gemini) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if text == "" {
		return "", ErrEmptyText
	}

	model := g.client.GenerativeModel(g.model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt(targetLang))},
	}

	resp, err := model.GenerateContent(ctx, genai.Text(text))
	if err != nil {
		return "", fmt.Errorf("translate: gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("%w: gemini returned no candidates", ErrBadResponse)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("%w: gemini returned no text parts", ErrBadResponse)
	}
	return strings.TrimSpace(sb.String()), nil
}

// Close releases the underlying API client.
func (g *Gemini) Close() error {
	return g.client.Close()
}
