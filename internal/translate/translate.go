package translate

import (
	"context"
	"errors"
	"time"
)

// Service errors
var (
	ErrEmptyText       = errors.New("translate: empty text")
	ErrMissingAPIKey   = errors.New("translate: missing API key")
	ErrUnknownProvider = errors.New("translate: unknown provider")
	ErrBadResponse     = errors.New("translate: malformed service response")
)

// Service translates text into a target language. Implementations must
// preserve line breaks positionally: a payload of N lines comes back
// as N lines so the caller can re-pair originals with translations.
type Service interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// Config selects and parameterizes a provider.
type Config struct {
	// Provider is one of "google", "openai", "anthropic", "gemini".
	// Empty defaults to "google", which needs no account.
	Provider string

	// APIKey authenticates the LLM providers. Ignored by "google".
	APIKey string

	// Model overrides the provider's default model. Ignored by "google".
	Model string

	// CacheTTL enables response memoization when positive.
	CacheTTL time.Duration
}
