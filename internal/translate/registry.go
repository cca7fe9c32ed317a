package translate

import (
	"context"
	"fmt"
	"strings"
)

// Providers lists the recognized provider names.
func Providers() []string {
	return []string{"google", "openai", "anthropic", "gemini"}
}

// New builds the provider named in cfg, wrapped in a response cache
// when cfg.CacheTTL is positive. An empty provider name selects
// "google".
func New(ctx context.Context, cfg Config) (Service, error) {
	var (
		svc Service
		err error
	)

	switch strings.ToLower(cfg.Provider) {
	case "", "google":
		svc = NewGoogle()
	case "openai":
		svc, err = NewOpenAI(cfg.APIKey, cfg.Model)
	case "anthropic":
		svc, err = NewAnthropic(cfg.APIKey, cfg.Model)
	case "gemini":
		svc, err = NewGemini(ctx, cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("%w: %q (have %s)",
			ErrUnknownProvider, cfg.Provider, strings.Join(Providers(), ", "))
	}
	if err != nil {
		return nil, err
	}

	if cfg.CacheTTL > 0 {
		svc = NewCached(svc, cfg.CacheTTL)
	}
	return svc, nil
}
