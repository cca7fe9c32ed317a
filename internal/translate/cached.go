package translate

import (
	"context"
	"time"

	cache "github.com/patrickmn/go-cache"
)

// DefaultCacheTTL is how long a memoized translation stays valid.
const DefaultCacheTTL = 30 * time.Minute

// Cached memoizes successful translations keyed by target language
// and text. Re-selecting the same line never re-bills the provider.
// Failures are not cached.
type Cached struct {
	inner Service
	cache *cache.Cache
}

// NewCached wraps inner with a response cache.
func NewCached(inner Service, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cached{
		inner: inner,
		cache: cache.New(ttl, 2*ttl),
	}
}

// Translate implements Service.
func (c *Cached) Translate(ctx context.Context, text, targetLang string) (string, error) {
	key := targetLang + "\x00" + text
	if v, ok := c.cache.Get(key); ok {
		return v.(string), nil
	}

	out, err := c.inner.Translate(ctx, text, targetLang)
	if err != nil {
		return "", err
	}
	c.cache.SetDefault(key, out)
	return out, nil
}

// Flush drops all memoized translations.
func (c *Cached) Flush() {
	c.cache.Flush()
}
