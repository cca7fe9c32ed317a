// Package translate provides translation service providers for the
// composer.
//
// Four providers are available:
//
//   - google: the public Google Translate HTTP endpoint used by the
//     translate web element. Needs no account; the API key is scraped
//     from Google's own script. This is the default.
//   - openai, anthropic, gemini: LLM-backed translation with a
//     translate-only system prompt. Each needs an API key.
//
// All providers implement Service and preserve line breaks
// positionally, so a multi-line payload can be split back into
// per-line translations. NewCached wraps any provider with a TTL
// response cache so repeated selections of the same text do not
// re-bill the provider.
package translate
