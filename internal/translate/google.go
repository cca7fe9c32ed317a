package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/tidwall/gjson"
)

const (
	// googleTokenURL serves the translate web element script that
	// embeds a public API key.
	googleTokenURL = "https://translate.googleapis.com/_/translate_http/_/js/k=translate_http.tr.en_US.YusFYy3P_ro.O/am=AAg/d=1/exm=el_conf/ed=1/rs=AN8SPfq1Hb8iJRleQqQc8zhdzXmF9E56eQ/m=el_main"

	// googleAPIURL is the translateHtml endpoint the web element calls.
	googleAPIURL = "https://translate-pa.googleapis.com/v1/translateHtml"

	// googleTokenTTL bounds how long a scraped key is reused before a
	// fresh fetch.
	googleTokenTTL = time.Hour
)

// googleTokenPattern finds the API key inside Google's script.
var googleTokenPattern = regexp.MustCompile(`(?i)['"]x-goog-api-key['"]\s*:\s*['"](\w{39})['"]`)

// Google translates through the public Google Translate HTTP endpoint
// used by the translate web element. No account is needed: the API key
// is scraped from Google's own script and cached until it expires.
type Google struct {
	httpClient *http.Client
	tokenURL   string
	apiURL     string
	source     string

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// GoogleOption configures the Google provider.
type GoogleOption func(*Google)

// WithHTTPClient sets the HTTP client for both the token fetch and
// translation calls.
func WithHTTPClient(client *http.Client) GoogleOption {
	return func(g *Google) {
		if client != nil {
			g.httpClient = client
		}
	}
}

// WithGoogleEndpoints overrides the token and API URLs.
func WithGoogleEndpoints(tokenURL, apiURL string) GoogleOption {
	return func(g *Google) {
		if tokenURL != "" {
			g.tokenURL = tokenURL
		}
		if apiURL != "" {
			g.apiURL = apiURL
		}
	}
}

// WithSourceLanguage pins the source language instead of auto-detect.
func WithSourceLanguage(code string) GoogleOption {
	return func(g *Google) {
		if code != "" {
			g.source = code
		}
	}
}

// NewGoogle creates a Google Translate provider.
func NewGoogle(opts ...GoogleOption) *Google {
	g := &Google{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		tokenURL:   googleTokenURL,
		apiURL:     googleAPIURL,
		source:     "auto",
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Translate implements Service.
func (g *Google) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if text == "" {
		return "", ErrEmptyText
	}
	if targetLang == "" {
		targetLang = "en"
	}

	token, err := g.apiKey(ctx)
	if err != nil {
		return "", err
	}

	// Wire format: [[["Hola"],"auto","en"],"wt_lib"]
	payload, err := json.Marshal([]any{[]any{[]any{text}, g.source, targetLang}, "wt_lib"})
	if err != nil {
		return "", fmt.Errorf("translate: google payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("translate: google request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json+protobuf")
	req.Header.Set("X-Goog-API-Key", token)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("translate: google: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("translate: google response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: google returned status %d", ErrBadResponse, resp.StatusCode)
	}

	// Response format: [["Hello"]]
	result := gjson.GetBytes(body, "0.0")
	if !result.Exists() {
		return "", fmt.Errorf("%w: missing translation in %q", ErrBadResponse, truncate(body, 120))
	}
	return result.String(), nil
}

// apiKey returns a cached key or scrapes a fresh one from the element
// script.
func (g *Google) apiKey(ctx context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.token != "" && time.Now().Before(g.tokenExpiry) {
		return g.token, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.tokenURL, nil)
	if err != nil {
		return "", fmt.Errorf("translate: google token request: %w", err)
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("translate: google token fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("translate: google token read: %w", err)
	}

	m := googleTokenPattern.FindSubmatch(body)
	if m == nil {
		return "", fmt.Errorf("%w: no API key in element script", ErrBadResponse)
	}

	g.token = string(m[1])
	g.tokenExpiry = time.Now().Add(googleTokenTTL)
	return g.token, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
