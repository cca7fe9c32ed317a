package translate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tidwall/gjson"
)

const testAPIKey = "AIzaSy" + "abcdefghijklmnopqrstuvwxyz0123456"

func newGoogleFixture(t *testing.T, translated string) (*Google, *int, *int) {
	t.Helper()

	tokenHits := new(int)
	apiHits := new(int)

	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*tokenHits++
		fmt.Fprintf(w, `var config = {"x-goog-api-key": %q};`, testAPIKey)
	}))
	t.Cleanup(tokenSrv.Close)

	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*apiHits++
		if got := r.Header.Get("X-Goog-API-Key"); got != testAPIKey {
			t.Errorf("expected API key header %q, got %q", testAPIKey, got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json+protobuf" {
			t.Errorf("unexpected content type %q", got)
		}
		fmt.Fprintf(w, `[[%q]]`, translated)
	}))
	t.Cleanup(apiSrv.Close)

	g := NewGoogle(WithGoogleEndpoints(tokenSrv.URL, apiSrv.URL))
	return g, tokenHits, apiHits
}

func TestGoogleTranslate(t *testing.T) {
	g, _, _ := newGoogleFixture(t, "Hello")

	got, err := g.Translate(context.Background(), "Hola", "en")
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if got != "Hello" {
		t.Errorf("Translate() = %q, want %q", got, "Hello")
	}
}

func TestGoogleWireFormat(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"x-goog-api-key": %q}`, testAPIKey)
	}))
	defer tokenSrv.Close()

	var gotBody string
	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		fmt.Fprint(w, `[["Good morning"]]`)
	}))
	defer apiSrv.Close()

	g := NewGoogle(WithGoogleEndpoints(tokenSrv.URL, apiSrv.URL))
	if _, err := g.Translate(context.Background(), "Buenos días", "en"); err != nil {
		t.Fatalf("Translate() error = %v", err)
	}

	// Expected shape: [[["Buenos días"],"auto","en"],"wt_lib"]
	if got := gjson.Get(gotBody, "0.0.0").String(); got != "Buenos días" {
		t.Errorf("payload text = %q, want %q", got, "Buenos días")
	}
	if got := gjson.Get(gotBody, "0.1").String(); got != "auto" {
		t.Errorf("payload source = %q, want auto", got)
	}
	if got := gjson.Get(gotBody, "0.2").String(); got != "en" {
		t.Errorf("payload target = %q, want en", got)
	}
	if got := gjson.Get(gotBody, "1").String(); got != "wt_lib" {
		t.Errorf("payload client = %q, want wt_lib", got)
	}
}

func TestGoogleTokenCachedAcrossCalls(t *testing.T) {
	g, tokenHits, apiHits := newGoogleFixture(t, "Hello")

	for i := 0; i < 3; i++ {
		if _, err := g.Translate(context.Background(), "Hola", "en"); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}

	if *tokenHits != 1 {
		t.Errorf("expected 1 token fetch, got %d", *tokenHits)
	}
	if *apiHits != 3 {
		t.Errorf("expected 3 API calls, got %d", *apiHits)
	}
}

func TestGoogleEmptyText(t *testing.T) {
	g := NewGoogle()
	_, err := g.Translate(context.Background(), "", "en")
	if !errors.Is(err, ErrEmptyText) {
		t.Errorf("expected ErrEmptyText, got %v", err)
	}
}

func TestGoogleMissingTokenInScript(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `var config = {};`)
	}))
	defer tokenSrv.Close()

	g := NewGoogle(WithGoogleEndpoints(tokenSrv.URL, tokenSrv.URL))
	_, err := g.Translate(context.Background(), "Hola", "en")
	if !errors.Is(err, ErrBadResponse) {
		t.Errorf("expected ErrBadResponse, got %v", err)
	}
}

func TestGoogleErrorStatus(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"x-goog-api-key": %q}`, testAPIKey)
	}))
	defer tokenSrv.Close()

	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer apiSrv.Close()

	g := NewGoogle(WithGoogleEndpoints(tokenSrv.URL, apiSrv.URL))
	_, err := g.Translate(context.Background(), "Hola", "en")
	if !errors.Is(err, ErrBadResponse) {
		t.Errorf("expected ErrBadResponse, got %v", err)
	}
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Errorf("expected status in error, got %v", err)
	}
}

func TestGoogleMalformedResponse(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"x-goog-api-key": %q}`, testAPIKey)
	}))
	defer tokenSrv.Close()

	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"unexpected": true}`)
	}))
	defer apiSrv.Close()

	g := NewGoogle(WithGoogleEndpoints(tokenSrv.URL, apiSrv.URL))
	_, err := g.Translate(context.Background(), "Hola", "en")
	if !errors.Is(err, ErrBadResponse) {
		t.Errorf("expected ErrBadResponse, got %v", err)
	}
}

func TestGoogleTokenPattern(t *testing.T) {
	tests := []struct {
		script string
		want   string
	}{
		{`"x-goog-api-key": "` + testAPIKey + `"`, testAPIKey},
		{`'x-goog-api-key':'` + testAPIKey + `'`, testAPIKey},
		{`"X-GOOG-API-KEY"  :  "` + testAPIKey + `"`, testAPIKey},
		{`"x-goog-api-key": "tooshort"`, ""},
	}

	for _, tt := range tests {
		m := googleTokenPattern.FindStringSubmatch(tt.script)
		got := ""
		if m != nil {
			got = m[1]
		}
		if got != tt.want {
			t.Errorf("pattern on %q = %q, want %q", tt.script, got, tt.want)
		}
	}
}
