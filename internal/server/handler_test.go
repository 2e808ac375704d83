package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/planwright/planwright/internal/cache"
	"github.com/planwright/planwright/internal/format"
	"github.com/planwright/planwright/internal/metrics"
	"github.com/planwright/planwright/internal/provider"
	"github.com/planwright/planwright/internal/router"
	"github.com/planwright/planwright/internal/tokenizer"
)

// fakeCaller returns scripted outcomes per provider label.
type fakeCaller struct {
	outcomes map[string]provider.Outcome
}

func (f *fakeCaller) Call(ctx context.Context, prompt, contextText string, cfg provider.Config) provider.Outcome {
	if o, ok := f.outcomes[cfg.Label]; ok {
		return o
	}
	return provider.Failure(provider.ReasonOther, 0, "unscripted provider")
}

func testCandidates() []provider.Config {
	return []provider.Config{
		{
			Kind:       provider.KindOpenAI,
			Label:      "openai",
			Credential: "sk-test-1234567890",
			Model:      "gpt-4o-mini",
			Format:     format.FormatOpenAI,
			AuthStyle:  "bearer",
		},
		{
			Kind:       provider.KindGroq,
			Label:      "groq",
			Credential: "gsk-test-1234567890",
			Model:      "llama-3.1-8b-instant",
			Format:     format.FormatOpenAI,
			AuthStyle:  "bearer",
		},
	}
}

type handlerOptions struct {
	outcomes          map[string]provider.Outcome
	candidates        []provider.Config
	collector         *metrics.Collector
	maxBodySize       int64
	serverCredentials bool
	cacheEnabled      bool
}

func newTestHandler(t *testing.T, opts handlerOptions) *Handler {
	t.Helper()

	if opts.candidates == nil {
		opts.candidates = testCandidates()
	}
	if opts.collector == nil {
		opts.collector = metrics.NewCollector()
	}

	rt := router.New(opts.candidates, &fakeCaller{outcomes: opts.outcomes}, opts.collector, zerolog.Nop())

	c, err := cache.New(10, 60, opts.cacheEnabled)
	if err != nil {
		t.Fatalf("cache.New: %v", err)
	}

	return NewHandler(rt, opts.candidates, c, opts.collector, tokenizer.New(), zerolog.Nop(), opts.maxBodySize, opts.serverCredentials)
}

func newTestServer(handler *Handler) *httptest.Server {
	srv := NewServer(handler, ":0", 0, 0, 0, false)
	return httptest.NewServer(srv.Router())
}

func postGenerate(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url+"/api/generate", "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("POST /api/generate: %v", err)
	}
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("unmarshalling body %q: %v", string(body), err)
	}
}

func TestGenerate_Success(t *testing.T) {
	h := newTestHandler(t, handlerOptions{
		outcomes:          map[string]provider.Outcome{"openai": provider.Success("your business plan")},
		serverCredentials: true,
	})
	ts := newTestServer(h)
	defer ts.Close()

	resp := postGenerate(t, ts.URL, `{"prompt":"write a plan","context":"bakery"}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d; want 200", resp.StatusCode)
	}

	var got generateResponse
	decodeJSON(t, resp, &got)
	if got.Response != "your business plan" {
		t.Errorf("response = %q", got.Response)
	}
	if got.Provider != "openai" {
		t.Errorf("provider = %q; want openai", got.Provider)
	}
	if got.Timestamp == "" {
		t.Error("timestamp should be set")
	}
}

func TestGenerate_AllProvidersFail_Returns200Fallback(t *testing.T) {
	h := newTestHandler(t, handlerOptions{
		outcomes: map[string]provider.Outcome{
			"openai": provider.Failure(provider.ReasonAuthorization, 401, ""),
			"groq":   provider.Failure(provider.ReasonUnreachable, 0, ""),
		},
		serverCredentials: true,
	})
	ts := newTestServer(h)
	defer ts.Close()

	resp := postGenerate(t, ts.URL, `{"prompt":"write a plan"}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d; provider failure must not surface as an HTTP error", resp.StatusCode)
	}

	var got generateResponse
	decodeJSON(t, resp, &got)
	if got.Provider != router.FallbackLabel {
		t.Errorf("provider = %q; want %q", got.Provider, router.FallbackLabel)
	}
	if !strings.Contains(got.Response, "write a plan") {
		t.Errorf("fallback response should embed the prompt:\n%s", got.Response)
	}
}

func TestGenerate_DisabledServerCredentials(t *testing.T) {
	h := newTestHandler(t, handlerOptions{serverCredentials: false})
	ts := newTestServer(h)
	defer ts.Close()

	resp := postGenerate(t, ts.URL, `{"prompt":"write a plan"}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d; want 403", resp.StatusCode)
	}
}

func TestGenerate_BadInput(t *testing.T) {
	h := newTestHandler(t, handlerOptions{
		outcomes:          map[string]provider.Outcome{"openai": provider.Success("ok")},
		serverCredentials: true,
	})
	ts := newTestServer(h)
	defer ts.Close()

	tests := []struct {
		name string
		body string
	}{
		{"missing prompt", `{}`},
		{"empty prompt", `{"prompt":""}`},
		{"null prompt", `{"prompt":null}`},
		{"non-string prompt", `{"prompt":42}`},
		{"invalid json", `{"prompt":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postGenerate(t, ts.URL, tt.body)
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d; want 400", resp.StatusCode)
			}
		})
	}
}

func TestGenerate_BodyTooLarge(t *testing.T) {
	h := newTestHandler(t, handlerOptions{
		serverCredentials: true,
		maxBodySize:       64,
	})
	ts := newTestServer(h)
	defer ts.Close()

	big := `{"prompt":"` + strings.Repeat("x", 500) + `"}`
	resp := postGenerate(t, ts.URL, big)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d; want 413", resp.StatusCode)
	}
}

func TestGenerate_CacheHit(t *testing.T) {
	collector := metrics.NewCollector()
	h := newTestHandler(t, handlerOptions{
		outcomes:          map[string]provider.Outcome{"openai": provider.Success("cached answer")},
		collector:         collector,
		serverCredentials: true,
		cacheEnabled:      true,
	})
	ts := newTestServer(h)
	defer ts.Close()

	first := postGenerate(t, ts.URL, `{"prompt":"same prompt"}`)
	first.Body.Close()
	if first.Header.Get("X-Planwright-Cache") == "hit" {
		t.Fatal("first request should not be a cache hit")
	}

	second := postGenerate(t, ts.URL, `{"prompt":"same prompt"}`)
	defer second.Body.Close()

	if second.Header.Get("X-Planwright-Cache") != "hit" {
		t.Error("second identical request should hit the cache")
	}

	var got generateResponse
	decodeJSON(t, second, &got)
	if got.Response != "cached answer" {
		t.Errorf("response = %q; want the cached answer", got.Response)
	}
	if collector.Stats().CacheHits != 1 {
		t.Errorf("cache hits = %d; want 1", collector.Stats().CacheHits)
	}
}

func TestGenerate_FallbackIsNeverCached(t *testing.T) {
	h := newTestHandler(t, handlerOptions{
		outcomes: map[string]provider.Outcome{
			"openai": provider.Failure(provider.ReasonUnreachable, 0, ""),
			"groq":   provider.Failure(provider.ReasonUnreachable, 0, ""),
		},
		serverCredentials: true,
		cacheEnabled:      true,
	})
	ts := newTestServer(h)
	defer ts.Close()

	first := postGenerate(t, ts.URL, `{"prompt":"p"}`)
	first.Body.Close()

	second := postGenerate(t, ts.URL, `{"prompt":"p"}`)
	defer second.Body.Close()

	if second.Header.Get("X-Planwright-Cache") == "hit" {
		t.Error("fallback answers must not be served from cache")
	}
}

func TestConfigEndpoint(t *testing.T) {
	h := newTestHandler(t, handlerOptions{serverCredentials: true})
	ts := newTestServer(h)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/config")
	if err != nil {
		t.Fatalf("GET /api/config: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d; want 200", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	if strings.Contains(string(body), "sk-test-1234567890") {
		t.Fatal("config endpoint must never leak credentials")
	}

	var got configResponse
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("unmarshalling: %v", err)
	}
	if got.ActiveProvider != "openai" {
		t.Errorf("active_provider = %q; want openai", got.ActiveProvider)
	}
	if len(got.Providers) != 2 {
		t.Fatalf("providers = %d; want 2", len(got.Providers))
	}
	if !got.Providers[0].Configured {
		t.Error("openai should report configured")
	}
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestHandler(t, handlerOptions{})
	ts := newTestServer(h)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d; want 200", resp.StatusCode)
	}

	var got healthResponse
	decodeJSON(t, resp, &got)
	if got.Status != "ok" {
		t.Errorf("status = %q; want ok", got.Status)
	}
	if got.Providers != 2 {
		t.Errorf("providers_configured = %d; want 2", got.Providers)
	}
}

func TestStatsEndpoint(t *testing.T) {
	h := newTestHandler(t, handlerOptions{
		outcomes:          map[string]provider.Outcome{"openai": provider.Success("ok")},
		serverCredentials: true,
	})
	ts := newTestServer(h)
	defer ts.Close()

	resp := postGenerate(t, ts.URL, `{"prompt":"p"}`)
	resp.Body.Close()

	stats, err := http.Get(ts.URL + "/api/stats")
	if err != nil {
		t.Fatalf("GET /api/stats: %v", err)
	}
	defer stats.Body.Close()

	var got metrics.Stats
	decodeJSON(t, stats, &got)
	if got.TotalRequests != 1 {
		t.Errorf("total_requests = %d; want 1", got.TotalRequests)
	}
	if got.SuccessByLabel["openai"] != 1 {
		t.Errorf("openai successes = %d; want 1", got.SuccessByLabel["openai"])
	}
}

func TestSwapRouter_ChangesActiveProvider(t *testing.T) {
	h := newTestHandler(t, handlerOptions{serverCredentials: true})
	ts := newTestServer(h)
	defer ts.Close()

	newCandidates := []provider.Config{
		{
			Kind:       provider.KindAnthropic,
			Label:      "anthropic",
			Credential: "sk-ant-1234567890",
			Model:      "claude-3-haiku-20240307",
			Format:     format.FormatClaude,
			AuthStyle:  "x-api-key",
		},
	}
	newRouter := router.New(newCandidates, &fakeCaller{}, metrics.NewCollector(), zerolog.Nop())
	h.SwapRouter(newRouter, newCandidates)

	resp, err := http.Get(ts.URL + "/api/config")
	if err != nil {
		t.Fatalf("GET /api/config: %v", err)
	}
	defer resp.Body.Close()

	var got configResponse
	decodeJSON(t, resp, &got)
	if got.ActiveProvider != "anthropic" {
		t.Errorf("active_provider = %q; want anthropic after swap", got.ActiveProvider)
	}
}
