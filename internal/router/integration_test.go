package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/planwright/planwright/internal/format"
	"github.com/planwright/planwright/internal/metrics"
	"github.com/planwright/planwright/internal/provider"
)

// These tests run the real provider client against httptest upstreams, so
// the whole path (request build, HTTP call, classification, chain advance,
// fallback) is exercised together.

func upstreamCandidate(baseURL string, f format.APIFormat) provider.Config {
	return provider.Config{
		Kind:         provider.KindCustom,
		Label:        "custom",
		Credential:   "sk-test-key-1234567890",
		BaseURL:      baseURL,
		EndpointPath: "/chat/completions",
		Model:        "test-model",
		Format:       f,
		AuthStyle:    "bearer",
		MaxTokens:    100,
		Temperature:  0.7,
	}
}

func TestGenerate_ClaudeFormatUpstream(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content":[{"text":"Get a business license."}]}`))
	}))
	defer ts.Close()

	r := New(
		[]provider.Config{upstreamCandidate(ts.URL, format.FormatClaude)},
		provider.NewClient(), metrics.NewCollector(), zerolog.Nop(),
	)

	res := r.Generate(context.Background(), Request{Prompt: "What licenses do I need?"})

	if res.FellBack {
		t.Fatalf("unexpected fallback: %s", res.Text)
	}
	if res.Text != "Get a business license." {
		t.Errorf("text = %q; want the upstream answer exactly", res.Text)
	}
	if res.Provider != "custom" {
		t.Errorf("provider = %q; want custom", res.Provider)
	}
}

func TestGenerate_UpstreamAuthFailureEndsInFallback(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"invalid key"}}`))
	}))
	defer ts.Close()

	collector := metrics.NewCollector()
	r := New(
		[]provider.Config{upstreamCandidate(ts.URL, format.FormatOpenAI)},
		provider.NewClient(), collector, zerolog.Nop(),
	)

	res := r.Generate(context.Background(), Request{Prompt: "What licenses do I need?"})

	if !res.FellBack {
		t.Fatal("expected fallback after the only provider failed")
	}
	if !strings.Contains(res.Text, "What licenses do I need?") {
		t.Errorf("fallback should embed the prompt:\n%s", res.Text)
	}
	if !strings.Contains(res.Text, "custom") {
		t.Errorf("fallback reason should name the failed provider:\n%s", res.Text)
	}
	if collector.Stats().FailureReasons["authorization"] != 1 {
		t.Error("authorization failure should be recorded")
	}
}

func TestGenerate_UnparseableBodyIsMalformedNotEmptySuccess(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"done"}`))
	}))
	defer ts.Close()

	collector := metrics.NewCollector()
	r := New(
		[]provider.Config{upstreamCandidate(ts.URL, format.FormatCustom)},
		provider.NewClient(), collector, zerolog.Nop(),
	)

	res := r.Generate(context.Background(), Request{Prompt: "p"})

	if !res.FellBack {
		t.Fatal("a 200 with no extractable text must advance the chain, not succeed")
	}
	if collector.Stats().FailureReasons["malformed_response"] != 1 {
		t.Error("malformed_response failure should be recorded")
	}
}

func TestGenerate_SecondUpstreamRescuesFirst(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer bad.Close()

	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"rescued"}}]}`))
	}))
	defer good.Close()

	first := upstreamCandidate(bad.URL, format.FormatOpenAI)
	second := upstreamCandidate(good.URL, format.FormatOpenAI)
	second.Label = "custom-b"

	r := New(
		[]provider.Config{first, second},
		provider.NewClient(), metrics.NewCollector(), zerolog.Nop(),
	)

	res := r.Generate(context.Background(), Request{Prompt: "p"})

	if res.FellBack {
		t.Fatalf("unexpected fallback: %s", res.Text)
	}
	if res.Text != "rescued" || res.Provider != "custom-b" {
		t.Errorf("result = %+v; want the second provider's answer", res)
	}
}
