// Package server exposes the generation service over HTTP. The surface is
// deliberately small: one generation endpoint plus config, health, and stats
// introspection for the desktop UI that fronts it.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/planwright/planwright/internal/cache"
	"github.com/planwright/planwright/internal/metrics"
	"github.com/planwright/planwright/internal/provider"
	"github.com/planwright/planwright/internal/router"
	"github.com/planwright/planwright/internal/tokenizer"
	"github.com/planwright/planwright/internal/tracing"
	"github.com/planwright/planwright/internal/version"
)

// routerState bundles the router with the candidate list it was built from.
// The handler swaps the whole bundle atomically on config reload so a request
// never sees a half-updated provider chain.
type routerState struct {
	candidates []provider.Config
	router     *router.Router
}

// Handler serves the generation API.
type Handler struct {
	state     atomic.Pointer[routerState]
	cache     *cache.Cache
	collector *metrics.Collector
	tokenizer *tokenizer.Tokenizer
	logger    zerolog.Logger

	maxBodySize       int64
	serverCredentials atomic.Bool
	startTime         time.Time
}

// NewHandler creates a Handler. maxBodySize of 0 means unlimited.
// serverCredentials gates the generation endpoint entirely.
func NewHandler(
	rt *router.Router,
	candidates []provider.Config,
	c *cache.Cache,
	collector *metrics.Collector,
	tok *tokenizer.Tokenizer,
	logger zerolog.Logger,
	maxBodySize int64,
	serverCredentials bool,
) *Handler {
	h := &Handler{
		cache:       c,
		collector:   collector,
		tokenizer:   tok,
		logger:      logger,
		maxBodySize: maxBodySize,
		startTime:   time.Now(),
	}
	h.state.Store(&routerState{candidates: candidates, router: rt})
	h.serverCredentials.Store(serverCredentials)
	return h
}

// SwapRouter atomically replaces the provider chain. Called on config reload.
func (h *Handler) SwapRouter(rt *router.Router, candidates []provider.Config) {
	h.state.Store(&routerState{candidates: candidates, router: rt})
}

// SetServerCredentials toggles whether the generation endpoint is reachable.
func (h *Handler) SetServerCredentials(enabled bool) {
	h.serverCredentials.Store(enabled)
}

// generateRequest is the JSON body of POST /api/generate.
type generateRequest struct {
	Prompt  *string `json:"prompt"`
	Context string  `json:"context"`
}

// generateResponse is the JSON body returned on success.
type generateResponse struct {
	Response  string `json:"response"`
	Provider  string `json:"provider"`
	Timestamp string `json:"timestamp"`
}

// HandleGenerate processes one generation request. The endpoint itself can
// fail (bad input, disabled server path) but a reachable generation never
// does: provider failure terminates in the fallback responder downstream.
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	if !h.serverCredentials.Load() {
		writeJSONError(w, http.StatusForbidden, "server-side generation is disabled; set generation.server_credentials to enable it")
		return
	}

	requestID := uuid.New().String()
	logger := h.logger.With().Str("request_id", requestID).Logger()

	body := r.Body
	if h.maxBodySize > 0 {
		body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	}
	defer body.Close()

	var req generateRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSONError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Prompt == nil || *req.Prompt == "" {
		writeJSONError(w, http.StatusBadRequest, "prompt is required")
		return
	}
	prompt := *req.Prompt

	ctx, span := tracing.StartGenerateSpan(r.Context(), requestID)
	defer span.End()

	w.Header().Set("X-Request-ID", requestID)

	// Cache lookup happens before touching any provider.
	if res, ok := h.cache.Get(prompt, req.Context); ok {
		logger.Debug().Str("provider", res.Provider).Msg("generation served from cache")
		h.collector.RecordCacheHit()
		w.Header().Set("X-Planwright-Cache", "hit")
		writeGenerateResult(w, res)
		return
	}

	h.collector.IncrementActive()
	defer h.collector.DecrementActive()

	st := h.state.Load()
	res := st.router.Generate(ctx, router.Request{Prompt: prompt, Context: req.Context})

	// Token counts are estimates for metrics only.
	model := modelFor(st.candidates, res.Provider)
	tokensIn := h.tokenizer.CountPrompt(model, prompt, req.Context)
	tokensOut := h.tokenizer.CountTokens(model, res.Text)
	h.collector.RecordGeneration(res.Provider, res.FellBack, tokensIn, tokensOut)

	h.cache.Put(prompt, req.Context, res)

	logger.Info().
		Str("provider", res.Provider).
		Bool("fallback", res.FellBack).
		Int("tokens_in", tokensIn).
		Int("tokens_out", tokensOut).
		Msg("generation complete")

	writeGenerateResult(w, res)
}

// modelFor returns the model name of the provider that answered, for token
// counting. The fallback has no model; counts default to cl100k.
func modelFor(candidates []provider.Config, label string) string {
	for _, c := range candidates {
		if c.Label == label {
			return c.Model
		}
	}
	return ""
}

func writeGenerateResult(w http.ResponseWriter, res router.Result) {
	writeJSON(w, http.StatusOK, generateResponse{
		Response:  res.Text,
		Provider:  res.Provider,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// providerStatus is one entry in the config endpoint's provider list.
// Credentials never appear here, only whether one is present.
type providerStatus struct {
	Label      string `json:"label"`
	Configured bool   `json:"configured"`
	Model      string `json:"model,omitempty"`
	Format     string `json:"format,omitempty"`
	BaseURL    string `json:"base_url,omitempty"`
}

// configResponse is the JSON body of GET /api/config.
type configResponse struct {
	ActiveProvider    string           `json:"active_provider"`
	ServerCredentials bool             `json:"server_credentials"`
	Providers         []providerStatus `json:"providers"`
}

// HandleConfig reports which providers are configured and which one the
// router would try first. API keys are never included.
func (h *Handler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	st := h.state.Load()

	statuses := make([]providerStatus, 0, len(st.candidates))
	for _, c := range st.candidates {
		s := providerStatus{
			Label:      c.Label,
			Configured: c.Configured(),
		}
		if s.Configured {
			s.Model = c.Model
			s.Format = string(c.Format)
			if c.Kind == provider.KindCustom {
				s.BaseURL = c.BaseURL
			}
		}
		statuses = append(statuses, s)
	}

	writeJSON(w, http.StatusOK, configResponse{
		ActiveProvider:    st.router.ActiveLabel(),
		ServerCredentials: h.serverCredentials.Load(),
		Providers:         statuses,
	})
}

// healthResponse is the JSON body of GET /api/health.
type healthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Uptime    string `json:"uptime"`
	Providers int    `json:"providers_configured"`
}

// HandleHealth reports liveness. The server is healthy even with zero
// providers configured, since the fallback responder still answers.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	st := h.state.Load()
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Version:   version.Version,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Providers: len(st.router.Providers()),
	})
}

// HandleStats returns the metrics collector snapshot.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.collector.Stats())
}

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONError writes a JSON error body with the given status code.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
