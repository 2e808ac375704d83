// Package router orchestrates generation requests across the configured
// upstream backends. Providers are tried strictly sequentially in fixed
// priority order; the first success wins, and a fully failed chain terminates
// in the offline fallback responder. Generate never returns an error: all
// provider failure is absorbed here, because the caller is an interactive
// document-generation UI where a degraded answer beats an error dialog.
package router

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/planwright/planwright/internal/fallback"
	"github.com/planwright/planwright/internal/metrics"
	"github.com/planwright/planwright/internal/provider"
	"github.com/planwright/planwright/internal/tracing"
)

// FallbackLabel is the sentinel provider label for fallback answers.
const FallbackLabel = "fallback"

// Request is one generation call.
type Request struct {
	Prompt  string // required, non-empty
	Context string // optional, prepended as system-role guidance
}

// Result is what Generate always returns.
type Result struct {
	Text     string
	Provider string // label of the backend that answered, or FallbackLabel
	FellBack bool
}

// Caller abstracts the provider client so tests can substitute fakes.
type Caller interface {
	Call(ctx context.Context, prompt, contextText string, cfg provider.Config) provider.Outcome
}

// Router holds the ordered list of configured providers. It is built once at
// startup and is immutable afterwards; the priority order is not
// reconfigurable at runtime.
type Router struct {
	providers []provider.Config
	client    Caller
	collector *metrics.Collector
	logger    zerolog.Logger
}

// New creates a Router from the candidate provider list, keeping only
// configured entries in their given priority order. collector may be nil.
func New(candidates []provider.Config, client Caller, collector *metrics.Collector, logger zerolog.Logger) *Router {
	var configured []provider.Config
	for _, p := range candidates {
		if p.Configured() {
			configured = append(configured, p)
		}
	}

	return &Router{
		providers: configured,
		client:    client,
		collector: collector,
		logger:    logger,
	}
}

// Providers returns the configured providers in priority order.
func (r *Router) Providers() []provider.Config {
	out := make([]provider.Config, len(r.providers))
	copy(out, r.providers)
	return out
}

// ActiveLabel returns the label of the highest-priority configured provider,
// or FallbackLabel when none is configured.
func (r *Router) ActiveLabel() string {
	if len(r.providers) == 0 {
		return FallbackLabel
	}
	return r.providers[0].Label
}

// Generate tries each configured provider in priority order and returns the
// first successful answer, or the fallback responder's output when every
// provider fails or none is configured. At most one upstream call succeeds
// per request; later providers are never invoked after a success.
func (r *Router) Generate(ctx context.Context, req Request) Result {
	var last provider.Outcome
	var lastLabel string

	for _, p := range r.providers {
		outcome := r.client.Call(ctx, req.Prompt, req.Context, p)
		if outcome.OK {
			r.logger.Info().Str("provider", p.Label).Msg("generation succeeded")
			tracing.SetGenerateResult(ctx, p.Label, false)
			return Result{Text: outcome.Text, Provider: p.Label}
		}

		// Failures are not surfaced individually; log and try the next one.
		r.logger.Warn().
			Str("provider", p.Label).
			Str("reason", string(outcome.Reason)).
			Int("status", outcome.Status).
			Str("detail", outcome.Detail).
			Msg("provider attempt failed, trying next")
		if r.collector != nil {
			r.collector.RecordFailure(p.Label, string(outcome.Reason))
		}

		last = outcome
		lastLabel = p.Label

		// A dead context will fail every remaining provider the same way.
		if ctx.Err() != nil {
			break
		}
	}

	reason := "no AI providers are configured"
	if lastLabel != "" {
		reason = fmt.Sprintf("the %s provider failed (%s)", lastLabel, last)
	}

	r.logger.Info().Str("reason", reason).Msg("all providers exhausted, using fallback")
	tracing.SetGenerateResult(ctx, FallbackLabel, true)
	return Result{
		Text:     fallback.Respond(req.Prompt, reason),
		Provider: FallbackLabel,
		FellBack: true,
	}
}
