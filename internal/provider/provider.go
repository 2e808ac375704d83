// Package provider performs the network call to one upstream AI backend and
// classifies the result. It never retries; trying the next backend is the
// router's job.
package provider

import (
	"time"

	"github.com/planwright/planwright/internal/format"
)

// Kind identifies one of the supported backend families.
type Kind string

const (
	// KindCustom is an operator-pointed arbitrary REST endpoint.
	KindCustom    Kind = "custom"
	KindOpenAI    Kind = "openai"
	KindAnthropic Kind = "anthropic"
	KindGroq      Kind = "groq"
)

// Well-known endpoints for the hosted backend kinds.
const (
	openaiURL    = "https://api.openai.com/v1/chat/completions"
	anthropicURL = "https://api.anthropic.com/v1/messages"
	groqURL      = "https://api.groq.com/openai/v1/chat/completions"
)

// anthropicVersion is the API version header Anthropic requires.
const anthropicVersion = "2023-06-01"

// Config holds everything needed to call one upstream backend.
type Config struct {
	Kind         Kind
	Label        string
	Credential   string
	BaseURL      string // required for KindCustom, ignored otherwise
	EndpointPath string
	Model        string
	Format       format.APIFormat
	AuthStyle    string
	MaxTokens    int
	Temperature  float64
	Timeout      time.Duration
}

// Configured reports whether this backend can be called at all: the
// credential must have survived validation, and the custom kind additionally
// needs a base URL to point at.
func (c Config) Configured() bool {
	if c.Credential == "" {
		return false
	}
	if c.Kind == KindCustom && c.BaseURL == "" {
		return false
	}
	return true
}

// URL returns the full endpoint URL for this backend.
func (c Config) URL() string {
	switch c.Kind {
	case KindOpenAI:
		return openaiURL
	case KindAnthropic:
		return anthropicURL
	case KindGroq:
		return groqURL
	default:
		return c.BaseURL + c.EndpointPath
	}
}

// Params returns the generation knobs for the format adapter.
func (c Config) Params() format.Params {
	return format.Params{
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
	}
}
