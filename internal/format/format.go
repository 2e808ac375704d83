// Package format builds provider-specific request bodies and extracts answer
// text from provider-specific response shapes. One explicit build/parse pair
// exists per supported wire format; parse failures are reported as ErrNoText
// rather than coalesced into an empty answer.
package format

// APIFormat identifies the JSON request/response convention a backend expects.
type APIFormat string

const (
	FormatOpenAI APIFormat = "openai"
	FormatClaude APIFormat = "claude"
	FormatCustom APIFormat = "custom"
)

// Valid reports whether f is one of the supported wire formats.
func (f APIFormat) Valid() bool {
	switch f {
	case FormatOpenAI, FormatClaude, FormatCustom:
		return true
	}
	return false
}

// Params carries the generation knobs included in a request body.
type Params struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

// contextPreamble wraps caller-supplied context in system-role guidance.
const contextPreamble = "You are a helpful business consultant. Here's the current context: "
