package tokenizer

import (
	"strings"
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// Tokenizer estimates token counts using tiktoken encodings. Encodings are
// cached via sync.Once to avoid repeated initialization. Counts feed logging
// and metrics only; the router does no token budgeting.
type Tokenizer struct {
	cl100kOnce sync.Once
	cl100kEnc  *tiktoken.Tiktoken
	cl100kErr  error

	o200kOnce sync.Once
	o200kEnc  *tiktoken.Tiktoken
	o200kErr  error
}

// modelEncodings maps model names to their tiktoken encoding.
var modelEncodings = map[string]string{
	// OpenAI / Groq models use cl100k_base.
	"gpt-3.5-turbo":        "cl100k_base",
	"gpt-4":                "cl100k_base",
	"gpt-4-turbo":          "cl100k_base",
	"llama-3.1-8b-instant": "cl100k_base",

	// Claude models are approximated with cl100k_base.
	"claude-3-haiku":  "cl100k_base",
	"claude-3-sonnet": "cl100k_base",

	// Newer OpenAI models use o200k_base.
	"gpt-4o":      "o200k_base",
	"gpt-4o-mini": "o200k_base",
}

// New creates a new Tokenizer instance.
func New() *Tokenizer {
	return &Tokenizer{}
}

// GetEncoding returns the encoding name for the given model.
// Unknown models default to cl100k_base.
func (t *Tokenizer) GetEncoding(model string) string {
	if enc, ok := modelEncodings[model]; ok {
		return enc
	}

	// Try prefix matching for versioned model names.
	lower := strings.ToLower(model)
	for m, enc := range modelEncodings {
		if strings.HasPrefix(lower, m) {
			return enc
		}
	}

	return "cl100k_base"
}

// getEncoder returns the cached tiktoken encoder for the given model.
func (t *Tokenizer) getEncoder(model string) (*tiktoken.Tiktoken, error) {
	encName := t.GetEncoding(model)

	switch encName {
	case "o200k_base":
		t.o200kOnce.Do(func() {
			t.o200kEnc, t.o200kErr = tiktoken.GetEncoding("o200k_base")
		})
		return t.o200kEnc, t.o200kErr
	default:
		t.cl100kOnce.Do(func() {
			t.cl100kEnc, t.cl100kErr = tiktoken.GetEncoding("cl100k_base")
		})
		return t.cl100kEnc, t.cl100kErr
	}
}

// CountTokens counts the number of tokens in the given text for the
// specified model. It returns 0 when the encoding cannot be loaded, since an
// estimate of zero is preferable to failing the request.
func (t *Tokenizer) CountTokens(model, text string) int {
	enc, err := t.getEncoder(model)
	if err != nil {
		return 0
	}
	tokens := enc.Encode(text, nil, nil)
	return len(tokens)
}

// CountPrompt estimates the tokens a prompt plus optional context will cost,
// including the per-message framing overhead chat APIs add.
func (t *Tokenizer) CountPrompt(model, prompt, context string) int {
	enc, err := t.getEncoder(model)
	if err != nil {
		return 0
	}

	// Each message carries roughly a 4-token framing overhead, plus 3 tokens
	// for reply priming.
	total := 4 + len(enc.Encode(prompt, nil, nil))
	if context != "" {
		total += 4 + len(enc.Encode(context, nil, nil))
	}
	total += 3
	return total
}
