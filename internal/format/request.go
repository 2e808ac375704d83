package format

import (
	"encoding/json"
	"fmt"
)

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

// claudeRequest has no temperature field, matching that backend's contract.
type claudeRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

// customRequest is a superset body so arbitrary REST services can pick the
// fields they understand.
type customRequest struct {
	Model       string    `json:"model"`
	Prompt      string    `json:"prompt"`
	Context     string    `json:"context,omitempty"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	Messages    []message `json:"messages"`
}

// BuildRequest serializes a prompt (and optional context) into the JSON body
// for the given format. When context is present it is prepended as one
// system-role message wrapped in the consultant preamble; the prompt is always
// the final user-role message.
func BuildRequest(f APIFormat, prompt, context string, p Params) ([]byte, error) {
	msgs := buildMessages(prompt, context)

	switch f {
	case FormatOpenAI:
		return json.Marshal(openaiRequest{
			Model:       p.Model,
			Messages:    msgs,
			MaxTokens:   p.MaxTokens,
			Temperature: p.Temperature,
		})
	case FormatClaude:
		return json.Marshal(claudeRequest{
			Model:     p.Model,
			MaxTokens: p.MaxTokens,
			Messages:  msgs,
		})
	case FormatCustom:
		return json.Marshal(customRequest{
			Model:       p.Model,
			Prompt:      prompt,
			Context:     context,
			MaxTokens:   p.MaxTokens,
			Temperature: p.Temperature,
			Messages:    msgs,
		})
	default:
		return nil, fmt.Errorf("unsupported request format: %s", f)
	}
}

func buildMessages(prompt, context string) []message {
	var msgs []message
	if context != "" {
		msgs = append(msgs, message{Role: "system", Content: contextPreamble + context})
	}
	msgs = append(msgs, message{Role: "user", Content: prompt})
	return msgs
}
