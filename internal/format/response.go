package format

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNoText is returned when a syntactically valid JSON response contains
// none of the text locations the format defines. Callers must treat this as
// a malformed response, not as an empty-string answer.
var ErrNoText = errors.New("response contains no answer text")

type openaiResponse struct {
	Choices  []openaiChoice `json:"choices"`
	Response *string        `json:"response"`
}

type openaiChoice struct {
	Message openaiChoiceMessage `json:"message"`
}

type openaiChoiceMessage struct {
	Content *string `json:"content"`
}

type claudeResponse struct {
	Content  []claudeContentBlock `json:"content"`
	Response *string              `json:"response"`
}

type claudeContentBlock struct {
	Type string  `json:"type"`
	Text *string `json:"text"`
}

type customResponse struct {
	Response *string `json:"response"`
	Content  *string `json:"content"`
	Text     *string `json:"text"`
	Message  *string `json:"message"`
}

// ParseResponse extracts the answer text from a provider response body.
//
//   - openai: choices[0].message.content, falling back to top-level "response"
//   - claude: content[0].text, falling back to top-level "response"
//   - custom: "response", "content", "text", "message"; first non-null wins
//
// It returns ErrNoText when nothing matches.
func ParseResponse(f APIFormat, body []byte) (string, error) {
	switch f {
	case FormatOpenAI:
		var resp openaiResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return "", fmt.Errorf("parsing openai response: %w", err)
		}
		if len(resp.Choices) > 0 && resp.Choices[0].Message.Content != nil {
			return *resp.Choices[0].Message.Content, nil
		}
		if resp.Response != nil {
			return *resp.Response, nil
		}
		return "", ErrNoText

	case FormatClaude:
		var resp claudeResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return "", fmt.Errorf("parsing claude response: %w", err)
		}
		if len(resp.Content) > 0 && resp.Content[0].Text != nil {
			return *resp.Content[0].Text, nil
		}
		if resp.Response != nil {
			return *resp.Response, nil
		}
		return "", ErrNoText

	case FormatCustom:
		var resp customResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return "", fmt.Errorf("parsing custom response: %w", err)
		}
		for _, v := range []*string{resp.Response, resp.Content, resp.Text, resp.Message} {
			if v != nil {
				return *v, nil
			}
		}
		return "", ErrNoText

	default:
		return "", fmt.Errorf("unsupported response format: %s", f)
	}
}
