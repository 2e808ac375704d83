package credential

import "strings"

// MinLength is the shortest string accepted as a real credential. Anything
// shorter is almost certainly a typo or an unfilled template value.
const MinLength = 10

// placeholders are filler values commonly left in config templates and
// example snippets. They are matched case-insensitively after trimming.
var placeholders = []string{
	"your api key here",
	"your-api-key-here",
	"your_api_key_here",
	"your api key",
	"your-api-key",
	"example key",
	"example-key",
	"sk-placeholder",
	"sk-your-key",
	"changeme",
	"change-me",
	"replace-me",
	"insert key here",
	"xxxxxxxxxx",
	"api-key-here",
	"none",
	"null",
	"undefined",
}

// Validate normalizes a raw credential value. It returns the trimmed
// credential, or the empty string if the value is absent, a known placeholder,
// or too short to be a real key. Treating template filler as "not configured"
// here avoids confusing authorization failures deep in the call chain.
func Validate(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if len(trimmed) < MinLength {
		return ""
	}

	lower := strings.ToLower(trimmed)
	for _, p := range placeholders {
		if lower == p {
			return ""
		}
	}

	return trimmed
}
