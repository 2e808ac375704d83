// Package fallback produces the deterministic offline answer returned when
// no upstream backend succeeds. It never fails and never calls out.
package fallback

import "strings"

// helpCategories enumerates what the assistant can do once a backend is
// reachable again. Kept as data so the help block stays consistent between
// the responder and any future surfaces.
var helpCategories = []string{
	"Business compliance and licensing research",
	"Business name and domain suggestions",
	"Market analysis and competitor overviews",
	"Financial projections and budgeting",
	"Technical requirements and tooling recommendations",
}

// Respond builds the templated offline answer. The original prompt is
// embedded verbatim so the user can see exactly what went unanswered. When a
// reason is supplied, a fixed explanatory block lists the categories of help
// available and remediation hints.
func Respond(prompt, reason string) string {
	var b strings.Builder

	b.WriteString("I couldn't reach an AI provider to answer your request:\n\n")
	b.WriteString("“")
	b.WriteString(prompt)
	b.WriteString("”\n")

	if reason != "" {
		b.WriteString("\nWhy: ")
		b.WriteString(reason)
		b.WriteString("\n\nOnce a provider is available again, I can help with:\n")
		for _, c := range helpCategories {
			b.WriteString("  - ")
			b.WriteString(c)
			b.WriteString("\n")
		}
		b.WriteString("\nTo get back online, check your provider configuration: ")
		b.WriteString("make sure an API credential is set, the custom base URL (if you use one) is correct, ")
		b.WriteString("and the server has network connectivity.")
	}

	return b.String()
}
