package format

import "strings"

// AuthHeader renders the credential into an HTTP header per the configured
// auth style. "bearer" (or empty) produces a standard Authorization header;
// a small set of named-key styles map the credential directly to that header
// with no prefix; any other value is treated as a custom Authorization
// prefix, so operators can point at services with nonstandard auth schemes
// without code changes.
func AuthHeader(style, credential string) (name, value string) {
	switch strings.ToLower(strings.TrimSpace(style)) {
	case "", "bearer":
		return "Authorization", "Bearer " + credential
	case "x-api-key":
		return "x-api-key", credential
	case "api-key":
		return "api-key", credential
	default:
		return "Authorization", strings.TrimSpace(style) + " " + credential
	}
}
