package config

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/planwright/planwright/internal/credential"
	"github.com/planwright/planwright/internal/format"
	"github.com/planwright/planwright/internal/provider"
)

// BuildProviders resolves the configured backends into the ordered candidate
// list the router consumes. The order is fixed: custom first (pointing at it
// is explicit opt-in), then openai, anthropic, groq.
//
// Key refs that fail to resolve, and resolved keys that look absent or like
// placeholders, leave the backend with an empty credential. The router drops
// unconfigured backends itself, so every slot is always returned here.
func BuildProviders(cfg *Config, vault *credential.Vault) []provider.Config {
	custom := provider.Config{
		Kind:         provider.KindCustom,
		Label:        "custom",
		Credential:   resolveCredential(vault, "custom", cfg.Custom.KeyRef),
		BaseURL:      strings.TrimSuffix(cfg.Custom.BaseURL, "/"),
		EndpointPath: cfg.Custom.EndpointPath,
		Model:        cfg.Custom.Model,
		Format:       parseFormat(cfg.Custom.RequestFormat),
		AuthStyle:    cfg.Custom.AuthHeaderStyle,
		MaxTokens:    cfg.Custom.MaxTokens,
		Temperature:  cfg.Custom.Temperature,
		Timeout:      cfg.Custom.TimeoutDuration(),
	}

	openai := hostedProvider(provider.KindOpenAI, "openai", cfg.Providers.OpenAI, format.FormatOpenAI, "bearer", vault)
	anthropic := hostedProvider(provider.KindAnthropic, "anthropic", cfg.Providers.Anthropic, format.FormatClaude, "x-api-key", vault)
	groq := hostedProvider(provider.KindGroq, "groq", cfg.Providers.Groq, format.FormatOpenAI, "bearer", vault)

	return []provider.Config{custom, openai, anthropic, groq}
}

// hostedProvider builds the provider.Config for one hosted backend.
func hostedProvider(kind provider.Kind, label string, b BackendConfig, f format.APIFormat, authStyle string, vault *credential.Vault) provider.Config {
	return provider.Config{
		Kind:        kind,
		Label:       label,
		Credential:  resolveCredential(vault, label, b.KeyRef),
		Model:       b.Model,
		Format:      f,
		AuthStyle:   authStyle,
		MaxTokens:   b.MaxTokens,
		Temperature: b.Temperature,
		Timeout:     b.TimeoutDuration(),
	}
}

// resolveCredential turns a key ref into a validated credential, or "" when
// the backend has no usable key. Resolution failures are logged at debug
// because an unset backend is the normal state, not an error.
func resolveCredential(vault *credential.Vault, label, keyRef string) string {
	if keyRef == "" {
		return ""
	}

	raw, err := vault.ResolveKeyRef(keyRef)
	if err != nil {
		log.Debug().Str("backend", label).Err(err).Msg("no credential resolved")
		return ""
	}

	cred := credential.Validate(raw)
	if cred == "" && raw != "" {
		log.Warn().Str("backend", label).Msg("credential looks like a placeholder, ignoring")
	}
	return cred
}

// parseFormat maps the config string to an APIFormat, defaulting to openai.
func parseFormat(s string) format.APIFormat {
	f := format.APIFormat(strings.ToLower(strings.TrimSpace(s)))
	if !f.Valid() {
		return format.FormatOpenAI
	}
	return f
}
