package config

import (
	"fmt"
	"net/url"
	"strings"
)

// validate checks the Config for invalid or out-of-range values.
// It returns a combined error if any checks fail.
func validate(cfg *Config) error {
	var errs []string

	// Server validation
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be between 1 and 65535, got %d", cfg.Server.Port))
	}
	if !isValidEnum(cfg.Server.LogLevel, ValidLogLevels) {
		errs = append(errs, fmt.Sprintf("server.log_level must be one of %v, got %q", ValidLogLevels, cfg.Server.LogLevel))
	}
	if cfg.Server.DataDir == "" {
		errs = append(errs, "server.data_dir must not be empty")
	}
	if cfg.Server.ReadTimeout < 0 {
		errs = append(errs, fmt.Sprintf("server.read_timeout must be non-negative, got %d", cfg.Server.ReadTimeout))
	}
	if cfg.Server.WriteTimeout < 0 {
		errs = append(errs, fmt.Sprintf("server.write_timeout must be non-negative, got %d", cfg.Server.WriteTimeout))
	}
	if cfg.Server.IdleTimeout < 0 {
		errs = append(errs, fmt.Sprintf("server.idle_timeout must be non-negative, got %d", cfg.Server.IdleTimeout))
	}
	if cfg.Server.MaxBodySize < 0 {
		errs = append(errs, fmt.Sprintf("server.max_body_size must be non-negative, got %d", cfg.Server.MaxBodySize))
	}

	// Custom backend validation
	if cfg.Custom.BaseURL != "" {
		if u, err := url.Parse(cfg.Custom.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Sprintf("custom.base_url must be an absolute URL, got %q", cfg.Custom.BaseURL))
		}
	}
	if cfg.Custom.EndpointPath != "" && !strings.HasPrefix(cfg.Custom.EndpointPath, "/") {
		errs = append(errs, fmt.Sprintf("custom.endpoint_path must start with '/', got %q", cfg.Custom.EndpointPath))
	}
	if !isValidEnum(cfg.Custom.RequestFormat, ValidRequestFormats) {
		errs = append(errs, fmt.Sprintf("custom.request_format must be one of %v, got %q", ValidRequestFormats, cfg.Custom.RequestFormat))
	}
	errs = append(errs, validateBackend("custom", cfg.Custom.MaxTokens, cfg.Custom.Temperature, cfg.Custom.Timeout)...)

	// Hosted backend validation
	for name, b := range map[string]BackendConfig{
		"providers.openai":    cfg.Providers.OpenAI,
		"providers.anthropic": cfg.Providers.Anthropic,
		"providers.groq":      cfg.Providers.Groq,
	} {
		if b.Model == "" {
			errs = append(errs, fmt.Sprintf("%s.model must not be empty", name))
		}
		errs = append(errs, validateBackend(name, b.MaxTokens, b.Temperature, b.Timeout)...)
	}

	// Cache validation
	if cfg.Cache.TTLSeconds < 0 {
		errs = append(errs, fmt.Sprintf("cache.ttl_seconds must be non-negative, got %d", cfg.Cache.TTLSeconds))
	}
	if cfg.Cache.MaxEntries < 0 {
		errs = append(errs, fmt.Sprintf("cache.max_entries must be non-negative, got %d", cfg.Cache.MaxEntries))
	}

	// Tracing validation
	if cfg.Tracing.Enabled {
		validExporters := []string{"stdout", "otlp-grpc", "otlp-http"}
		if !isValidEnum(cfg.Tracing.Exporter, validExporters) {
			errs = append(errs, fmt.Sprintf("tracing.exporter must be one of %v, got %q", validExporters, cfg.Tracing.Exporter))
		}
		if cfg.Tracing.ServiceName == "" {
			errs = append(errs, "tracing.service_name must not be empty when tracing is enabled")
		}
	}
	if cfg.Tracing.SampleRate < 0 || cfg.Tracing.SampleRate > 1 {
		errs = append(errs, fmt.Sprintf("tracing.sample_rate must be between 0 and 1, got %f", cfg.Tracing.SampleRate))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// validateBackend checks the shared generation knobs for one backend section.
func validateBackend(name string, maxTokens int, temperature float64, timeout int) []string {
	var errs []string
	if maxTokens < 1 {
		errs = append(errs, fmt.Sprintf("%s.max_tokens must be positive, got %d", name, maxTokens))
	}
	if temperature < 0 || temperature > 2 {
		errs = append(errs, fmt.Sprintf("%s.temperature must be between 0 and 2, got %.2f", name, temperature))
	}
	if timeout < 0 {
		errs = append(errs, fmt.Sprintf("%s.timeout must be non-negative, got %d", name, timeout))
	}
	return errs
}

// isValidEnum returns true if val is in the allowed list (case-insensitive).
func isValidEnum(val string, allowed []string) bool {
	lower := strings.ToLower(val)
	for _, a := range allowed {
		if strings.ToLower(a) == lower {
			return true
		}
	}
	return false
}
