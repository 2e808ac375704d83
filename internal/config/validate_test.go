package config

import (
	"strings"
	"testing"
)

func validTestConfig() *Config {
	cfg := DefaultConfig()
	cfg.Server.DataDir = "/tmp/planwright-test"
	return cfg
}

func TestValidate_ValidConfig(t *testing.T) {
	if err := validate(validTestConfig()); err != nil {
		t.Fatalf("validate valid config: %v", err)
	}
}

func TestValidate_BadPort(t *testing.T) {
	cfg := validTestConfig()
	cfg.Server.Port = 70000

	err := validate(cfg)
	if err == nil {
		t.Fatal("expected error for port 70000")
	}
	if !strings.Contains(err.Error(), "server.port") {
		t.Errorf("error should mention server.port: %v", err)
	}
}

func TestValidate_BadLogLevel(t *testing.T) {
	cfg := validTestConfig()
	cfg.Server.LogLevel = "verbose"

	err := validate(cfg)
	if err == nil {
		t.Fatal("expected error for invalid log level")
	}
	if !strings.Contains(err.Error(), "log_level") {
		t.Errorf("error should mention log_level: %v", err)
	}
}

func TestValidate_EmptyDataDir(t *testing.T) {
	cfg := validTestConfig()
	cfg.Server.DataDir = ""

	if err := validate(cfg); err == nil {
		t.Fatal("expected error for empty data_dir")
	}
}

func TestValidate_BadRequestFormat(t *testing.T) {
	cfg := validTestConfig()
	cfg.Custom.RequestFormat = "grpc"

	err := validate(cfg)
	if err == nil {
		t.Fatal("expected error for unknown request format")
	}
	if !strings.Contains(err.Error(), "request_format") {
		t.Errorf("error should mention request_format: %v", err)
	}
}

func TestValidate_BadBaseURL(t *testing.T) {
	cfg := validTestConfig()
	cfg.Custom.BaseURL = "not a url"

	err := validate(cfg)
	if err == nil {
		t.Fatal("expected error for relative base URL")
	}
	if !strings.Contains(err.Error(), "base_url") {
		t.Errorf("error should mention base_url: %v", err)
	}
}

func TestValidate_EmptyBaseURLIsAllowed(t *testing.T) {
	cfg := validTestConfig()
	cfg.Custom.BaseURL = ""

	if err := validate(cfg); err != nil {
		t.Fatalf("unset custom base URL should be valid: %v", err)
	}
}

func TestValidate_EndpointPathNeedsLeadingSlash(t *testing.T) {
	cfg := validTestConfig()
	cfg.Custom.EndpointPath = "chat/completions"

	if err := validate(cfg); err == nil {
		t.Fatal("expected error for endpoint path without leading slash")
	}
}

func TestValidate_TemperatureRange(t *testing.T) {
	cfg := validTestConfig()
	cfg.Providers.OpenAI.Temperature = 2.5

	err := validate(cfg)
	if err == nil {
		t.Fatal("expected error for temperature > 2")
	}
	if !strings.Contains(err.Error(), "temperature") {
		t.Errorf("error should mention temperature: %v", err)
	}

	cfg = validTestConfig()
	cfg.Custom.Temperature = -0.1
	if err := validate(cfg); err == nil {
		t.Fatal("expected error for negative temperature")
	}
}

func TestValidate_MaxTokensMustBePositive(t *testing.T) {
	cfg := validTestConfig()
	cfg.Providers.Groq.MaxTokens = 0

	if err := validate(cfg); err == nil {
		t.Fatal("expected error for max_tokens 0")
	}
}

func TestValidate_NegativeCacheValues(t *testing.T) {
	cfg := validTestConfig()
	cfg.Cache.TTLSeconds = -1

	if err := validate(cfg); err == nil {
		t.Fatal("expected error for negative cache TTL")
	}
}

func TestValidate_TracingExporter(t *testing.T) {
	cfg := validTestConfig()
	cfg.Tracing.Enabled = true
	cfg.Tracing.Exporter = "jaeger"

	err := validate(cfg)
	if err == nil {
		t.Fatal("expected error for unknown exporter")
	}
	if !strings.Contains(err.Error(), "exporter") {
		t.Errorf("error should mention exporter: %v", err)
	}

	// Disabled tracing skips the exporter check.
	cfg.Tracing.Enabled = false
	if err := validate(cfg); err != nil {
		t.Fatalf("disabled tracing should not validate exporter: %v", err)
	}
}

func TestValidate_SampleRateRange(t *testing.T) {
	cfg := validTestConfig()
	cfg.Tracing.SampleRate = 1.5

	if err := validate(cfg); err == nil {
		t.Fatal("expected error for sample rate > 1")
	}
}
