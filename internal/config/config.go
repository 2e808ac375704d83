package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

// configPtr holds the current config for thread-safe access.
var configPtr atomic.Pointer[Config]

// loadedConfigFile stores the path of the config file used by the last successful Load.
var loadedConfigFile atomic.Value

// Get returns the current Config. It is safe for concurrent use.
// If no config has been loaded yet, it returns the default config.
func Get() *Config {
	if c := configPtr.Load(); c != nil {
		return c
	}
	d := DefaultConfig()
	configPtr.Store(d)
	return d
}

// set stores a new Config atomically.
func set(cfg *Config) {
	configPtr.Store(cfg)
}

// Config is the top-level configuration for Planwright.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"     toml:"server"`
	Generation GenerationConfig `mapstructure:"generation" toml:"generation"`
	Custom     CustomConfig     `mapstructure:"custom"     toml:"custom"`
	Providers  ProvidersConfig  `mapstructure:"providers"  toml:"providers"`
	Cache      CacheConfig      `mapstructure:"cache"      toml:"cache"`
	Tracing    TracingConfig    `mapstructure:"tracing"    toml:"tracing"`
}

// ServerConfig holds the core HTTP server settings.
type ServerConfig struct {
	BindAddress  string `mapstructure:"bind_address"  toml:"bind_address"`
	Port         int    `mapstructure:"port"          toml:"port"`
	LogLevel     string `mapstructure:"log_level"     toml:"log_level"`
	DataDir      string `mapstructure:"data_dir"      toml:"data_dir"`
	ReadTimeout  int    `mapstructure:"read_timeout"  toml:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout" toml:"write_timeout"`
	IdleTimeout  int    `mapstructure:"idle_timeout"  toml:"idle_timeout"`
	MaxBodySize  int64  `mapstructure:"max_body_size" toml:"max_body_size"`
}

// GenerationConfig controls the generation call path.
type GenerationConfig struct {
	// ServerCredentials gates whether the server-side call path is reachable
	// at all. When false, /api/generate returns a fixed rejection regardless
	// of provider configuration.
	ServerCredentials bool `mapstructure:"server_credentials" toml:"server_credentials"`
}

// BackendConfig describes one hosted backend (OpenAI, Anthropic, Groq).
type BackendConfig struct {
	KeyRef      string  `mapstructure:"key_ref"     toml:"key_ref"`
	Model       string  `mapstructure:"model"       toml:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"  toml:"max_tokens"`
	Temperature float64 `mapstructure:"temperature" toml:"temperature"`
	Timeout     int     `mapstructure:"timeout"     toml:"timeout"` // seconds
}

// TimeoutDuration returns the backend timeout as a time.Duration.
func (b BackendConfig) TimeoutDuration() time.Duration {
	if b.Timeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(b.Timeout) * time.Second
}

// ProvidersConfig groups the hosted backends. Their priority order is fixed
// in code (custom, openai, anthropic, groq), not configurable.
type ProvidersConfig struct {
	OpenAI    BackendConfig `mapstructure:"openai"    toml:"openai"`
	Anthropic BackendConfig `mapstructure:"anthropic" toml:"anthropic"`
	Groq      BackendConfig `mapstructure:"groq"      toml:"groq"`
}

// CustomConfig describes the operator-pointed generic REST backend. It wins
// the priority chain when configured, since pointing at it is explicit opt-in.
type CustomConfig struct {
	BaseURL         string  `mapstructure:"base_url"          toml:"base_url"`
	EndpointPath    string  `mapstructure:"endpoint_path"     toml:"endpoint_path"`
	KeyRef          string  `mapstructure:"key_ref"           toml:"key_ref"`
	Model           string  `mapstructure:"model"             toml:"model"`
	RequestFormat   string  `mapstructure:"request_format"    toml:"request_format"` // "openai", "claude", "custom"
	AuthHeaderStyle string  `mapstructure:"auth_header_style" toml:"auth_header_style"`
	MaxTokens       int     `mapstructure:"max_tokens"        toml:"max_tokens"`
	Temperature     float64 `mapstructure:"temperature"       toml:"temperature"`
	Timeout         int     `mapstructure:"timeout"           toml:"timeout"` // seconds
}

// TimeoutDuration returns the custom backend timeout as a time.Duration.
func (c CustomConfig) TimeoutDuration() time.Duration {
	if c.Timeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Timeout) * time.Second
}

// CacheConfig controls the in-memory generation cache.
type CacheConfig struct {
	Enabled    bool `mapstructure:"enabled"     toml:"enabled"`
	TTLSeconds int  `mapstructure:"ttl_seconds" toml:"ttl_seconds"`
	MaxEntries int  `mapstructure:"max_entries" toml:"max_entries"`
}

// TracingConfig controls OpenTelemetry distributed tracing.
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"      toml:"enabled"`
	Exporter    string  `mapstructure:"exporter"     toml:"exporter"`     // "stdout", "otlp-grpc", "otlp-http"
	Endpoint    string  `mapstructure:"endpoint"     toml:"endpoint"`     // e.g. "localhost:4317"
	ServiceName string  `mapstructure:"service_name" toml:"service_name"` // defaults to "planwright"
	SampleRate  float64 `mapstructure:"sample_rate"  toml:"sample_rate"`  // 0.0 to 1.0
	Insecure    bool    `mapstructure:"insecure"     toml:"insecure"`     // skip TLS for dev
}

// Load reads configuration from disk with the following precedence:
//  1. Environment variables (PLANWRIGHT_ prefix, _ as separator)
//  2. The file at explicitPath if non-empty
//  3. ~/.planwright/planwright.toml
//  4. ./planwright.toml
//  5. Built-in defaults
//
// The loaded config is validated and stored in the global atomic pointer.
func Load(explicitPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("toml")

	// Set all defaults from the default config so viper knows every key.
	setViperDefaults(v)

	// Environment variable overlay: PLANWRIGHT_SERVER_PORT etc.
	v.SetEnvPrefix("PLANWRIGHT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Determine which file(s) to read.
	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
	} else {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(homeDir, ".planwright"))
		}
		v.AddConfigPath(".")
		v.SetConfigName("planwright")
	}

	if err := v.ReadInConfig(); err != nil {
		// If no config file exists we still proceed with defaults + env.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// Store the resolved config file path.
	if cf := v.ConfigFileUsed(); cf != "" {
		loadedConfigFile.Store(cf)
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	)); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Expand ~ in data_dir.
	cfg.Server.DataDir = expandHome(cfg.Server.DataDir)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	set(cfg)
	return cfg, nil
}

// InitConfig writes the default configuration file to
// ~/.planwright/planwright.toml. If the file already exists it is not
// overwritten.
func InitConfig() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("determining home directory: %w", err)
	}

	dir := filepath.Join(homeDir, ".planwright")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	path := filepath.Join(dir, DefaultConfigFilename)
	if _, err := os.Stat(path); err == nil {
		fmt.Printf("Config already exists: %s\n", path)
		return nil
	}

	cfg := DefaultConfig()
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling default config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("Config written to %s\n", path)
	return nil
}

// ExportConfig writes the current config to the given path in TOML format.
func ExportConfig(path string) error {
	cfg := Get()
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// ConfigFilePath returns the path of the config file that was loaded, or
// empty if no file was found.
func ConfigFilePath() string {
	if v, ok := loadedConfigFile.Load().(string); ok {
		return v
	}
	return ""
}

// setViperDefaults registers every known key with viper so that env var binding
// works for all fields even when no config file is present.
func setViperDefaults(v *viper.Viper) {
	d := DefaultConfig()

	// Server
	v.SetDefault("server.bind_address", d.Server.BindAddress)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.log_level", d.Server.LogLevel)
	v.SetDefault("server.data_dir", d.Server.DataDir)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.idle_timeout", d.Server.IdleTimeout)
	v.SetDefault("server.max_body_size", d.Server.MaxBodySize)

	// Generation
	v.SetDefault("generation.server_credentials", d.Generation.ServerCredentials)

	// Custom backend
	v.SetDefault("custom.base_url", d.Custom.BaseURL)
	v.SetDefault("custom.endpoint_path", d.Custom.EndpointPath)
	v.SetDefault("custom.key_ref", d.Custom.KeyRef)
	v.SetDefault("custom.model", d.Custom.Model)
	v.SetDefault("custom.request_format", d.Custom.RequestFormat)
	v.SetDefault("custom.auth_header_style", d.Custom.AuthHeaderStyle)
	v.SetDefault("custom.max_tokens", d.Custom.MaxTokens)
	v.SetDefault("custom.temperature", d.Custom.Temperature)
	v.SetDefault("custom.timeout", d.Custom.Timeout)

	// Hosted backends
	v.SetDefault("providers.openai.key_ref", d.Providers.OpenAI.KeyRef)
	v.SetDefault("providers.openai.model", d.Providers.OpenAI.Model)
	v.SetDefault("providers.openai.max_tokens", d.Providers.OpenAI.MaxTokens)
	v.SetDefault("providers.openai.temperature", d.Providers.OpenAI.Temperature)
	v.SetDefault("providers.openai.timeout", d.Providers.OpenAI.Timeout)

	v.SetDefault("providers.anthropic.key_ref", d.Providers.Anthropic.KeyRef)
	v.SetDefault("providers.anthropic.model", d.Providers.Anthropic.Model)
	v.SetDefault("providers.anthropic.max_tokens", d.Providers.Anthropic.MaxTokens)
	v.SetDefault("providers.anthropic.temperature", d.Providers.Anthropic.Temperature)
	v.SetDefault("providers.anthropic.timeout", d.Providers.Anthropic.Timeout)

	v.SetDefault("providers.groq.key_ref", d.Providers.Groq.KeyRef)
	v.SetDefault("providers.groq.model", d.Providers.Groq.Model)
	v.SetDefault("providers.groq.max_tokens", d.Providers.Groq.MaxTokens)
	v.SetDefault("providers.groq.temperature", d.Providers.Groq.Temperature)
	v.SetDefault("providers.groq.timeout", d.Providers.Groq.Timeout)

	// Cache
	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.ttl_seconds", d.Cache.TTLSeconds)
	v.SetDefault("cache.max_entries", d.Cache.MaxEntries)

	// Tracing
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.endpoint", d.Tracing.Endpoint)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
	v.SetDefault("tracing.insecure", d.Tracing.Insecure)
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
