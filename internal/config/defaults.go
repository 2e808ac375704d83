package config

// DefaultBindAddress is the default bind address (localhost only for security).
const DefaultBindAddress = "127.0.0.1"

// DefaultPort is the default port for the generation server.
const DefaultPort = 8787

// DefaultLogLevel is the default log level.
const DefaultLogLevel = "info"

// DefaultDataDir is the default data directory (before tilde expansion).
const DefaultDataDir = "~/.planwright"

// DefaultConfigFilename is the name of the config file.
const DefaultConfigFilename = "planwright.toml"

// DefaultReadTimeout is the default HTTP server read timeout in seconds.
const DefaultReadTimeout = 10

// DefaultWriteTimeout is the default HTTP server write timeout in seconds.
// Set high (3 minutes) to accommodate slow upstream generations.
const DefaultWriteTimeout = 180

// DefaultIdleTimeout is the default HTTP server idle timeout in seconds.
const DefaultIdleTimeout = 120

// DefaultMaxBodySize is the default maximum request body size in bytes (1 MB).
const DefaultMaxBodySize int64 = 1 << 20

// DefaultEndpointPath is the default endpoint path for the custom backend.
const DefaultEndpointPath = "/chat/completions"

// DefaultCustomModel is the default model name for the custom backend.
const DefaultCustomModel = "gpt-3.5-turbo"

// DefaultRequestFormat is the default wire format for the custom backend.
const DefaultRequestFormat = "openai"

// DefaultAuthHeaderStyle is the default auth header style for the custom backend.
const DefaultAuthHeaderStyle = "Bearer"

// DefaultMaxTokens is the default max_tokens for every backend.
const DefaultMaxTokens = 4000

// DefaultTemperature is the default sampling temperature for every backend.
const DefaultTemperature = 0.7

// DefaultBackendTimeout is the default per-backend timeout in seconds.
const DefaultBackendTimeout = 30

// DefaultOpenAIModel is the default model for the OpenAI backend.
const DefaultOpenAIModel = "gpt-4o-mini"

// DefaultAnthropicModel is the default model for the Anthropic backend.
const DefaultAnthropicModel = "claude-3-haiku-20240307"

// DefaultGroqModel is the default model for the Groq backend.
const DefaultGroqModel = "llama-3.1-8b-instant"

// DefaultCacheTTL is the default generation cache TTL in seconds.
const DefaultCacheTTL = 600

// DefaultCacheMaxEntries is the default generation cache size.
const DefaultCacheMaxEntries = 500

// DefaultTracingExporter is the default tracing exporter type.
const DefaultTracingExporter = "otlp-grpc"

// DefaultTracingEndpoint is the default OTLP collector endpoint.
const DefaultTracingEndpoint = "localhost:4317"

// DefaultTracingServiceName is the default service name for traces.
const DefaultTracingServiceName = "planwright"

// DefaultTracingSampleRate is the default sampling rate (1.0 = 100%).
const DefaultTracingSampleRate = 1.0

// ValidLogLevels lists the allowed log level values.
var ValidLogLevels = []string{"trace", "debug", "info", "warn", "error", "fatal"}

// ValidRequestFormats lists the allowed custom backend wire formats.
var ValidRequestFormats = []string{"openai", "claude", "custom"}

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			BindAddress:  DefaultBindAddress,
			Port:         DefaultPort,
			LogLevel:     DefaultLogLevel,
			DataDir:      DefaultDataDir,
			ReadTimeout:  DefaultReadTimeout,
			WriteTimeout: DefaultWriteTimeout,
			IdleTimeout:  DefaultIdleTimeout,
			MaxBodySize:  DefaultMaxBodySize,
		},
		Generation: GenerationConfig{
			ServerCredentials: true,
		},
		Custom: CustomConfig{
			BaseURL:         "",
			EndpointPath:    DefaultEndpointPath,
			KeyRef:          "keyring://planwright/custom",
			Model:           DefaultCustomModel,
			RequestFormat:   DefaultRequestFormat,
			AuthHeaderStyle: DefaultAuthHeaderStyle,
			MaxTokens:       DefaultMaxTokens,
			Temperature:     DefaultTemperature,
			Timeout:         DefaultBackendTimeout,
		},
		Providers: ProvidersConfig{
			OpenAI: BackendConfig{
				KeyRef:      "keyring://planwright/openai",
				Model:       DefaultOpenAIModel,
				MaxTokens:   DefaultMaxTokens,
				Temperature: DefaultTemperature,
				Timeout:     DefaultBackendTimeout,
			},
			Anthropic: BackendConfig{
				KeyRef:      "keyring://planwright/anthropic",
				Model:       DefaultAnthropicModel,
				MaxTokens:   DefaultMaxTokens,
				Temperature: DefaultTemperature,
				Timeout:     DefaultBackendTimeout,
			},
			Groq: BackendConfig{
				KeyRef:      "keyring://planwright/groq",
				Model:       DefaultGroqModel,
				MaxTokens:   DefaultMaxTokens,
				Temperature: DefaultTemperature,
				Timeout:     DefaultBackendTimeout,
			},
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: DefaultCacheTTL,
			MaxEntries: DefaultCacheMaxEntries,
		},
		Tracing: TracingConfig{
			Enabled:     false,
			Exporter:    DefaultTracingExporter,
			Endpoint:    DefaultTracingEndpoint,
			ServiceName: DefaultTracingServiceName,
			SampleRate:  DefaultTracingSampleRate,
			Insecure:    false,
		},
	}
}
