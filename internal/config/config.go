package config

import (
	"fmt"
	"os"
	"time"

	"gemini2api/internal/core"
	"gemini2api/internal/util"
)

// ServerConfig server configuration
type ServerConfig struct {
	Port    string
	GinMode string

	GeminiAPIKey  string
	GeminiBaseURL string

	ClientAPIKeys   []string
	PreferredModels []string

	ModelCacheTTL   time.Duration
	MaxOutputTokens int
	Temperature     float64
	RateLimit       int

	HTTPClientSettings HTTPClientSettings

	Storage core.StorageInterface
	Logger  core.Logger
}

// HTTPClientSettings HTTP client configuration
type HTTPClientSettings struct {
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	MaxConnsPerHost     int
	IdleConnTimeout     time.Duration
	TLSHandshakeTimeout time.Duration
	RequestTimeout      time.Duration
}

// DefaultHTTPClientSettings default HTTP client settings
func DefaultHTTPClientSettings() HTTPClientSettings {
	return HTTPClientSettings{
		MaxIdleConns:        core.HTTPMaxIdleConns,
		MaxIdleConnsPerHost: core.HTTPMaxIdleConnsPerHost,
		MaxConnsPerHost:     core.HTTPMaxConnsPerHost,
		IdleConnTimeout:     core.HTTPIdleConnTimeout,
		TLSHandshakeTimeout: core.HTTPTLSHandshakeTimeout,
		RequestTimeout:      core.HTTPRequestTimeout,
	}
}

// LoadGeminiAPIKeyFromEnv resolves the provider API key. GEMINI_API_KEY wins,
// GOOGLE_API_KEY is accepted as a fallback.
func LoadGeminiAPIKeyFromEnv() (string, error) {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key, nil
	}
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("set GEMINI_API_KEY or GOOGLE_API_KEY environment variable (.env or OS)")
}

// LoadServerConfigFromEnv loads server config from environment variables
func LoadServerConfigFromEnv(logger core.Logger) (ServerConfig, error) {
	apiKey, err := LoadGeminiAPIKeyFromEnv()
	if err != nil {
		return ServerConfig{}, err
	}
	logger.Info("Provider API key loaded (%s)", util.MaskSecret(apiKey))

	clientAPIKeys := util.ParseEnvList(os.Getenv("CLIENT_API_KEYS"))
	if len(clientAPIKeys) == 0 {
		logger.Warn("CLIENT_API_KEYS is empty, API endpoints are unauthenticated")
	} else {
		logger.Info("Loaded %d client API keys", len(clientAPIKeys))
	}

	preferredModels := util.ParseEnvList(os.Getenv("PREFERRED_MODELS"))
	if len(preferredModels) == 0 {
		preferredModels = core.DefaultPreferredModels
	}

	config := ServerConfig{
		Port:               util.GetEnvWithDefault("PORT", core.DefaultPort),
		GinMode:            util.GetEnvWithDefault("GIN_MODE", core.DefaultGinMode),
		GeminiAPIKey:       apiKey,
		GeminiBaseURL:      util.GetEnvWithDefault("GEMINI_BASE_URL", core.DefaultGeminiBaseURL),
		ClientAPIKeys:      clientAPIKeys,
		PreferredModels:    preferredModels,
		ModelCacheTTL:      util.GetEnvDurationSeconds("MODEL_CACHE_TTL", core.DefaultModelCacheTTL),
		MaxOutputTokens:    util.GetEnvIntWithDefault("MAX_OUTPUT_TOKENS", core.DefaultMaxOutputTokens),
		Temperature:        util.GetEnvFloatWithDefault("TEMPERATURE", core.DefaultTemperature),
		RateLimit:          util.GetEnvIntWithDefault("RATE_LIMIT", 120),
		HTTPClientSettings: DefaultHTTPClientSettings(),
	}

	if config.RateLimit <= 0 {
		logger.Warn("Invalid RATE_LIMIT value, using default 120")
		config.RateLimit = 120
	}
	if config.MaxOutputTokens <= 0 {
		config.MaxOutputTokens = core.DefaultMaxOutputTokens
	}

	return config, nil
}
