package core

import "time"

// Server defaults
const (
	DefaultPort    = "8080"
	DefaultGinMode = "release"
)

// Upstream API defaults
const (
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	GeminiAPIVersion     = "v1beta"

	DefaultMaxOutputTokens = 256
	DefaultTemperature     = 0.2

	ModelMethodGenerateContent = "generateContent"
	ModelNamePrefix            = "models/"
)

// DefaultPreferredModels is the automatic model selection order used when a
// request does not name a model and PREFERRED_MODELS is unset.
var DefaultPreferredModels = []string{
	"gemini-pro",
	"gemini-1.5-pro",
	"gemini-1.5-flash",
	"gemini-1.0-pro",
	"text-bison@001",
	"text-bison",
}

// HTTP client config constants
const (
	HTTPMaxIdleConns          = 100
	HTTPMaxIdleConnsPerHost   = 20
	HTTPMaxConnsPerHost       = 50
	HTTPIdleConnTimeout       = 90 * time.Second
	HTTPTLSHandshakeTimeout   = 10 * time.Second
	HTTPResponseHeaderTimeout = 30 * time.Second
	HTTPExpectContinueTimeout = 5 * time.Second
	HTTPRequestTimeout        = 2 * time.Minute
)

// Cache config constants
const (
	CacheDefaultCapacity = 1000
	CacheCleanupInterval = 5 * time.Minute
	DefaultModelCacheTTL = 5 * time.Minute
	CacheKeyVersion      = "v1"
)

// Retry policy for upstream calls
const (
	MaxUpstreamRetries   = 3
	UpstreamRetryBackoff = 500 * time.Millisecond
)

// Stats and monitoring constants
const (
	StatsFilePath        = "stats.json"
	MinSaveInterval      = 5 * time.Second
	HistoryBufferSize    = 1000
	HistoryBatchSize     = 100
	HistoryFlushInterval = 100 * time.Millisecond
)

// Response body size limits
const (
	MaxResponseBodySize = 10 * 1024 * 1024
)

// HTTP header and content type constants
const (
	HeaderContentType   = "Content-Type"
	HeaderAuthorization = "Authorization"
	HeaderXAPIKey       = "x-api-key"
	HeaderGoogAPIKey    = "x-goog-api-key"

	ContentTypeJSON  = "application/json"
	AuthBearerPrefix = "Bearer "

	CORSMaxAge = "86400"
)

// ID prefixes for generated responses
const (
	GenerationIDPrefix = "gen-"
)

// Logging config constants
const (
	MaxDebugFilePathLength = 260
)

// File permission constants
const (
	FilePermissionReadWrite = 0644
)

// Time format constants
const (
	TimeFormatDateTime = "2006-01-02 15:04:05"
)
