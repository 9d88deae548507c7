package core

import (
	"context"
	"time"
)

// Logger interface
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
	Fatal(format string, args ...any)
}

// Cache interface
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any, duration time.Duration)
	Stop()
}

// StorageInterface storage interface
type StorageInterface interface {
	SaveStats(stats *RequestStats) error
	LoadStats() (*RequestStats, error)
	Close() error
}

// Provider is the upstream generative-language API client.
type Provider interface {
	GenerateContent(ctx context.Context, model string, opts GenerationOptions) (*GenerationResult, error)
	ListModels(ctx context.Context) ([]Model, error)
}

// MetricsCollector interface
type MetricsCollector interface {
	RecordRequest(success bool, responseTime int64, model string, account string)
	RecordHTTPRequest(duration time.Duration)
	RecordCacheHit()
	RecordCacheMiss()
	GetQPS() float64
}

// NopLogger empty logger implementation
type NopLogger struct{}

func (*NopLogger) Debug(format string, args ...any) {}
func (*NopLogger) Info(format string, args ...any)  {}
func (*NopLogger) Warn(format string, args ...any)  {}
func (*NopLogger) Error(format string, args ...any) {}
func (*NopLogger) Fatal(format string, args ...any) {}

// NopMetrics empty metrics collector implementation
type NopMetrics struct{}

func (*NopMetrics) RecordRequest(success bool, responseTime int64, model string, account string) {}
func (*NopMetrics) RecordHTTPRequest(duration time.Duration)                                     {}
func (*NopMetrics) RecordCacheHit()                                                              {}
func (*NopMetrics) RecordCacheMiss()                                                             {}
func (*NopMetrics) GetQPS() float64                                                              { return 0 }
