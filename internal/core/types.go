package core

import "time"

// GenerateRequest is the incoming body of POST /api/generate.
// Field names follow the browser frontend contract: only "prompt" is required,
// everything else falls back to server defaults.
type GenerateRequest struct {
	Prompt          string   `json:"prompt"`
	Model           string   `json:"model,omitempty"`
	MaxOutputTokens int      `json:"max_output_tokens,omitempty"`
	Temperature     *float64 `json:"temperature,omitempty"`
}

// GenerateResponse is the success body of POST /api/generate.
type GenerateResponse struct {
	OK        bool   `json:"ok"`
	ID        string `json:"id"`
	ModelUsed string `json:"model_used"`
	Output    string `json:"output"`
}

// GenerationOptions carries the per-call parameters for an upstream
// generateContent request.
type GenerationOptions struct {
	Prompt          string
	MaxOutputTokens int
	Temperature     *float64
}

// GenerationResult is the provider's answer to a generation call.
type GenerationResult struct {
	Text         string
	Model        string
	FinishReason string
	InputTokens  int
	OutputTokens int
}

// Model represents a single model entry as reported by the provider.
// Field names mirror the Generative Language API resource.
type Model struct {
	Name                       string   `json:"name"`
	DisplayName                string   `json:"displayName,omitempty"`
	Description                string   `json:"description,omitempty"`
	SupportedGenerationMethods []string `json:"supportedGenerationMethods,omitempty"`
	InputTokenLimit            int      `json:"inputTokenLimit,omitempty"`
	OutputTokenLimit           int      `json:"outputTokenLimit,omitempty"`
}

// ModelList is the body of GET /api/list-models. Order is the provider's.
type ModelList struct {
	OK     bool    `json:"ok"`
	Models []Model `json:"models"`
}

// RequestStats holds aggregated request statistics for monitoring.
type RequestStats struct {
	TotalRequests      int64           `json:"total_requests"`
	SuccessfulRequests int64           `json:"successful_requests"`
	FailedRequests     int64           `json:"failed_requests"`
	TotalResponseTime  int64           `json:"total_response_time"`
	LastRequestTime    time.Time       `json:"last_request_time"`
	RequestHistory     []RequestRecord `json:"request_history"`
}

// RequestRecord represents a single request's metadata for history tracking.
type RequestRecord struct {
	Timestamp    time.Time `json:"timestamp"`
	Success      bool      `json:"success"`
	ResponseTime int64     `json:"response_time"`
	Model        string    `json:"model"`
	Account      string    `json:"account"`
}

// PeriodStats holds computed statistics for a time period.
type PeriodStats struct {
	Requests        int64   `json:"requests"`
	SuccessRate     float64 `json:"successRate"`
	AvgResponseTime int64   `json:"avgResponseTime"`
	QPS             float64 `json:"qps"`
}
