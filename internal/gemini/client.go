package gemini

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"gemini2api/internal/core"
	"gemini2api/internal/util"
)

const listModelsPageSize = 1000

// Client talks to the Generative Language API over REST.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     core.Logger
}

// ClientConfig configures a Client.
type ClientConfig struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Logger     core.Logger
}

// NewClient creates a new provider client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("provider API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = core.DefaultGeminiBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if cfg.Logger == nil {
		cfg.Logger = &core.NopLogger{}
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger,
	}, nil
}

// NormalizeModelName strips the provider's resource prefix so model names can
// be compared and embedded in URLs uniformly.
func NormalizeModelName(name string) string {
	return strings.TrimPrefix(name, core.ModelNamePrefix)
}

// GenerateContent calls models/{model}:generateContent and returns the first
// candidate's text.
func (c *Client) GenerateContent(ctx context.Context, model string, opts core.GenerationOptions) (*core.GenerationResult, error) {
	model = NormalizeModelName(model)

	payload := generateContentRequest{
		Contents: []Content{
			{Role: "user", Parts: []Part{{Text: opts.Prompt}}},
		},
	}

	genConfig := &GenerationConfig{}
	if opts.MaxOutputTokens > 0 {
		genConfig.MaxOutputTokens = opts.MaxOutputTokens
	}
	if opts.Temperature != nil {
		genConfig.Temperature = opts.Temperature
	}
	if genConfig.MaxOutputTokens > 0 || genConfig.Temperature != nil {
		payload.GenerationConfig = genConfig
	}

	endpoint := fmt.Sprintf("%s/%s/models/%s:generateContent", c.baseURL, core.GeminiAPIVersion, url.PathEscape(model))

	var response generateContentResponse
	if err := c.doJSON(ctx, http.MethodPost, endpoint, payload, &response); err != nil {
		return nil, err
	}

	if response.PromptFeedback != nil && response.PromptFeedback.BlockReason != "" {
		return nil, core.NewProviderError(http.StatusBadRequest,
			fmt.Sprintf("prompt blocked by provider: %s", response.PromptFeedback.BlockReason), nil)
	}

	if len(response.Candidates) == 0 {
		return nil, core.NewProviderError(0, "provider returned no candidates", nil)
	}

	candidate := response.Candidates[0]
	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		sb.WriteString(part.Text)
	}

	result := &core.GenerationResult{
		Text:         sb.String(),
		Model:        model,
		FinishReason: candidate.FinishReason,
	}
	if response.UsageMetadata != nil {
		result.InputTokens = response.UsageMetadata.PromptTokenCount
		result.OutputTokens = response.UsageMetadata.CandidatesTokenCount
	}

	c.logger.Debug("Generation done: model=%s, finish=%s, output=%d chars",
		model, candidate.FinishReason, len(result.Text))

	return result, nil
}

// ListModels returns the provider's model catalog in provider order,
// following pagination.
func (c *Client) ListModels(ctx context.Context) ([]core.Model, error) {
	var models []core.Model
	pageToken := ""

	for {
		endpoint := fmt.Sprintf("%s/%s/models?pageSize=%d", c.baseURL, core.GeminiAPIVersion, listModelsPageSize)
		if pageToken != "" {
			endpoint += "&pageToken=" + url.QueryEscape(pageToken)
		}

		var page listModelsResponse
		if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}

		models = append(models, page.Models...)

		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	c.logger.Debug("Provider reported %d models", len(models))
	return models, nil
}

// doJSON performs a JSON request/response round trip against the provider,
// mapping non-2xx responses to provider errors.
func (c *Client) doJSON(ctx context.Context, method, endpoint string, payload, result any) error {
	var body io.Reader
	if payload != nil {
		payloadBytes, err := util.MarshalJSON(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(payloadBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set(core.HeaderContentType, core.ContentTypeJSON)
	req.Header.Set(core.HeaderGoogAPIKey, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return core.NewProviderError(0, "provider request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, core.MaxResponseBodySize))
	if err != nil {
		return core.NewProviderError(0, "failed to read provider response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return c.errorFromResponse(resp.StatusCode, respBody)
	}

	if err := util.UnmarshalJSON(respBody, result); err != nil {
		return core.NewProviderError(0, "failed to decode provider response", err)
	}

	return nil
}

// errorFromResponse converts an upstream error body to a provider error.
// 4xx messages are passed through to the caller, 5xx bodies are logged only.
func (c *Client) errorFromResponse(statusCode int, body []byte) error {
	c.logger.Error("Provider API error: status=%d, body=%s", statusCode, string(body))

	message := fmt.Sprintf("provider error (status %d)", statusCode)

	var parsed apiError
	if err := util.UnmarshalJSON(body, &parsed); err == nil && parsed.Error.Message != "" {
		if parsed.Error.Status != "" {
			message = fmt.Sprintf("%s: %s", parsed.Error.Status, parsed.Error.Message)
		} else {
			message = parsed.Error.Message
		}
	}

	if statusCode >= 500 {
		message = "upstream service error"
	}

	return core.NewProviderError(statusCode, message, nil)
}
