package generate

import (
	"context"
	"strings"
	"time"

	"gemini2api/internal/cache"
	"gemini2api/internal/core"
	"gemini2api/internal/gemini"
)

// Service implements the two backend operations: text generation and model
// listing. It owns prompt validation, automatic model selection and the
// transient-failure retry policy around the provider client.
type Service struct {
	provider        core.Provider
	cache           *cache.CacheService
	metrics         core.MetricsCollector
	logger          core.Logger
	preferredModels []string
	modelCacheTTL   time.Duration
	modelCacheKey   string
	defaultMaxTok   int
	defaultTemp     float64
	retryBackoff    time.Duration
}

// ServiceConfig configures a Service.
type ServiceConfig struct {
	Provider        core.Provider
	Cache           *cache.CacheService
	Metrics         core.MetricsCollector
	Logger          core.Logger
	PreferredModels []string
	ModelCacheTTL   time.Duration
	ModelCacheKey   string
	MaxOutputTokens int
	Temperature     float64
	RetryBackoff    time.Duration
}

// NewService creates a new generation service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Logger == nil {
		cfg.Logger = &core.NopLogger{}
	}
	if cfg.Metrics == nil {
		cfg.Metrics = &core.NopMetrics{}
	}
	if len(cfg.PreferredModels) == 0 {
		cfg.PreferredModels = core.DefaultPreferredModels
	}
	if cfg.ModelCacheKey == "" {
		cfg.ModelCacheKey = cache.GenerateModelListCacheKey(core.DefaultGeminiBaseURL)
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = core.DefaultMaxOutputTokens
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = core.DefaultTemperature
	}
	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = core.UpstreamRetryBackoff
	}

	return &Service{
		provider:        cfg.Provider,
		cache:           cfg.Cache,
		metrics:         cfg.Metrics,
		logger:          cfg.Logger,
		preferredModels: cfg.PreferredModels,
		modelCacheTTL:   cfg.ModelCacheTTL,
		modelCacheKey:   cfg.ModelCacheKey,
		defaultMaxTok:   cfg.MaxOutputTokens,
		defaultTemp:     cfg.Temperature,
		retryBackoff:    cfg.RetryBackoff,
	}
}

// Generate validates the request, resolves a model and forwards the prompt to
// the provider. The provider's text comes back verbatim.
func (s *Service) Generate(ctx context.Context, request core.GenerateRequest) (*core.GenerationResult, error) {
	prompt := strings.TrimSpace(request.Prompt)
	if prompt == "" {
		return nil, core.NewValidationError("missing prompt in request body")
	}

	model := gemini.NormalizeModelName(strings.TrimSpace(request.Model))
	if model == "" {
		chosen, err := s.chooseModel(ctx)
		if err != nil {
			return nil, err
		}
		model = chosen
	}

	opts := core.GenerationOptions{
		Prompt:          prompt,
		MaxOutputTokens: s.defaultMaxTok,
	}
	if request.MaxOutputTokens > 0 {
		opts.MaxOutputTokens = request.MaxOutputTokens
	}
	if request.Temperature != nil {
		opts.Temperature = request.Temperature
	} else {
		temp := s.defaultTemp
		opts.Temperature = &temp
	}

	return s.generateWithRetry(ctx, model, opts)
}

// generateWithRetry retries transient provider failures (rate limit, upstream
// 5xx) up to MaxUpstreamRetries attempts with linear backoff.
func (s *Service) generateWithRetry(ctx context.Context, model string, opts core.GenerationOptions) (*core.GenerationResult, error) {
	var lastErr error

	for attempt := range core.MaxUpstreamRetries {
		if ctx.Err() != nil {
			return nil, core.NewProviderError(0, "request cancelled", ctx.Err())
		}

		result, err := s.provider.GenerateContent(ctx, model, opts)
		if err == nil {
			return result, nil
		}

		lastErr = err
		if !core.IsTransientProviderError(err) {
			return nil, err
		}

		s.logger.Warn("Transient provider failure (attempt %d/%d): %v", attempt+1, core.MaxUpstreamRetries, err)

		if attempt < core.MaxUpstreamRetries-1 {
			select {
			case <-time.After(s.retryBackoff * time.Duration(attempt+1)):
			case <-ctx.Done():
				return nil, core.NewProviderError(0, "request cancelled", ctx.Err())
			}
		}
	}

	return nil, lastErr
}

// ListModels returns the provider's model catalog, optionally cached.
func (s *Service) ListModels(ctx context.Context) ([]core.Model, error) {
	if s.cacheEnabled() {
		if models, found := s.cache.GetModelList(s.modelCacheKey); found {
			s.metrics.RecordCacheHit()
			return models, nil
		}
		s.metrics.RecordCacheMiss()
	}

	models, err := s.provider.ListModels(ctx)
	if err != nil {
		return nil, err
	}

	if s.cacheEnabled() {
		s.cache.SetModelList(s.modelCacheKey, models, s.modelCacheTTL)
	}

	return models, nil
}

func (s *Service) cacheEnabled() bool {
	return s.cache != nil && s.modelCacheTTL > 0
}

// chooseModel picks a model for requests that do not name one: first match in
// the preference list, then the first model supporting generateContent, then
// the first model at all.
func (s *Service) chooseModel(ctx context.Context) (string, error) {
	models, err := s.ListModels(ctx)
	if err != nil {
		return "", core.NewModelSelectionError("failed to list provider models", err)
	}
	if len(models) == 0 {
		return "", core.NewModelSelectionError("provider reported no models", nil)
	}

	available := make(map[string]string, len(models))
	for _, m := range models {
		normalized := gemini.NormalizeModelName(m.Name)
		available[strings.ToLower(normalized)] = normalized
	}

	for _, candidate := range s.preferredModels {
		if name, ok := available[strings.ToLower(gemini.NormalizeModelName(candidate))]; ok {
			s.logger.Debug("Model selection: preferred model %s available", name)
			return name, nil
		}
	}

	for _, m := range models {
		for _, method := range m.SupportedGenerationMethods {
			if method == core.ModelMethodGenerateContent {
				name := gemini.NormalizeModelName(m.Name)
				s.logger.Debug("Model selection: falling back to %s (supports %s)", name, method)
				return name, nil
			}
		}
	}

	name := gemini.NormalizeModelName(models[0].Name)
	s.logger.Warn("Model selection: no model advertises %s, using first model %s", core.ModelMethodGenerateContent, name)
	return name, nil
}
