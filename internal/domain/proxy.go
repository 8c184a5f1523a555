package domain

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/davidbz/workshopai/internal/observability"
)

// ProxyService validates completion requests and opens upstream streams.
type ProxyService struct {
	registry ProviderRegistry
}

// NewProxyService creates a new proxy service (DI constructor).
func NewProxyService(registry ProviderRegistry) *ProxyService {
	return &ProxyService{
		registry: registry,
	}
}

// Stream applies defaults, validates the request and opens the upstream
// stream for its model. Errors are one of ValidationError,
// ConfigurationError or UpstreamError.
func (p *ProxyService) Stream(ctx context.Context, req *CompletionRequest) (<-chan StreamChunk, error) {
	if req == nil {
		return nil, NewValidationError("body", "request cannot be nil")
	}

	resolved := req.WithDefaults()

	provider, err := p.registry.GetByModel(ctx, resolved.Model)
	if err != nil {
		return nil, NewValidationError("model", "unsupported model: %s", resolved.Model)
	}

	// The credential is checked before the prompt so a misconfigured
	// deployment is reported as such whatever the body holds.
	if !provider.Configured() {
		return nil, &ConfigurationError{Provider: provider.Name(), Err: ErrProviderNotConfigured}
	}

	if err = validate(&resolved); err != nil {
		return nil, err
	}

	ctx = observability.WithProvider(ctx, provider.Name())
	ctx = observability.WithModel(ctx, resolved.Model)
	logger := observability.FromContext(ctx)

	logger.Debug("opening upstream stream",
		observability.Float64("temperature", resolved.TemperatureValue()),
		observability.Int("prompt_length", len(resolved.UserPrompt)))

	chunks, err := provider.Stream(ctx, &resolved)
	if err != nil {
		logger.Error("upstream failed before streaming", observability.Error(err))

		var upstreamErr *UpstreamError
		if errors.As(err, &upstreamErr) {
			return nil, upstreamErr
		}
		return nil, &UpstreamError{Provider: provider.Name(), Err: err}
	}

	return chunks, nil
}

// Models lists every model served by the registered providers, sorted.
func (p *ProxyService) Models(ctx context.Context) ([]string, error) {
	names, err := p.registry.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list providers: %w", err)
	}

	var models []string
	for _, name := range names {
		provider, getErr := p.registry.Get(ctx, name)
		if getErr != nil {
			return nil, fmt.Errorf("failed to get provider %s: %w", name, getErr)
		}
		models = append(models, provider.SupportedModels(ctx)...)
	}

	sort.Strings(models)
	return models, nil
}

func validate(req *CompletionRequest) error {
	if strings.TrimSpace(req.UserPrompt) == "" {
		return NewValidationError("userPrompt", "userPrompt is required")
	}

	temperature := req.TemperatureValue()
	if temperature < MinTemperature || temperature > MaxTemperature {
		return NewValidationError("temperature",
			"temperature must be between %.1f and %.1f, got %v", MinTemperature, MaxTemperature, temperature)
	}

	return nil
}
