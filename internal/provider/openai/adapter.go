// Package openai provides the Qwen provider, which talks to DashScope's
// OpenAI-compatible endpoint through the official OpenAI SDK.
// It implements the domain.Provider interface and converts SDK stream
// chunks into domain chunks.
package openai

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/ssestream"

	"github.com/davidbz/workshopai/internal/domain"
	"github.com/davidbz/workshopai/internal/observability"
)

const (
	providerName = "qwen"

	finishReasonStop = "stop"
)

// Provider implements the domain.Provider interface for Qwen.
type Provider struct {
	client     openai.Client
	name       string
	configured bool
	models     map[string]bool
}

// NewProvider creates a new Qwen provider.
func NewProvider(config Config) (*Provider, error) {
	models := config.Models
	if len(models) == 0 {
		models = DefaultModels()
	}

	modelSet := buildModelSet(models)
	if len(modelSet) == 0 {
		return nil, errors.New("at least one Qwen model is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
	}

	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	if config.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(time.Duration(config.Timeout)*time.Second))
	}

	if config.MaxRetries >= 0 {
		opts = append(opts, option.WithMaxRetries(config.MaxRetries))
	}

	return &Provider{
		client:     openai.NewClient(opts...),
		name:       providerName,
		configured: config.APIKey != "",
		models:     modelSet,
	}, nil
}

// Stream opens a streaming completion.
//
// The first upstream event is read before returning so that a rejected
// request (bad key, unknown model, network failure) is reported as an
// error instead of a stream.
func (p *Provider) Stream(ctx context.Context, req *domain.CompletionRequest) (<-chan domain.StreamChunk, error) {
	if req == nil {
		return nil, errors.New("request cannot be nil")
	}

	if !p.configured {
		return nil, &domain.ConfigurationError{Provider: p.name, Err: domain.ErrProviderNotConfigured}
	}

	logger := observability.FromContext(ctx)
	logger.Debug("calling Qwen streaming API")

	stream := p.client.Chat.Completions.NewStreaming(ctx, p.toSDKParams(req))

	if !stream.Next() {
		err := stream.Err()
		_ = stream.Close()
		if err != nil {
			logger.Error("Qwen streaming call failed", observability.Error(err))
			return nil, &domain.UpstreamError{Provider: p.name, Err: err}
		}

		// Upstream closed without events.
		empty := make(chan domain.StreamChunk)
		close(empty)
		return empty, nil
	}

	chunks := make(chan domain.StreamChunk)
	go p.forward(ctx, stream, chunks)

	return chunks, nil
}

// forward relays SDK chunks until the upstream ends, fails, or ctx is done.
// The stream is positioned on its first event when forward starts.
func (p *Provider) forward(
	ctx context.Context,
	stream *ssestream.Stream[openai.ChatCompletionChunk],
	chunks chan<- domain.StreamChunk,
) {
	logger := observability.FromContext(ctx)

	defer close(chunks)
	defer stream.Close()
	defer logger.Debug("Qwen stream completed")

	send := func(chunk domain.StreamChunk) bool {
		select {
		case chunks <- chunk:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for {
		if chunk, ok := toDomainChunk(stream.Current()); ok {
			if !send(chunk) {
				return
			}
		}

		if !stream.Next() {
			break
		}
	}

	if err := stream.Err(); err != nil && ctx.Err() == nil {
		logger.Warn("Qwen stream failed mid-response", observability.Error(err))
		send(domain.StreamChunk{Error: fmt.Errorf("%s stream error: %w", p.name, err)})
	}
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return p.name
}

// Configured reports whether an API key was supplied.
func (p *Provider) Configured() bool {
	return p.configured
}

// IsModelSupported checks if the provider supports the given model.
func (p *Provider) IsModelSupported(_ context.Context, model string) bool {
	return p.models[model]
}

// SupportedModels returns the configured models, sorted.
func (p *Provider) SupportedModels(_ context.Context) []string {
	models := make([]string, 0, len(p.models))
	for model := range p.models {
		models = append(models, model)
	}
	sort.Strings(models)
	return models
}

// toSDKParams converts domain request to SDK ChatCompletionNewParams.
func (p *Provider) toSDKParams(req *domain.CompletionRequest) openai.ChatCompletionNewParams {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages()))
	for _, msg := range req.Messages() {
		switch msg.Role {
		case domain.RoleSystem:
			messages = append(messages, openai.SystemMessage(msg.Content))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}

	return openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(req.Model),
		Messages:    messages,
		Temperature: openai.Float(req.TemperatureValue()),
	}
}

// toDomainChunk converts an SDK chunk. Chunks without choices carry nothing.
func toDomainChunk(chunk openai.ChatCompletionChunk) (domain.StreamChunk, bool) {
	if len(chunk.Choices) == 0 {
		return domain.StreamChunk{}, false
	}

	choice := chunk.Choices[0]
	return domain.StreamChunk{
		Delta: choice.Delta.Content,
		Stop:  choice.FinishReason == finishReasonStop,
	}, true
}
