// Package echo provides an offline provider that streams the user prompt
// back word by word. It implements the domain.Provider interface without
// external calls, giving deterministic responses for workshops run without
// a Qwen key and for tests.
package echo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/davidbz/workshopai/internal/domain"
	"github.com/davidbz/workshopai/internal/observability"
)

const (
	providerName = "echo"
	modelName    = "echo"
	chunkDelay   = 10 * time.Millisecond
)

// Provider implements the domain.Provider interface for offline echoing.
type Provider struct {
	name            string
	supportedModels map[string]bool
	delay           time.Duration
}

// NewProvider creates a new echo provider.
// No configuration is required as this provider operates entirely in-memory.
func NewProvider() *Provider {
	return &Provider{
		name: providerName,
		supportedModels: map[string]bool{
			modelName: true,
		},
		delay: chunkDelay,
	}
}

// Stream returns the user prompt split into word chunks followed by a stop chunk.
func (p *Provider) Stream(ctx context.Context, req *domain.CompletionRequest) (<-chan domain.StreamChunk, error) {
	if req == nil {
		return nil, errors.New("request cannot be nil")
	}

	if !p.supportedModels[req.Model] {
		return nil, fmt.Errorf("model %s is not supported by echo provider", req.Model)
	}

	logger := observability.FromContext(ctx)
	logger.Debug("streaming echo request")

	words := strings.Fields(req.UserPrompt)
	chunks := make(chan domain.StreamChunk)

	go func() {
		defer close(chunks)

		for i, word := range words {
			delta := word
			if i < len(words)-1 {
				delta += " "
			}

			select {
			case <-ctx.Done():
				return
			case chunks <- domain.StreamChunk{Delta: delta}:
			}

			if p.delay > 0 {
				select {
				case <-ctx.Done():
					return
				case <-time.After(p.delay):
				}
			}
		}

		select {
		case chunks <- domain.StreamChunk{Stop: true}:
		case <-ctx.Done():
		}
	}()

	return chunks, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return p.name
}

// Configured always holds; echo needs no credential.
func (p *Provider) Configured() bool {
	return true
}

// IsModelSupported checks if the provider supports the given model.
func (p *Provider) IsModelSupported(_ context.Context, model string) bool {
	return p.supportedModels[model]
}

// SupportedModels returns a list of all models this provider supports.
func (p *Provider) SupportedModels(_ context.Context) []string {
	models := make([]string, 0, len(p.supportedModels))
	for model := range p.supportedModels {
		models = append(models, model)
	}
	return models
}
