// Package mocks holds testify mocks for the domain interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/davidbz/workshopai/internal/domain"
)

// Provider is a mock domain.Provider.
type Provider struct {
	mock.Mock
}

func (m *Provider) Stream(ctx context.Context, req *domain.CompletionRequest) (<-chan domain.StreamChunk, error) {
	args := m.Called(ctx, req)
	chunks, _ := args.Get(0).(<-chan domain.StreamChunk)
	return chunks, args.Error(1)
}

func (m *Provider) Name() string {
	return m.Called().String(0)
}

func (m *Provider) Configured() bool {
	return m.Called().Bool(0)
}

func (m *Provider) IsModelSupported(ctx context.Context, model string) bool {
	return m.Called(ctx, model).Bool(0)
}

func (m *Provider) SupportedModels(ctx context.Context) []string {
	models, _ := m.Called(ctx).Get(0).([]string)
	return models
}

// ProviderRegistry is a mock domain.ProviderRegistry.
type ProviderRegistry struct {
	mock.Mock
}

func (m *ProviderRegistry) Register(ctx context.Context, provider domain.Provider) error {
	return m.Called(ctx, provider).Error(0)
}

func (m *ProviderRegistry) Get(ctx context.Context, providerName string) (domain.Provider, error) {
	args := m.Called(ctx, providerName)
	provider, _ := args.Get(0).(domain.Provider)
	return provider, args.Error(1)
}

func (m *ProviderRegistry) GetByModel(ctx context.Context, model string) (domain.Provider, error) {
	args := m.Called(ctx, model)
	provider, _ := args.Get(0).(domain.Provider)
	return provider, args.Error(1)
}

func (m *ProviderRegistry) List(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	names, _ := args.Get(0).([]string)
	return names, args.Error(1)
}

// Mailer is a mock domain.Mailer.
type Mailer struct {
	mock.Mock
}

func (m *Mailer) Send(ctx context.Context, msg *domain.EmailMessage) (*domain.EmailReceipt, error) {
	args := m.Called(ctx, msg)
	receipt, _ := args.Get(0).(*domain.EmailReceipt)
	return receipt, args.Error(1)
}

// Chunks returns a closed channel pre-filled with chunks.
func Chunks(chunks ...domain.StreamChunk) <-chan domain.StreamChunk {
	ch := make(chan domain.StreamChunk, len(chunks))
	for _, chunk := range chunks {
		ch <- chunk
	}
	close(ch)
	return ch
}
