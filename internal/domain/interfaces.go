package domain

import "context"

// Provider represents an upstream chat-completion service.
type Provider interface {
	// Stream opens a streaming completion. An error returned here means the
	// upstream failed before producing anything; failures after that arrive
	// as a chunk with Error set, after which the channel is closed.
	Stream(ctx context.Context, req *CompletionRequest) (<-chan StreamChunk, error)

	// Name returns the provider identifier.
	Name() string

	// Configured reports whether the provider has its credential.
	Configured() bool

	// IsModelSupported checks if the provider supports the given model.
	IsModelSupported(ctx context.Context, model string) bool

	// SupportedModels lists the models served by the provider.
	SupportedModels(ctx context.Context) []string
}

// ProviderRegistry manages available providers.
type ProviderRegistry interface {
	// Register adds a provider to the registry.
	Register(ctx context.Context, provider Provider) error

	// Get retrieves a provider by name.
	Get(ctx context.Context, providerName string) (Provider, error)

	// GetByModel retrieves the provider serving a model.
	GetByModel(ctx context.Context, model string) (Provider, error)

	// List returns all available providers.
	List(ctx context.Context) ([]string, error)
}

// Mailer is the black-box email collaborator.
type Mailer interface {
	// Send delivers a message and returns its identifier.
	Send(ctx context.Context, msg *EmailMessage) (*EmailReceipt, error)
}
