package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/davidbz/workshopai/internal/config"
	"github.com/davidbz/workshopai/internal/domain"
	"github.com/davidbz/workshopai/internal/httpserver"
	"github.com/davidbz/workshopai/internal/httpserver/middleware"
	"github.com/davidbz/workshopai/internal/mailer"
	"github.com/davidbz/workshopai/internal/observability"
	"github.com/davidbz/workshopai/internal/provider/echo"
	"github.com/davidbz/workshopai/internal/provider/openai"
	"github.com/davidbz/workshopai/internal/provider/registry"
	"github.com/davidbz/workshopai/internal/ratelimit"
)

const shutdownTimeout = 15 * time.Second

func main() {
	container := buildContainer()

	err := container.Invoke(func(server *httpserver.Server, limiter *ratelimit.Limiter, logger *zap.Logger) error {
		defer func() { _ = logger.Sync() }()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start()
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return limiter.Close()
	})
	if err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

func buildContainer() *dig.Container {
	container := dig.New()

	// Configuration
	if err := container.Provide(config.Load); err != nil {
		log.Fatalf("Failed to provide config: %v", err)
	}
	if err := container.Provide(config.ParseDependenciesConfig); err != nil {
		log.Fatalf("Failed to provide config dependencies: %v", err)
	}

	// Observability
	if err := container.Provide(observability.InitLogger); err != nil {
		log.Fatalf("Failed to provide logger: %v", err)
	}

	// Provider Registry
	if err := container.Provide(func() domain.ProviderRegistry {
		return registry.NewRegistry()
	}); err != nil {
		log.Fatalf("Failed to provide registry: %v", err)
	}

	// Qwen is registered even without a key so requests get a configuration error.
	if err := container.Provide(func(cfg *openai.Config) (*openai.Provider, error) {
		return openai.NewProvider(*cfg)
	}); err != nil {
		log.Fatalf("Failed to provide Qwen provider: %v", err)
	}

	// Register providers with registry (invoked for side effects)
	if err := container.Invoke(func(
		reg domain.ProviderRegistry,
		qwen *openai.Provider,
		echoCfg *config.EchoConfig,
		_ *zap.Logger,
	) error {
		ctx := context.Background()

		if err := reg.Register(ctx, qwen); err != nil {
			return fmt.Errorf("failed to register Qwen provider: %w", err)
		}

		if echoCfg.Enabled {
			if err := reg.Register(ctx, echo.NewProvider()); err != nil {
				return fmt.Errorf("failed to register echo provider: %w", err)
			}
		}

		if !qwen.Configured() {
			observability.FromContext(ctx).Warn("QWEN_API_KEY is not set; completion requests will fail")
		}
		return nil
	}); err != nil {
		log.Fatalf("Failed to register providers: %v", err)
	}

	// Domain Services
	if err := container.Provide(domain.NewProxyService); err != nil {
		log.Fatalf("Failed to provide proxy service: %v", err)
	}
	if err := container.Provide(mailer.NewMailer); err != nil {
		log.Fatalf("Failed to provide mailer: %v", err)
	}

	// HTTP Layer
	if err := container.Provide(ratelimit.NewLimiter); err != nil {
		log.Fatalf("Failed to provide rate limiter: %v", err)
	}
	if err := container.Provide(middleware.BuildMiddlewareChain); err != nil {
		log.Fatalf("Failed to provide middleware chain: %v", err)
	}
	if err := container.Provide(httpserver.NewHandler); err != nil {
		log.Fatalf("Failed to provide HTTP handler: %v", err)
	}
	if err := container.Provide(httpserver.NewServer); err != nil {
		log.Fatalf("Failed to provide HTTP server: %v", err)
	}

	return container
}
