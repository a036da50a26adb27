package provider

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"replyai/internal/config"
	"replyai/internal/domain"
)

// Constructor creates a provider from the provider config section.
type Constructor func(ctx context.Context, pc config.ProviderConfig, logger *slog.Logger) (domain.Provider, error)

// Factory creates and caches the configured completion provider.
type Factory struct {
	cfg          config.ProviderConfig
	logger       *slog.Logger
	constructors map[string]Constructor
	cache        map[string]domain.Provider
	mu           sync.Mutex
}

// NewFactory creates a provider factory with the built-in constructors registered.
func NewFactory(cfg config.ProviderConfig, logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	f := &Factory{
		cfg:          cfg,
		logger:       logger,
		constructors: make(map[string]Constructor),
		cache:        make(map[string]domain.Provider),
	}
	f.registerDefaults()
	return f
}

// RegisterConstructor adds or replaces a provider constructor by name.
func (f *Factory) RegisterConstructor(name string, ctor Constructor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.constructors[name] = ctor
	delete(f.cache, name)
}

func (f *Factory) registerDefaults() {
	f.constructors["openai"] = func(_ context.Context, pc config.ProviderConfig, logger *slog.Logger) (domain.Provider, error) {
		return NewOpenAI(OpenAIConfig{
			APIKey:  pc.APIKey,
			APIBase: pc.APIBase,
			Model:   pc.EffectiveModel(),
			Timeout: time.Duration(pc.TimeoutSeconds) * time.Second,
			Logger:  logger,
		}), nil
	}
	f.constructors["gemini"] = func(ctx context.Context, pc config.ProviderConfig, logger *slog.Logger) (domain.Provider, error) {
		return NewGemini(ctx, GeminiConfig{
			APIKey:  pc.APIKey,
			APIBase: pc.APIBase,
			Model:   pc.EffectiveModel(),
			Timeout: time.Duration(pc.TimeoutSeconds) * time.Second,
			Logger:  logger,
		})
	}
}

// Get returns the configured provider, building it on first use.
func (f *Factory) Get(ctx context.Context) (domain.Provider, error) {
	name := f.cfg.Name

	f.mu.Lock()
	defer f.mu.Unlock()

	if cached, ok := f.cache[name]; ok {
		return cached, nil
	}
	ctor, ok := f.constructors[name]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", name)
	}
	p, err := ctor(ctx, f.cfg, f.logger.With("provider", name))
	if err != nil {
		return nil, fmt.Errorf("provider %s: %w", name, err)
	}
	f.cache[name] = p
	return p, nil
}
