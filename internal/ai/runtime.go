package ai

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
)

// Runtime is implemented by chat backends such as OpenRouter and Ollama.
type Runtime interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

// Provider identifiers accepted by --provider.
const (
	ProviderOpenRouter = "openrouter"
	ProviderAIProxy    = "aiproxy"
	ProviderOllama     = "ollama"
)

// Default endpoints.
const (
	OpenRouterBaseURL = "https://openrouter.ai/api/v1"
	AIProxyBaseURL    = "https://aiproxy.sanand.workers.dev/openai/v1"
	OllamaDefaultHost = "http://127.0.0.1:11434"
)

// RuntimeConfig carries common knobs used by runtimes.
type RuntimeConfig struct {
	HTTPTimeout time.Duration
	RetryMax    int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	// OpenAI-compatible endpoints
	APIKey  string
	BaseURL string
	// Ollama
	Host   string
	Logger *zap.Logger
}

func (c RuntimeConfig) withDefaults(retries int, baseDelay, maxDelay time.Duration) RuntimeConfig {
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = 60 * time.Second
	}
	if c.RetryMax <= 0 {
		c.RetryMax = retries
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = baseDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = maxDelay
	}
	if c.Logger == nil {
		c.Logger = zap.L()
	}
	return c
}

// RuntimeFactory builds a Runtime from config.
type RuntimeFactory func(RuntimeConfig) Runtime

var registry = map[string]RuntimeFactory{}

// RegisterRuntime registers a provider name with its factory.
func RegisterRuntime(name string, f RuntimeFactory) { registry[name] = f }

// NewRuntime creates the runtime registered under name.
func NewRuntime(name string, cfg RuntimeConfig) (Runtime, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q (available: %v)", name, Providers())
	}
	return f(cfg), nil
}

// Providers lists registered provider names.
func Providers() []string {
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(provider string) string {
	switch provider {
	case ProviderAIProxy:
		return "gpt-4o-mini"
	case ProviderOllama:
		return "llama3.2"
	}
	return "openai/gpt-4o-mini"
}

func init() {
	RegisterRuntime(ProviderOpenRouter, func(c RuntimeConfig) Runtime { return NewClient(c) })
	RegisterRuntime(ProviderAIProxy, func(c RuntimeConfig) Runtime {
		if c.BaseURL == "" {
			c.BaseURL = AIProxyBaseURL
		}
		return NewClient(c)
	})
	RegisterRuntime(ProviderOllama, func(c RuntimeConfig) Runtime { return NewOllamaClient(c) })
}
