package factory

import (
	"context"
	"fmt"

	"github.com/mikey/inbox-triage/internal/config"
	"github.com/mikey/inbox-triage/internal/core"
	"go.uber.org/zap"
)

// ProviderNone disables generative classification
const ProviderNone = "none"

// GeneratorFactory creates the text generator for the configured provider
type GeneratorFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewGeneratorFactory creates a new generator factory
func NewGeneratorFactory(cfg *config.Config, logger *zap.Logger) *GeneratorFactory {
	return &GeneratorFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateGenerator creates a text generator based on the configuration.
// It returns nil when generation is disabled.
func (f *GeneratorFactory) CreateGenerator(ctx context.Context) (core.TextGenerator, error) {
	provider := f.cfg.GetLLM().Provider

	switch provider {
	case "ollama":
		return NewOllamaFactory(f.cfg, f.logger).CreateGenerator(), nil
	case "openai":
		client, err := NewOpenAIFactory(f.cfg, f.logger).CreateGenerator()
		if err != nil {
			return nil, err
		}
		return client, nil
	case "gemini":
		client, err := NewGeminiFactory(f.cfg, f.logger).CreateGenerator(ctx)
		if err != nil {
			return nil, err
		}
		return client, nil
	case "bedrock":
		client, err := NewBedrockFactory(f.cfg, f.logger).CreateGenerator(ctx)
		if err != nil {
			return nil, err
		}
		return client, nil
	case ProviderNone, "":
		f.logger.Info("Generative classification disabled")
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}

// MaxBodySize returns the prompt body cap of the configured provider
func (f *GeneratorFactory) MaxBodySize() int {
	switch f.cfg.GetLLM().Provider {
	case "ollama":
		return f.cfg.GetOllama().MaxBodySize
	case "openai":
		return f.cfg.GetOpenAI().MaxBodySize
	case "gemini":
		return f.cfg.GetGemini().MaxBodySize
	case "bedrock":
		return f.cfg.GetBedrock().MaxBodySize
	default:
		return 0
	}
}
