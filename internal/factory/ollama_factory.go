package factory

import (
	"github.com/mikey/inbox-triage/internal/adapters/ollama"
	"github.com/mikey/inbox-triage/internal/config"
	"go.uber.org/zap"
)

// OllamaFactory creates clients for a local Ollama server
type OllamaFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewOllamaFactory creates a new Ollama factory
func NewOllamaFactory(cfg *config.Config, logger *zap.Logger) *OllamaFactory {
	return &OllamaFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateGenerator creates an Ollama text generator
func (f *OllamaFactory) CreateGenerator() *ollama.Client {
	ollamaCfg := f.cfg.GetOllama()
	return ollama.NewClient(
		ollamaCfg.BaseURL,
		ollamaCfg.Model,
		ollamaCfg.Temperature,
		ollamaCfg.NumPredict,
		nil,
		f.logger,
	)
}
