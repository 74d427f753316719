package factory

import (
	"github.com/mikey/inbox-triage/internal/config"
	"github.com/mikey/inbox-triage/internal/core"
	"go.uber.org/zap"
)

// TriageDeps are the collaborators of the triage service. Generative and
// Cache may be nil.
type TriageDeps struct {
	Detector   core.SenderDetector
	Keyword    core.Classifier
	Generative core.GenerativeClassifier
	Validator  core.TagValidator
	Cache      core.CacheRepository
}

// CreateTriageService assembles the triage service from configuration
func CreateTriageService(cfg *config.Config, logger *zap.Logger, deps TriageDeps) (*core.TriageService, error) {
	triageCfg := cfg.GetTriage()

	cacheTTL, err := cfg.GetDuration("cache.ttl")
	if err != nil {
		return nil, err
	}

	return core.NewTriageService(
		deps.Detector,
		deps.Keyword,
		deps.Generative,
		deps.Validator,
		deps.Cache,
		logger,
		core.TriageOptions{
			CacheEnabled:     cfg.GetCache().Enabled,
			CacheTTL:         cacheTTL,
			FallbackOnError:  triageCfg.FallbackOnError,
			BatchConcurrency: triageCfg.BatchConcurrency,
		},
	), nil
}
