package factory

import (
	"github.com/mikey/inbox-triage/internal/classifier"
	"github.com/mikey/inbox-triage/internal/config"
	"github.com/mikey/inbox-triage/internal/core"
	"github.com/mikey/inbox-triage/internal/tagging"
	"github.com/mikey/inbox-triage/internal/utils"
	"go.uber.org/zap"
)

// ClassifierFactory creates the classification strategies and tag policy
type ClassifierFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewClassifierFactory creates a new classifier factory
func NewClassifierFactory(cfg *config.Config, logger *zap.Logger) *ClassifierFactory {
	return &ClassifierFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: utils.NewTextProcessor(logger),
	}
}

// CreateAllowedTags returns the configured tag vocabulary, or the default one
func (f *ClassifierFactory) CreateAllowedTags() *tagging.AllowedTagSet {
	tags := f.cfg.GetTriage().AllowedTags
	if len(tags) == 0 {
		return tagging.DefaultAllowedTags()
	}
	f.logger.Info("Using configured tag vocabulary", zap.Strings("tags", tags))
	return tagging.NewAllowedTagSet(tags...)
}

// CreateKeyword creates the deterministic classifier
func (f *ClassifierFactory) CreateKeyword(allowed *tagging.AllowedTagSet) *classifier.Keyword {
	return classifier.NewKeyword(allowed)
}

// CreateValidator creates the tag validator with the default rules
func (f *ClassifierFactory) CreateValidator() *tagging.Validator {
	return tagging.NewValidator(tagging.DefaultRules())
}

// CreateGenerative wraps a generator in the generative classifier. It
// returns a nil interface when generator is nil.
func (f *ClassifierFactory) CreateGenerative(
	generator core.TextGenerator,
	allowed *tagging.AllowedTagSet,
	maxBodySize int,
) (core.GenerativeClassifier, error) {
	if generator == nil {
		return nil, nil
	}

	timeout, err := f.cfg.GetDuration("llm.timeout")
	if err != nil {
		return nil, err
	}
	probeTimeout, err := f.cfg.GetDuration("llm.probe_timeout")
	if err != nil {
		return nil, err
	}

	return classifier.NewGenerative(generator, allowed, f.textProcessor, classifier.GenerativeOptions{
		MaxBodySize:  maxBodySize,
		Timeout:      timeout,
		ProbeTimeout: probeTimeout,
	}, f.logger), nil
}
