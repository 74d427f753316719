package di

import (
	"context"
	"io"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/inbox-triage/internal/classifier"
	"github.com/mikey/inbox-triage/internal/config"
	"github.com/mikey/inbox-triage/internal/core"
	"github.com/mikey/inbox-triage/internal/factory"
	"github.com/mikey/inbox-triage/internal/logging"
	"github.com/mikey/inbox-triage/internal/ports"
	"github.com/mikey/inbox-triage/internal/tagging"
)

// BuildContainer creates and configures a dependency injection container
// for the daemon
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := providePipeline(container); err != nil {
		return nil, err
	}

	return container, nil
}

// providePipeline registers everything downstream of *config.Config and *zap.Logger
func providePipeline(container *dig.Container) error {
	// Register factories
	for _, ctor := range []interface{}{
		factory.NewGeneratorFactory,
		factory.NewCacheFactory,
		factory.NewContactsFactory,
		factory.NewClassifierFactory,
		factory.NewFilterFactory,
	} {
		if err := container.Provide(ctor); err != nil {
			return err
		}
	}

	// Register text generator; nil when generation is disabled
	if err := container.Provide(func(f *factory.GeneratorFactory) (core.TextGenerator, error) {
		return f.CreateGenerator(context.Background())
	}); err != nil {
		return err
	}

	// Register cache repository; nil when caching is disabled
	if err := container.Provide(func(f *factory.CacheFactory) (core.CacheRepository, error) {
		return f.CreateCacheRepository(context.Background())
	}); err != nil {
		return err
	}

	// Register sender detection
	if err := container.Provide(func(f *factory.ContactsFactory) (core.ContactsLookup, error) {
		return f.CreateContactsLookup(context.Background())
	}); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.ContactsFactory, lookup core.ContactsLookup) (core.SenderDetector, error) {
		return f.CreateSenderDetector(lookup)
	}); err != nil {
		return err
	}

	// Register classifiers and tag policy
	if err := container.Provide(func(f *factory.ClassifierFactory) *tagging.AllowedTagSet {
		return f.CreateAllowedTags()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.ClassifierFactory, allowed *tagging.AllowedTagSet) *classifier.Keyword {
		return f.CreateKeyword(allowed)
	}); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.ClassifierFactory) core.TagValidator {
		return f.CreateValidator()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(
		f *factory.ClassifierFactory,
		gf *factory.GeneratorFactory,
		generator core.TextGenerator,
		allowed *tagging.AllowedTagSet,
	) (core.GenerativeClassifier, error) {
		return f.CreateGenerative(generator, allowed, gf.MaxBodySize())
	}); err != nil {
		return err
	}

	// Register triage service
	if err := container.Provide(func(
		cfg *config.Config,
		logger *zap.Logger,
		detector core.SenderDetector,
		keyword *classifier.Keyword,
		generative core.GenerativeClassifier,
		validator core.TagValidator,
		cache core.CacheRepository,
	) (*core.TriageService, error) {
		return factory.CreateTriageService(cfg, logger, factory.TriageDeps{
			Detector:   detector,
			Keyword:    keyword,
			Generative: generative,
			Validator:  validator,
			Cache:      cache,
		})
	}); err != nil {
		return err
	}

	// Register email filter
	if err := container.Provide(func(f *factory.FilterFactory, svc *core.TriageService) (ports.EmailFilter, error) {
		return f.CreateEmailFilter(svc)
	}); err != nil {
		return err
	}

	return nil
}

// CloseResources closes the generator and cache when they hold connections
func CloseResources(logger *zap.Logger, resources ...interface{}) {
	for _, r := range resources {
		closer, ok := r.(io.Closer)
		if !ok || closer == nil {
			continue
		}
		if err := closer.Close(); err != nil {
			logger.Warn("Failed to close resource", zap.Error(err))
		}
	}
}
