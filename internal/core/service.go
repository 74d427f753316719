package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// TriageService is the core service for email classification
type TriageService struct {
	detector        SenderDetector
	keyword         Classifier
	generative      GenerativeClassifier
	validator       TagValidator
	cache           CacheRepository
	logger          *zap.Logger
	cacheEnabled    bool
	cacheTTL        time.Duration
	fallbackOnError bool
	concurrency     int
}

// TriageOptions carries the tunables of the triage service
type TriageOptions struct {
	CacheEnabled     bool
	CacheTTL         time.Duration
	FallbackOnError  bool
	BatchConcurrency int
}

// NewTriageService creates a new triage service.
// generative and cache may be nil.
func NewTriageService(
	detector SenderDetector,
	keyword Classifier,
	generative GenerativeClassifier,
	validator TagValidator,
	cache CacheRepository,
	logger *zap.Logger,
	opts TriageOptions,
) *TriageService {
	if opts.BatchConcurrency <= 0 {
		opts.BatchConcurrency = 1
	}
	return &TriageService{
		detector:        detector,
		keyword:         keyword,
		generative:      generative,
		validator:       validator,
		cache:           cache,
		logger:          logger,
		cacheEnabled:    opts.CacheEnabled && cache != nil,
		cacheTTL:        opts.CacheTTL,
		fallbackOnError: opts.FallbackOnError,
		concurrency:     opts.BatchConcurrency,
	}
}

// Fingerprint returns the cache key for an email
func Fingerprint(email *Email) string {
	h := sha256.New()
	h.Write([]byte(strings.ToLower(email.From)))
	h.Write([]byte{0})
	h.Write([]byte(email.Subject))
	h.Write([]byte{0})
	h.Write([]byte(email.Body))
	return hex.EncodeToString(h.Sum(nil))
}

// Classify runs the full pipeline for one email: sender detection,
// classification with fallback, then tag validation.
func (s *TriageService) Classify(ctx context.Context, email *Email) (*ClassificationResult, error) {
	key := Fingerprint(email)

	if s.cacheEnabled {
		if entry, err := s.cache.Get(ctx, key); err == nil && entry.Result != nil {
			s.logger.Debug("Cache hit for message", zap.String("sender", email.From), zap.String("key", key))
			result := entry.Result.WithTags(entry.Result.Tags)
			result.Strategy = StrategyCache
			return result, nil
		}
	}

	signals := s.detector.Detect(ctx, email.From)

	result, err := s.classify(ctx, email, signals)
	if err != nil {
		return nil, err
	}

	// The validator runs after every classification, whatever the strategy
	result.Tags = s.validator.Validate(result.Tags, email.From)
	result.IsPersonalSender = signals.PersonalSender
	if result.AnalyzedAt.IsZero() {
		result.AnalyzedAt = time.Now()
	}

	// Keyword results standing in for the model are not cached
	degraded := s.generative != nil && result.Strategy == StrategyKeyword

	if s.cacheEnabled && !degraded {
		now := time.Now()
		entry := &CacheEntry{
			Key:       key,
			Sender:    email.From,
			Result:    result.WithTags(result.Tags),
			LastSeen:  now,
			ExpiresAt: now.Add(s.cacheTTL),
		}
		if err := s.cache.Set(ctx, entry); err != nil {
			s.logger.Error("Failed to update cache", zap.Error(err))
		}
	}

	s.logger.Debug("Classified email",
		zap.String("sender", email.From),
		zap.Strings("tags", result.Tags),
		zap.String("intent", string(result.Intent)),
		zap.String("urgency", string(result.Urgency)),
		zap.String("strategy", string(result.Strategy)))

	return result, nil
}

func (s *TriageService) classify(ctx context.Context, email *Email, signals SenderSignals) (*ClassificationResult, error) {
	if err := aborted(ctx); err != nil {
		return nil, err
	}

	if s.generative == nil {
		return s.classifyKeyword(ctx, email, signals)
	}

	if !s.generative.Available(ctx) {
		if err := aborted(ctx); err != nil {
			return nil, err
		}
		s.logger.Warn("Text generation service unavailable, using keyword classifier",
			zap.String("sender", email.From))
		return s.classifyKeyword(ctx, email, signals)
	}

	result, err := s.generative.Classify(ctx, email, signals)
	if err == nil {
		result.Strategy = StrategyGenerative
		return result, nil
	}

	if abortErr := aborted(ctx); abortErr != nil {
		return nil, abortErr
	}

	if errors.Is(err, ErrUpstreamUnavailable) || s.fallbackOnError {
		s.logger.Warn("Generative classification failed, using keyword classifier",
			zap.String("sender", email.From),
			zap.Error(err))
		return s.classifyKeyword(ctx, email, signals)
	}
	return nil, err
}

// aborted reports a cancelled or expired caller context
func aborted(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("classification aborted: %w", err)
	}
	return nil
}

func (s *TriageService) classifyKeyword(ctx context.Context, email *Email, signals SenderSignals) (*ClassificationResult, error) {
	result, err := s.keyword.Classify(ctx, email, signals)
	if err != nil {
		return nil, fmt.Errorf("keyword classification failed: %w", err)
	}
	result.Strategy = StrategyKeyword
	return result, nil
}

// ClassifyBatch classifies emails concurrently. Results keep the input order
// and a failure is recorded on its own entry without stopping the others.
func (s *TriageService) ClassifyBatch(ctx context.Context, emails []*Email) []BatchResult {
	results := make([]BatchResult, len(emails))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, email := range emails {
		results[i].Email = email
		g.Go(func() error {
			result, err := s.Classify(gctx, email)
			results[i].Result = result
			results[i].Err = err
			return nil
		})
	}
	_ = g.Wait()

	return results
}
