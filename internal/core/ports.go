package core

import (
	"context"
)

// Classifier produces a classification for an email
type Classifier interface {
	// Classify analyzes an email given the sender signals
	Classify(ctx context.Context, email *Email, signals SenderSignals) (*ClassificationResult, error)
}

// GenerativeClassifier is a Classifier backed by a remote text-generation service
type GenerativeClassifier interface {
	Classifier

	// Available probes the backing service; it never returns an error
	Available(ctx context.Context) bool
}

// TextGenerator defines the interface for text-generation backends
type TextGenerator interface {
	// Name returns the model identifier used for generation
	Name() string

	// Generate sends a prompt and returns the raw text reply
	Generate(ctx context.Context, prompt string) (string, error)

	// Available reports whether the backend is reachable
	Available(ctx context.Context) bool
}

// ContactsLookup answers whether an address belongs to the user's contacts
type ContactsLookup interface {
	IsInContacts(ctx context.Context, emailAddress string) (bool, error)
}

// SenderDetector decides whether a sender is a real individual
type SenderDetector interface {
	Detect(ctx context.Context, sender string) SenderSignals
}

// TagValidator enforces tag-set consistency rules
type TagValidator interface {
	Validate(tags []string, sender string) []string
}

// CacheRepository defines the interface for caching classification results
type CacheRepository interface {
	// Get retrieves a cached entry by fingerprint
	Get(ctx context.Context, key string) (*CacheEntry, error)

	// Set stores a cache entry
	Set(ctx context.Context, entry *CacheEntry) error

	// Delete removes a cache entry
	Delete(ctx context.Context, key string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}
