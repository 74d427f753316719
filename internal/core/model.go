package core

import (
	"time"
)

// Email represents an email message handed to the triage pipeline
type Email struct {
	MessageID string
	From      string
	To        []string
	Subject   string
	Body      string
	Headers   map[string][]string
}

// Intent is the single best-fit purpose label for an email
type Intent string

const (
	IntentQuestion       Intent = "question"
	IntentActionRequired Intent = "action-required"
	IntentInformational  Intent = "informational"
	IntentPromotional    Intent = "promotional"
	IntentTransactional  Intent = "transactional"
)

// Valid reports whether the intent is one of the known labels
func (i Intent) Valid() bool {
	switch i {
	case IntentQuestion, IntentActionRequired, IntentInformational, IntentPromotional, IntentTransactional:
		return true
	}
	return false
}

// Urgency is a four-level time-sensitivity label
type Urgency string

const (
	UrgencyImmediate Urgency = "immediate"
	UrgencySoon      Urgency = "soon"
	UrgencyNormal    Urgency = "normal"
	UrgencyLow       Urgency = "low"
)

// Valid reports whether the urgency is one of the known labels
func (u Urgency) Valid() bool {
	switch u {
	case UrgencyImmediate, UrgencySoon, UrgencyNormal, UrgencyLow:
		return true
	}
	return false
}

// SenderCategory describes who sent the email
type SenderCategory string

const (
	SenderColleague SenderCategory = "colleague"
	SenderClient    SenderCategory = "client"
	SenderService   SenderCategory = "service"
	SenderMarketing SenderCategory = "marketing"
	SenderPersonal  SenderCategory = "personal"
	SenderUnknown   SenderCategory = "unknown"
)

// Valid reports whether the sender category is one of the known labels
func (c SenderCategory) Valid() bool {
	switch c {
	case SenderColleague, SenderClient, SenderService, SenderMarketing, SenderPersonal, SenderUnknown:
		return true
	}
	return false
}

// SenderSignals is what the sender detector learned about a sender
type SenderSignals struct {
	InContacts     bool
	PersonalSender bool
}

// Strategy names which path produced a classification
type Strategy string

const (
	StrategyKeyword    Strategy = "keyword"
	StrategyGenerative Strategy = "generative"
	StrategyCache      Strategy = "cache"
)

// ClassificationResult represents the structured analysis of an email
type ClassificationResult struct {
	Summary             string         `json:"summary"`
	Tags                []string       `json:"tags"`
	Intent              Intent         `json:"intent"`
	Urgency             Urgency        `json:"urgency"`
	SenderCategory      SenderCategory `json:"senderCategory"`
	RequiresResponse    bool           `json:"requiresResponse"`
	IsActionable        bool           `json:"isActionable"`
	HasDeadline         bool           `json:"hasDeadline"`
	MentionsMoney       bool           `json:"mentionsMoney"`
	MentionsYouDirectly bool           `json:"mentionsYouDirectly"`

	IsPersonalSender bool      `json:"isPersonalSender"`
	Strategy         Strategy  `json:"strategy,omitempty"`
	ModelUsed        string    `json:"modelUsed,omitempty"`
	AnalyzedAt       time.Time `json:"analyzedAt"`
}

// WithTags returns a shallow copy of the result carrying the given tags
func (r *ClassificationResult) WithTags(tags []string) *ClassificationResult {
	out := *r
	out.Tags = append([]string(nil), tags...)
	return &out
}

// CacheEntry is a cached classification keyed by message fingerprint
type CacheEntry struct {
	Key       string
	Sender    string
	Result    *ClassificationResult
	LastSeen  time.Time
	ExpiresAt time.Time
}

// BatchResult pairs one email of a batch with its outcome
type BatchResult struct {
	Email  *Email
	Result *ClassificationResult
	Err    error
}
