package classifier

import (
	"context"
	"time"

	"github.com/mikey/inbox-triage/internal/core"
	"github.com/mikey/inbox-triage/internal/tagging"
	"github.com/mikey/inbox-triage/internal/utils"
	"go.uber.org/zap"
)

// GenerativeOptions configures a Generative classifier
type GenerativeOptions struct {
	// MaxBodySize caps the body bytes placed in the prompt; 0 disables the cap
	MaxBodySize int
	// Timeout bounds a single generation round-trip
	Timeout time.Duration
	// ProbeTimeout bounds the availability probe
	ProbeTimeout time.Duration
}

// Generative classifies emails by prompting a text generator for JSON
type Generative struct {
	generator     core.TextGenerator
	allowed       *tagging.AllowedTagSet
	textProcessor *utils.TextProcessor
	opts          GenerativeOptions
	logger        *zap.Logger
}

// NewGenerative creates a new generative classifier
func NewGenerative(
	generator core.TextGenerator,
	allowed *tagging.AllowedTagSet,
	textProcessor *utils.TextProcessor,
	opts GenerativeOptions,
	logger *zap.Logger,
) *Generative {
	return &Generative{
		generator:     generator,
		allowed:       allowed,
		textProcessor: textProcessor,
		opts:          opts,
		logger:        logger,
	}
}

// Available probes the text generator. It never returns an error.
func (g *Generative) Available(ctx context.Context) bool {
	if g.opts.ProbeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.opts.ProbeTimeout)
		defer cancel()
	}
	return g.generator.Available(ctx)
}

// Classify implements core.Classifier. The request is not retried.
func (g *Generative) Classify(ctx context.Context, email *core.Email, signals core.SenderSignals) (*core.ClassificationResult, error) {
	body := g.textProcessor.ProcessText(email.Body, g.opts.MaxBodySize)
	prompt := BuildPrompt(email.From, email.Subject, body, signals.InContacts, g.allowed.Tags())

	if g.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.opts.Timeout)
		defer cancel()
	}

	g.logger.Debug("Sending classification request",
		zap.String("model", g.generator.Name()),
		zap.String("sender", email.From),
		zap.Int("prompt_size", len(prompt)))

	raw, err := g.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	result, err := parseResponse(raw)
	if err != nil {
		g.logger.Debug("Unparseable model response",
			zap.String("model", g.generator.Name()),
			zap.String("response", raw))
		return nil, err
	}

	kept, dropped := g.allowed.Filter(result.Tags)
	if len(dropped) > 0 {
		g.logger.Debug("Dropped tags outside the allowed set",
			zap.String("sender", email.From),
			zap.Strings("dropped", dropped))
	}
	if len(kept) == 0 {
		kept = []string{tagging.FallbackTag}
	}

	result.Tags = kept
	result.IsPersonalSender = signals.PersonalSender
	result.ModelUsed = g.generator.Name()
	result.AnalyzedAt = time.Now()
	if result.Summary == "" {
		result.Summary = summarize(email.Subject, email.Body)
	}

	return result, nil
}
