// Package classifier implements the two classification strategies: a fast
// keyword matcher and a prompt-driven classifier backed by a text generator.
package classifier

import (
	"context"
	"strings"
	"time"

	"github.com/mikey/inbox-triage/internal/core"
	"github.com/mikey/inbox-triage/internal/tagging"
	"github.com/mikey/inbox-triage/internal/utils"
)

const (
	subjectSummaryLen = 60
	bodySummaryLen    = 80

	// NoContentSummary is the summary of an email with neither subject nor body
	NoContentSummary = "No content"

	keywordModel = "keyword"
)

type tagRule struct {
	tag      string
	keywords []string
}

// Content tag checks in priority order. Each may add at most one tag.
var contentRules = []tagRule{
	{tagging.TagMeeting, []string{"meeting", "calendar", "schedule"}},
	{tagging.TagTravel, []string{"travel", "flight", "hotel"}},
	{tagging.TagFinancial, []string{"invoice", "payment", "$", "paid"}},
	{tagging.TagReceipt, []string{"receipt", "confirmation", "order"}},
	{tagging.TagWorkProject, []string{"project", "task", "deadline"}},
	{tagging.TagNewsletter, []string{"newsletter", "unsubscribe"}},
	{tagging.TagUrgent, []string{"urgent", "asap", "immediately"}},
	{tagging.TagQuestion, []string{"?"}},
	{tagging.TagActionRequired, []string{"please", "need", "required"}},
	{tagging.TagSocial, []string{"facebook", "twitter", "instagram", "linkedin"}},
}

var (
	questionPhrases      = []string{"?", "can you", "could you"}
	actionPhrases        = []string{"please", "need", "required"}
	promotionalPhrases   = []string{"buy", "offer", "sale", "discount"}
	transactionalPhrases = []string{"receipt", "confirmation", "order"}

	immediatePhrases = []string{"urgent", "asap", "immediately"}
	soonPhrases      = []string{"today", "eod", "this week"}
	lowPhrases       = []string{"whenever", "no rush"}

	responsePhrases   = []string{"let me know", "please reply", "please respond", "get back to me", "reply by", "rsvp"}
	actionablePhrases = []string{"action required", "please review", "please confirm", "please complete", "follow up", "sign the", "approve"}
	deadlinePhrases   = []string{"deadline", "due", "by "}
	moneyPhrases      = []string{"$", "payment", "invoice", "cost"}
	directPhrases     = []string{"you ", "your "}
)

// Keyword is the deterministic classifier. It never fails and holds no
// mutable state.
type Keyword struct {
	allowed *tagging.AllowedTagSet
}

// NewKeyword creates a keyword classifier emitting only tags from allowed
func NewKeyword(allowed *tagging.AllowedTagSet) *Keyword {
	return &Keyword{allowed: allowed}
}

// Classify implements core.Classifier. The error is always nil.
func (k *Keyword) Classify(_ context.Context, email *core.Email, signals core.SenderSignals) (*core.ClassificationResult, error) {
	return k.Analyze(email, signals.PersonalSender), nil
}

// Analyze classifies an email from substring tests over subject and body
func (k *Keyword) Analyze(email *core.Email, isPersonalSender bool) *core.ClassificationResult {
	text := strings.ToLower(email.Subject + " " + email.Body)
	intent := detectIntent(text)

	return &core.ClassificationResult{
		Summary:             summarize(email.Subject, email.Body),
		Tags:                k.tags(text, isPersonalSender),
		Intent:              intent,
		Urgency:             detectUrgency(text),
		SenderCategory:      senderCategory(email.From),
		RequiresResponse:    intent == core.IntentQuestion || containsAny(text, responsePhrases),
		IsActionable:        intent == core.IntentActionRequired || containsAny(text, actionablePhrases),
		HasDeadline:         containsAny(text, deadlinePhrases),
		MentionsMoney:       containsAny(text, moneyPhrases),
		MentionsYouDirectly: containsAny(text, directPhrases),
		IsPersonalSender:    isPersonalSender,
		ModelUsed:           keywordModel,
		AnalyzedAt:          time.Now(),
	}
}

func (k *Keyword) tags(text string, isPersonalSender bool) []string {
	var tags []string
	if isPersonalSender {
		tags = k.add(tags, tagging.TagPersonalSender)
	}

	content := 0
	for _, rule := range contentRules {
		if containsAny(text, rule.keywords) {
			before := len(tags)
			tags = k.add(tags, rule.tag)
			content += len(tags) - before
		}
	}

	if content == 0 {
		tags = append(tags, tagging.FallbackTag)
	}

	if len(tags) > tagging.MaxTags {
		tags = tags[:tagging.MaxTags]
	}
	return tags
}

// add appends tag when the vocabulary allows it
func (k *Keyword) add(tags []string, tag string) []string {
	if k.allowed != nil && !k.allowed.Contains(tag) {
		return tags
	}
	return append(tags, tag)
}

func detectIntent(text string) core.Intent {
	switch {
	case containsAny(text, questionPhrases):
		return core.IntentQuestion
	case containsAny(text, actionPhrases):
		return core.IntentActionRequired
	case containsAny(text, promotionalPhrases):
		return core.IntentPromotional
	case containsAny(text, transactionalPhrases):
		return core.IntentTransactional
	default:
		return core.IntentInformational
	}
}

func detectUrgency(text string) core.Urgency {
	switch {
	case containsAny(text, immediatePhrases):
		return core.UrgencyImmediate
	case containsAny(text, soonPhrases):
		return core.UrgencySoon
	case containsAny(text, lowPhrases):
		return core.UrgencyLow
	default:
		return core.UrgencyNormal
	}
}

func senderCategory(from string) core.SenderCategory {
	from = strings.ToLower(from)
	switch {
	case containsAny(from, []string{"noreply", "no-reply"}):
		return core.SenderService
	case containsAny(from, []string{"marketing", "promo"}):
		return core.SenderMarketing
	case containsAny(from, []string{"gmail", "yahoo", "hotmail"}):
		return core.SenderPersonal
	default:
		return core.SenderColleague
	}
}

func summarize(subject, body string) string {
	if s := strings.TrimSpace(subject); s != "" {
		return utils.Ellipsize(s, subjectSummaryLen)
	}
	if b := strings.TrimSpace(body); b != "" {
		return utils.Ellipsize(strings.Join(strings.Fields(b), " "), bodySummaryLen)
	}
	return NoContentSummary
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
