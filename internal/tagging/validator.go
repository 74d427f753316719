package tagging

import (
	"slices"
	"strings"
)

// IncompatiblePair suppresses Incompatible whenever Primary is present
type IncompatiblePair struct {
	Primary      string
	Incompatible string
}

// SenderKeywordExclusion suppresses ExcludedTag when the sender contains Keyword
type SenderKeywordExclusion struct {
	Keyword     string
	ExcludedTag string
}

// RuleSet is the static configuration consumed by the Validator
type RuleSet struct {
	MutuallyExclusive       [][]string
	IncompatiblePairs       []IncompatiblePair
	SenderKeywordExclusions []SenderKeywordExclusion
}

// DefaultRules returns the built-in rule tables
func DefaultRules() RuleSet {
	return RuleSet{
		MutuallyExclusive: [][]string{
			{TagPersonalSender, TagNewsletter},
			{TagPersonalSender, TagRecruiting},
			{TagPersonalSender, TagSpamLikely},
			{TagSpamLikely, TagWorkProject},
			{TagSpamLikely, TagMeeting},
			{TagNewsletter, TagMeeting},
			{TagNewsletter, TagQuestion},
		},
		IncompatiblePairs: []IncompatiblePair{
			{Primary: TagNewsletter, Incompatible: TagPersonalSender},
			{Primary: TagRecruiting, Incompatible: TagPersonalSender},
			{Primary: TagColdOutreach, Incompatible: TagPersonalSender},
			{Primary: TagSpamLikely, Incompatible: TagWorkProject},
			{Primary: TagSpamLikely, Incompatible: TagFinancial},
		},
		SenderKeywordExclusions: []SenderKeywordExclusion{
			{Keyword: "noreply", ExcludedTag: TagPersonalSender},
			{Keyword: "no-reply", ExcludedTag: TagPersonalSender},
			{Keyword: "newsletter", ExcludedTag: TagPersonalSender},
			{Keyword: "automated", ExcludedTag: TagPersonalSender},
			{Keyword: "unsubscribe", ExcludedTag: TagPersonalSender},
		},
	}
}

// Validator cleans up tag lists according to a RuleSet.
// It holds no mutable state and is safe for concurrent use.
type Validator struct {
	rules RuleSet
}

// NewValidator creates a validator over a copy of rules
func NewValidator(rules RuleSet) *Validator {
	cp := RuleSet{
		IncompatiblePairs:       slices.Clone(rules.IncompatiblePairs),
		SenderKeywordExclusions: slices.Clone(rules.SenderKeywordExclusions),
	}
	for _, group := range rules.MutuallyExclusive {
		cp.MutuallyExclusive = append(cp.MutuallyExclusive, slices.Clone(group))
	}
	return &Validator{rules: cp}
}

// Validate returns a cleaned copy of tags. Steps run in a fixed order, each
// acting on the list left by the previous one:
//  1. within each mutually exclusive group only the first listed member survives
//  2. a present primary tag removes its incompatible tag
//  3. a keyword found in the sender removes its excluded tag
//  4. an empty list becomes ["general"]
//  5. the list is cut to MaxTags
func (v *Validator) Validate(tags []string, sender string) []string {
	out := dedupe(tags)

	for _, group := range v.rules.MutuallyExclusive {
		first := ""
		count := 0
		for _, tag := range out {
			if slices.Contains(group, tag) {
				if count == 0 {
					first = tag
				}
				count++
			}
		}
		if count > 1 {
			out = slices.DeleteFunc(out, func(tag string) bool {
				return tag != first && slices.Contains(group, tag)
			})
		}
	}

	for _, pair := range v.rules.IncompatiblePairs {
		if slices.Contains(out, pair.Primary) {
			out = remove(out, pair.Incompatible)
		}
	}

	lowered := strings.ToLower(sender)
	for _, rule := range v.rules.SenderKeywordExclusions {
		if strings.Contains(lowered, rule.Keyword) {
			out = remove(out, rule.ExcludedTag)
		}
	}

	if len(out) == 0 {
		out = []string{FallbackTag}
	}

	if len(out) > MaxTags {
		out = out[:MaxTags]
	}

	return out
}

// dedupe copies tags keeping the first occurrence of each
func dedupe(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if !slices.Contains(out, tag) {
			out = append(out, tag)
		}
	}
	return out
}

func remove(tags []string, tag string) []string {
	return slices.DeleteFunc(tags, func(t string) bool { return t == tag })
}
