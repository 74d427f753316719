// Package tagging holds the closed tag vocabulary and the rules that keep a
// tag list internally consistent.
package tagging

import "strings"

const (
	TagPersonalSender = "personal-sender"
	TagUrgent         = "urgent"
	TagQuestion       = "question"
	TagActionRequired = "action-required"
	TagMeeting        = "meeting"
	TagTravel         = "travel"
	TagFinancial      = "financial"
	TagWorkProject    = "work-project"
	TagNewsletter     = "newsletter"
	TagReceipt        = "receipt"
	TagSocial         = "social"
	TagGeneral        = "general"
	TagRecruiting     = "recruiting"
	TagColdOutreach   = "cold-outreach"
	TagSpamLikely     = "spam-likely"
)

// FallbackTag is used whenever a tag list would otherwise be empty
const FallbackTag = TagGeneral

// MaxTags caps the number of tags on a result
const MaxTags = 3

// AllowedTagSet is an immutable ordered set of tag identifiers
type AllowedTagSet struct {
	order []string
	index map[string]struct{}
}

// NewAllowedTagSet builds a set from tags, normalising case and whitespace.
// The first occurrence of a tag fixes its position. FallbackTag is always a
// member and is appended when tags leave it out.
func NewAllowedTagSet(tags ...string) *AllowedTagSet {
	s := &AllowedTagSet{index: make(map[string]struct{}, len(tags)+1)}
	for _, tag := range tags {
		s.add(tag)
	}
	s.add(FallbackTag)
	return s
}

func (s *AllowedTagSet) add(tag string) {
	tag = normalize(tag)
	if tag == "" {
		return
	}
	if _, ok := s.index[tag]; ok {
		return
	}
	s.index[tag] = struct{}{}
	s.order = append(s.order, tag)
}

// DefaultAllowedTags returns the built-in vocabulary
func DefaultAllowedTags() *AllowedTagSet {
	return NewAllowedTagSet(
		TagPersonalSender,
		TagUrgent,
		TagQuestion,
		TagActionRequired,
		TagMeeting,
		TagTravel,
		TagFinancial,
		TagWorkProject,
		TagNewsletter,
		TagReceipt,
		TagSocial,
		TagGeneral,
		TagRecruiting,
		TagColdOutreach,
		TagSpamLikely,
	)
}

// Contains reports whether tag is in the set. Matching is exact.
func (s *AllowedTagSet) Contains(tag string) bool {
	_, ok := s.index[tag]
	return ok
}

// Tags returns a copy of the tags in set order
func (s *AllowedTagSet) Tags() []string {
	return append([]string(nil), s.order...)
}

// Len returns the number of tags in the set
func (s *AllowedTagSet) Len() int {
	return len(s.order)
}

// Filter splits tags into those in the set and those that are not.
// Order is preserved and duplicates are dropped from kept. Tags are compared
// after trimming and lower-casing, but unknown tags are never rewritten into
// known ones.
func (s *AllowedTagSet) Filter(tags []string) (kept, dropped []string) {
	seen := make(map[string]struct{}, len(tags))
	for _, raw := range tags {
		tag := normalize(raw)
		if !s.Contains(tag) {
			dropped = append(dropped, raw)
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		kept = append(kept, tag)
	}
	return kept, dropped
}

func normalize(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}
