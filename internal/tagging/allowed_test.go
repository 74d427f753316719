package tagging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAllowedTagSet(t *testing.T) {
	s := NewAllowedTagSet(" Urgent ", "question", "urgent", "", "meeting")

	assert.Equal(t, []string{"urgent", "question", "meeting", "general"}, s.Tags())
	assert.Equal(t, 4, s.Len())
	assert.True(t, s.Contains("urgent"))
	assert.False(t, s.Contains("Urgent"))
	assert.False(t, s.Contains("travel"))
}

func TestAllowedTagSetAlwaysHoldsFallback(t *testing.T) {
	s := NewAllowedTagSet("urgent", "meeting")
	assert.True(t, s.Contains(FallbackTag))
	assert.Equal(t, []string{"urgent", "meeting", "general"}, s.Tags())

	ordered := NewAllowedTagSet("general", "urgent")
	assert.Equal(t, []string{"general", "urgent"}, ordered.Tags())

	assert.Equal(t, []string{"general"}, NewAllowedTagSet().Tags())
}

func TestAllowedTagSetTagsIsCopy(t *testing.T) {
	s := DefaultAllowedTags()
	tags := s.Tags()
	tags[0] = "mutated"

	assert.True(t, s.Contains(TagPersonalSender))
	assert.Equal(t, TagPersonalSender, s.Tags()[0])
}

func TestAllowedTagSetFilter(t *testing.T) {
	s := DefaultAllowedTags()

	kept, dropped := s.Filter([]string{"Meeting", "important", "question", "meeting", "work"})

	assert.Equal(t, []string{"meeting", "question"}, kept)
	assert.Equal(t, []string{"important", "work"}, dropped)
}

func TestAllowedTagSetFilterEmpty(t *testing.T) {
	kept, dropped := DefaultAllowedTags().Filter(nil)

	assert.Empty(t, kept)
	assert.Empty(t, dropped)
}
