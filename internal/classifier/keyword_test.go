package classifier

import (
	"context"
	"strings"
	"testing"

	"github.com/mikey/inbox-triage/internal/core"
	"github.com/mikey/inbox-triage/internal/tagging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywordScenarios(t *testing.T) {
	k := NewKeyword(tagging.DefaultAllowedTags())

	tests := []struct {
		name         string
		email        core.Email
		personal     bool
		wantTags     []string
		wantIntent   core.Intent
		wantUrgency  core.Urgency
		wantCategory core.SenderCategory
	}{
		{
			name: "security alert from service",
			email: core.Email{
				From:    "GitHub <noreply@github.com>",
				Subject: "[Security] Dependabot alert",
				Body:    "A high severity security vulnerability was found in your repository 'my-project'. Update the dependency immediately.",
			},
			wantTags:     []string{tagging.TagWorkProject, tagging.TagUrgent},
			wantIntent:   core.IntentInformational,
			wantUrgency:  core.UrgencyImmediate,
			wantCategory: core.SenderService,
		},
		{
			name: "meeting request from contact",
			email: core.Email{
				From:    "Jane Smith <jane.smith@mycompany.com>",
				Subject: "Can we meet tomorrow at 2pm?",
				Body:    "Hey! Can we meet tomorrow to discuss the deliverables? Let me know if 2pm works for the meeting.",
			},
			personal:     true,
			wantTags:     []string{tagging.TagPersonalSender, tagging.TagMeeting, tagging.TagQuestion},
			wantIntent:   core.IntentQuestion,
			wantUrgency:  core.UrgencyNormal,
			wantCategory: core.SenderColleague,
		},
		{
			name: "no content tag falls back to general",
			email: core.Email{
				From:    "friend@gmail.com",
				Subject: "Hello",
				Body:    "Just saying hi, whenever you get a chance.",
			},
			personal:     true,
			wantTags:     []string{tagging.TagPersonalSender, tagging.TagGeneral},
			wantIntent:   core.IntentInformational,
			wantUrgency:  core.UrgencyLow,
			wantCategory: core.SenderPersonal,
		},
		{
			name: "priority order decides truncation",
			email: core.Email{
				From:    "Deals <promo@shop.com>",
				Subject: "Your order receipt",
				Body:    "Payment received for your hotel booking. Schedule pickup today.",
			},
			wantTags:     []string{tagging.TagMeeting, tagging.TagTravel, tagging.TagFinancial},
			wantIntent:   core.IntentTransactional,
			wantUrgency:  core.UrgencySoon,
			wantCategory: core.SenderMarketing,
		},
		{
			name:         "empty email",
			email:        core.Email{},
			wantTags:     []string{tagging.TagGeneral},
			wantIntent:   core.IntentInformational,
			wantUrgency:  core.UrgencyNormal,
			wantCategory: core.SenderColleague,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := k.Classify(context.Background(), &tt.email, core.SenderSignals{PersonalSender: tt.personal})
			require.NoError(t, err)

			assert.Equal(t, tt.wantTags, got.Tags)
			assert.Equal(t, tt.wantIntent, got.Intent)
			assert.Equal(t, tt.wantUrgency, got.Urgency)
			assert.Equal(t, tt.wantCategory, got.SenderCategory)
			assert.Equal(t, tt.personal, got.IsPersonalSender)
			assert.Equal(t, "keyword", got.ModelUsed)
			assert.False(t, got.AnalyzedAt.IsZero())
		})
	}
}

func TestKeywordFlags(t *testing.T) {
	k := NewKeyword(tagging.DefaultAllowedTags())

	got := k.Analyze(&core.Email{
		From:    "Sarah Johnson <sarah@client-company.com>",
		Subject: "Invoice due",
		Body:    "Please review your invoice of $250 and pay by Friday.",
	}, false)

	assert.Equal(t, core.IntentActionRequired, got.Intent)
	assert.False(t, got.RequiresResponse)
	assert.True(t, got.IsActionable)
	assert.True(t, got.HasDeadline)
	assert.True(t, got.MentionsMoney)
	assert.True(t, got.MentionsYouDirectly)

	got = k.Analyze(&core.Email{Subject: "fyi", Body: "Nothing to see here."}, false)
	assert.False(t, got.RequiresResponse)
	assert.False(t, got.IsActionable)
	assert.False(t, got.HasDeadline)
	assert.False(t, got.MentionsMoney)
	assert.False(t, got.MentionsYouDirectly)

	got = k.Analyze(&core.Email{Subject: "Status", Body: "Let me know when it ships."}, false)
	assert.True(t, got.RequiresResponse)
}

func TestKeywordSummary(t *testing.T) {
	long := strings.Repeat("a", 100)

	tests := []struct {
		name    string
		subject string
		body    string
		want    string
	}{
		{"subject wins", "Quarterly results", "ignored body", "Quarterly results"},
		{"long subject", long, "", strings.Repeat("a", 60) + "..."},
		{"body when subject blank", "  ", "Line one\n\n  line two", "Line one line two"},
		{"long body", "", long, strings.Repeat("a", 80) + "..."},
		{"nothing", "", "", NoContentSummary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, summarize(tt.subject, tt.body))
		})
	}
}

func TestKeywordRespectsAllowedSet(t *testing.T) {
	allowed := tagging.NewAllowedTagSet(tagging.TagQuestion, tagging.TagGeneral)
	k := NewKeyword(allowed)

	got := k.Analyze(&core.Email{Subject: "meeting?", Body: "calendar invite"}, true)
	assert.Equal(t, []string{tagging.TagQuestion}, got.Tags)

	got = k.Analyze(&core.Email{Subject: "flight booked", Body: "see attached"}, false)
	assert.Equal(t, []string{tagging.TagGeneral}, got.Tags)
}

func TestKeywordCustomSetWithoutGeneral(t *testing.T) {
	allowed := tagging.NewAllowedTagSet(tagging.TagUrgent, tagging.TagMeeting)
	k := NewKeyword(allowed)

	got := k.Analyze(&core.Email{Subject: "hi", Body: "hello"}, false)
	require.Equal(t, []string{tagging.TagGeneral}, got.Tags)
	for _, tag := range got.Tags {
		assert.True(t, allowed.Contains(tag), tag)
	}
}

func TestKeywordProperties(t *testing.T) {
	allowed := tagging.DefaultAllowedTags()
	k := NewKeyword(allowed)

	subjects := []string{"", "URGENT meeting?", "Your receipt", "Weekly newsletter", "Flight to SFO", "Hi"}
	bodies := []string{
		"",
		"Please pay the invoice ASAP, the project deadline is today.",
		"Follow us on twitter and instagram. Unsubscribe here.",
		"Can you confirm the hotel and payment? Need it now.",
		"nothing special",
	}

	for _, subject := range subjects {
		for _, body := range bodies {
			for _, personal := range []bool{false, true} {
				got := k.Analyze(&core.Email{From: "x@y.com", Subject: subject, Body: body}, personal)

				assert.NotEmpty(t, got.Tags)
				assert.LessOrEqual(t, len(got.Tags), tagging.MaxTags)
				for _, tag := range got.Tags {
					assert.True(t, allowed.Contains(tag), "unexpected tag %q", tag)
				}
				assert.True(t, got.Intent.Valid())
				assert.True(t, got.Urgency.Valid())
				assert.True(t, got.SenderCategory.Valid())
				assert.NotEmpty(t, got.Summary)
			}
		}
	}
}
