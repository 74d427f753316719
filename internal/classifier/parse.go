package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mikey/inbox-triage/internal/core"
)

var errNoJSONObject = errors.New("no JSON object found in response")

// generatedResult mirrors the JSON shape requested in the prompt.
// Pointer fields let us tell a missing field from a zero value.
type generatedResult struct {
	Summary             *string   `json:"summary"`
	Tags                *[]string `json:"tags"`
	Intent              *string   `json:"intent"`
	Urgency             *string   `json:"urgency"`
	RequiresResponse    *bool     `json:"requiresResponse"`
	IsActionable        *bool     `json:"isActionable"`
	SenderCategory      *string   `json:"senderCategory"`
	HasDeadline         *bool     `json:"hasDeadline"`
	MentionsMoney       *bool     `json:"mentionsMoney"`
	MentionsYouDirectly *bool     `json:"mentionsYouDirectly"`
}

func (g *generatedResult) missingFields() []string {
	var missing []string
	check := func(name string, present bool) {
		if !present {
			missing = append(missing, name)
		}
	}
	check("summary", g.Summary != nil)
	check("tags", g.Tags != nil)
	check("intent", g.Intent != nil)
	check("urgency", g.Urgency != nil)
	check("requiresResponse", g.RequiresResponse != nil)
	check("isActionable", g.IsActionable != nil)
	check("senderCategory", g.SenderCategory != nil)
	check("hasDeadline", g.HasDeadline != nil)
	check("mentionsMoney", g.MentionsMoney != nil)
	check("mentionsYouDirectly", g.MentionsYouDirectly != nil)
	return missing
}

// stripCodeFence removes a Markdown code fence wrapping the reply, if any
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```")
	// Drop the info string, e.g. ```json
	if idx := strings.Index(text, "\n"); idx >= 0 {
		text = text[idx+1:]
	} else {
		text = strings.TrimPrefix(text, "json")
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// extractJSONObject returns the outermost {...} span of text
func extractJSONObject(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// parseResponse decodes a model reply into a classification result.
// Tags are returned unfiltered.
func parseResponse(raw string) (*core.ClassificationResult, error) {
	body, ok := extractJSONObject(stripCodeFence(raw))
	if !ok {
		return nil, &core.ParseError{Raw: raw, Err: errNoJSONObject}
	}

	var parsed generatedResult
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		return nil, &core.ParseError{Raw: raw, Err: err}
	}

	if missing := parsed.missingFields(); len(missing) > 0 {
		return nil, &core.ParseError{
			Raw: raw,
			Err: fmt.Errorf("missing required fields: %s", strings.Join(missing, ", ")),
		}
	}

	intent := core.Intent(strings.ToLower(strings.TrimSpace(*parsed.Intent)))
	if !intent.Valid() {
		intent = core.IntentInformational
	}
	urgency := core.Urgency(strings.ToLower(strings.TrimSpace(*parsed.Urgency)))
	if !urgency.Valid() {
		urgency = core.UrgencyNormal
	}
	category := core.SenderCategory(strings.ToLower(strings.TrimSpace(*parsed.SenderCategory)))
	if !category.Valid() {
		category = core.SenderUnknown
	}

	return &core.ClassificationResult{
		Summary:             strings.TrimSpace(*parsed.Summary),
		Tags:                *parsed.Tags,
		Intent:              intent,
		Urgency:             urgency,
		SenderCategory:      category,
		RequiresResponse:    *parsed.RequiresResponse,
		IsActionable:        *parsed.IsActionable,
		HasDeadline:         *parsed.HasDeadline,
		MentionsMoney:       *parsed.MentionsMoney,
		MentionsYouDirectly: *parsed.MentionsYouDirectly,
	}, nil
}
