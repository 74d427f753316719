// Package export writes classification results as CSV for model comparison
// and manual accuracy review.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/mikey/inbox-triage/internal/core"
	"github.com/mikey/inbox-triage/internal/utils"
)

// SnippetLength is the number of body runes written in the Snippet column
const SnippetLength = 200

// Row is one classified email
type Row struct {
	Email  *core.Email
	Result *core.ClassificationResult
}

var detailedHeader = []string{
	"Message ID", "Sender", "Subject", "AI Tags", "Intent", "Urgency", "Sender Category",
	"Requires Response", "Is Actionable", "Has Deadline", "Mentions Money", "Summary",
}

var comparisonHeader = []string{
	"Message ID", "Sender", "Subject", "AI Tags",
	"Expected Tags (Manual)", "False Positives", "False Negatives", "Notes",
}

// WriteDetailedCSV writes every classification field per email. Rows
// without a result get empty analysis columns.
func WriteDetailedCSV(w io.Writer, rows []Row, includeSnippet bool) error {
	cw := csv.NewWriter(w)

	header := detailedHeader
	if includeSnippet {
		header = insertAt(detailedHeader, 3, "Snippet")
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range rows {
		result := row.Result
		if result == nil {
			result = &core.ClassificationResult{}
		}

		record := []string{
			clean(row.Email.MessageID),
			clean(row.Email.From),
			clean(row.Email.Subject),
			tagList(result.Tags),
			clean(string(result.Intent)),
			clean(string(result.Urgency)),
			clean(string(result.SenderCategory)),
			yesNo(result.RequiresResponse),
			yesNo(result.IsActionable),
			yesNo(result.HasDeadline),
			yesNo(result.MentionsMoney),
			clean(result.Summary),
		}
		if includeSnippet {
			record = insertAt(record, 3, snippet(row.Email.Body))
		}

		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteComparisonCSV writes the AI tags next to empty columns for manual annotation
func WriteComparisonCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(comparisonHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range rows {
		var tags []string
		if row.Result != nil {
			tags = row.Result.Tags
		}
		record := []string{
			clean(row.Email.MessageID),
			clean(row.Email.From),
			clean(row.Email.Subject),
			tagList(tags),
			"", "", "", "",
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func clean(s string) string {
	return strings.TrimSpace(s)
}

func tagList(tags []string) string {
	if len(tags) == 0 {
		return "none"
	}
	return strings.Join(tags, "; ")
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func snippet(body string) string {
	return utils.Ellipsize(strings.Join(strings.Fields(body), " "), SnippetLength)
}

func insertAt(s []string, i int, v string) []string {
	out := make([]string, 0, len(s)+1)
	out = append(out, s[:i]...)
	out = append(out, v)
	return append(out, s[i:]...)
}
