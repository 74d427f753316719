package filter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mikey/inbox-triage/internal/core"
	"github.com/mikey/inbox-triage/internal/utils"
	"go.uber.org/zap"
)

const bodyPreviewLength = 500

// CLIFilter classifies emails handed to it directly and prints a report
type CLIFilter struct {
	triager    Triager
	logger     *zap.Logger
	out        io.Writer
	verbose    bool
	jsonOutput bool
}

// NewCLIFilter creates a new CLI filter writing its report to out
func NewCLIFilter(triager Triager, logger *zap.Logger, out io.Writer, verbose, jsonOutput bool) *CLIFilter {
	return &CLIFilter{
		triager:    triager,
		logger:     logger,
		out:        out,
		verbose:    verbose,
		jsonOutput: jsonOutput,
	}
}

// ProcessEmail classifies an email and prints the results
func (f *CLIFilter) ProcessEmail(ctx context.Context, email *core.Email) (*core.ClassificationResult, error) {
	f.logger.Debug("Processing email", zap.String("sender", email.From))

	startTime := time.Now()
	result, err := f.triager.Classify(ctx, email)
	if err != nil {
		f.logger.Error("Failed to classify email", zap.Error(err))
		fmt.Fprintf(f.out, "Error: %v\n", err)
		return nil, err
	}
	duration := time.Since(startTime)

	if f.jsonOutput {
		enc := json.NewEncoder(f.out)
		enc.SetIndent("", "  ")
		return result, enc.Encode(result)
	}

	f.printSummary(email)
	f.printResult(result, duration)
	return result, nil
}

func (f *CLIFilter) printSummary(email *core.Email) {
	fmt.Fprintf(f.out, "\n=== Email Summary ===\n")
	fmt.Fprintf(f.out, "From: %s\n", email.From)
	fmt.Fprintf(f.out, "To: %s\n", strings.Join(email.To, ", "))
	fmt.Fprintf(f.out, "Subject: %s\n", email.Subject)
	fmt.Fprintf(f.out, "Body length: %d bytes\n", len(email.Body))

	if f.verbose {
		fmt.Fprintf(f.out, "\nBody preview:\n%s\n", utils.Ellipsize(email.Body, bodyPreviewLength))
	}
}

func (f *CLIFilter) printResult(result *core.ClassificationResult, duration time.Duration) {
	fmt.Fprintf(f.out, "\n=== Results ===\n")
	fmt.Fprintf(f.out, "Tags: %s\n", strings.Join(result.Tags, ", "))
	fmt.Fprintf(f.out, "Summary: %s\n", result.Summary)
	fmt.Fprintf(f.out, "Intent: %s\n", result.Intent)
	fmt.Fprintf(f.out, "Urgency: %s\n", result.Urgency)
	fmt.Fprintf(f.out, "Sender category: %s\n", result.SenderCategory)
	fmt.Fprintf(f.out, "Personal sender: %t\n", result.IsPersonalSender)
	fmt.Fprintf(f.out, "Requires response: %t\n", result.RequiresResponse)
	fmt.Fprintf(f.out, "Actionable: %t\n", result.IsActionable)
	fmt.Fprintf(f.out, "Has deadline: %t\n", result.HasDeadline)
	fmt.Fprintf(f.out, "Mentions money: %t\n", result.MentionsMoney)
	fmt.Fprintf(f.out, "Mentions you directly: %t\n", result.MentionsYouDirectly)
	fmt.Fprintf(f.out, "Strategy: %s\n", result.Strategy)
	fmt.Fprintf(f.out, "Model used: %s\n", result.ModelUsed)
	fmt.Fprintf(f.out, "Processing time: %v\n", duration)
}

// Start is a no-op for the CLI filter
func (f *CLIFilter) Start() error {
	return nil
}

// Stop is a no-op for the CLI filter
func (f *CLIFilter) Stop() error {
	return nil
}
