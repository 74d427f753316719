package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mikey/inbox-triage/internal/adapters/filter"
	"github.com/mikey/inbox-triage/internal/core"
	"github.com/mikey/inbox-triage/internal/di"
	"github.com/mikey/inbox-triage/internal/export"
	"github.com/mikey/inbox-triage/internal/ports"
	"go.uber.org/zap"
)

func main() {
	flags, err := di.ParseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	// Build the dependency injection container
	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(run); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(
	flags *di.CLIFlags,
	logger *zap.Logger,
	svc *core.TriageService,
	emailFilter ports.EmailFilter,
	generator core.TextGenerator,
) error {
	defer logger.Sync()
	defer di.CloseResources(logger, generator)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	emails, err := readEmails(flags.Files)
	if err != nil {
		return err
	}

	if flags.Export != "" {
		return exportResults(ctx, logger, flags, svc, emails)
	}

	failed := 0
	for _, email := range emails {
		if _, err := emailFilter.ProcessEmail(ctx, email); err != nil {
			logger.Error("Failed to classify email",
				zap.String("message_id", email.MessageID),
				zap.Error(err))
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d emails could not be classified", failed, len(emails))
	}
	return nil
}

// readEmails parses each file, or a single message from stdin when none are given
func readEmails(files []string) ([]*core.Email, error) {
	if len(files) == 0 {
		email, err := filter.ParseEmail(bufio.NewReader(os.Stdin))
		if err != nil {
			return nil, fmt.Errorf("failed to parse email from stdin: %w", err)
		}
		return []*core.Email{email}, nil
	}

	emails := make([]*core.Email, 0, len(files))
	for _, path := range files {
		email, err := readEmailFile(path)
		if err != nil {
			return nil, err
		}
		emails = append(emails, email)
	}
	return emails, nil
}

func readEmailFile(path string) (*core.Email, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open email file: %w", err)
	}
	defer f.Close()

	email, err := filter.ParseEmail(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if email.MessageID == "" {
		email.MessageID = filepath.Base(path)
	}
	return email, nil
}

func exportResults(ctx context.Context, logger *zap.Logger, flags *di.CLIFlags, svc *core.TriageService, emails []*core.Email) error {
	var w io.Writer = os.Stdout
	if flags.Out != "" {
		f, err := os.Create(flags.Out)
		if err != nil {
			return fmt.Errorf("failed to create export file: %w", err)
		}
		defer f.Close()
		w = f
	}

	batch := svc.ClassifyBatch(ctx, emails)
	rows := make([]export.Row, 0, len(batch))
	for _, item := range batch {
		if item.Err != nil {
			logger.Error("Failed to classify email",
				zap.String("message_id", item.Email.MessageID),
				zap.Error(item.Err))
			continue
		}
		rows = append(rows, export.Row{Email: item.Email, Result: item.Result})
	}

	var err error
	switch flags.Export {
	case di.ExportComparison:
		err = export.WriteComparisonCSV(w, rows)
	default:
		err = export.WriteDetailedCSV(w, rows, flags.IncludeSnippet)
	}
	if err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}

	logger.Info("Export complete",
		zap.String("format", flags.Export),
		zap.Int("rows", len(rows)),
		zap.Int("failed", len(emails)-len(rows)))
	return nil
}
