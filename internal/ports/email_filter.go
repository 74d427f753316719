package ports

import (
	"context"

	"github.com/mikey/inbox-triage/internal/core"
)

// EmailFilter defines the interface for the mail intake front ends
type EmailFilter interface {
	// ProcessEmail classifies an email and returns the result
	ProcessEmail(ctx context.Context, email *core.Email) (*core.ClassificationResult, error)

	// Start starts the email filter service
	Start() error

	// Stop stops the email filter service
	Stop() error
}
