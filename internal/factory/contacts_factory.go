package factory

import (
	"context"
	"fmt"

	"github.com/mikey/inbox-triage/internal/adapters/contacts"
	"github.com/mikey/inbox-triage/internal/config"
	"github.com/mikey/inbox-triage/internal/core"
	"github.com/mikey/inbox-triage/internal/sender"
	"go.uber.org/zap"
)

// ContactsFactory creates the contacts lookup and the sender detector
type ContactsFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewContactsFactory creates a new contacts factory
func NewContactsFactory(cfg *config.Config, logger *zap.Logger) *ContactsFactory {
	return &ContactsFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateContactsLookup creates the contacts lookup for the configured provider
func (f *ContactsFactory) CreateContactsLookup(ctx context.Context) (core.ContactsLookup, error) {
	contactsCfg := f.cfg.GetContacts()

	switch contactsCfg.Provider {
	case "static":
		return contacts.NewStaticDirectory(contactsCfg.Addresses, contactsCfg.Domains, f.logger), nil
	case "google":
		client, err := contacts.NewOAuthHTTPClient(ctx, contactsCfg.GoogleCredentialsFile, contactsCfg.GoogleTokenFile)
		if err != nil {
			return nil, err
		}
		svc, err := contacts.NewPeopleService(ctx, client)
		if err != nil {
			return nil, err
		}
		return contacts.NewPeopleDirectory(svc, f.logger), nil
	case "everyone":
		return contacts.Everyone{}, nil
	case "none", "":
		return contacts.NoContacts{}, nil
	default:
		return nil, fmt.Errorf("unsupported contacts provider: %s", contactsCfg.Provider)
	}
}

// CreateSenderDetector creates a sender detector bounded by contacts.timeout
func (f *ContactsFactory) CreateSenderDetector(lookup core.ContactsLookup) (*sender.Detector, error) {
	timeout, err := f.cfg.GetDuration("contacts.timeout")
	if err != nil {
		return nil, err
	}
	return sender.NewDetector(lookup, timeout, f.logger), nil
}
