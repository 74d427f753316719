package contacts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/people/v1"
)

const (
	readMask   = "emailAddresses"
	searchSize = 10
)

// PeopleDirectory looks addresses up in the user's Google contacts, first in
// saved contacts and then in "other contacts" (people the user has emailed).
// Positive answers are remembered for the lifetime of the directory.
type PeopleDirectory struct {
	svc    *people.Service
	logger *zap.Logger

	mu    sync.RWMutex
	known map[string]struct{}
}

// NewPeopleDirectory creates a directory over an existing People service
func NewPeopleDirectory(svc *people.Service, logger *zap.Logger) *PeopleDirectory {
	return &PeopleDirectory{
		svc:    svc,
		logger: logger,
		known:  make(map[string]struct{}),
	}
}

// NewOAuthHTTPClient builds an authorised client from an OAuth client
// credentials file and a saved token file (both JSON)
func NewOAuthHTTPClient(ctx context.Context, credentialsFile, tokenFile string) (*http.Client, error) {
	creds, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read Google credentials: %w", err)
	}

	conf, err := google.ConfigFromJSON(creds,
		people.ContactsReadonlyScope,
		people.ContactsOtherReadonlyScope,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Google credentials: %w", err)
	}

	raw, err := os.ReadFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("no saved Google OAuth token found: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(raw, &token); err != nil {
		return nil, fmt.Errorf("invalid Google OAuth token file: %w", err)
	}

	return conf.Client(ctx, &token), nil
}

// NewPeopleService creates a People API service using client for transport
func NewPeopleService(ctx context.Context, client *http.Client, opts ...option.ClientOption) (*people.Service, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(client)}, opts...)
	svc, err := people.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create People service: %w", err)
	}
	return svc, nil
}

// IsInContacts reports whether emailAddress appears in saved or other contacts
func (d *PeopleDirectory) IsInContacts(ctx context.Context, emailAddress string) (bool, error) {
	addr := strings.ToLower(strings.TrimSpace(emailAddress))
	if addr == "" {
		return false, nil
	}

	d.mu.RLock()
	_, ok := d.known[addr]
	d.mu.RUnlock()
	if ok {
		return true, nil
	}

	found, err := d.searchSaved(ctx, addr)
	if err != nil {
		return false, err
	}
	if !found {
		found, err = d.searchOther(ctx, addr)
		if err != nil {
			return false, err
		}
	}

	if found {
		d.mu.Lock()
		d.known[addr] = struct{}{}
		d.mu.Unlock()
	}
	return found, nil
}

func (d *PeopleDirectory) searchSaved(ctx context.Context, addr string) (bool, error) {
	resp, err := d.svc.People.SearchContacts().
		Query(addr).
		ReadMask(readMask).
		PageSize(searchSize).
		Context(ctx).
		Do()
	if err != nil {
		return false, fmt.Errorf("failed to search contacts: %w", err)
	}

	for _, result := range resp.Results {
		if hasAddress(result.Person, addr) {
			return true, nil
		}
	}
	return false, nil
}

func (d *PeopleDirectory) searchOther(ctx context.Context, addr string) (bool, error) {
	resp, err := d.svc.OtherContacts.Search().
		Query(addr).
		ReadMask(readMask).
		PageSize(searchSize).
		Context(ctx).
		Do()
	if err != nil {
		return false, fmt.Errorf("failed to search other contacts: %w", err)
	}

	for _, result := range resp.Results {
		if hasAddress(result.Person, addr) {
			d.logger.Debug("Address found in other contacts", zap.String("email", addr))
			return true, nil
		}
	}
	return false, nil
}

// hasAddress matches exactly; the People search is a prefix search
func hasAddress(person *people.Person, addr string) bool {
	if person == nil {
		return false
	}
	for _, email := range person.EmailAddresses {
		if strings.EqualFold(strings.TrimSpace(email.Value), addr) {
			return true
		}
	}
	return false
}
