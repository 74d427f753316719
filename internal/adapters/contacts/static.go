// Package contacts answers whether an email address belongs to the user's
// contacts.
package contacts

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// StaticDirectory treats a configured list of addresses and domains as contacts
type StaticDirectory struct {
	addresses map[string]struct{}
	domains   []string
	logger    *zap.Logger
}

// NewStaticDirectory creates a directory from configured addresses and domains
func NewStaticDirectory(addresses, domains []string, logger *zap.Logger) *StaticDirectory {
	d := &StaticDirectory{
		addresses: make(map[string]struct{}, len(addresses)),
		logger:    logger,
	}

	// Normalize entries (lowercase)
	for _, addr := range addresses {
		addr = strings.ToLower(strings.TrimSpace(addr))
		if addr != "" {
			d.addresses[addr] = struct{}{}
		}
	}
	for _, domain := range domains {
		domain = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(domain), "@")))
		if domain != "" {
			d.domains = append(d.domains, domain)
		}
	}

	if (len(d.addresses) > 0 || len(d.domains) > 0) && logger != nil {
		logger.Info("Initialized static contacts directory",
			zap.Int("addresses", len(d.addresses)),
			zap.Strings("domains", d.domains))
	}

	return d
}

// IsInContacts reports whether emailAddress or its domain is configured
func (d *StaticDirectory) IsInContacts(_ context.Context, emailAddress string) (bool, error) {
	addr := strings.ToLower(strings.TrimSpace(emailAddress))
	if addr == "" {
		return false, nil
	}

	if _, ok := d.addresses[addr]; ok {
		return true, nil
	}

	at := strings.LastIndex(addr, "@")
	if at < 0 {
		return false, nil
	}
	domain := addr[at+1:]

	for _, known := range d.domains {
		if known == domain {
			if d.logger != nil {
				d.logger.Debug("Domain is a known contact domain",
					zap.String("domain", domain),
					zap.String("email", addr))
			}
			return true, nil
		}
	}

	return false, nil
}

// NoContacts is a lookup in which nobody is a contact
type NoContacts struct{}

// IsInContacts always reports false
func (NoContacts) IsInContacts(context.Context, string) (bool, error) {
	return false, nil
}

// Everyone is a lookup in which every sender is a contact
type Everyone struct{}

// IsInContacts always reports true
func (Everyone) IsInContacts(context.Context, string) (bool, error) {
	return true, nil
}
