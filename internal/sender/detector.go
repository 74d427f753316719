// Package sender decides whether an email comes from a real individual or
// from automated and marketing traffic.
package sender

import (
	"context"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/mikey/inbox-triage/internal/core"
	"go.uber.org/zap"
)

// Substrings that rule out a personal sender outright
var strongDisqualifiers = []string{
	// automated systems
	"noreply", "no-reply", "donotreply", "bounce", "mailer-daemon", "postmaster",
	// marketing
	"newsletter", "promo", "unsubscribe",
	// role accounts
	"support", "help", "info@", "team@", "sales", "billing",
}

// Substrings typical of automated display names
var automatedNamePatterns = []string{
	"via ", "by ", "updates", "digest", "alert", "subscription", "service",
}

// Words that disqualify a display name from counting as a real name
var automatedNameWords = []string{
	"update", "alert", "notification", "team", "newsletter", "digest", "service",
}

// Consumer mailbox providers, matched as domain suffixes
var personalDomains = []string{
	"gmail.com",
	"yahoo.com", "ymail.com",
	"hotmail.com", "outlook.com", "live.com", "msn.com",
	"icloud.com", "me.com", "mac.com",
	"aol.com",
	"protonmail.com", "proton.me", "pm.me",
}

// "M. Smith <"
var initialSurnamePattern = regexp.MustCompile(`[A-Z]\. [A-Z][a-z]+ <`)

// IsPersonalSender applies the personal-sender rules to a raw sender string.
// Contacts membership wins outright; disqualifiers are checked before any
// positive signal.
func IsPersonalSender(sender string, inContacts bool) bool {
	if inContacts {
		return true
	}

	lowered := strings.ToLower(sender)

	for _, marker := range strongDisqualifiers {
		if strings.Contains(lowered, marker) {
			return false
		}
	}

	for _, pattern := range automatedNamePatterns {
		if strings.Contains(lowered, pattern) {
			return false
		}
	}

	realName := hasRealName(sender)
	address := strings.ToLower(ExtractAddress(sender))
	local, domain := splitAddress(address)
	personalDomain := isPersonalDomain(domain)

	switch {
	case personalDomain && realName:
		return true
	case personalDomain && strings.Count(local, ".") <= 2:
		return true
	case realName && strings.Count(domain, ".") == 1:
		return true
	case initialSurnamePattern.MatchString(sender):
		return true
	}
	return false
}

// hasRealName reports whether sender is "Display Name <addr>" with a
// plausible human display name
func hasRealName(sender string) bool {
	idx := strings.Index(sender, "<")
	if idx < 0 {
		return false
	}

	name := strings.TrimSpace(sender[:idx])
	if len([]rune(name)) < 2 {
		return false
	}

	hasLetter := false
	for _, r := range name {
		if unicode.IsLetter(r) {
			hasLetter = true
			break
		}
	}
	if !hasLetter {
		return false
	}

	lowered := strings.ToLower(name)
	for _, word := range automatedNameWords {
		if strings.Contains(lowered, word) {
			return false
		}
	}
	return true
}

func isPersonalDomain(domain string) bool {
	if domain == "" {
		return false
	}
	for _, d := range personalDomains {
		if strings.HasSuffix(domain, d) {
			return true
		}
	}
	return false
}

// Detector resolves contacts membership and then applies IsPersonalSender
type Detector struct {
	contacts core.ContactsLookup
	timeout  time.Duration
	logger   *zap.Logger
}

// NewDetector creates a new detector. A nil contacts lookup means nobody is
// a known contact.
func NewDetector(contacts core.ContactsLookup, timeout time.Duration, logger *zap.Logger) *Detector {
	return &Detector{
		contacts: contacts,
		timeout:  timeout,
		logger:   logger,
	}
}

// Detect reports whether sender is a known contact and a real individual
func (d *Detector) Detect(ctx context.Context, sender string) core.SenderSignals {
	inContacts := d.inContacts(ctx, sender)
	return core.SenderSignals{
		InContacts:     inContacts,
		PersonalSender: IsPersonalSender(sender, inContacts),
	}
}

// inContacts awaits the contacts lookup. Failures count as "not a contact".
func (d *Detector) inContacts(ctx context.Context, sender string) bool {
	if d.contacts == nil {
		return false
	}

	address := ExtractAddress(sender)
	if address == "" {
		return false
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	found, err := d.contacts.IsInContacts(ctx, address)
	if err != nil {
		d.logger.Warn("Contacts lookup failed, treating sender as unknown",
			zap.String("address", address),
			zap.Error(err))
		return false
	}
	return found
}
