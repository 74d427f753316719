package sender

import (
	"net/mail"
	"strings"
)

// ExtractAddress returns the bare address of a "Name <addr>" or bare sender.
// Malformed input falls back to the text between angle brackets, or the
// trimmed input itself.
func ExtractAddress(sender string) string {
	sender = strings.TrimSpace(sender)
	if sender == "" {
		return ""
	}

	if addr, err := mail.ParseAddress(sender); err == nil {
		return addr.Address
	}

	if start := strings.LastIndex(sender, "<"); start >= 0 {
		rest := sender[start+1:]
		if end := strings.Index(rest, ">"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
		return strings.TrimSpace(rest)
	}
	return sender
}

// Domain returns the lower-cased domain of a sender, or "" if there is none
func Domain(sender string) string {
	_, domain := splitAddress(strings.ToLower(ExtractAddress(sender)))
	return domain
}

func splitAddress(address string) (local, domain string) {
	at := strings.LastIndex(address, "@")
	if at < 0 {
		return address, ""
	}
	return address[:at], address[at+1:]
}
