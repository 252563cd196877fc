package logger

import (
	"net/url"
	"strings"
)

// SanitizedEmail masks an email address for logging (e.g., "u***@e***.com")
func SanitizedEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "[invalid-email]"
	}

	username := parts[0]
	domain := parts[1]

	if len(username) > 1 {
		username = string(username[0]) + strings.Repeat("*", len(username)-1)
	}

	domainParts := strings.Split(domain, ".")
	if len(domainParts) > 1 {
		for i := 0; i < len(domainParts)-1; i++ {
			domainParts[i] = strings.Repeat("*", len(domainParts[i]))
		}
		domain = strings.Join(domainParts, ".")
	}

	return username + "@" + domain
}

// sensitive query parameter names; a match redacts the whole query string
var sensitiveParams = map[string]bool{
	"password": true,
	"token":    true,
	"secret":   true,
	"key":      true,
}

// ShouldRedactQuery reports whether a raw query string carries sensitive
// parameters. Confirm/deny links put the confirmation token in the query,
// so those request lines must never be logged verbatim.
func ShouldRedactQuery(rawQuery string) bool {
	if rawQuery == "" {
		return false
	}

	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		// Unparseable query strings are redacted wholesale
		return true
	}

	for name := range values {
		if sensitiveParams[strings.ToLower(name)] {
			return true
		}
	}
	return false
}
