package contracts

import (
	"strings"
	"unicode"

	"github.com/starwatch-app/starwatch/internal/model"
)

// enginePrefixes are notification prefixes the game client prepends to
// contract names. They are stripped case-insensitively before formatting.
var enginePrefixes = []string{
	"Contract Accepted:",
	"Contract Complete:",
	"Contract Available:",
	"New Objective:",
	"Objective Complete:",
}

// FormatName turns a raw contract identifier into a display name: engine
// prefixes stripped, underscores spaced, concatenated words split at
// lowercase-to-uppercase transitions, whitespace collapsed, upper-cased.
// The result is stable under re-application.
func FormatName(raw string) string {
	s := strings.TrimSpace(raw)

	// Stacked prefixes are possible ("Contract Accepted: New Objective: X"),
	// so every prefix gets a chance to strip.
	for _, prefix := range enginePrefixes {
		if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
			s = strings.TrimSpace(s[len(prefix):])
		}
	}

	s = strings.ReplaceAll(s, "_", " ")
	s = splitCamelCase(s)
	s = strings.Join(strings.Fields(s), " ")
	s = strings.ToUpper(s)
	s = strings.TrimLeft(s, ":-")
	s = strings.TrimRight(s, ":.")
	s = strings.TrimSpace(s)
	if s == "" {
		return model.UnknownContractName
	}
	return s
}

// splitCamelCase inserts a space at every lowercase-to-uppercase transition.
func splitCamelCase(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	prevLower := false
	for _, r := range s {
		if prevLower && unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		prevLower = unicode.IsLower(r)
		b.WriteRune(r)
	}
	return b.String()
}

// isTechnicalName reports whether a name still looks like an engine
// identifier rather than display text: it is empty, contains an underscore,
// or is a single run with an embedded lowercase-to-uppercase transition.
// Technical names are always eligible for replacement by a friendlier one.
func isTechnicalName(name string) bool {
	if name == "" || strings.Contains(name, "_") {
		return true
	}
	if strings.ContainsRune(name, ' ') {
		return false
	}
	prevLower := false
	for _, r := range name {
		if prevLower && unicode.IsUpper(r) {
			return true
		}
		prevLower = unicode.IsLower(r)
	}
	return false
}
