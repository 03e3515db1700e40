package validation

import (
	"regexp"
	"strings"
)

var (
	allowedChars = regexp.MustCompile(`^[A-Za-z0-9\s\-._]+$`)
	tags         = regexp.MustCompile(`<[^>]*>?`)
	unsafeChars  = strings.NewReplacer("<", "", ">", "", `"`, "", "'", "", "&", "")
)

// Sanitize normalizes one free-text field. Tag-shaped substrings and the
// characters < > " ' & are removed first; if what remains still contains
// anything outside the whitelist the whole field is rejected as empty.
func Sanitize(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	s = tags.ReplaceAllString(s, "")
	s = unsafeChars.Replace(s)

	if !allowedChars.MatchString(s) {
		return ""
	}

	return s
}

// Allowed reports whether s consists only of whitelisted characters.
func Allowed(s string) bool {
	return allowedChars.MatchString(s)
}
