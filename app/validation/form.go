package validation

import (
	"errors"
	"strings"
	"unicode/utf8"
)

var (
	ErrEmptyInput       = errors.New("no competitor provided")
	ErrTooLong          = errors.New("competitor name too long")
	ErrDuplicate        = errors.New("duplicate competitor")
	ErrInvalidSelection = errors.New("invalid selection")
)

// Form is a validated submission tuple.
type Form struct {
	Competitors []string
	Country     string
	Status      string
}

// ValidateForm checks, in order and stopping at the first failure: at least
// one competitor, every name within the length limit, no case-insensitive
// duplicates, and country and status drawn from the allowed sets.
func (o *Options) ValidateForm(competitors []string, country, status string) (Form, error) {
	if len(competitors) == 0 {
		return Form{}, ErrEmptyInput
	}

	for _, c := range competitors {
		if utf8.RuneCountInString(c) > o.MaxNameLength {
			return Form{}, ErrTooLong
		}
	}

	seen := make(map[string]struct{}, len(competitors))
	for _, c := range competitors {
		seen[strings.ToLower(c)] = struct{}{}
	}

	if len(seen) != len(competitors) {
		return Form{}, ErrDuplicate
	}

	if !contains(o.Countries, country) || !contains(o.Statuses, status) {
		return Form{}, ErrInvalidSelection
	}

	return Form{Competitors: competitors, Country: country, Status: status}, nil
}

// ValidName is the live per-field check: empty is fine, otherwise the name
// must fit the length limit, use whitelisted characters only and contain no
// path-like sequences.
func (o *Options) ValidName(name string) bool {
	if name == "" {
		return true
	}

	if utf8.RuneCountInString(name) > o.MaxNameLength || !Allowed(name) {
		return false
	}

	return !strings.Contains(name, "..") && !strings.Contains(name, "//")
}

// ValidateForm runs the check with the default options.
func ValidateForm(competitors []string, country, status string) (Form, error) {
	o := DefaultOptions()
	return o.ValidateForm(competitors, country, status)
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}

	return false
}
