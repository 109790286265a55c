package model

import (
	"regexp"
	"strings"
)

// MaxNameLength is the longest name accepted for generated code symbols
const MaxNameLength = 31

var matchCIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IsValidName returns true if name can be used as a C identifier
func IsValidName(name string) bool {
	return len(name) <= MaxNameLength && matchCIdentifier.MatchString(name)
}

// NamesEqual compares display names the way conflicts are detected,
// i.e. case insensitive
func NamesEqual(a string, b string) bool {
	return strings.EqualFold(a, b)
}
