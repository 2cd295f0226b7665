// Package tagname implements the custom tag naming convention: a registrable
// tag name is lower case, starts with a letter and contains at least one
// separator. The substring before the first separator is the namespace prefix.
package tagname

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html/atom"
)

// Separator splits a tag name into its namespace prefix and local name.
const Separator = "-"

var (
	// ErrEmpty is returned for an empty or absent tag name.
	ErrEmpty = errors.New("tag name is required")
	// ErrNoSeparator is returned when the name lacks the multi-part separator.
	ErrNoSeparator = errors.New("tag name must contain a hyphen")
	// ErrInvalidCharacters is returned for names outside the allowed alphabet.
	ErrInvalidCharacters = errors.New("tag name contains invalid characters")
)

var validName = regexp.MustCompile(`^[a-z][a-z0-9._-]*$`)

// reserved lists hyphenated names the HTML specification reserves.
var reserved = map[string]struct{}{
	"annotation-xml":   {},
	"color-profile":    {},
	"font-face":        {},
	"font-face-src":    {},
	"font-face-uri":    {},
	"font-face-format": {},
	"font-face-name":   {},
	"missing-glyph":    {},
}

// Validate checks name against the custom tag naming convention.
func Validate(name string) error {
	if name == "" {
		return ErrEmpty
	}
	if !strings.Contains(name, Separator) {
		return fmt.Errorf("%q: %w", name, ErrNoSeparator)
	}
	if !validName.MatchString(name) {
		return fmt.Errorf("%q: %w", name, ErrInvalidCharacters)
	}
	if _, ok := reserved[name]; ok {
		return fmt.Errorf("%q is reserved: %w", name, ErrInvalidCharacters)
	}
	return nil
}

// IsCustom reports whether name looks like a custom tag.
func IsCustom(name string) bool {
	return Validate(strings.ToLower(name)) == nil
}

// IsNative reports whether name is a known HTML, SVG or MathML element.
func IsNative(name string) bool {
	if name == "" {
		return false
	}
	if _, ok := reserved[name]; ok {
		return true
	}
	return atom.Lookup([]byte(strings.ToLower(name))) != 0
}

// Prefix returns the namespace prefix of name: everything before the first
// separator. Names without a separator have no prefix.
func Prefix(name string) string {
	prefix, _, found := strings.Cut(name, Separator)
	if !found {
		return ""
	}
	return prefix
}

// LocalName returns name without its namespace prefix.
func LocalName(name string) string {
	_, local, found := strings.Cut(name, Separator)
	if !found {
		return name
	}
	return local
}

// Join builds a tag name from a namespace prefix and a local name.
func Join(prefix, local string) string {
	if prefix == "" {
		return local
	}
	return prefix + Separator + local
}
