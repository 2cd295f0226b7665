package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/specialistvlad/compositor/internal/tagname"
)

// Model is the unified, format-agnostic representation of the whole
// configuration.
type Model struct {
	// DefaultNamespace serves tags whose prefix matches no namespace.
	DefaultNamespace string
	Namespaces       []*Namespace
	// StyleSheets are paths of CSS files applied to every isolated
	// component.
	StyleSheets []string
}

// Namespace is the format-agnostic representation of a `namespace` block.
type Namespace struct {
	Prefix string
	URI    string
	// Folder holds preloaded component files. Optional.
	Folder string
	// Suffix is the component file suffix used for Folder.
	Suffix string
	// Package and Version select a versioned package namespace.
	Package string
	Version string
	// AutoImport is nil when not configured.
	AutoImport *bool
	// Transform maps a component name to a file name. Nil selects the
	// default "<name>.html".
	Transform func(name string) string
	// RateLimit caps fetches per second; zero means unlimited.
	RateLimit float64
	Burst     int
}

// Kind reports how the namespace is served: "versioned", "bundled" or
// "remote".
func (n *Namespace) Kind() string {
	switch {
	case n.Package != "":
		return "versioned"
	case n.Folder != "":
		return "bundled"
	default:
		return "remote"
	}
}

// Merge adds other's namespaces and style sheets to m. A default set in
// other wins.
func (m *Model) Merge(other *Model) {
	if other == nil {
		return
	}
	if other.DefaultNamespace != "" {
		m.DefaultNamespace = other.DefaultNamespace
	}
	m.Namespaces = append(m.Namespaces, other.Namespaces...)
	m.StyleSheets = append(m.StyleSheets, other.StyleSheets...)
}

// Namespace returns the namespace configured for prefix.
func (m *Model) Namespace(prefix string) (*Namespace, bool) {
	for _, ns := range m.Namespaces {
		if ns.Prefix == prefix {
			return ns, true
		}
	}
	return nil, false
}

// Validate checks prefixes, duplicates and the default namespace.
func (m *Model) Validate() error {
	var errs []error
	seen := make(map[string]bool)
	for _, ns := range m.Namespaces {
		switch {
		case !validPrefix(ns.Prefix):
			errs = append(errs, fmt.Errorf("namespace %q: invalid prefix", ns.Prefix))
		case seen[ns.Prefix]:
			errs = append(errs, fmt.Errorf("namespace %q: declared more than once", ns.Prefix))
		}
		seen[ns.Prefix] = true

		if ns.Package != "" && ns.Version == "" {
			errs = append(errs, fmt.Errorf("namespace %q: package requires a version", ns.Prefix))
		}
		if ns.URI == "" && ns.Folder == "" {
			errs = append(errs, fmt.Errorf("namespace %q: needs a uri or a folder", ns.Prefix))
		}
		if ns.RateLimit < 0 || ns.Burst < 0 {
			errs = append(errs, fmt.Errorf("namespace %q: rate_limit and burst must not be negative", ns.Prefix))
		}
	}
	if m.DefaultNamespace != "" && !seen[m.DefaultNamespace] {
		errs = append(errs, fmt.Errorf("default namespace %q is not declared", m.DefaultNamespace))
	}
	return errors.Join(errs...)
}

// validPrefix accepts what can precede the first hyphen of a valid tag.
func validPrefix(p string) bool {
	return p != "" && !strings.Contains(p, "-") && tagname.Validate(p+"-x") == nil
}
