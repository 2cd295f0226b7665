// Package config defines the format-agnostic configuration model for the
// compositor: which namespaces serve which tag prefixes, where their
// components live, and which style sheets apply to isolated components.
//
// The `config.Model` is the single source of truth for the namespace loader.
// Concrete file formats, such as HCL and YAML, are decoded by implementations
// of the Loader interface in separate packages.
package config
