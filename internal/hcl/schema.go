package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot decodes every top-level attribute and block of a file.
type fileRoot struct {
	DefaultNamespace string            `hcl:"default_namespace,optional"`
	StyleSheets      []string          `hcl:"style_sheets,optional"`
	Namespaces       []*namespaceBlock `hcl:"namespace,block"`
	Remain           hcl.Body          `hcl:",remain"`
}

// namespaceBlock is a `namespace "<prefix>" { ... }` block.
type namespaceBlock struct {
	Prefix     string         `hcl:"prefix,label"`
	URI        string         `hcl:"uri,optional"`
	Folder     string         `hcl:"folder,optional"`
	Suffix     string         `hcl:"suffix,optional"`
	Package    string         `hcl:"package,optional"`
	Version    string         `hcl:"version,optional"`
	AutoImport *bool          `hcl:"auto_import,optional"`
	Transform  hcl.Expression `hcl:"transform,optional"`
	RateLimit  float64        `hcl:"rate_limit,optional"`
	Burst      int            `hcl:"burst,optional"`
}
