// Package yamlconfig implements config.Loader for YAML files. Transform
// strings use the same template syntax as the HCL format.
package yamlconfig

import (
	"context"
	"fmt"
	"os"

	"github.com/specialistvlad/compositor/internal/config"
	"github.com/specialistvlad/compositor/internal/ctxlog"
	"github.com/specialistvlad/compositor/internal/fsutil"
	"github.com/specialistvlad/compositor/internal/hcl"
	"gopkg.in/yaml.v3"
)

type file struct {
	DefaultNamespace string      `yaml:"default_namespace"`
	StyleSheets      []string    `yaml:"style_sheets"`
	Namespaces       []namespace `yaml:"namespaces"`
}

type namespace struct {
	Prefix     string  `yaml:"prefix"`
	URI        string  `yaml:"uri"`
	Folder     string  `yaml:"folder"`
	Suffix     string  `yaml:"suffix"`
	Package    string  `yaml:"package"`
	Version    string  `yaml:"version"`
	AutoImport *bool   `yaml:"auto_import"`
	Transform  string  `yaml:"transform"`
	RateLimit  float64 `yaml:"rate_limit"`
	Burst      int     `yaml:"burst"`
}

// Loader reads .yaml and .yml files.
type Loader struct{}

// NewLoader creates a new YAML configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load implements config.Loader.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	files, err := fsutil.FindPaths(paths, ".yaml", ".yml")
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered YAML files.", "count", len(files))

	model := &config.Model{}
	for _, p := range files {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read YAML file %s: %w", p, err)
		}
		m, err := l.LoadBytes(ctx, data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode YAML file %s: %w", p, err)
		}
		model.Merge(m)
	}
	return model, nil
}

// LoadBytes decodes a single YAML document.
func (l *Loader) LoadBytes(ctx context.Context, data []byte) (*config.Model, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	m := &config.Model{DefaultNamespace: f.DefaultNamespace, StyleSheets: f.StyleSheets}
	for _, n := range f.Namespaces {
		transform, err := hcl.Transform(ctx, n.Prefix, n.Transform)
		if err != nil {
			return nil, err
		}
		m.Namespaces = append(m.Namespaces, &config.Namespace{
			Prefix:     n.Prefix,
			URI:        n.URI,
			Folder:     n.Folder,
			Suffix:     n.Suffix,
			Package:    n.Package,
			Version:    n.Version,
			AutoImport: n.AutoImport,
			Transform:  transform,
			RateLimit:  n.RateLimit,
			Burst:      n.Burst,
		})
	}
	return m, nil
}
