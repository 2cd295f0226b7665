package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/compositor/internal/config"
	"github.com/specialistvlad/compositor/internal/ctxlog"
	"github.com/specialistvlad/compositor/internal/fsutil"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file found under paths and merges them into one
// model. Missing paths are skipped.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := fsutil.FindPaths(paths, ".hcl")
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	model := &config.Model{}
	for _, file := range files {
		f, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}
		m, err := decode(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, err)
		}
		model.Merge(m)
	}

	logger.Debug("HCL loading complete.", "namespaces", len(model.Namespaces), "default", model.DefaultNamespace)
	return model, nil
}

// LoadBytes decodes a single HCL document held in memory.
func (l *Loader) LoadBytes(ctx context.Context, filename string, src []byte) (*config.Model, error) {
	f, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL %s: %w", filename, diags)
	}
	return decode(ctx, f)
}

func decode(ctx context.Context, f *hcl.File) (*config.Model, error) {
	var root fileRoot
	if diags := gohcl.DecodeBody(f.Body, fileContext(), &root); diags.HasErrors() {
		return nil, diags
	}

	m := &config.Model{
		DefaultNamespace: root.DefaultNamespace,
		StyleSheets:      root.StyleSheets,
	}
	for _, b := range root.Namespaces {
		ns, err := translateNamespace(ctx, b)
		if err != nil {
			return nil, err
		}
		m.Namespaces = append(m.Namespaces, ns)
	}
	return m, nil
}
