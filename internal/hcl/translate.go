// This file contains the logic for translating decoded HCL blocks into the
// format-agnostic configuration model defined in the config package.

package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/compositor/internal/config"
	"github.com/specialistvlad/compositor/internal/ctxlog"
	"github.com/specialistvlad/compositor/internal/namespace"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// translateNamespace converts a namespace block into the agnostic model.
func translateNamespace(ctx context.Context, b *namespaceBlock) (*config.Namespace, error) {
	transform, err := compileTransform(ctx, b.Prefix, b.Transform)
	if err != nil {
		return nil, fmt.Errorf("namespace %q: %w", b.Prefix, err)
	}
	return &config.Namespace{
		Prefix:     b.Prefix,
		URI:        b.URI,
		Folder:     b.Folder,
		Suffix:     b.Suffix,
		Package:    b.Package,
		Version:    b.Version,
		AutoImport: b.AutoImport,
		Transform:  transform,
		RateLimit:  b.RateLimit,
		Burst:      b.Burst,
	}, nil
}

// compileTransform turns a transform expression into a function of the
// component name. A missing or null expression yields nil.
func compileTransform(ctx context.Context, prefix string, expr hcl.Expression) (func(string) string, error) {
	if expr == nil {
		return nil, nil
	}
	if len(expr.Variables()) == 0 {
		v, diags := expr.Value(fileContext())
		if diags.HasErrors() {
			return nil, fmt.Errorf("invalid transform: %w", diags)
		}
		if v.IsNull() {
			return nil, nil
		}
	}
	if _, err := evalTransform(expr, "example"); err != nil {
		return nil, fmt.Errorf("invalid transform: %w", err)
	}

	logger := ctxlog.FromContext(ctx).With("namespace", prefix)
	return func(name string) string {
		out, err := evalTransform(expr, name)
		if err != nil {
			logger.Warn("Transform failed; using the default file name.", "name", name, "error", err)
			return namespace.DefaultTransform(name)
		}
		return out
	}, nil
}

func evalTransform(expr hcl.Expression, name string) (string, error) {
	v, diags := expr.Value(nameContext(name))
	if diags.HasErrors() {
		return "", diags
	}
	s, err := convert.Convert(v, cty.String)
	if err != nil {
		return "", fmt.Errorf("transform must produce a string: %w", err)
	}
	if s.IsNull() || !s.IsKnown() {
		return "", fmt.Errorf("transform produced no value")
	}
	return s.AsString(), nil
}

// Transform compiles a template such as "${name}.component.html" written in
// HCL template syntax. Other configuration formats use it for their
// transform strings.
func Transform(ctx context.Context, prefix, template string) (func(string) string, error) {
	if template == "" {
		return nil, nil
	}
	expr, diags := hclsyntax.ParseTemplate([]byte(template), prefix+".transform", hcl.InitialPos)
	if diags.HasErrors() {
		return nil, fmt.Errorf("namespace %q: invalid transform: %w", prefix, diags)
	}
	return compileTransform(ctx, prefix, expr)
}
