// Package layout is a pack of general purpose components compiled into the
// binary: c-card, c-panel, c-counter and c-link.
package layout

import (
	"context"
	"embed"
	"fmt"

	"github.com/specialistvlad/compositor/internal/ctxlog"
	"github.com/specialistvlad/compositor/internal/registry"
)

//go:embed components/*.html
var components embed.FS

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers every embedded component.
func (m *Module) Register(ctx context.Context, r *registry.Registry) error {
	n, err := r.LoadFS(ctx, components, "components", registry.DefaultSuffix)
	if err != nil {
		return fmt.Errorf("layout: %w", err)
	}
	ctxlog.FromContext(ctx).Debug("Layout components registered.", "count", n)
	return nil
}
