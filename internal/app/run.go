package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/compositor/internal/ctxlog"
)

// Run executes the configured command. Serve blocks until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "command", a.config.Command)
	a.logger.Info("Components registered:", "count", len(a.registry.Definitions()), "namespaces", a.loader.Namespaces())

	switch a.config.Command {
	case CommandRender:
		a.startHealthcheckServer(ctx)
		defer a.closeHealthcheckServer(ctx)
		return a.renderPages(ctx)
	case CommandServe:
		return a.serve(ctx)
	default:
		return fmt.Errorf("unknown command %q", a.config.Command)
	}
}
