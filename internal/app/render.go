package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/specialistvlad/compositor/internal/ctxlog"
	"github.com/specialistvlad/compositor/internal/dom"
	"github.com/specialistvlad/compositor/internal/engine"
	"github.com/specialistvlad/compositor/internal/nodeid"
)

var (
	// ErrBadAddress is returned for a node address that does not parse.
	ErrBadAddress = errors.New("invalid node address")
	// ErrNodeNotFound is returned when a node address matches nothing in
	// the mounted page.
	ErrNodeNotFound = errors.New("node not found")
)

// LoadError reports components that could not be loaded while rendering a
// page. The page was still rendered with everything else.
type LoadError struct {
	Page string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("page %s rendered with missing components: %v", e.Page, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Render mounts the page read from r and writes the resulting document to
// w. Unknown tags are loaded through the configured namespaces first. A
// *LoadError is returned after writing when some of them failed.
func (a *App) Render(ctx context.Context, name string, r io.Reader, w io.Writer) error {
	return a.render(ctx, name, r, w, "")
}

// RenderNode mounts the page read from r like Render but writes only the
// node at address, e.g. `html[0].body[1].main[0]`.
func (a *App) RenderNode(ctx context.Context, name string, r io.Reader, address string, w io.Writer) error {
	return a.render(ctx, name, r, w, address)
}

func (a *App) render(ctx context.Context, name string, r io.Reader, w io.Writer, address string) error {
	var target *nodeid.Address
	if address != "" {
		addr, err := nodeid.Parse(address)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrBadAddress, err)
		}
		target = addr
	}

	logger := ctxlog.FromContextOr(ctx, a.logger).With("page", name)
	ctx = ctxlog.WithLogger(ctx, logger)

	doc, err := dom.ParseDocument(r)
	if err != nil {
		return fmt.Errorf("failed to parse page %s: %w", name, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	eng := engine.New(doc, engine.Options{
		Logger:   logger,
		Metrics:  a.metrics,
		Registry: a.registry,
		Loader:   a.loader,
	})
	defer eng.Close()

	loadErr := eng.Mount(ctx)
	if target != nil {
		n := doc.NodeAt(target)
		if n == nil {
			return fmt.Errorf("%w: %s in page %s", ErrNodeNotFound, address, name)
		}
		if _, err := io.WriteString(w, n.OuterHTML()); err != nil {
			return fmt.Errorf("failed to render node of page %s: %w", name, err)
		}
	} else if err := eng.Render(w); err != nil {
		return fmt.Errorf("failed to render page %s: %w", name, err)
	}
	if loadErr != nil {
		return &LoadError{Page: name, Err: loadErr}
	}
	logger.Debug("Page rendered.")
	return nil
}

// RenderFile renders the page at path.
func (a *App) RenderFile(ctx context.Context, page Page, w io.Writer) error {
	return a.renderFile(ctx, page, "", w)
}

func (a *App) renderFile(ctx context.Context, page Page, address string, w io.Writer) error {
	f, err := os.Open(page.Path)
	if err != nil {
		return fmt.Errorf("failed to open page: %w", err)
	}
	defer f.Close()
	return a.render(ctx, page.Name, f, w, address)
}

// renderPages renders every input page to OutputDir, or to the app's
// output when none is set.
func (a *App) renderPages(ctx context.Context) error {
	logger := ctxlog.FromContextOr(ctx, a.logger)
	pages, err := ResolvePages(a.config.Inputs)
	if err != nil {
		return err
	}
	logger.Info("Rendering pages.", "count", len(pages))

	var failed []error
	for _, page := range pages {
		var buf bytes.Buffer
		err := a.RenderFile(ctx, page, &buf)
		if err != nil {
			var partial *LoadError
			if !errors.As(err, &partial) {
				return err
			}
			logger.Warn("Page rendered with missing components.", "page", page.Name, "error", err)
			failed = append(failed, err)
		}
		if err := a.writePage(page, buf.Bytes()); err != nil {
			return err
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d pages have missing components: %w", len(failed), len(pages), failed[0])
	}
	logger.Info("🏁 Rendering finished.", "pages", len(pages))
	return nil
}

func (a *App) writePage(page Page, data []byte) error {
	if a.config.OutputDir == "" {
		_, err := a.pageW.Write(append(data, '\n'))
		return err
	}
	out := filepath.Join(a.config.OutputDir, filepath.FromSlash(page.Name))
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("failed to create output folder: %w", err)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	return nil
}
