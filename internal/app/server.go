package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/specialistvlad/compositor/internal/ctxlog"
)

// Handler returns the HTTP routes of serve mode: /health, /metrics, /pages
// (a JSON list of page names) and every page under root rendered on demand.
// A `node` query parameter holding a node address renders only that node.
func (a *App) Handler(root string) http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/health", a.healthHandler).Methods(http.MethodGet)
	router.Handle("/metrics", a.metrics.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/pages", a.pagesHandler(root)).Methods(http.MethodGet)
	router.PathPrefix("/").HandlerFunc(a.pageHandler(root)).Methods(http.MethodGet, http.MethodHead)
	return router
}

func (a *App) pagesHandler(root string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pages, err := ResolvePages([]string{root})
		if err != nil {
			a.logger.Error("Failed to list pages.", "root", root, "error", err)
			http.Error(w, "failed to list pages", http.StatusInternalServerError)
			return
		}
		names := make([]string, 0, len(pages))
		for _, p := range pages {
			names = append(names, p.Name)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"pages": names})
	}
}

func (a *App) pageHandler(root string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := pageName(r.URL.Path)
		logger := a.logger.With("page", name, "remote_addr", r.RemoteAddr)
		page := Page{Path: filepath.Join(root, filepath.FromSlash(name)), Name: name}

		if info, err := os.Stat(page.Path); err != nil || info.IsDir() {
			logger.Debug("Page not found.")
			http.NotFound(w, r)
			return
		}

		var buf bytes.Buffer
		ctx := ctxlog.WithLogger(r.Context(), logger)
		err := a.renderFile(ctx, page, r.URL.Query().Get("node"), &buf)
		var partial *LoadError
		switch {
		case errors.Is(err, ErrBadAddress):
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		case errors.Is(err, ErrNodeNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		case errors.As(err, &partial):
			logger.Warn("Serving page with missing components.", "error", err)
		case err != nil:
			logger.Error("Failed to render page.", "error", err)
			http.Error(w, "failed to render page", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(buf.Bytes())
	}
}

// pageName maps a request path to a page file name below the root.
func pageName(p string) string {
	name := strings.TrimPrefix(path.Clean("/"+p), "/")
	switch {
	case name == "":
		return "index" + PageSuffix
	case strings.HasSuffix(p, "/"):
		return name + "/index" + PageSuffix
	case path.Ext(name) == "":
		return name + PageSuffix
	}
	return name
}

// serve runs the page server until ctx is cancelled.
func (a *App) serve(ctx context.Context) error {
	logger := ctxlog.FromContextOr(ctx, a.logger)
	root := a.config.Inputs[0]
	srv := &http.Server{
		Addr:              a.config.Addr,
		Handler:           a.Handler(root),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("🚀 Page server starting", "address", a.config.Addr, "root", root)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("page server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	logger.Info("Shutting down page server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("page server shutdown failed: %w", err)
	}
	logger.Info("🏁 Page server stopped.")
	return nil
}
