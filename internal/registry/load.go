package registry

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/specialistvlad/compositor/internal/fsutil"
)

// DefaultSuffix is the file suffix of component sources.
const DefaultSuffix = ".html"

// LoadFolder registers every component source below dir. See LoadFS.
func (r *Registry) LoadFolder(ctx context.Context, dir, suffix string) (int, error) {
	return r.LoadFS(ctx, os.DirFS(dir), ".", suffix)
}

// LoadFS registers every file below root whose name ends in suffix; the file
// name without the suffix is the tag. Rejected components are logged and
// skipped; the returned error joins them, and the count is the number that
// registered.
func (r *Registry) LoadFS(ctx context.Context, fsys fs.FS, root, suffix string) (int, error) {
	logger := r.loggerFor(ctx)
	if suffix == "" {
		suffix = DefaultSuffix
	}
	logger.Debug("Registry loading components from folder...", "root", root, "suffix", suffix)

	files, err := fsutil.FindFiles(fsys, root, suffix)
	if err != nil {
		logger.Error("Failed to walk component folder", "root", root, "error", err)
		return 0, err
	}
	if len(files) == 0 {
		logger.Warn("No component files found in folder", "root", root, "suffix", suffix)
		return 0, nil
	}
	logger.Debug("Found component files to load", "files", files)

	var (
		loaded int
		errs   []error
	)
	for _, file := range files {
		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to read component file %s: %w", file, err))
			continue
		}
		if err := r.RegisterSource(ctx, fsutil.BaseName(file, suffix), string(data)); err != nil {
			errs = append(errs, err)
			continue
		}
		loaded++
	}

	logger.Info("Registry loaded components.", "root", root, "loaded", loaded, "failed", len(errs))
	return loaded, errors.Join(errs...)
}
