// Package fsutil provides file system utility functions.
package fsutil

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// FindFilesByExtension recursively searches the directory at rootPath for
// files ending with extension and returns their paths relative to rootPath,
// sorted.
func FindFilesByExtension(rootPath string, extension string) ([]string, error) {
	return FindFiles(os.DirFS(rootPath), ".", extension)
}

// FindFiles is FindFilesByExtension over an fs.FS, so bundled component
// folders can be embedded into the binary.
func FindFiles(fsys fs.FS, root string, extension string) ([]string, error) {
	if extension == "" {
		panic("extension must not be empty")
	}

	var files []string
	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), extension) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// BaseName returns the file name of p without extension.
func BaseName(p, extension string) string {
	return strings.TrimSuffix(path.Base(p), extension)
}

// FindPaths expands a mix of files and directories into the files ending
// with one of extensions, in the order given and without duplicates. Paths
// that do not exist are skipped.
func FindPaths(paths []string, extensions ...string) ([]string, error) {
	var out []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("error accessing path %s: %w", p, err)
		}
		if !info.IsDir() {
			if hasExtension(p, extensions) {
				add(p)
			}
			continue
		}
		for _, ext := range extensions {
			files, err := FindFilesByExtension(p, ext)
			if err != nil {
				return nil, err
			}
			for _, f := range files {
				add(filepath.Join(p, filepath.FromSlash(f)))
			}
		}
	}
	return out, nil
}

func hasExtension(p string, extensions []string) bool {
	for _, ext := range extensions {
		if strings.HasSuffix(p, ext) {
			return true
		}
	}
	return false
}
