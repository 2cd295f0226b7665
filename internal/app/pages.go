package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/specialistvlad/compositor/internal/fsutil"
)

// PageSuffix is the file suffix of renderable pages.
const PageSuffix = ".html"

// Page is a page file found among the inputs.
type Page struct {
	// Path is the file to read.
	Path string
	// Name is the path relative to the input it was found in, with forward
	// slashes.
	Name string
}

// ResolvePages expands files and folders into the pages they contain, in
// input order. Files are taken as given regardless of suffix.
func ResolvePages(inputs []string) ([]Page, error) {
	var pages []Page
	for _, in := range inputs {
		info, err := os.Stat(in)
		if err != nil {
			return nil, fmt.Errorf("error accessing page path %s: %w", in, err)
		}
		if !info.IsDir() {
			pages = append(pages, Page{Path: in, Name: filepath.Base(in)})
			continue
		}
		files, err := fsutil.FindFilesByExtension(in, PageSuffix)
		if err != nil {
			return nil, fmt.Errorf("failed to list pages in %s: %w", in, err)
		}
		for _, f := range files {
			pages = append(pages, Page{Path: filepath.Join(in, filepath.FromSlash(f)), Name: f})
		}
	}
	return pages, nil
}
