package namespace

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/specialistvlad/compositor/internal/fsutil"
	"github.com/specialistvlad/compositor/internal/registry"
	"golang.org/x/time/rate"
)

// Namespace is a source of loadable components.
type Namespace interface {
	// Prefix is the tag prefix the namespace owns.
	Prefix() string
	// Resolve returns the resource path of a component name.
	Resolve(name string) string
	// Source returns the raw source of name, fetching it through f at most
	// once per name.
	Source(ctx context.Context, f Fetcher, name string) (string, error)
	// AutoImport reports whether references in loaded templates are loaded
	// too.
	AutoImport() bool
}

// DefaultTransform maps a component name to its file name.
func DefaultTransform(name string) string { return name + registry.DefaultSuffix }

// Config describes a remote namespace.
type Config struct {
	// URI is prepended to every resource path. A trailing slash is added.
	URI string
	// Transform maps a component name to a file name.
	Transform func(name string) string
	// AutoImport loads unknown tags referenced by loaded templates. Nil
	// means true.
	AutoImport *bool
	// Limiter throttles fetches. Nil means unlimited.
	Limiter *rate.Limiter
}

// Remote fetches component sources from "<uri><transform(name)>".
type Remote struct {
	prefix     string
	uri        string
	transform  func(string) string
	autoImport bool
	limiter    *rate.Limiter

	mu    sync.Mutex
	cache map[string]string
}

// NewRemote returns a remote namespace for prefix.
func NewRemote(prefix string, cfg Config) *Remote {
	r := &Remote{
		prefix:     prefix,
		uri:        withSlash(cfg.URI),
		transform:  cfg.Transform,
		autoImport: cfg.AutoImport == nil || *cfg.AutoImport,
		limiter:    cfg.Limiter,
		cache:      make(map[string]string),
	}
	if r.transform == nil {
		r.transform = DefaultTransform
	}
	return r
}

func withSlash(s string) string {
	if s == "" || strings.HasSuffix(s, "/") {
		return s
	}
	return s + "/"
}

// Prefix implements Namespace.
func (r *Remote) Prefix() string { return r.prefix }

// AutoImport implements Namespace.
func (r *Remote) AutoImport() bool { return r.autoImport }

// Resolve implements Namespace.
func (r *Remote) Resolve(name string) string { return r.uri + r.transform(name) }

// Source implements Namespace.
func (r *Remote) Source(ctx context.Context, f Fetcher, name string) (string, error) {
	return r.fetch(ctx, f, name, r.Resolve(name))
}

func (r *Remote) fetch(ctx context.Context, f Fetcher, name, uri string) (string, error) {
	r.mu.Lock()
	src, ok := r.cache[name]
	r.mu.Unlock()
	if ok {
		return src, nil
	}
	if f == nil {
		return "", fmt.Errorf("%w: no fetcher configured", ErrNotFound)
	}
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	src, err := f.Fetch(ctx, uri)
	if err != nil {
		return "", err
	}
	r.mu.Lock()
	r.cache[name] = src
	r.mu.Unlock()
	return src, nil
}

// Cached reports whether name has been fetched.
func (r *Remote) Cached(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.cache[name]
	return ok
}

// Versioned fetches from "<uri><package>@<version>/<transform(name)>".
type Versioned struct {
	*Remote
	pkg     string
	version string
}

// NewVersioned returns a versioned package namespace. Without a package it
// behaves like a Remote.
func NewVersioned(prefix string, cfg Config, pkg, version string) *Versioned {
	return &Versioned{Remote: NewRemote(prefix, cfg), pkg: pkg, version: version}
}

// Resolve implements Namespace.
func (v *Versioned) Resolve(name string) string {
	if v.pkg == "" {
		return v.Remote.Resolve(name)
	}
	return fmt.Sprintf("%s%s@%s/%s", v.uri, v.pkg, v.version, v.transform(name))
}

// Source implements Namespace.
func (v *Versioned) Source(ctx context.Context, f Fetcher, name string) (string, error) {
	return v.fetch(ctx, f, name, v.Resolve(name))
}

// Bundled serves preloaded sources and falls back to fetching.
type Bundled struct {
	*Remote
	folder string
	suffix string

	bmu        sync.RWMutex
	components map[string]string
}

// NewBundled returns a bundled namespace whose components live under folder.
// suffix defaults to registry.DefaultSuffix.
func NewBundled(prefix string, cfg Config, folder, suffix string) *Bundled {
	if suffix == "" {
		suffix = registry.DefaultSuffix
	}
	return &Bundled{
		Remote:     NewRemote(prefix, cfg),
		folder:     withSlash(folder),
		suffix:     suffix,
		components: make(map[string]string),
	}
}

// Folder is the path preloaded components are expected under.
func (b *Bundled) Folder() string { return b.folder }

// AddComponent preloads the source of name.
func (b *Bundled) AddComponent(name, source string) {
	b.bmu.Lock()
	defer b.bmu.Unlock()
	b.components[name] = source
}

// AddComponents preloads a map of file path to source; the file name without
// the suffix becomes the component name.
func (b *Bundled) AddComponents(files map[string]string) {
	for p, src := range files {
		b.AddComponent(fsutil.BaseName(p, b.suffix), src)
	}
}

// MatchesPath reports whether p is a file directly inside the folder.
func (b *Bundled) MatchesPath(p string) bool {
	if b.folder == "" || !strings.HasPrefix(p, b.folder) {
		return false
	}
	return !strings.Contains(strings.TrimPrefix(p, b.folder), "/")
}

// AddFolder preloads every component file below dir.
func (b *Bundled) AddFolder(dir string) (int, error) {
	return b.AddFS(os.DirFS(dir), ".")
}

// AddFS preloads every component file below root in fsys.
func (b *Bundled) AddFS(fsys fs.FS, root string) (int, error) {
	files, err := fsutil.FindFiles(fsys, root, b.suffix)
	if err != nil {
		return 0, err
	}
	for _, p := range files {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return 0, fmt.Errorf("failed to read %s: %w", p, err)
		}
		b.AddComponent(fsutil.BaseName(p, b.suffix), string(data))
	}
	return len(files), nil
}

// Components returns the preloaded component names.
func (b *Bundled) Components() []string {
	b.bmu.RLock()
	defer b.bmu.RUnlock()
	out := make([]string, 0, len(b.components))
	for name := range b.components {
		out = append(out, name)
	}
	return out
}

// Source implements Namespace.
func (b *Bundled) Source(ctx context.Context, f Fetcher, name string) (string, error) {
	b.bmu.RLock()
	src, ok := b.components[name]
	b.bmu.RUnlock()
	if ok {
		return src, nil
	}
	return b.Remote.Source(ctx, f, name)
}
