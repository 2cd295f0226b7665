package config

import "context"

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads configuration from the given paths and translates it into
	// the format-agnostic model. Directories are searched for files the
	// loader understands.
	Load(ctx context.Context, paths ...string) (*Model, error)
}

// Loaders runs several format-specific loaders over the same paths and
// merges their models in order.
type Loaders []Loader

// Load implements Loader.
func (ls Loaders) Load(ctx context.Context, paths ...string) (*Model, error) {
	model := &Model{}
	for _, l := range ls {
		m, err := l.Load(ctx, paths...)
		if err != nil {
			return nil, err
		}
		model.Merge(m)
	}
	return model, nil
}
