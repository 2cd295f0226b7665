package testutil

import (
	"context"
	"errors"
	"sort"

	"github.com/specialistvlad/compositor/internal/registry"
)

// SimpleModule is a registry.Module registering a map of tag to component
// source, in tag order.
type SimpleModule map[string]string

// Register implements the registry.Module interface.
func (m SimpleModule) Register(ctx context.Context, r *registry.Registry) error {
	tags := make([]string, 0, len(m))
	for tag := range m {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	var errs []error
	for _, tag := range tags {
		if err := r.RegisterSource(ctx, tag, m[tag]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
