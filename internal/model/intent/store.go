package intent

import (
	"fmt"
	"slices"

	"github.com/elliotchance/pie/v2"
)

// Store exposes read-only catalog lookups.
type Store interface {
	List() []Intent
	FindByTag(tag string) []Intent
	Tags() []string
}

// MemoryStore implements Store with an in-memory slice. The catalog is
// fixed after construction.
type MemoryStore struct {
	items []Intent
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied intents.
// Tags must be unique.
func NewMemoryStore(items []Intent) (*MemoryStore, error) {
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item.Tag == "" {
			return nil, fmt.Errorf("intent with empty tag")
		}
		if _, dup := seen[item.Tag]; dup {
			return nil, fmt.Errorf("duplicate intent tag %q", item.Tag)
		}
		seen[item.Tag] = struct{}{}
	}
	return &MemoryStore{items: slices.Clone(items)}, nil
}

// MustMemoryStore is NewMemoryStore for catalogs known to be valid, such as Seed.
func MustMemoryStore(items []Intent) *MemoryStore {
	store, err := NewMemoryStore(items)
	if err != nil {
		panic(err)
	}
	return store
}

// List returns the catalog in file order.
func (s *MemoryStore) List() []Intent {
	return slices.Clone(s.items)
}

// FindByTag returns every entry whose tag matches exactly.
func (s *MemoryStore) FindByTag(tag string) []Intent {
	return pie.Filter(s.items, func(item Intent) bool {
		return item.Tag == tag
	})
}

// Tags returns the catalog tags in file order.
func (s *MemoryStore) Tags() []string {
	return pie.Map(s.items, func(item Intent) string {
		return item.Tag
	})
}
