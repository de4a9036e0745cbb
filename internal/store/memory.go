package store

import (
	"context"

	"blueforge/internal/asset"
)

// MemoryStore is an in-process AssetStore used by tests and dry runs.
type MemoryStore struct {
	classes  map[string]*asset.ClassAsset
	structs  map[string]*asset.StructAsset
	packages map[string]struct{}
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		classes:  make(map[string]*asset.ClassAsset),
		structs:  make(map[string]*asset.StructAsset),
		packages: make(map[string]struct{}),
	}
}

func (m *MemoryStore) FindByPath(_ context.Context, path string) (*asset.SymbolRef, error) {
	if a, ok := m.classes[path]; ok {
		ref := a.Ref()
		return &ref, nil
	}
	if s, ok := m.structs[path]; ok {
		ref := s.Ref()
		return &ref, nil
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) LoadClass(_ context.Context, path string) (*asset.ClassAsset, error) {
	a, ok := m.classes[path]
	if !ok {
		return nil, ErrNotFound
	}
	return a, nil
}

func (m *MemoryStore) LoadStruct(_ context.Context, path string) (*asset.StructAsset, error) {
	s, ok := m.structs[path]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

func (m *MemoryStore) CreatePackage(_ context.Context, path string) error {
	m.packages[path] = struct{}{}
	return nil
}

func (m *MemoryStore) SaveClass(_ context.Context, a *asset.ClassAsset) error {
	m.classes[a.Path] = a
	a.Modified = false
	return nil
}

func (m *MemoryStore) SaveStruct(_ context.Context, s *asset.StructAsset) error {
	m.structs[s.Path] = s
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}
