package store

import (
	"context"
	"errors"

	"blueforge/internal/asset"
)

// ErrNotFound is returned when no asset exists at the requested path.
var ErrNotFound = errors.New("asset not found")

// AssetStore is the persistence capability of the authoring environment.
// The pipeline never touches storage directly, only this interface, so tests
// can substitute a fixed in-memory symbol table.
type AssetStore interface {
	// FindByPath looks a path up in the registry without loading the asset.
	// Returns ErrNotFound when nothing is registered at the path.
	FindByPath(ctx context.Context, path string) (*asset.SymbolRef, error)

	// LoadClass loads the full class asset at the path.
	LoadClass(ctx context.Context, path string) (*asset.ClassAsset, error)

	// LoadStruct loads the user-defined struct asset at the path.
	LoadStruct(ctx context.Context, path string) (*asset.StructAsset, error)

	// CreatePackage registers a destination package path.
	CreatePackage(ctx context.Context, path string) error

	// SaveClass persists a class asset and clears its modified marker.
	SaveClass(ctx context.Context, a *asset.ClassAsset) error

	// SaveStruct persists a user-defined struct asset.
	SaveStruct(ctx context.Context, s *asset.StructAsset) error

	Close() error
}
