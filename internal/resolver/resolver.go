package resolver

import (
	"context"
	"strings"

	"blueforge/internal/asset"
	"blueforge/internal/store"
)

// Options configures the candidate-path search. The lists are ordered;
// earlier entries win.
type Options struct {
	// ContentRoots are asset-store roots tried for user-defined names.
	ContentRoots []string
	// NativeRoots are native namespace prefixes, e.g. /Script/Engine.
	NativeRoots []string
	// UserPrefixes mark a bare name as user-defined when it starts with one.
	UserPrefixes []string
	// UserTokens mark a bare name as user-defined when it contains one.
	UserTokens []string
	// EngineRoot names the namespace placeholder symbols resolve under.
	EngineRoot string
}

// DefaultOptions returns the conventional search lists.
func DefaultOptions() Options {
	return Options{
		ContentRoots: []string{"/Game/Blueprints", "/Game"},
		NativeRoots:  []string{"/Script/Engine", "/Script/CoreUObject"},
		UserPrefixes: []string{"BP_"},
		EngineRoot:   "/Script/Engine",
	}
}

// Request is one symbol lookup.
type Request struct {
	Kind     asset.RefKind
	Name     string
	PathHint string
}

// Resolution is the outcome of a lookup. Resolution never fails the caller:
// an unresolved result carries the attempted paths for diagnostics and the
// caller substitutes a placeholder.
type Resolution struct {
	Resolved   bool
	Ref        asset.SymbolRef
	Requested  string
	TriedPaths []string
}

// Strategy is one stage of the candidate search.
type Strategy interface {
	Name() string
	// Lookup returns the resolved ref, the paths it tried, and a hit flag.
	Lookup(ctx context.Context, req Request) (asset.SymbolRef, []string, bool)
}

// Resolver runs an ordered strategy chain, stopping at the first hit.
type Resolver struct {
	strategies []Strategy
	opts       Options
}

// New builds the default chain: origin-path hint, user content roots,
// native namespaces.
func New(st store.AssetStore, natives *asset.NativeRegistry, opts Options) *Resolver {
	return &Resolver{
		opts: opts,
		strategies: []Strategy{
			&hintStrategy{store: st},
			&contentStrategy{store: st, opts: opts},
			&nativeStrategy{natives: natives, opts: opts},
		},
	}
}

// NewWithStrategies builds a resolver over an explicit chain; tests use this
// to substitute fixed symbol tables.
func NewWithStrategies(opts Options, strategies ...Strategy) *Resolver {
	return &Resolver{strategies: strategies, opts: opts}
}

// Resolve maps a bare name to a concrete definition. It never raises; the
// only externally visible effect is read-only store lookups.
func (r *Resolver) Resolve(ctx context.Context, kind asset.RefKind, name, pathHint string) Resolution {
	res := Resolution{Requested: name}
	if name == "" {
		return res
	}

	req := Request{Kind: kind, Name: name, PathHint: pathHint}
	for _, s := range r.strategies {
		ref, tried, ok := s.Lookup(ctx, req)
		res.TriedPaths = append(res.TriedPaths, tried...)
		if ok {
			res.Resolved = true
			res.Ref = ref
			return res
		}
	}
	return res
}

// Placeholder returns the generic stand-in of the same structural kind used
// when resolution misses, so downstream pin types stay valid.
func (r *Resolver) Placeholder(kind asset.RefKind) asset.SymbolRef {
	name := "Object"
	switch kind {
	case asset.RefStruct:
		name = "Struct"
	case asset.RefEnum:
		name = "Enum"
	}
	return asset.SymbolRef{Kind: asset.RefNative, Name: name, Path: r.opts.EngineRoot + "." + name}
}

// StripObjectSuffix removes a trailing numeric object suffix from a dump
// path, e.g. /Game/X/Bullet.0 becomes /Game/X/Bullet.
func StripObjectSuffix(path string) string {
	dot := strings.LastIndexByte(path, '.')
	if dot < 0 {
		return path
	}
	suffix := path[dot+1:]
	if suffix == "" {
		return path[:dot]
	}
	for _, c := range suffix {
		if c < '0' || c > '9' {
			return path
		}
	}
	return path[:dot]
}

// NormalizeAssetPath turns a dump object path into the canonical asset
// reference, e.g. /Game/X/BP_Y.0 becomes /Game/X/BP_Y.BP_Y. Paths that
// already reference their asset are returned unchanged.
func NormalizeAssetPath(path string) string {
	if path == "" {
		return ""
	}
	base := StripObjectSuffix(path)
	if base == path && strings.Contains(base, ".") {
		return path
	}
	name := base[strings.LastIndexByte(base, '/')+1:]
	if name == "" {
		return base
	}
	return base + "." + name
}

// AssetNameOf maps a reflected class name to its asset name by dropping the
// generated-class suffix, e.g. BP_Item_C becomes BP_Item.
func AssetNameOf(className string) string {
	return strings.TrimSuffix(className, "_C")
}

// hintStrategy tries the origin-path hint attached to the descriptor:
// first a registry lookup, then a loading lookup at the same path.
type hintStrategy struct {
	store store.AssetStore
}

func (s *hintStrategy) Name() string { return "origin_hint" }

func (s *hintStrategy) Lookup(ctx context.Context, req Request) (asset.SymbolRef, []string, bool) {
	if req.PathHint == "" {
		return asset.SymbolRef{}, nil, false
	}
	base := StripObjectSuffix(req.PathHint)
	candidate := base + "." + AssetNameOf(req.Name)

	if ref, err := s.store.FindByPath(ctx, candidate); err == nil {
		return *ref, []string{candidate}, true
	}
	if ref, ok := loadAt(ctx, s.store, req.Kind, candidate); ok {
		return ref, []string{candidate}, true
	}
	return asset.SymbolRef{}, []string{candidate}, false
}

// contentStrategy tries conventional content roots for names that match the
// user-defined naming convention.
type contentStrategy struct {
	store store.AssetStore
	opts  Options
}

func (s *contentStrategy) Name() string { return "content_roots" }

func (s *contentStrategy) Lookup(ctx context.Context, req Request) (asset.SymbolRef, []string, bool) {
	if !s.isUserDefined(req.Name) {
		return asset.SymbolRef{}, nil, false
	}
	base := AssetNameOf(req.Name)

	var tried []string
	for _, root := range s.opts.ContentRoots {
		candidate := root + "/" + base + "." + base
		tried = append(tried, candidate)
		if ref, err := s.store.FindByPath(ctx, candidate); err == nil {
			return *ref, tried, true
		}
		if ref, ok := loadAt(ctx, s.store, req.Kind, candidate); ok {
			return ref, tried, true
		}
	}
	return asset.SymbolRef{}, tried, false
}

func (s *contentStrategy) isUserDefined(name string) bool {
	for _, p := range s.opts.UserPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	for _, t := range s.opts.UserTokens {
		if strings.Contains(name, t) {
			return true
		}
	}
	return false
}

// nativeStrategy tries the native namespace candidates against the registry.
type nativeStrategy struct {
	natives *asset.NativeRegistry
	opts    Options
}

func (s *nativeStrategy) Name() string { return "native_roots" }

func (s *nativeStrategy) Lookup(ctx context.Context, req Request) (asset.SymbolRef, []string, bool) {
	if s.natives == nil {
		return asset.SymbolRef{}, nil, false
	}
	var tried []string
	for _, root := range s.opts.NativeRoots {
		candidate := root + "." + req.Name
		tried = append(tried, candidate)
		if c, ok := s.natives.LookupPath(candidate); ok {
			return c.Ref(), tried, true
		}
	}
	return asset.SymbolRef{}, tried, false
}

func loadAt(ctx context.Context, st store.AssetStore, kind asset.RefKind, path string) (asset.SymbolRef, bool) {
	switch kind {
	case asset.RefStruct:
		if s, err := st.LoadStruct(ctx, path); err == nil {
			return s.Ref(), true
		}
	default:
		if a, err := st.LoadClass(ctx, path); err == nil {
			return a.Ref(), true
		}
	}
	return asset.SymbolRef{}, false
}
