package asset

// NativeClass describes a class compiled into the host environment rather
// than authored as an asset. Functions lists the callable symbols the class
// exposes to subclasses; the duplicate filter treats them as inherited.
type NativeClass struct {
	Name      string
	Path      string
	Functions []string
}

// NativeRegistry maps native namespace paths and bare names to native class
// definitions. It stands in for the host environment's reflection surface;
// lookups are read-only and never load anything.
type NativeRegistry struct {
	byName map[string]*NativeClass
	byPath map[string]*NativeClass
}

// NewNativeRegistry returns a registry pre-seeded with the well-known
// built-in classes the pipeline relies on.
func NewNativeRegistry(engineRoot string) *NativeRegistry {
	r := &NativeRegistry{
		byName: make(map[string]*NativeClass),
		byPath: make(map[string]*NativeClass),
	}
	for _, c := range wellKnown(engineRoot) {
		r.Register(c)
	}
	return r
}

func wellKnown(engineRoot string) []*NativeClass {
	names := []string{
		"Actor",
		"Pawn",
		"Character",
		"ActorComponent",
		"SceneComponent",
		"StaticMeshComponent",
		"SkeletalMeshComponent",
		"Object",
		"UserDefinedStruct",
	}
	out := make([]*NativeClass, 0, len(names))
	for _, n := range names {
		c := &NativeClass{Name: n, Path: engineRoot + "." + n}
		if n == "Actor" || n == "Pawn" || n == "Character" {
			c.Functions = []string{"TakeDamage", "ReceiveBeginPlay", "ReceiveTick", "ReceiveDestroyed"}
		}
		out = append(out, c)
	}
	return out
}

// Register adds or replaces a native class.
func (r *NativeRegistry) Register(c *NativeClass) {
	if c == nil || c.Name == "" {
		return
	}
	r.byName[c.Name] = c
	if c.Path != "" {
		r.byPath[c.Path] = c
	}
}

// Lookup finds a native class by bare name.
func (r *NativeRegistry) Lookup(name string) (*NativeClass, bool) {
	c, ok := r.byName[name]
	return c, ok
}

// LookupPath finds a native class by its namespace path, e.g.
// "/Script/Engine.StaticMeshComponent".
func (r *NativeRegistry) LookupPath(path string) (*NativeClass, bool) {
	c, ok := r.byPath[path]
	return c, ok
}

// Ref returns the symbol handle for a native class.
func (c *NativeClass) Ref() SymbolRef {
	return SymbolRef{Kind: RefNative, Name: c.Name, Path: c.Path}
}
