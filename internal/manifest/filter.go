package manifest

// SymbolSet is a set of declared symbol names.
type SymbolSet map[string]struct{}

// NewSymbolSet builds a set from names.
func NewSymbolSet(names ...string) SymbolSet {
	s := make(SymbolSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Has reports membership. Matching is exact and case-sensitive; there is no
// signature-based overload resolution.
func (s SymbolSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Merge adds all names from other.
func (s SymbolSet) Merge(other SymbolSet) {
	for n := range other {
		s[n] = struct{}{}
	}
}

// Filter returns a manifest holding only entries that do not collide with
// the target's own or inherited symbols. Functions and variables are
// filtered; components pass through unfiltered because component attachment
// does not shadow inherited components. Pure; the inputs are not mutated.
func Filter(m *Manifest, own, inherited SymbolSet) *Manifest {
	out := &Manifest{Parent: m.Parent}

	for _, f := range m.Functions {
		if own.Has(f.Name) || inherited.Has(f.Name) {
			continue
		}
		out.Functions = append(out.Functions, f)
	}
	for _, v := range m.Variables {
		if own.Has(v.Name) || inherited.Has(v.Name) {
			continue
		}
		out.Variables = append(out.Variables, v)
	}

	out.Components = append(out.Components, m.Components...)
	return out
}
