package asset

// RefKind classifies a resolved symbol handle.
type RefKind string

const (
	RefClass  RefKind = "class"
	RefStruct RefKind = "struct"
	RefEnum   RefKind = "enum"
	RefNative RefKind = "native"
)

// SymbolRef is a concrete handle to a definition in the asset store or the
// native registry. Once produced by resolution it is immutable.
type SymbolRef struct {
	Kind RefKind `json:"kind"`
	Name string  `json:"name"`
	Path string  `json:"path"`
}

// ParentRef designates a class asset's parent: either a named external
// class-asset path, or a native parent class name.
type ParentRef struct {
	Native    bool   `json:"native"`
	Name      string `json:"name"`
	AssetPath string `json:"asset_path,omitempty"`
}

// NativeParent tags a native superclass.
func NativeParent(name string) ParentRef {
	return ParentRef{Native: true, Name: name}
}

// AssetParent references another class asset by path.
func AssetParent(path string) ParentRef {
	return ParentRef{AssetPath: path}
}

func (p ParentRef) String() string {
	if p.Native {
		return "native:" + p.Name
	}
	return p.AssetPath
}

// Variable is a user-editable member variable. Variables are restricted to
// scalar pin types.
type Variable struct {
	Name string  `json:"name"`
	Type PinType `json:"type"`
}

// Component is a named sub-object attached to the construction hierarchy.
type Component struct {
	Name      string `json:"name"`
	ClassName string `json:"class_name"`
	ClassPath string `json:"class_path,omitempty"`
}

// ClassAsset is an editable class definition in the authoring environment:
// function graphs, variables, components and a designated parent.
type ClassAsset struct {
	Name           string           `json:"name"`
	Path           string           `json:"path"`
	Parent         ParentRef        `json:"parent"`
	FunctionGraphs []*FunctionGraph `json:"function_graphs,omitempty"`
	Variables      []Variable       `json:"variables,omitempty"`
	Components     []Component      `json:"components,omitempty"`
	// Modified is signaled after each mutation batch so the persistence
	// collaborator knows the asset needs saving.
	Modified bool `json:"-"`
	// Compiled mirrors the external compiler's up-to-date marker.
	Compiled bool `json:"compiled"`
}

// NewClassAsset creates an empty class asset at the given package path.
func NewClassAsset(name, path string, parent ParentRef) *ClassAsset {
	return &ClassAsset{Name: name, Path: path, Parent: parent}
}

// Ref returns the asset's symbol handle.
func (a *ClassAsset) Ref() SymbolRef {
	return SymbolRef{Kind: RefClass, Name: a.Name, Path: a.Path}
}

// HasFunction reports whether a function graph with the given name exists.
// Matching is exact and case-sensitive.
func (a *ClassAsset) HasFunction(name string) bool {
	for _, g := range a.FunctionGraphs {
		if g != nil && g.Name == name {
			return true
		}
	}
	return false
}

// HasVariable reports whether a variable with the given name is declared.
func (a *ClassAsset) HasVariable(name string) bool {
	for _, v := range a.Variables {
		if v.Name == name {
			return true
		}
	}
	return false
}

// HasComponent reports whether a component with the given name is attached.
func (a *ClassAsset) HasComponent(name string) bool {
	for _, c := range a.Components {
		if c.Name == name {
			return true
		}
	}
	return false
}

// OwnSymbols returns the asset's declared function and variable names.
func (a *ClassAsset) OwnSymbols() map[string]struct{} {
	out := make(map[string]struct{}, len(a.FunctionGraphs)+len(a.Variables))
	for _, g := range a.FunctionGraphs {
		if g != nil {
			out[g.Name] = struct{}{}
		}
	}
	for _, v := range a.Variables {
		out[v.Name] = struct{}{}
	}
	return out
}

// AddFunctionGraph attaches a function graph and marks the asset modified.
func (a *ClassAsset) AddFunctionGraph(g *FunctionGraph) {
	if g == nil {
		return
	}
	a.FunctionGraphs = append(a.FunctionGraphs, g)
	a.Modified = true
	a.Compiled = false
}

// AddVariable declares a member variable and marks the asset modified.
func (a *ClassAsset) AddVariable(v Variable) {
	a.Variables = append(a.Variables, v)
	a.Modified = true
	a.Compiled = false
}

// AddComponent attaches a component and marks the asset modified.
func (a *ClassAsset) AddComponent(c Component) {
	a.Components = append(a.Components, c)
	a.Modified = true
	a.Compiled = false
}

// StructMember is one field of a user-defined struct asset.
type StructMember struct {
	Name string  `json:"name"`
	Type PinType `json:"type"`
}

// StructAsset is a user-defined struct in the asset store.
type StructAsset struct {
	Name    string         `json:"name"`
	Path    string         `json:"path"`
	Members []StructMember `json:"members,omitempty"`
}

// Ref returns the struct asset's symbol handle.
func (s *StructAsset) Ref() SymbolRef {
	return SymbolRef{Kind: RefStruct, Name: s.Name, Path: s.Path}
}
