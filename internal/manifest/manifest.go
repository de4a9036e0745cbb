package manifest

import (
	"blueforge/internal/asset"
	"blueforge/internal/descriptor"
)

// FunctionSignature is one reconstructed function: its name and the encoding
// of its first return/out parameter. An empty encoding means no type
// information was found (the naming heuristic applies); the VOID token means
// the function was confirmed to return nothing.
type FunctionSignature struct {
	Name           string `json:"name"`
	ReturnEncoding string `json:"return_encoding,omitempty"`
	Order          int    `json:"order"`
}

// HasReturn reports whether a stub for this signature should carry a result
// node. A declared encoding wins; with no information the naming heuristic
// decides; confirmed void never gains a return.
func (f FunctionSignature) HasReturn() bool {
	switch f.ReturnEncoding {
	case descriptor.VoidToken:
		return false
	case "":
		return InferReturnFromName(f.Name)
	default:
		return true
	}
}

// VariableDeclaration is a user-editable member variable. Only scalar kinds
// are declared; complex types stay out of scope for variables.
type VariableDeclaration struct {
	Name string          `json:"name"`
	Kind descriptor.Kind `json:"kind"`
}

// ComponentDeclaration is an attached sub-object and its owning class.
type ComponentDeclaration struct {
	Name      string `json:"name"`
	ClassName string `json:"class_name"`
	ClassPath string `json:"class_path,omitempty"`
}

// Manifest is everything extracted from one dump: parent linkage, function
// signatures, variables and components, each list de-duplicated with first
// occurrence winning. Immutable after extraction.
type Manifest struct {
	Parent     asset.ParentRef        `json:"parent"`
	Functions  []FunctionSignature    `json:"functions,omitempty"`
	Variables  []VariableDeclaration  `json:"variables,omitempty"`
	Components []ComponentDeclaration `json:"components,omitempty"`
}

// IsEmpty reports whether nothing was extracted.
func (m *Manifest) IsEmpty() bool {
	return len(m.Functions) == 0 && len(m.Variables) == 0 && len(m.Components) == 0
}
