package dump

import "strings"

// Record type tags observed in reflection dumps.
const (
	ClassDefType = "BlueprintGeneratedClass"
	FunctionType = "Function"
)

// ObjectRef is a nested reference inside a dump record, e.g.
// {"ObjectName": "Class'StaticMeshComponent'", "ObjectPath": "/Game/X/Y.0"}.
type ObjectRef struct {
	ObjectName string `json:"ObjectName"`
	ObjectPath string `json:"ObjectPath,omitempty"`
}

// PropertyRecord describes one reflected property. Container properties nest
// further records: Inner for arrays, KeyProp/ValueProp for maps.
type PropertyRecord struct {
	Type          string          `json:"Type"`
	Name          string          `json:"Name"`
	PropertyFlags string          `json:"PropertyFlags,omitempty"`
	PropertyClass *ObjectRef      `json:"PropertyClass,omitempty"`
	MetaClass     *ObjectRef      `json:"MetaClass,omitempty"`
	Struct        *ObjectRef      `json:"Struct,omitempty"`
	Enum          *ObjectRef      `json:"Enum,omitempty"`
	Inner         *PropertyRecord `json:"Inner,omitempty"`
	KeyProp       *PropertyRecord `json:"KeyProp,omitempty"`
	ValueProp     *PropertyRecord `json:"ValueProp,omitempty"`
}

// Record is one top-level entry of the dump array. Only the fields the
// pipeline reads are declared; everything else in the dump is ignored.
type Record struct {
	Type            string           `json:"Type"`
	Name            string           `json:"Name"`
	Super           *ObjectRef       `json:"Super,omitempty"`
	SuperStruct     *ObjectRef       `json:"SuperStruct,omitempty"`
	Children        []ObjectRef      `json:"Children,omitempty"`
	ChildProperties []PropertyRecord `json:"ChildProperties,omitempty"`
}

// Parameter flag substrings recognized in PropertyFlags.
const (
	FlagReturnParm    = "ReturnParm"
	FlagOutParm       = "OutParm"
	FlagReferenceParm = "ReferenceParm"
	FlagParm          = "Parm"
)

// HasFlag reports whether the free-text flags string contains the given flag.
func (p *PropertyRecord) HasFlag(flag string) bool {
	if p == nil {
		return false
	}
	return strings.Contains(p.PropertyFlags, flag)
}

// IsReturnParameter reports whether this property is the function's return
// value: either flagged as the return parameter, or an out-parameter that is
// not simultaneously pass-by-reference (which denotes a mutable argument).
func (p *PropertyRecord) IsReturnParameter() bool {
	if p == nil {
		return false
	}
	if p.HasFlag(FlagReturnParm) {
		return true
	}
	return p.HasFlag(FlagOutParm) && !p.HasFlag(FlagReferenceParm)
}

// ParseObjectName splits a reference identifier of the form Kind'Inner' into
// its kind tag and inner payload, e.g. "Class'StaticMeshComponent'" into
// ("Class", "StaticMeshComponent"). Returns ok=false when the string does
// not match the grammar.
func ParseObjectName(s string) (kind, inner string, ok bool) {
	open := strings.IndexByte(s, '\'')
	if open <= 0 || !strings.HasSuffix(s, "'") || len(s) < open+2 {
		return "", "", false
	}
	return s[:open], s[open+1 : len(s)-1], true
}

// UbergraphToken marks generated event-graph entry points anywhere in a
// function name.
const UbergraphToken = "ExecuteUbergraph"

// IsUbergraphEntry reports whether the function name belongs to the implicit
// event graph rather than a user-authored function.
func IsUbergraphEntry(name string) bool {
	return strings.Contains(name, UbergraphToken)
}

// FunctionNameOf extracts the function name from a reference of the form
// Kind'Owner:Name'. Embedded spaces are normalized to underscores.
func FunctionNameOf(objectName string) (string, bool) {
	_, inner, ok := ParseObjectName(objectName)
	if !ok {
		return "", false
	}
	colon := strings.IndexByte(inner, ':')
	if colon < 0 {
		return "", false
	}
	name := strings.ReplaceAll(inner[colon+1:], " ", "_")
	if name == "" || name == "None" {
		return "", false
	}
	return name, true
}
