package descriptor

// Kind is the primary type tag of a descriptor field, matching the property
// kind tags used by the reflection dump.
type Kind string

const (
	KindBool   Kind = "BoolProperty"
	KindByte   Kind = "ByteProperty"
	KindInt    Kind = "IntProperty"
	KindInt64  Kind = "Int64Property"
	KindFloat  Kind = "FloatProperty"
	KindDouble Kind = "DoubleProperty"
	KindString Kind = "StrProperty"
	KindName   Kind = "NameProperty"
	KindText   Kind = "TextProperty"

	KindStruct Kind = "StructProperty"
	KindEnum   Kind = "EnumProperty"

	KindObject     Kind = "ObjectProperty"
	KindClass      Kind = "ClassProperty"
	KindSoftObject Kind = "SoftObjectProperty"
	KindSoftClass  Kind = "SoftClassProperty"
	KindWeakObject Kind = "WeakObjectProperty"
	KindInterface  Kind = "InterfaceProperty"

	KindDelegate          Kind = "DelegateProperty"
	KindMulticastDelegate Kind = "MulticastDelegateProperty"

	KindArray Kind = "ArrayProperty"
	KindMap   Kind = "MapProperty"
)

// Class partitions descriptors into their structural variants.
type Class int

const (
	// ClassWildcard is the descriptor of an empty encoding: no type
	// information at all. Distinct from ClassVoid.
	ClassWildcard Class = iota
	// ClassVoid is a confirmed "no return value", encoded as the literal
	// VOID token.
	ClassVoid
	ClassScalar
	ClassStruct
	ClassEnum
	ClassObjectRef
	ClassDelegate
	ClassArray
	ClassMap
	// ClassUnknown covers any unrecognized kind tag; decoding stays total.
	ClassUnknown
)

// VoidToken is the reserved encoding for a confirmed absent return value.
const VoidToken = "VOID"

// Separator joins encoded descriptor fields.
const Separator = "|"

// TypeDescriptor is the structured form of one pipe-delimited type encoding.
// Only the innermost descriptor of a container carries name/path resolution
// data; Array and Map never nest further containers.
type TypeDescriptor struct {
	Class Class
	Kind  Kind
	// Name is the bare struct/class/enum name, when the kind carries one.
	Name string
	// Path is the origin-path hint consumed later by symbol resolution.
	Path string

	Inner *TypeDescriptor // array element
	Key   *TypeDescriptor // map key
	Value *TypeDescriptor // map value
}

// Wildcard returns the no-information descriptor.
func Wildcard() TypeDescriptor {
	return TypeDescriptor{Class: ClassWildcard}
}

// Void returns the confirmed-no-return descriptor.
func Void() TypeDescriptor {
	return TypeDescriptor{Class: ClassVoid}
}

// Scalar returns a descriptor for a plain scalar kind.
func Scalar(kind Kind) TypeDescriptor {
	return TypeDescriptor{Class: ClassScalar, Kind: kind}
}

// Struct returns a struct descriptor with an optional origin path hint.
func Struct(name, path string) TypeDescriptor {
	return TypeDescriptor{Class: ClassStruct, Kind: KindStruct, Name: name, Path: path}
}

// Enum returns an enum descriptor.
func Enum(name, path string) TypeDescriptor {
	return TypeDescriptor{Class: ClassEnum, Kind: KindEnum, Name: name, Path: path}
}

// ObjectRef returns an object/class reference descriptor of the given
// reference kind.
func ObjectRef(kind Kind, className, path string) TypeDescriptor {
	return TypeDescriptor{Class: ClassObjectRef, Kind: kind, Name: className, Path: path}
}

// Array wraps an element descriptor.
func Array(inner TypeDescriptor) TypeDescriptor {
	return TypeDescriptor{Class: ClassArray, Kind: KindArray, Inner: &inner}
}

// Map pairs key and value descriptors.
func Map(key, value TypeDescriptor) TypeDescriptor {
	return TypeDescriptor{Class: ClassMap, Kind: KindMap, Key: &key, Value: &value}
}

// Unknown preserves an unrecognized kind tag.
func Unknown(kind Kind) TypeDescriptor {
	return TypeDescriptor{Class: ClassUnknown, Kind: kind}
}

// IsEmpty reports whether the descriptor carries no type information
// (wildcard), as opposed to a confirmed void.
func (d TypeDescriptor) IsEmpty() bool {
	return d.Class == ClassWildcard
}

// IsVoid reports a confirmed absent return value.
func (d TypeDescriptor) IsVoid() bool {
	return d.Class == ClassVoid
}

// Equal compares two descriptors structurally.
func (d TypeDescriptor) Equal(other TypeDescriptor) bool {
	if d.Class != other.Class || d.Kind != other.Kind || d.Name != other.Name || d.Path != other.Path {
		return false
	}
	if !equalPtr(d.Inner, other.Inner) {
		return false
	}
	if !equalPtr(d.Key, other.Key) {
		return false
	}
	return equalPtr(d.Value, other.Value)
}

func equalPtr(a, b *TypeDescriptor) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

var scalarKinds = map[Kind]bool{
	KindBool:   true,
	KindByte:   true,
	KindInt:    true,
	KindInt64:  true,
	KindFloat:  true,
	KindDouble: true,
	KindString: true,
	KindName:   true,
	KindText:   true,
}

var objectRefKinds = map[Kind]bool{
	KindObject:     true,
	KindClass:      true,
	KindSoftObject: true,
	KindSoftClass:  true,
	KindWeakObject: true,
	KindInterface:  true,
}

// IsScalarKind reports whether the kind belongs to the recognized scalar set.
// Variables are restricted to this set.
func IsScalarKind(kind Kind) bool {
	return scalarKinds[kind]
}

// IsObjectRefKind reports whether the kind denotes an object/class reference.
func IsObjectRefKind(kind Kind) bool {
	return objectRefKinds[kind]
}
