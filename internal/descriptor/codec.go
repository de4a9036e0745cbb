package descriptor

import (
	"fmt"
	"strings"

	"blueforge/internal/diag"
)

const stageDecode = "descriptor_decode"

// Decode parses a pipe-delimited type encoding into a TypeDescriptor.
// Decoding is total: malformed or unrecognized encodings degrade to Unknown
// with a diagnostic rather than failing the caller. The empty string decodes
// to the wildcard descriptor and the literal VOID token to the confirmed
// void descriptor.
func Decode(raw string) (TypeDescriptor, diag.List) {
	var diags diag.List

	if raw == "" {
		return Wildcard(), diags
	}
	if raw == VoidToken {
		return Void(), diags
	}

	fields := strings.Split(raw, Separator)
	kind := Kind(fields[0])

	switch kind {
	case KindArray:
		if len(fields) < 2 || fields[1] == "" {
			diags.Add(diag.New("array_missing_inner", stageDecode, diag.SeverityWarning,
				"array encoding carries no inner kind").WithDetail(raw))
			return Unknown(kind), diags
		}
		inner, innerDiags := decodeLeaf(fields[1:])
		diags.Merge(innerDiags)
		return Array(inner), diags

	case KindMap:
		if len(fields) < 3 {
			diags.Add(diag.New("map_missing_fields", stageDecode, diag.SeverityWarning,
				fmt.Sprintf("map encoding needs at least 3 fields, got %d", len(fields))).WithDetail(raw))
			return Unknown(kind), diags
		}
		key, keyDiags := decodeLeaf([]string{fields[1], field(fields, 3)})
		diags.Merge(keyDiags)
		value, valueDiags := decodeLeaf([]string{fields[2], field(fields, 4)})
		diags.Merge(valueDiags)
		return Map(key, value), diags

	default:
		d, leafDiags := decodeLeaf(fields)
		diags.Merge(leafDiags)
		return d, diags
	}
}

// decodeLeaf interprets a non-container field list positionally: kind tag,
// optional bare name, optional origin path.
func decodeLeaf(fields []string) (TypeDescriptor, diag.List) {
	var diags diag.List

	kind := Kind(fields[0])
	name := field(fields, 1)
	path := field(fields, 2)

	switch {
	case IsScalarKind(kind):
		return Scalar(kind), diags
	case kind == KindStruct:
		return Struct(name, path), diags
	case kind == KindEnum:
		return Enum(name, path), diags
	case IsObjectRefKind(kind):
		return ObjectRef(kind, name, path), diags
	case kind == KindDelegate || kind == KindMulticastDelegate:
		return TypeDescriptor{Class: ClassDelegate, Kind: kind}, diags
	default:
		diags.Add(diag.New("unknown_kind", stageDecode, diag.SeverityInfo,
			"unrecognized kind tag").WithDetail(string(kind)))
		return Unknown(kind), diags
	}
}

// Encode renders a descriptor back into its pipe-delimited form. Encode is
// the left inverse of Decode for every descriptor Decode can produce.
func Encode(d TypeDescriptor) string {
	switch d.Class {
	case ClassWildcard:
		return ""
	case ClassVoid:
		return VoidToken
	case ClassArray:
		if d.Inner == nil {
			return string(KindArray)
		}
		return string(KindArray) + Separator + Encode(*d.Inner)
	case ClassMap:
		if d.Key == nil || d.Value == nil {
			return string(KindMap)
		}
		fields := []string{string(KindMap), string(d.Key.Kind), string(d.Value.Kind)}
		if d.Key.Name != "" || d.Value.Name != "" {
			fields = append(fields, d.Key.Name)
		}
		if d.Value.Name != "" {
			fields = append(fields, d.Value.Name)
		}
		return strings.Join(fields, Separator)
	default:
		return encodeLeaf(d)
	}
}

func encodeLeaf(d TypeDescriptor) string {
	fields := []string{string(d.Kind)}
	if d.Name != "" || d.Path != "" {
		fields = append(fields, d.Name)
	}
	if d.Path != "" {
		fields = append(fields, d.Path)
	}
	return strings.Join(fields, Separator)
}

func field(fields []string, i int) string {
	if i < len(fields) {
		return fields[i]
	}
	return ""
}
