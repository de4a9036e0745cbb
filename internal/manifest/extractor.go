package manifest

import (
	"context"
	"strings"

	"blueforge/internal/asset"
	"blueforge/internal/descriptor"
	"blueforge/internal/diag"
	"blueforge/internal/dump"
	"blueforge/internal/resolver"
)

const stageExtract = "manifest_extract"

// generatedPrefixes identify internally generated helper properties that are
// neither variables nor components.
var generatedPrefixes = []string{
	"UberGraphFrame",
	"CallFunc_",
	"K2Node_",
	"Temp_",
}

// Extractor walks parsed dump records and builds a Manifest.
type Extractor struct {
	res            *resolver.Resolver
	componentToken string
	defaultParent  string
}

// NewExtractor creates an extractor. componentToken is the substring that
// marks an object property's class as a component family member;
// defaultParent names the native class used when the dump declares none.
func NewExtractor(res *resolver.Resolver, componentToken, defaultParent string) *Extractor {
	return &Extractor{
		res:            res,
		componentToken: componentToken,
		defaultParent:  defaultParent,
	}
}

// Extract builds a Manifest from the dump records. A dump without a
// class-definition record yields an empty valid manifest with the default
// parent; only the dump reader can fail structurally before this point.
func (e *Extractor) Extract(ctx context.Context, records []dump.Record) (*Manifest, diag.List) {
	var diags diag.List

	m := &Manifest{Parent: asset.NativeParent(e.defaultParent)}

	def := dump.ClassDef(records)
	if def == nil {
		diags.Add(diag.New("no_class_definition", stageExtract, diag.SeverityInfo,
			"dump carries no class-definition record"))
		return m, diags
	}

	m.Parent = e.extractParent(def)
	e.extractFunctions(def, m)
	e.extractProperties(def, m, &diags)
	e.correlateReturns(ctx, records, m, &diags)

	return m, diags
}

// extractParent prefers an explicit parent-asset reference; a native
// superclass name is the fallback, tagged so downstream never treats it as
// an asset path.
func (e *Extractor) extractParent(def *dump.Record) asset.ParentRef {
	if def.Super != nil && def.Super.ObjectPath != "" {
		return asset.AssetParent(def.Super.ObjectPath)
	}
	if def.SuperStruct != nil {
		if _, name, ok := dump.ParseObjectName(def.SuperStruct.ObjectName); ok && name != "" {
			return asset.NativeParent(name)
		}
	}
	return asset.NativeParent(e.defaultParent)
}

func (e *Extractor) extractFunctions(def *dump.Record, m *Manifest) {
	seen := make(map[string]bool)
	for _, child := range def.Children {
		name, ok := dump.FunctionNameOf(child.ObjectName)
		if !ok || seen[name] || dump.IsUbergraphEntry(name) {
			continue
		}
		seen[name] = true
		m.Functions = append(m.Functions, FunctionSignature{Name: name, Order: len(m.Functions)})
	}
}

func (e *Extractor) extractProperties(def *dump.Record, m *Manifest, diags *diag.List) {
	seenComponents := make(map[string]bool)
	seenVariables := make(map[string]bool)

	for i := range def.ChildProperties {
		prop := &def.ChildProperties[i]
		if prop.Name == "" || isGenerated(prop.Name) {
			continue
		}

		kind := descriptor.Kind(prop.Type)
		switch {
		case kind == descriptor.KindObject && e.componentClassOf(prop) != "":
			if seenComponents[prop.Name] {
				continue
			}
			seenComponents[prop.Name] = true
			m.Components = append(m.Components, ComponentDeclaration{
				Name:      prop.Name,
				ClassName: e.componentClassOf(prop),
				ClassPath: objectPathOf(prop.PropertyClass),
			})

		case descriptor.IsScalarKind(kind):
			if seenVariables[prop.Name] {
				continue
			}
			seenVariables[prop.Name] = true
			m.Variables = append(m.Variables, VariableDeclaration{Name: prop.Name, Kind: kind})

		default:
			diags.Add(diag.New("property_ignored", stageExtract, diag.SeverityInfo,
				"property type outside the recognized set").WithDetail(prop.Name + ":" + prop.Type))
		}
	}
}

// componentClassOf returns the property's class name when it belongs to the
// component family, else "".
func (e *Extractor) componentClassOf(prop *dump.PropertyRecord) string {
	if prop.PropertyClass == nil {
		return ""
	}
	_, name, ok := dump.ParseObjectName(prop.PropertyClass.ObjectName)
	if !ok || !strings.Contains(name, e.componentToken) {
		return ""
	}
	return name
}

// correlateReturns scans the separate function-definition records and
// attaches each function's return-type encoding to the matching signature.
// Functions with a definition record but no qualifying parameter are
// confirmed void; functions without a definition record keep the empty
// encoding and stay open to the naming heuristic.
func (e *Extractor) correlateReturns(ctx context.Context, records []dump.Record, m *Manifest, diags *diag.List) {
	returns := make(map[string]string)

	for i := range records {
		rec := &records[i]
		if rec.Type != dump.FunctionType || rec.Name == "" {
			continue
		}
		name := strings.ReplaceAll(rec.Name, " ", "_")

		encoding := descriptor.VoidToken
		for j := range rec.ChildProperties {
			prop := &rec.ChildProperties[j]
			if !prop.IsReturnParameter() {
				continue
			}
			d := e.descriptorFor(ctx, prop, diags)
			encoding = descriptor.Encode(d)
			break
		}
		returns[name] = encoding
	}

	for i := range m.Functions {
		if enc, ok := returns[m.Functions[i].Name]; ok {
			m.Functions[i].ReturnEncoding = enc
		}
	}
}

// descriptorFor builds the full type descriptor for a property, including
// one level of array/map nesting.
func (e *Extractor) descriptorFor(ctx context.Context, prop *dump.PropertyRecord, diags *diag.List) descriptor.TypeDescriptor {
	switch descriptor.Kind(prop.Type) {
	case descriptor.KindArray:
		if prop.Inner == nil {
			diags.Add(diag.New("array_missing_inner", stageExtract, diag.SeverityWarning,
				"array property carries no inner record").WithDetail(prop.Name))
			return descriptor.Unknown(descriptor.KindArray)
		}
		return descriptor.Array(e.leafFor(prop.Inner))

	case descriptor.KindMap:
		if prop.KeyProp == nil || prop.ValueProp == nil {
			diags.Add(diag.New("map_missing_terminals", stageExtract, diag.SeverityWarning,
				"map property is missing key or value records").WithDetail(prop.Name))
			return descriptor.Unknown(descriptor.KindMap)
		}
		key := e.leafFor(prop.KeyProp)
		value := e.leafFor(prop.ValueProp)
		e.checkMapTerminal(ctx, key, diags)
		e.checkMapTerminal(ctx, value, diags)
		// Map encodings carry names only; paths are recovered at pin build.
		key.Path = ""
		value.Path = ""
		return descriptor.Map(key, value)

	default:
		return e.leafFor(prop)
	}
}

func (e *Extractor) leafFor(prop *dump.PropertyRecord) descriptor.TypeDescriptor {
	kind := descriptor.Kind(prop.Type)
	switch {
	case descriptor.IsScalarKind(kind):
		return descriptor.Scalar(kind)
	case kind == descriptor.KindStruct:
		name, path := refOf(prop.Struct)
		return descriptor.Struct(name, path)
	case kind == descriptor.KindEnum:
		name, path := refOf(prop.Enum)
		return descriptor.Enum(name, path)
	case kind == descriptor.KindClass || kind == descriptor.KindSoftClass:
		name, path := refOf(prop.MetaClass)
		return descriptor.ObjectRef(kind, name, path)
	case descriptor.IsObjectRefKind(kind):
		name, path := refOf(prop.PropertyClass)
		return descriptor.ObjectRef(kind, name, path)
	case kind == descriptor.KindDelegate || kind == descriptor.KindMulticastDelegate:
		return descriptor.TypeDescriptor{Class: descriptor.ClassDelegate, Kind: kind}
	default:
		return descriptor.Unknown(kind)
	}
}

// checkMapTerminal probes resolution for a named map key/value so that
// misses surface during extraction instead of silently at build time.
func (e *Extractor) checkMapTerminal(ctx context.Context, d descriptor.TypeDescriptor, diags *diag.List) {
	if e.res == nil || d.Name == "" {
		return
	}
	kind := asset.RefClass
	switch d.Class {
	case descriptor.ClassStruct:
		kind = asset.RefStruct
	case descriptor.ClassEnum:
		kind = asset.RefEnum
	}
	res := e.res.Resolve(ctx, kind, d.Name, d.Path)
	if !res.Resolved {
		diags.Add(diag.New("map_terminal_unresolved", stageExtract, diag.SeverityWarning,
			"map key/value type not found in any candidate namespace").
			WithDetail(d.Name + " tried " + strings.Join(res.TriedPaths, ", ")))
	}
}

func isGenerated(name string) bool {
	for _, p := range generatedPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

func refOf(ref *dump.ObjectRef) (name, path string) {
	if ref == nil {
		return "", ""
	}
	if _, inner, ok := dump.ParseObjectName(ref.ObjectName); ok {
		name = inner
	} else {
		name = ref.ObjectName
	}
	return name, ref.ObjectPath
}

func objectPathOf(ref *dump.ObjectRef) string {
	if ref == nil {
		return ""
	}
	return ref.ObjectPath
}
