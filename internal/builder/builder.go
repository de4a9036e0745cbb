package builder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"blueforge/internal/asset"
	"blueforge/internal/descriptor"
	"blueforge/internal/diag"
	"blueforge/internal/manifest"
	"blueforge/internal/resolver"
)

const stageBuild = "graph_build"

// Fixed node positions for the entry/result markers.
const (
	entryPosX  = -200
	resultPosX = 200
)

var (
	ErrInvalidName           = errors.New("invalid function name")
	ErrUnsupportedKind       = errors.New("unsupported variable kind")
	ErrUnknownComponentClass = errors.New("component class not found")
)

// Builder materializes manifest entries into the target class asset:
// function graphs with typed pins, member variables and components.
type Builder struct {
	res     *resolver.Resolver
	natives *asset.NativeRegistry
}

// New creates a builder over the given resolver and native registry.
func New(res *resolver.Resolver, natives *asset.NativeRegistry) *Builder {
	return &Builder{res: res, natives: natives}
}

// BuildFunctionGraph creates one function graph on the target: an entry node
// bound to the function name and, when hasReturn is set, a result node with
// a single ReturnValue data pin wired to the entry by an execution link.
// Callers decide hasReturn from the signature's declared encoding or the
// naming heuristic. Pin-type construction never blocks stub creation;
// malformed encodings degrade to a wildcard pin.
func (b *Builder) BuildFunctionGraph(ctx context.Context, sig manifest.FunctionSignature, hasReturn bool, target *asset.ClassAsset) (diag.List, error) {
	var diags diag.List

	if target == nil {
		return diags, errors.New("target asset is nil")
	}
	if sig.Name == "" || sig.Name == "None" {
		return diags, fmt.Errorf("%w: %q", ErrInvalidName, sig.Name)
	}

	g := asset.NewFunctionGraph(sig.Name)

	entry := g.AddNode(asset.NodeEntry, entryPosX, 0)
	entry.GeneratedSignature = sig.Name
	thenPin := entry.AddPin(asset.PinNameThen, asset.PinOutput, asset.ExecType())

	if hasReturn {
		result := g.AddNode(asset.NodeResult, resultPosX, 0)
		execPin := result.AddPin(asset.PinNameExecute, asset.PinInput, asset.ExecType())

		d, decodeDiags := descriptor.Decode(sig.ReturnEncoding)
		diags.Merge(decodeDiags)

		pinType, pinDiags := b.pinTypeFor(ctx, d)
		diags.Merge(pinDiags)
		result.AddPin(asset.PinNameReturnValue, asset.PinInput, pinType)

		g.Connect(thenPin, execPin)
	}

	target.AddFunctionGraph(g)
	return diags, nil
}

// DeclareVariable adds a scalar member variable. Unsupported kinds are a
// per-item failure, reported but never fatal to a batch.
func (b *Builder) DeclareVariable(name string, kind descriptor.Kind, target *asset.ClassAsset) (diag.List, error) {
	var diags diag.List

	if target == nil {
		return diags, errors.New("target asset is nil")
	}
	if !descriptor.IsScalarKind(kind) {
		diags.Add(diag.New("variable_kind_skipped", stageBuild, diag.SeverityWarning,
			"variable kind outside the supported scalar set").WithDetail(name+":"+string(kind)))
		return diags, fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
	}

	target.AddVariable(asset.Variable{
		Name: name,
		Type: asset.PinType{Category: scalarCategory(kind)},
	})
	return diags, nil
}

// AttachComponent attaches one named sub-object. The class is resolved from
// the fixed well-known table first, then by generic native lookup; a class
// that resolves nowhere fails this component only.
func (b *Builder) AttachComponent(ctx context.Context, name, className string, target *asset.ClassAsset) (diag.List, error) {
	var diags diag.List

	if target == nil {
		return diags, errors.New("target asset is nil")
	}

	if c, ok := b.natives.Lookup(className); ok {
		target.AddComponent(asset.Component{Name: name, ClassName: c.Name, ClassPath: c.Path})
		return diags, nil
	}

	res := b.res.Resolve(ctx, asset.RefClass, className, "")
	if !res.Resolved {
		diags.Add(diag.New("component_class_unresolved", stageBuild, diag.SeverityWarning,
			"component class not found").WithDetail(className+" tried "+strings.Join(res.TriedPaths, ", ")))
		return diags, fmt.Errorf("%w: %s", ErrUnknownComponentClass, className)
	}

	target.AddComponent(asset.Component{Name: name, ClassName: res.Ref.Name, ClassPath: res.Ref.Path})
	return diags, nil
}

// pinTypeFor maps a decoded descriptor to a concrete pin type, resolving
// struct/class/enum names through the candidate-path search. Unresolved
// complex types degrade to the generic placeholder of the same structural
// kind; unknown descriptors degrade to a wildcard pin.
func (b *Builder) pinTypeFor(ctx context.Context, d descriptor.TypeDescriptor) (asset.PinType, diag.List) {
	var diags diag.List

	switch d.Class {
	case descriptor.ClassScalar:
		return asset.PinType{Category: scalarCategory(d.Kind)}, diags

	case descriptor.ClassStruct:
		return b.resolvedPinType(ctx, asset.PinStruct, asset.RefStruct, d, &diags), diags

	case descriptor.ClassEnum:
		return b.resolvedPinType(ctx, asset.PinEnum, asset.RefEnum, d, &diags), diags

	case descriptor.ClassObjectRef:
		return b.resolvedPinType(ctx, objectCategory(d.Kind), asset.RefClass, d, &diags), diags

	case descriptor.ClassDelegate:
		return asset.PinType{Category: asset.PinDelegate}, diags

	case descriptor.ClassArray:
		if d.Inner == nil {
			return asset.WildcardType(), diags
		}
		inner, innerDiags := b.pinTypeFor(ctx, *d.Inner)
		diags.Merge(innerDiags)
		inner.Container = asset.ContainerArray
		return inner, diags

	case descriptor.ClassMap:
		if d.Key == nil || d.Value == nil {
			return asset.WildcardType(), diags
		}
		key, keyDiags := b.pinTypeFor(ctx, *d.Key)
		diags.Merge(keyDiags)
		value, valueDiags := b.pinTypeFor(ctx, *d.Value)
		diags.Merge(valueDiags)
		key.Container = asset.ContainerMap
		key.ValueType = &value
		return key, diags

	default:
		if d.Class == descriptor.ClassUnknown {
			diags.Add(diag.New("pin_type_wildcard", stageBuild, diag.SeverityInfo,
				"unrecognized descriptor degraded to wildcard").WithDetail(string(d.Kind)))
		}
		return asset.WildcardType(), diags
	}
}

func (b *Builder) resolvedPinType(ctx context.Context, category asset.PinCategory, refKind asset.RefKind, d descriptor.TypeDescriptor, diags *diag.List) asset.PinType {
	t := asset.PinType{Category: category}
	if d.Name == "" {
		return t
	}

	res := b.res.Resolve(ctx, refKind, d.Name, d.Path)
	ref := res.Ref
	if !res.Resolved {
		ref = b.res.Placeholder(refKind)
		diags.Add(diag.New("symbol_unresolved", stageBuild, diag.SeverityWarning,
			"type name not found in any candidate path, using placeholder").
			WithDetail(d.Name+" tried "+strings.Join(res.TriedPaths, ", ")))
	}
	t.SubObjectName = ref.Name
	t.SubObjectPath = ref.Path
	return t
}

func scalarCategory(kind descriptor.Kind) asset.PinCategory {
	switch kind {
	case descriptor.KindBool:
		return asset.PinBool
	case descriptor.KindByte:
		return asset.PinByte
	case descriptor.KindInt:
		return asset.PinInt
	case descriptor.KindInt64:
		return asset.PinInt64
	case descriptor.KindFloat:
		return asset.PinFloat
	case descriptor.KindDouble:
		return asset.PinDouble
	case descriptor.KindString:
		return asset.PinString
	case descriptor.KindName:
		return asset.PinName
	case descriptor.KindText:
		return asset.PinText
	default:
		return asset.PinWildcard
	}
}

func objectCategory(kind descriptor.Kind) asset.PinCategory {
	switch kind {
	case descriptor.KindClass:
		return asset.PinClass
	case descriptor.KindSoftObject:
		return asset.PinSoftObj
	case descriptor.KindSoftClass:
		return asset.PinSoftClass
	case descriptor.KindInterface:
		return asset.PinInterface
	default:
		return asset.PinObject
	}
}
