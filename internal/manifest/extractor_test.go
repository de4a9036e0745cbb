package manifest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blueforge/internal/asset"
	"blueforge/internal/descriptor"
	"blueforge/internal/dump"
	"blueforge/internal/resolver"
)

func newTestExtractor() *Extractor {
	return NewExtractor(nil, "Component", "Actor")
}

func classDef() dump.Record {
	return dump.Record{
		Type: dump.ClassDefType,
		Name: "BP_Weapon_C",
		Children: []dump.ObjectRef{
			{ObjectName: "Function'BP_Weapon_C:GetDamage'"},
			{ObjectName: "Function'BP_Weapon_C:Fire'"},
			{ObjectName: "Function'BP_Weapon_C:ExecuteUbergraph_BP_Weapon'"},
			{ObjectName: "Function'BP_Weapon_C:Fire'"},
		},
		ChildProperties: []dump.PropertyRecord{
			{Type: "IntProperty", Name: "Ammo"},
			{Type: "ObjectProperty", Name: "Mesh",
				PropertyClass: &dump.ObjectRef{ObjectName: "Class'StaticMeshComponent'"}},
			{Type: "ObjectProperty", Name: "Owner",
				PropertyClass: &dump.ObjectRef{ObjectName: "Class'Pawn'"}},
			{Type: "StructProperty", Name: "UberGraphFrame"},
			{Type: "IntProperty", Name: "CallFunc_GetDamage_ReturnValue"},
		},
	}
}

func TestExtractFunctions(t *testing.T) {
	e := newTestExtractor()
	m, _ := e.Extract(context.Background(), []dump.Record{classDef()})

	require.Len(t, m.Functions, 2)
	assert.Equal(t, "GetDamage", m.Functions[0].Name)
	assert.Equal(t, "Fire", m.Functions[1].Name)
	assert.Equal(t, 0, m.Functions[0].Order)
	assert.Equal(t, 1, m.Functions[1].Order)
}

func TestExtractSkipsEmbeddedUbergraphEntries(t *testing.T) {
	e := newTestExtractor()
	def := dump.Record{
		Type: dump.ClassDefType,
		Name: "BP_Hook_C",
		Children: []dump.ObjectRef{
			{ObjectName: "Function'BP_Hook_C:Wrapper_ExecuteUbergraph_BP_Hook'"},
			{ObjectName: "Function'BP_Hook_C:OnHook'"},
		},
	}

	m, _ := e.Extract(context.Background(), []dump.Record{def})
	require.Len(t, m.Functions, 1)
	assert.Equal(t, "OnHook", m.Functions[0].Name)
}

func TestExtractProperties(t *testing.T) {
	e := newTestExtractor()
	m, diags := e.Extract(context.Background(), []dump.Record{classDef()})

	require.Len(t, m.Variables, 1)
	assert.Equal(t, "Ammo", m.Variables[0].Name)
	assert.Equal(t, descriptor.KindInt, m.Variables[0].Kind)

	require.Len(t, m.Components, 1)
	assert.Equal(t, "Mesh", m.Components[0].Name)
	assert.Equal(t, "StaticMeshComponent", m.Components[0].ClassName)

	// The Pawn reference is neither scalar nor component, so it is reported
	// and dropped.
	found := false
	for _, ev := range diags {
		if ev.Code == "property_ignored" {
			found = true
		}
	}
	assert.True(t, found, "expected a property_ignored diagnostic")
}

func TestExtractParentPrecedence(t *testing.T) {
	e := newTestExtractor()

	withSuper := classDef()
	withSuper.Super = &dump.ObjectRef{
		ObjectName: "BlueprintGeneratedClass'BP_Base_C'",
		ObjectPath: "/Game/Core/BP_Base.0",
	}
	m, _ := e.Extract(context.Background(), []dump.Record{withSuper})
	assert.False(t, m.Parent.Native)
	assert.Equal(t, "/Game/Core/BP_Base.0", m.Parent.AssetPath)

	withNative := classDef()
	withNative.SuperStruct = &dump.ObjectRef{ObjectName: "Class'Pawn'"}
	m, _ = e.Extract(context.Background(), []dump.Record{withNative})
	assert.True(t, m.Parent.Native)
	assert.Equal(t, "Pawn", m.Parent.Name)

	m, _ = e.Extract(context.Background(), []dump.Record{classDef()})
	assert.Equal(t, asset.NativeParent("Actor"), m.Parent)
}

func TestCorrelateReturns(t *testing.T) {
	e := newTestExtractor()

	records := []dump.Record{
		classDef(),
		{
			Type: dump.FunctionType,
			Name: "GetDamage",
			ChildProperties: []dump.PropertyRecord{
				{Type: "IntProperty", Name: "Amount", PropertyFlags: "Parm"},
				{Type: "IntProperty", Name: "ReturnValue", PropertyFlags: "ReturnParm | OutParm | Parm"},
			},
		},
		{
			Type: dump.FunctionType,
			Name: "Fire",
			ChildProperties: []dump.PropertyRecord{
				{Type: "BoolProperty", Name: "bPressed", PropertyFlags: "Parm"},
			},
		},
	}

	m, _ := e.Extract(context.Background(), records)
	require.Len(t, m.Functions, 2)

	// A qualifying return parameter yields its encoding.
	assert.Equal(t, "IntProperty", m.Functions[0].ReturnEncoding)
	assert.True(t, m.Functions[0].HasReturn())

	// A definition record with no return parameter confirms void.
	assert.Equal(t, descriptor.VoidToken, m.Functions[1].ReturnEncoding)
	assert.False(t, m.Functions[1].HasReturn())
}

func TestCorrelateReturnsComplexTypes(t *testing.T) {
	e := newTestExtractor()

	records := []dump.Record{
		{
			Type: dump.ClassDefType,
			Name: "BP_Spawner_C",
			Children: []dump.ObjectRef{
				{ObjectName: "Function'BP_Spawner_C:GetBullets'"},
			},
		},
		{
			Type: dump.FunctionType,
			Name: "GetBullets",
			ChildProperties: []dump.PropertyRecord{
				{
					Type: "ArrayProperty", Name: "ReturnValue",
					PropertyFlags: "ReturnParm | OutParm | Parm",
					Inner: &dump.PropertyRecord{
						Type: "ObjectProperty",
						PropertyClass: &dump.ObjectRef{
							ObjectName: "Class'PalBullet'",
							ObjectPath: "/Game/Pal/Weapon/PalBullet.0",
						},
					},
				},
			},
		},
	}

	m, _ := e.Extract(context.Background(), records)
	require.Len(t, m.Functions, 1)
	assert.Equal(t, "ArrayProperty|ObjectProperty|PalBullet|/Game/Pal/Weapon/PalBullet.0",
		m.Functions[0].ReturnEncoding)
}

func TestExtractWithoutClassDefinition(t *testing.T) {
	e := newTestExtractor()
	m, diags := e.Extract(context.Background(), []dump.Record{{Type: "Function", Name: "Orphan"}})

	assert.True(t, m.IsEmpty())
	assert.Equal(t, asset.NativeParent("Actor"), m.Parent)

	found := false
	for _, ev := range diags {
		if ev.Code == "no_class_definition" {
			found = true
		}
	}
	assert.True(t, found)
}

// fixedStrategy resolves a fixed name table; everything else misses.
type fixedStrategy struct {
	known map[string]asset.SymbolRef
}

func (s *fixedStrategy) Name() string { return "fixed" }

func (s *fixedStrategy) Lookup(_ context.Context, req resolver.Request) (asset.SymbolRef, []string, bool) {
	ref, ok := s.known[req.Name]
	return ref, []string{"fixed:" + req.Name}, ok
}

func TestMapTerminalResolutionProbe(t *testing.T) {
	res := resolver.NewWithStrategies(resolver.DefaultOptions(), &fixedStrategy{
		known: map[string]asset.SymbolRef{
			"EItemType": {Kind: asset.RefEnum, Name: "EItemType", Path: "/Game/Enums/EItemType.EItemType"},
		},
	})
	e := NewExtractor(res, "Component", "Actor")

	records := []dump.Record{
		{
			Type: dump.ClassDefType,
			Name: "BP_Inventory_C",
			Children: []dump.ObjectRef{
				{ObjectName: "Function'BP_Inventory_C:GetCounts'"},
			},
		},
		{
			Type: dump.FunctionType,
			Name: "GetCounts",
			ChildProperties: []dump.PropertyRecord{
				{
					Type: "MapProperty", Name: "ReturnValue",
					PropertyFlags: "ReturnParm | OutParm | Parm",
					KeyProp: &dump.PropertyRecord{
						Type: "EnumProperty",
						Enum: &dump.ObjectRef{ObjectName: "Enum'EItemType'"},
					},
					ValueProp: &dump.PropertyRecord{
						Type:   "StructProperty",
						Struct: &dump.ObjectRef{ObjectName: "ScriptStruct'MissingStruct'"},
					},
				},
			},
		},
	}

	m, diags := e.Extract(context.Background(), records)
	require.Len(t, m.Functions, 1)
	assert.Equal(t, "MapProperty|EnumProperty|StructProperty|EItemType|MissingStruct",
		m.Functions[0].ReturnEncoding)

	// The key resolves; the missing value struct is reported.
	unresolved := 0
	for _, ev := range diags {
		if ev.Code == "map_terminal_unresolved" {
			unresolved++
		}
	}
	assert.Equal(t, 1, unresolved)
}
