package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blueforge/internal/asset"
	"blueforge/internal/config"
	"blueforge/internal/descriptor"
	"blueforge/internal/store"
)

const scoreDump = `[
  {
    "Type": "BlueprintGeneratedClass",
    "Name": "BP_Score_C",
    "Children": [
      {"ObjectName": "Function'BP_Score_C:GetScore'"},
      {"ObjectName": "Function'BP_Score_C:ExecuteUbergraph_BP_Score'"}
    ],
    "ChildProperties": [
      {"Type": "ObjectProperty", "Name": "Mesh",
       "PropertyClass": {"ObjectName": "Class'StaticMeshComponent'"}},
      {"Type": "IntProperty", "Name": "Count"}
    ]
  },
  {
    "Type": "Function",
    "Name": "GetScore",
    "ChildProperties": [
      {"Type": "IntProperty", "Name": "ReturnValue", "PropertyFlags": "ReturnParm | OutParm | Parm"}
    ]
  }
]`

func newTestPipeline(t *testing.T, compiler Compiler) (*Pipeline, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(config.Default(), st, compiler, logger), st
}

func writeDump(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "BP_Score.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCreateFunctionStub(t *testing.T) {
	p, _ := newTestPipeline(t, nil)
	ctx := context.Background()
	target := asset.NewClassAsset("BP_Test", "/Game/BP_Test.BP_Test", asset.NativeParent("Actor"))

	assert.True(t, p.CreateFunctionStub(ctx, target, "GetScore", true, "IntProperty"))
	assert.True(t, target.HasFunction("GetScore"))

	// Re-adding the same function is a no-op.
	assert.False(t, p.CreateFunctionStub(ctx, target, "GetScore", true, "IntProperty"))
	assert.Len(t, target.FunctionGraphs, 1)

	assert.False(t, p.CreateFunctionStub(ctx, target, "", false, ""))
	assert.False(t, p.CreateFunctionStub(ctx, target, "None", false, ""))
	assert.False(t, p.CreateFunctionStub(ctx, nil, "GetScore", false, ""))
}

func TestCreateFunctionStubExplicitFlagWins(t *testing.T) {
	p, _ := newTestPipeline(t, nil)
	ctx := context.Background()
	target := asset.NewClassAsset("BP_Test", "/Game/BP_Test.BP_Test", asset.NativeParent("Actor"))

	// The caller's flag overrides what the name or encoding would suggest.
	require.True(t, p.CreateFunctionStub(ctx, target, "GetScore", false, ""))
	g := target.FunctionGraphs[0]
	assert.Nil(t, g.NodeOfKind(asset.NodeResult))
}

func TestCreateManyFunctionStubs(t *testing.T) {
	p, _ := newTestPipeline(t, nil)
	ctx := context.Background()
	target := asset.NewClassAsset("BP_Test", "/Game/BP_Test.BP_Test", asset.NativeParent("Actor"))

	names := []string{
		"Fire",
		"TakeDamage",
		"ExecuteUbergraph_BP_Test",
		"Fire",
		"",
		"GetAmmo",
	}
	encodings := []string{"", "", "", "", "", "IntProperty"}

	// TakeDamage is inherited from the native parent, the ubergraph entry
	// and duplicates are skipped.
	added := p.CreateManyFunctionStubs(ctx, target, names, encodings)
	assert.Equal(t, 2, added)
	assert.True(t, target.HasFunction("Fire"))
	assert.True(t, target.HasFunction("GetAmmo"))
	assert.False(t, target.HasFunction("TakeDamage"))

	// Running the same batch again adds nothing.
	added = p.CreateManyFunctionStubs(ctx, target, names, encodings)
	assert.Equal(t, 0, added)
	assert.Len(t, target.FunctionGraphs, 2)
}

func TestCreateManyFunctionStubsInheritedFromAssetParent(t *testing.T) {
	p, st := newTestPipeline(t, nil)
	ctx := context.Background()

	parent := asset.NewClassAsset("BP_Base", "/Game/BP_Base.BP_Base", asset.NativeParent("Actor"))
	parent.AddFunctionGraph(asset.NewFunctionGraph("Interact"))
	require.NoError(t, st.SaveClass(ctx, parent))

	target := asset.NewClassAsset("BP_Child", "/Game/BP_Child.BP_Child", asset.AssetParent("/Game/BP_Base.BP_Base"))

	added := p.CreateManyFunctionStubs(ctx, target, []string{"Interact", "TakeDamage", "Jump"}, nil)
	assert.Equal(t, 1, added)
	assert.True(t, target.HasFunction("Jump"))
}

func TestCreateComponents(t *testing.T) {
	p, _ := newTestPipeline(t, nil)
	ctx := context.Background()
	target := asset.NewClassAsset("BP_Test", "/Game/BP_Test.BP_Test", asset.NativeParent("Actor"))

	added := p.CreateComponents(ctx, target,
		[]string{"Mesh", "Root", "Mesh", "Bogus"},
		[]string{"StaticMeshComponent", "SceneComponent", "StaticMeshComponent", "NoSuchComponent"})
	assert.Equal(t, 2, added)
	assert.True(t, target.HasComponent("Mesh"))
	assert.True(t, target.HasComponent("Root"))

	// Mismatched input lengths attach nothing.
	assert.Equal(t, 0, p.CreateComponents(ctx, target, []string{"A", "B"}, []string{"SceneComponent"}))
}

func TestCreateVariables(t *testing.T) {
	p, _ := newTestPipeline(t, nil)
	ctx := context.Background()
	target := asset.NewClassAsset("BP_Test", "/Game/BP_Test.BP_Test", asset.NativeParent("Actor"))

	added := p.CreateVariables(ctx, target,
		[]string{"Health", "Inventory", "Health"},
		[]string{string(descriptor.KindFloat), string(descriptor.KindArray), string(descriptor.KindFloat)})
	assert.Equal(t, 1, added)
	assert.True(t, target.HasVariable("Health"))

	// A second run skips the now-declared name.
	assert.Equal(t, 0, p.CreateVariables(ctx, target, []string{"Health"}, []string{string(descriptor.KindFloat)}))
}

func TestCreateClassAssetFromDump(t *testing.T) {
	p, st := newTestPipeline(t, nil)
	ctx := context.Background()
	dumpPath := writeDump(t, scoreDump)

	a, report, err := p.CreateClassAssetFromDump(ctx, dumpPath, "/Game/Test", "BP_Score")
	require.NoError(t, err)
	require.NotNil(t, a)

	assert.Equal(t, "/Game/Test/BP_Score.BP_Score", a.Path)
	assert.Equal(t, asset.NativeParent("Actor"), a.Parent)

	assert.Equal(t, 1, report.Summary.FunctionsAdded)
	assert.Equal(t, 1, report.Summary.ComponentsAdded)
	assert.Equal(t, 1, report.Summary.VariablesAdded)

	// The ubergraph entry never becomes a function graph.
	require.Len(t, a.FunctionGraphs, 1)
	g := a.FunctionGraphs[0]
	assert.Equal(t, "GetScore", g.Name)

	result := g.NodeOfKind(asset.NodeResult)
	require.NotNil(t, result)
	ret := result.FindPin(asset.PinNameReturnValue)
	require.NotNil(t, ret)
	assert.Equal(t, asset.PinInt, ret.Type.Category)

	require.Len(t, a.Components, 1)
	assert.Equal(t, "/Script/Engine.StaticMeshComponent", a.Components[0].ClassPath)

	// The asset is persisted and findable.
	loaded, err := st.LoadClass(ctx, a.Path)
	require.NoError(t, err)
	assert.Equal(t, "BP_Score", loaded.Name)
	assert.True(t, a.Compiled)
}

func TestCreateClassAssetFromDumpRejectsExisting(t *testing.T) {
	p, st := newTestPipeline(t, nil)
	ctx := context.Background()
	dumpPath := writeDump(t, scoreDump)

	existing := asset.NewClassAsset("BP_Score", "/Game/Test/BP_Score.BP_Score", asset.NativeParent("Actor"))
	require.NoError(t, st.SaveClass(ctx, existing))

	_, _, err := p.CreateClassAssetFromDump(ctx, dumpPath, "/Game/Test", "BP_Score")
	assert.Error(t, err)
}

func TestCreateClassAssetFromDumpUnreadableDump(t *testing.T) {
	p, _ := newTestPipeline(t, nil)
	_, report, err := p.CreateClassAssetFromDump(context.Background(), "/nope/missing.json", "/Game/Test", "BP_X")
	assert.Error(t, err)
	require.NotNil(t, report)
	require.NotEmpty(t, report.Stages)
	assert.Equal(t, "error", report.Stages[0].Status)
}

type failCompiler struct{}

func (failCompiler) Compile(_ context.Context, _ *asset.ClassAsset) error {
	return errors.New("compile unit rejected")
}

func TestParentFallbacks(t *testing.T) {
	ctx := context.Background()

	missingParentDump := `[
  {
    "Type": "BlueprintGeneratedClass",
    "Name": "BP_Child_C",
    "Super": {"ObjectName": "BlueprintGeneratedClass'BP_Gone_C'", "ObjectPath": "/Game/Gone/BP_Gone.0"},
    "Children": [{"ObjectName": "Function'BP_Child_C:Ping'"}]
  }
]`

	t.Run("missing parent asset", func(t *testing.T) {
		p, _ := newTestPipeline(t, nil)
		path := writeDump(t, missingParentDump)
		a, report, err := p.CreateClassAssetFromDump(ctx, path, "/Game/Test", "BP_Child")
		require.NoError(t, err)
		assert.Equal(t, asset.NativeParent("Actor"), a.Parent)

		found := false
		for _, ev := range report.Events {
			if ev.Code == "parent_missing" {
				found = true
			}
		}
		assert.True(t, found)
	})

	t.Run("parent fails to compile", func(t *testing.T) {
		p, st := newTestPipeline(t, failCompiler{})
		parent := asset.NewClassAsset("BP_Gone", "/Game/Gone/BP_Gone.BP_Gone", asset.NativeParent("Actor"))
		require.NoError(t, st.SaveClass(ctx, parent))

		path := writeDump(t, missingParentDump)
		a, report, err := p.CreateClassAssetFromDump(ctx, path, "/Game/Test", "BP_Child")
		require.NoError(t, err, "compile failures never abort the run")
		assert.Equal(t, asset.NativeParent("Actor"), a.Parent)

		found := false
		for _, ev := range report.Events {
			if ev.Code == "parent_compile_failed" {
				found = true
			}
		}
		assert.True(t, found)
	})

	t.Run("compiled parent is linked", func(t *testing.T) {
		p, st := newTestPipeline(t, nil)
		parent := asset.NewClassAsset("BP_Gone", "/Game/Gone/BP_Gone.BP_Gone", asset.NativeParent("Actor"))
		parent.Compiled = true
		require.NoError(t, st.SaveClass(ctx, parent))

		path := writeDump(t, missingParentDump)
		a, _, err := p.CreateClassAssetFromDump(ctx, path, "/Game/Test", "BP_Child")
		require.NoError(t, err)
		assert.Equal(t, asset.AssetParent("/Game/Gone/BP_Gone.BP_Gone"), a.Parent)
	})
}

func TestCreateStructAssetFromDump(t *testing.T) {
	p, st := newTestPipeline(t, nil)
	ctx := context.Background()
	dumpPath := writeDump(t, `[{"Type": "UserDefinedStruct", "Name": "BP_ItemData"}]`)

	s, err := p.CreateStructAssetFromDump(ctx, dumpPath, "/Game/Structs", "BP_ItemData")
	require.NoError(t, err)
	assert.Equal(t, "/Game/Structs/BP_ItemData.BP_ItemData", s.Path)
	require.Len(t, s.Members, 1)
	assert.Equal(t, asset.PinBool, s.Members[0].Type.Category)

	loaded, err := st.LoadStruct(ctx, s.Path)
	require.NoError(t, err)
	assert.Equal(t, "BP_ItemData", loaded.Name)
}

func TestObjectPath(t *testing.T) {
	assert.Equal(t, "/Game/Items/BP_Item.BP_Item", ObjectPath("/Game/Items", "BP_Item"))
}
