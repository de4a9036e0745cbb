package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"blueforge/internal/asset"
	"blueforge/internal/builder"
	"blueforge/internal/config"
	"blueforge/internal/descriptor"
	"blueforge/internal/diag"
	"blueforge/internal/dump"
	"blueforge/internal/manifest"
	"blueforge/internal/resolver"
	"blueforge/internal/store"
)

// Compiler is the external visual-scripting compiler collaborator. The
// pipeline only asks it to bring an asset up to date; type checking of
// graph bodies is its concern.
type Compiler interface {
	Compile(ctx context.Context, a *asset.ClassAsset) error
}

// NopCompiler marks assets compiled without doing anything. Used when no
// host compiler is attached.
type NopCompiler struct{}

func (NopCompiler) Compile(_ context.Context, a *asset.ClassAsset) error {
	a.Compiled = true
	return nil
}

// Pipeline wires the dump reader, manifest extractor, duplicate filter and
// graph builder over one asset store. A single invocation mutates one target
// asset exclusively from entry to completion; the pipeline is synchronous
// and keeps no state across runs.
type Pipeline struct {
	cfg      *config.Config
	store    store.AssetStore
	natives  *asset.NativeRegistry
	res      *resolver.Resolver
	extract  *manifest.Extractor
	builder  *builder.Builder
	compiler Compiler
	logger   *slog.Logger
}

// New assembles a pipeline from the config and store. A nil compiler gets
// the no-op compiler; a nil logger gets slog's default.
func New(cfg *config.Config, st store.AssetStore, compiler Compiler, logger *slog.Logger) *Pipeline {
	if compiler == nil {
		compiler = NopCompiler{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	natives := asset.NewNativeRegistry(cfg.Engine.Root)
	res := resolver.New(st, natives, cfg.ResolverOptions())

	return &Pipeline{
		cfg:      cfg,
		store:    st,
		natives:  natives,
		res:      res,
		extract:  manifest.NewExtractor(res, cfg.Manifest.ComponentToken, cfg.Engine.DefaultParent),
		builder:  builder.New(res, natives),
		compiler: compiler,
		logger:   logger,
	}
}

// Natives exposes the native registry, e.g. to seed project classes.
func (p *Pipeline) Natives() *asset.NativeRegistry {
	return p.natives
}

// ParseDump reads one dump file and extracts its manifest. Unreadable files
// and a malformed top-level shape are the only failures.
func (p *Pipeline) ParseDump(ctx context.Context, path string) (*manifest.Manifest, diag.List, error) {
	records, err := dump.Load(path)
	if err != nil {
		return nil, nil, err
	}
	m, diags := p.extract.Extract(ctx, records)
	return m, diags, nil
}

// CreateFunctionStub adds one function graph to the target. The explicit
// hasReturn flag wins over the encoding; returns whether the stub was
// created.
func (p *Pipeline) CreateFunctionStub(ctx context.Context, target *asset.ClassAsset, name string, hasReturn bool, returnEncoding string) bool {
	if target == nil || name == "" || name == "None" {
		return false
	}
	if target.HasFunction(name) {
		return false
	}

	sig := manifest.FunctionSignature{Name: name, ReturnEncoding: returnEncoding}
	diags, err := p.builder.BuildFunctionGraph(ctx, sig, hasReturn, target)
	p.logDiags(diags)
	if err != nil {
		p.logger.Warn("function stub failed", "function", name, "error", err)
		return false
	}
	return true
}

// CreateManyFunctionStubs adds a batch of function stubs, skipping names
// that collide with the target's own or inherited symbols, and returns how
// many were created. Running the same batch twice adds each function at most
// once.
func (p *Pipeline) CreateManyFunctionStubs(ctx context.Context, target *asset.ClassAsset, names, encodings []string) int {
	if target == nil {
		return 0
	}

	var sigs []manifest.FunctionSignature
	seen := make(map[string]bool)
	for i, name := range names {
		if name == "" || name == "None" || dump.IsUbergraphEntry(name) || seen[name] {
			continue
		}
		seen[name] = true
		enc := ""
		if i < len(encodings) {
			enc = encodings[i]
		}
		sigs = append(sigs, manifest.FunctionSignature{Name: name, ReturnEncoding: enc, Order: len(sigs)})
	}

	m := &manifest.Manifest{Functions: sigs}
	filtered := manifest.Filter(m, manifest.SymbolSet(target.OwnSymbols()), p.inheritedSymbols(ctx, target.Parent))

	count := 0
	for _, sig := range filtered.Functions {
		diags, err := p.builder.BuildFunctionGraph(ctx, sig, sig.HasReturn(), target)
		p.logDiags(diags)
		if err != nil {
			p.logger.Warn("function stub failed", "function", sig.Name, "error", err)
			continue
		}
		count++
	}
	return count
}

// CreateComponents attaches a batch of components and returns how many were
// attached. Mismatched input lengths attach nothing.
func (p *Pipeline) CreateComponents(ctx context.Context, target *asset.ClassAsset, names, classNames []string) int {
	if target == nil || len(names) != len(classNames) {
		return 0
	}

	count := 0
	seen := make(map[string]bool)
	for i, name := range names {
		if name == "" || seen[name] || target.HasComponent(name) {
			continue
		}
		seen[name] = true
		diags, err := p.builder.AttachComponent(ctx, name, classNames[i], target)
		p.logDiags(diags)
		if err != nil {
			p.logger.Warn("component skipped", "component", name, "class", classNames[i], "error", err)
			continue
		}
		count++
	}
	return count
}

// CreateVariables declares a batch of scalar variables and returns how many
// were declared. Collisions with own or inherited symbols are skipped
// silently; unsupported kinds are skipped with a diagnostic.
func (p *Pipeline) CreateVariables(ctx context.Context, target *asset.ClassAsset, names, kinds []string) int {
	if target == nil || len(names) != len(kinds) {
		return 0
	}

	var decls []manifest.VariableDeclaration
	seen := make(map[string]bool)
	for i, name := range names {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		decls = append(decls, manifest.VariableDeclaration{Name: name, Kind: descriptor.Kind(kinds[i])})
	}

	m := &manifest.Manifest{Variables: decls}
	filtered := manifest.Filter(m, manifest.SymbolSet(target.OwnSymbols()), p.inheritedSymbols(ctx, target.Parent))

	count := 0
	for _, v := range filtered.Variables {
		diags, err := p.builder.DeclareVariable(v.Name, v.Kind, target)
		p.logDiags(diags)
		if err != nil {
			continue
		}
		count++
	}
	return count
}

// CreateClassAssetFromDump runs the whole pipeline for one dump: extract the
// manifest, resolve the parent, create the asset, attach components, build
// function stubs, declare variables, compile and save. Structural failures
// abort with no partial asset persisted; per-item failures only lower the
// counts in the report.
func (p *Pipeline) CreateClassAssetFromDump(ctx context.Context, dumpPath, destination, assetName string) (*asset.ClassAsset, *RunReport, error) {
	report := NewRunReport(dumpPath)

	h := report.BeginStage("parse")
	records, err := dump.Load(dumpPath)
	if err != nil {
		report.EndStage(h, nil, err)
		return nil, report, err
	}
	m, diags := p.extract.Extract(ctx, records)
	report.AddEvents(diags)
	report.EndStage(h, map[string]int{
		"functions":  len(m.Functions),
		"variables":  len(m.Variables),
		"components": len(m.Components),
	}, nil)

	assetPath := ObjectPath(destination, assetName)
	if ref, _ := p.store.FindByPath(ctx, assetPath); ref != nil {
		err := fmt.Errorf("asset already exists at %s", assetPath)
		return nil, report, err
	}

	h = report.BeginStage("parent")
	parent := p.resolveParent(ctx, m.Parent, report)
	report.EndStage(h, nil, nil)

	h = report.BeginStage("create")
	packagePath := destination + "/" + assetName
	if err := p.store.CreatePackage(ctx, packagePath); err != nil {
		report.EndStage(h, nil, err)
		return nil, report, fmt.Errorf("failed to create package %s: %w", packagePath, err)
	}
	target := asset.NewClassAsset(assetName, assetPath, parent)
	report.EndStage(h, nil, nil)

	h = report.BeginStage("components")
	compNames := make([]string, len(m.Components))
	compClasses := make([]string, len(m.Components))
	for i, c := range m.Components {
		compNames[i] = c.Name
		compClasses[i] = c.ClassName
	}
	added := p.CreateComponents(ctx, target, compNames, compClasses)
	report.Summary.ComponentsAdded = added
	report.EndStage(h, map[string]int{"added": added}, nil)

	h = report.BeginStage("functions")
	funcNames := make([]string, len(m.Functions))
	funcEncodings := make([]string, len(m.Functions))
	for i, f := range m.Functions {
		funcNames[i] = f.Name
		funcEncodings[i] = f.ReturnEncoding
	}
	added = p.CreateManyFunctionStubs(ctx, target, funcNames, funcEncodings)
	report.Summary.FunctionsAdded = added
	report.EndStage(h, map[string]int{"added": added}, nil)

	h = report.BeginStage("variables")
	varNames := make([]string, len(m.Variables))
	varKinds := make([]string, len(m.Variables))
	for i, v := range m.Variables {
		varNames[i] = v.Name
		varKinds[i] = string(v.Kind)
	}
	added = p.CreateVariables(ctx, target, varNames, varKinds)
	report.Summary.VariablesAdded = added
	report.EndStage(h, map[string]int{"added": added}, nil)

	h = report.BeginStage("compile")
	if err := p.compiler.Compile(ctx, target); err != nil {
		report.AddEvents(diag.List{diag.New("compile_failed", "compile", diag.SeverityWarning, err.Error())})
		report.EndStage(h, nil, err)
	} else {
		report.EndStage(h, nil, nil)
	}

	h = report.BeginStage("save")
	if err := p.store.SaveClass(ctx, target); err != nil {
		report.EndStage(h, nil, err)
		return nil, report, fmt.Errorf("failed to save asset %s: %w", assetPath, err)
	}
	report.EndStage(h, nil, nil)
	report.AssetPath = assetPath
	report.Finalize()

	p.logger.Info("class asset created",
		"asset", assetPath,
		"functions", report.Summary.FunctionsAdded,
		"components", report.Summary.ComponentsAdded,
		"variables", report.Summary.VariablesAdded)
	return target, report, nil
}

// CreateStructAssetFromDump creates a user-defined struct asset seeded with
// one placeholder boolean member and hands it to the store.
func (p *Pipeline) CreateStructAssetFromDump(ctx context.Context, dumpPath, destination, structName string) (*asset.StructAsset, error) {
	if _, err := dump.Load(dumpPath); err != nil {
		return nil, err
	}

	path := ObjectPath(destination, structName)
	if err := p.store.CreatePackage(ctx, destination+"/"+structName); err != nil {
		return nil, fmt.Errorf("failed to create package for %s: %w", structName, err)
	}

	st := &asset.StructAsset{
		Name: structName,
		Path: path,
		Members: []asset.StructMember{
			{Name: "PlaceholderMember", Type: asset.PinType{Category: asset.PinBool}},
		},
	}
	if err := p.store.SaveStruct(ctx, st); err != nil {
		return nil, fmt.Errorf("failed to save struct %s: %w", path, err)
	}
	return st, nil
}

// resolveParent maps the manifest's parent reference to a usable parent,
// compiling a stale parent asset through the external compiler and falling
// back to the default native parent when anything is missing.
func (p *Pipeline) resolveParent(ctx context.Context, ref asset.ParentRef, report *RunReport) asset.ParentRef {
	fallback := asset.NativeParent(p.cfg.Engine.DefaultParent)

	if ref.Native {
		if ref.Name == "" {
			return fallback
		}
		if _, ok := p.natives.Lookup(ref.Name); ok {
			return ref
		}
		// Unknown native parents stay as declared: the host environment
		// knows classes this registry does not.
		return ref
	}

	path := resolver.NormalizeAssetPath(ref.AssetPath)
	if path == "" {
		return fallback
	}
	parent, err := p.store.LoadClass(ctx, path)
	if err != nil {
		report.AddEvents(diag.List{diag.New("parent_missing", "parent", diag.SeverityWarning,
			"parent asset not found, using default parent").WithDetail(path)})
		return fallback
	}
	if !parent.Compiled {
		if err := p.compiler.Compile(ctx, parent); err != nil {
			report.AddEvents(diag.List{diag.New("parent_compile_failed", "parent", diag.SeverityWarning,
				"parent asset failed to compile, using default parent").WithDetail(path)})
			return fallback
		}
		if err := p.store.SaveClass(ctx, parent); err != nil {
			p.logger.Warn("failed to persist compiled parent", "asset", path, "error", err)
		}
	}
	return asset.AssetParent(path)
}

// inheritedSymbols walks the parent chain and collects every function and
// variable name a subclass would inherit, ending at the native registry.
func (p *Pipeline) inheritedSymbols(ctx context.Context, parent asset.ParentRef) manifest.SymbolSet {
	out := manifest.NewSymbolSet()
	visited := make(map[string]bool)

	for depth := 0; depth < 64; depth++ {
		if parent.Native {
			if c, ok := p.natives.Lookup(parent.Name); ok {
				out.Merge(manifest.NewSymbolSet(c.Functions...))
			}
			return out
		}
		path := resolver.NormalizeAssetPath(parent.AssetPath)
		if path == "" || visited[path] {
			return out
		}
		visited[path] = true

		pa, err := p.store.LoadClass(ctx, path)
		if err != nil {
			return out
		}
		out.Merge(manifest.SymbolSet(pa.OwnSymbols()))
		parent = pa.Parent
	}
	return out
}

// ObjectPath builds the canonical asset reference for a destination and
// asset name.
func ObjectPath(destination, assetName string) string {
	return destination + "/" + assetName + "." + assetName
}

func (p *Pipeline) logDiags(diags diag.List) {
	for _, e := range diags {
		switch e.Severity {
		case diag.SeverityError, diag.SeverityWarning:
			p.logger.Warn(e.Message, "code", e.Code, "stage", e.Stage, "detail", e.Detail)
		default:
			p.logger.Debug(e.Message, "code", e.Code, "stage", e.Stage, "detail", e.Detail)
		}
	}
}
