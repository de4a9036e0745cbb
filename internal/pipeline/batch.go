package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"blueforge/internal/dump"
	"blueforge/internal/resolver"
)

// BatchStats summarizes one folder run.
type BatchStats struct {
	Total   int      `json:"total"`
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

// batchItem is one class dump scheduled for creation, with just its parent
// linkage kept from the scan so the dependency check avoids a re-parse.
type batchItem struct {
	path        string
	className   string
	parentClass string
	parentPath  string
}

// BatchRunner processes a folder of dumps, ordering work over multiple
// passes so parents created by the same batch land before their children.
type BatchRunner struct {
	p           *Pipeline
	logger      *slog.Logger
	maxPasses   int
	defaultDest string

	// ReportDir, when set, receives one run report JSON per processed dump.
	ReportDir string
}

// NewBatchRunner creates a runner with the pipeline's configured pass limit
// and default destination root.
func NewBatchRunner(p *Pipeline) *BatchRunner {
	return &BatchRunner{
		p:           p,
		logger:      p.logger,
		maxPasses:   p.cfg.Batch.MaxPasses,
		defaultDest: p.cfg.Batch.DefaultDest,
	}
}

// Run scans root recursively for class dumps and creates an asset per dump.
// Dumps whose assets already exist are skipped; a pass that makes no
// progress fails the remaining files instead of looping on missing parents.
func (r *BatchRunner) Run(ctx context.Context, root string) (*BatchStats, error) {
	items, err := r.scan(root)
	if err != nil {
		return nil, err
	}

	stats := &BatchStats{Total: len(items)}

	// Class names the batch itself will create; parents outside this set
	// cannot be waited for.
	available := make(map[string]bool, len(items))
	for _, it := range items {
		available[it.className] = true
	}

	remaining := items
	for pass := 1; len(remaining) > 0 && pass <= r.maxPasses; pass++ {
		if pass > 1 {
			r.logger.Info("batch pass", "pass", pass, "remaining", len(remaining))
		}

		var deferred []batchItem
		for _, it := range remaining {
			if !r.parentReady(ctx, it, available) {
				deferred = append(deferred, it)
				continue
			}
			r.process(ctx, root, it, stats)
		}

		if len(deferred) == len(remaining) {
			for _, it := range deferred {
				stats.Failed++
				stats.Errors = append(stats.Errors, fmt.Sprintf("%s: parent %s never became available", it.path, it.parentClass))
			}
			return stats, nil
		}
		remaining = deferred
	}

	if len(remaining) > 0 {
		r.logger.Warn("batch reached maximum passes", "max_passes", r.maxPasses, "unprocessed", len(remaining))
		for _, it := range remaining {
			stats.Failed++
			stats.Errors = append(stats.Errors, fmt.Sprintf("%s: unprocessed after %d passes", it.path, r.maxPasses))
		}
	}
	return stats, nil
}

func (r *BatchRunner) process(ctx context.Context, root string, it batchItem, stats *BatchStats) {
	dest, name := r.destinationFor(root, it.path)

	if ref, _ := r.p.store.FindByPath(ctx, ObjectPath(dest, name)); ref != nil {
		r.logger.Info("skipping existing asset", "asset", name)
		stats.Skipped++
		return
	}

	_, report, err := r.p.CreateClassAssetFromDump(ctx, it.path, dest, name)
	r.saveReport(name, report)
	if err != nil {
		stats.Failed++
		stats.Errors = append(stats.Errors, fmt.Sprintf("%s: %v", it.path, err))
		return
	}
	stats.Created++
}

// saveReport persists one run report when a report directory is configured.
// Report persistence never fails the batch.
func (r *BatchRunner) saveReport(name string, report *RunReport) {
	if r.ReportDir == "" || report == nil {
		return
	}
	if err := report.Save(filepath.Join(r.ReportDir, name+".json")); err != nil {
		r.logger.Warn("failed to save run report", "asset", name, "error", err)
	}
}

// scan walks the dump folder and keeps only class-definition dumps.
func (r *BatchRunner) scan(root string) ([]batchItem, error) {
	var items []batchItem

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			// Unreadable files are dropped from the batch, not fatal to it.
			return nil
		}
		records, err := dump.Parse(data)
		if err != nil || !dump.IsClassDump(records) {
			return nil
		}
		def := dump.ClassDef(records)

		it := batchItem{path: path, className: def.Name}
		if def.Super != nil {
			if _, inner, ok := dump.ParseObjectName(def.Super.ObjectName); ok {
				it.parentClass = inner
			}
			it.parentPath = def.Super.ObjectPath
		}
		items = append(items, it)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan dump folder %s: %w", root, err)
	}
	return items, nil
}

// parentReady reports whether the item's parent asset exists, or cannot be
// waited for. Parents outside the batch's own dump set are the host's
// problem and never block.
func (r *BatchRunner) parentReady(ctx context.Context, it batchItem, available map[string]bool) bool {
	if it.parentClass == "" || !strings.HasPrefix(it.parentPath, "/Game/") {
		return true
	}
	if !available[it.parentClass] {
		return true
	}

	base := resolver.StripObjectSuffix(it.parentPath)
	parentAsset := base + "." + resolver.AssetNameOf(it.parentClass)
	_, err := r.p.store.FindByPath(ctx, parentAsset)
	return err == nil
}

// destinationFor derives the destination package path and asset name from
// the dump file's location. A Game path segment anchors the destination;
// anything else lands under the configured default root.
func (r *BatchRunner) destinationFor(root, path string) (dest, name string) {
	name = strings.TrimSuffix(filepath.Base(path), ".json")

	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	parts := strings.Split(filepath.ToSlash(filepath.Dir(rel)), "/")

	for i, p := range parts {
		if p == "Game" {
			return "/" + strings.Join(parts[i:], "/"), name
		}
	}

	clean := parts[:0]
	for _, p := range parts {
		if p != "." && p != "" {
			clean = append(clean, p)
		}
	}
	if len(clean) == 0 {
		return r.defaultDest, name
	}
	return r.defaultDest + "/" + strings.Join(clean, "/"), name
}
