package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"blueforge/internal/diag"
)

// StageMetric records one pipeline stage's outcome for the run report.
type StageMetric struct {
	Name       string         `json:"name"`
	Status     string         `json:"status"`
	StartedAt  string         `json:"started_at"`
	FinishedAt string         `json:"finished_at"`
	DurationMS int64          `json:"duration_ms"`
	Counters   map[string]int `json:"counters,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// RunSummary aggregates the per-step counts the caller receives. It is
// normal for the added counts to be lower than the input sizes.
type RunSummary struct {
	StageCount       int                   `json:"stage_count"`
	FailedStages     int                   `json:"failed_stages"`
	FunctionsAdded   int                   `json:"functions_added"`
	ComponentsAdded  int                   `json:"components_added"`
	VariablesAdded   int                   `json:"variables_added"`
	EventsBySeverity map[diag.Severity]int `json:"events_by_severity"`
}

// RunReport is the structured record of one pipeline run: stages, the
// diagnostic events the stages produced, and the summary counts.
type RunReport struct {
	Version     string        `json:"version"`
	DumpPath    string        `json:"dump_path,omitempty"`
	AssetPath   string        `json:"asset_path,omitempty"`
	GeneratedAt string        `json:"generated_at"`
	Stages      []StageMetric `json:"stages"`
	Events      diag.List     `json:"events,omitempty"`
	Summary     RunSummary    `json:"summary"`
}

// StageHandle pairs a stage name with its start time.
type StageHandle struct {
	name    string
	started time.Time
}

func NewRunReport(dumpPath string) *RunReport {
	return &RunReport{
		Version:     "v1",
		DumpPath:    dumpPath,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Stages:      []StageMetric{},
	}
}

func (r *RunReport) BeginStage(name string) StageHandle {
	return StageHandle{name: strings.TrimSpace(name), started: time.Now().UTC()}
}

func (r *RunReport) EndStage(h StageHandle, counters map[string]int, err error) {
	if r == nil || h.name == "" {
		return
	}
	finished := time.Now().UTC()
	m := StageMetric{
		Name:       h.name,
		Status:     "ok",
		StartedAt:  h.started.Format(time.RFC3339Nano),
		FinishedAt: finished.Format(time.RFC3339Nano),
		DurationMS: finished.Sub(h.started).Milliseconds(),
		Counters:   counters,
	}
	if err != nil {
		m.Status = "error"
		m.Error = err.Error()
	}
	r.Stages = append(r.Stages, m)
}

func (r *RunReport) AddEvents(events diag.List) {
	if r == nil {
		return
	}
	r.Events.Merge(events)
}

func (r *RunReport) Finalize() {
	if r == nil {
		return
	}
	r.GeneratedAt = time.Now().UTC().Format(time.RFC3339)
	r.Events = r.Events.Sorted()

	failed := 0
	for _, st := range r.Stages {
		if st.Status != "ok" {
			failed++
		}
	}
	r.Summary.StageCount = len(r.Stages)
	r.Summary.FailedStages = failed
	r.Summary.EventsBySeverity = r.Events.CountBySeverity()
}

// Save writes the finalized report as indented JSON.
func (r *RunReport) Save(path string) error {
	if r == nil {
		return nil
	}
	r.Finalize()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0644)
}
