package diag

import (
	"sort"
	"strings"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Event is one structured diagnostic emitted by a pipeline stage. The core
// returns events alongside results instead of logging, so callers and tests
// can inspect outcomes without parsing log text.
type Event struct {
	Code     string   `json:"code"`
	Stage    string   `json:"stage"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Detail   string   `json:"detail,omitempty"`
}

type List []Event

func New(code, stage string, severity Severity, message string) Event {
	return Event{
		Code:     strings.TrimSpace(code),
		Stage:    strings.TrimSpace(stage),
		Severity: severity,
		Message:  strings.TrimSpace(message),
	}
}

func (e Event) WithDetail(detail string) Event {
	e.Detail = detail
	return e
}

// Add appends an event, dropping ones with an empty code or message.
func (l *List) Add(e Event) {
	if l == nil || e.Code == "" || e.Message == "" {
		return
	}
	*l = append(*l, e)
}

// Merge appends all events from other.
func (l *List) Merge(other List) {
	for _, e := range other {
		l.Add(e)
	}
}

// HasErrors reports whether any event carries error severity.
func (l List) HasErrors() bool {
	for _, e := range l {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Sorted returns the events ordered by descending severity, then stage and code.
func (l List) Sorted() List {
	out := make(List, len(l))
	copy(out, l)
	sort.SliceStable(out, func(i, j int) bool {
		pi := severityPriority(out[i].Severity)
		pj := severityPriority(out[j].Severity)
		if pi == pj {
			if out[i].Stage == out[j].Stage {
				return out[i].Code < out[j].Code
			}
			return out[i].Stage < out[j].Stage
		}
		return pi > pj
	})
	return out
}

// CountBySeverity tallies events per severity level.
func (l List) CountBySeverity() map[Severity]int {
	counts := map[Severity]int{
		SeverityError:   0,
		SeverityWarning: 0,
		SeverityInfo:    0,
	}
	for _, e := range l {
		counts[e.Severity]++
	}
	return counts
}

func severityPriority(s Severity) int {
	switch s {
	case SeverityError:
		return 3
	case SeverityWarning:
		return 2
	default:
		return 1
	}
}
