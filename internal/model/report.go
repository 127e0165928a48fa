package model

// RelocationStatus is the result of relocating one path.
type RelocationStatus int

const (
	StatusMoved RelocationStatus = iota
	StatusFailed
)

func (s RelocationStatus) String() string {
	switch s {
	case StatusMoved:
		return "moved"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// RelocationOutcome is the per-path result of a batch.
type RelocationOutcome struct {
	Path   string
	Status RelocationStatus
	Reason string // Empty unless Status is StatusFailed
}

// Failure is a path that could not be relocated, with a readable reason.
type Failure struct {
	Path   string `json:"path" yaml:"path"`
	Reason string `json:"reason" yaml:"reason"`
}

// RelocationReport aggregates one batch. It is immutable once returned.
type RelocationReport struct {
	Succeeded []string  `json:"succeeded" yaml:"succeeded"`
	Failed    []Failure `json:"failed" yaml:"failed"`

	order []string
}

// Record appends an outcome. Only the batch runner builds reports.
func (r *RelocationReport) Record(o RelocationOutcome) {
	r.order = append(r.order, o.Path)
	if o.Status == StatusMoved {
		r.Succeeded = append(r.Succeeded, o.Path)
		return
	}
	r.Failed = append(r.Failed, Failure{Path: o.Path, Reason: o.Reason})
}

// Total is the number of distinct paths the batch covered.
func (r RelocationReport) Total() int {
	return len(r.Succeeded) + len(r.Failed)
}

// Outcomes returns per-path outcomes in the order they were recorded.
// Reports built without Record (e.g. decoded from JSON) list successes first.
func (r RelocationReport) Outcomes() []RelocationOutcome {
	failed := make(map[string]string, len(r.Failed))
	for _, f := range r.Failed {
		failed[f.Path] = f.Reason
	}

	order := r.order
	if len(order) != r.Total() {
		order = make([]string, 0, r.Total())
		order = append(order, r.Succeeded...)
		for _, f := range r.Failed {
			order = append(order, f.Path)
		}
	}

	out := make([]RelocationOutcome, 0, len(order))
	for _, p := range order {
		if reason, ok := failed[p]; ok {
			out = append(out, RelocationOutcome{Path: p, Status: StatusFailed, Reason: reason})
			continue
		}
		out = append(out, RelocationOutcome{Path: p, Status: StatusMoved})
	}
	return out
}
