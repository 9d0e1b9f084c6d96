package patch

// PassStats counts the interventions one pass performed during a single run.
// Counters are write-once per pipeline invocation: every pass instance is
// created fresh by the orchestrator and discarded afterwards.
type PassStats struct {
	// Fixed counts in-place repairs (rewritten statements, completed headers).
	Fixed int `json:"fixed"`
	// Merged counts multi-line constructs folded into one line.
	Merged int `json:"merged"`
	// Removed counts lines or regions deleted from the output.
	Removed int `json:"removed"`
	// Inserted counts synthesized lines (endcase, genvar, generate scaffolding).
	Inserted int `json:"inserted"`
}

// Total returns the number of interventions across all counters.
func (s PassStats) Total() int {
	return s.Fixed + s.Merged + s.Removed + s.Inserted
}

// IsZero reports whether the pass changed nothing.
func (s PassStats) IsZero() bool { return s.Total() == 0 }

// Report aggregates per-pass statistics for one pipeline run.
type Report struct {
	Assign   PassStats `json:"assign"`
	Case     PassStats `json:"case"`
	IfElse   PassStats `json:"if_else"`
	Always   PassStats `json:"always"`
	Generate PassStats `json:"generate"`
	Cleanup  PassStats `json:"cleanup"`
}

// TotalFixes returns the aggregate intervention count across all passes.
func (r Report) TotalFixes() int {
	return r.Assign.Total() + r.Case.Total() + r.IfElse.Total() +
		r.Always.Total() + r.Generate.Total() + r.Cleanup.Total()
}

// Passes returns the per-pass stats in pipeline order, for formatting.
func (r Report) Passes() []struct {
	Name  string
	Stats PassStats
} {
	return []struct {
		Name  string
		Stats PassStats
	}{
		{"assign", r.Assign},
		{"case", r.Case},
		{"if-else", r.IfElse},
		{"always", r.Always},
		{"generate", r.Generate},
		{"cleanup", r.Cleanup},
	}
}
