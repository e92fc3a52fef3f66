package model

// FilterSpec holds the narrowing criteria chosen by the user. Severity and Tool
// are either All or a concrete value; Search is matched case-insensitively
// against Message and File.
type FilterSpec struct {
	Severity string `json:"severity"`
	Tool     string `json:"tool"`
	Search   string `json:"search"`
}

// DefaultFilter returns the pass-everything spec.
func DefaultFilter() FilterSpec {
	return FilterSpec{Severity: All, Tool: All}
}

// FilterPatch is a partial FilterSpec; nil fields leave the current value alone.
type FilterPatch struct {
	Severity *string
	Tool     *string
	Search   *string
}

// Merge returns s with every non-nil field of p applied.
func (s FilterSpec) Merge(p FilterPatch) FilterSpec {
	if p.Severity != nil {
		s.Severity = *p.Severity
	}
	if p.Tool != nil {
		s.Tool = *p.Tool
	}
	if p.Search != nil {
		s.Search = *p.Search
	}
	return s
}
