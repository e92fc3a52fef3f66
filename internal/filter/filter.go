// Package filter narrows a findings sequence by severity, tool and free-text
// search. Every function here is pure.
package filter

import (
	"strings"

	"github.com/Sena-ops/sentrius/internal/model"
)

// Apply returns the findings that satisfy every predicate of spec, in input
// order. Spec values other than model.All that no finding can carry simply
// match nothing.
func Apply(findings []model.Finding, spec model.FilterSpec) []model.Finding {
	term := strings.ToLower(spec.Search)

	out := make([]model.Finding, 0, len(findings))
	for _, f := range findings {
		if !matchSeverity(f, spec.Severity) {
			continue
		}
		if !matchTool(f, spec.Tool) {
			continue
		}
		if !matchSearch(f, term) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Match reports whether a single finding passes spec.
func Match(f model.Finding, spec model.FilterSpec) bool {
	return matchSeverity(f, spec.Severity) &&
		matchTool(f, spec.Tool) &&
		matchSearch(f, strings.ToLower(spec.Search))
}

func matchSeverity(f model.Finding, want string) bool {
	return want == model.All || string(f.Severity) == want
}

func matchTool(f model.Finding, want string) bool {
	return want == model.All || f.Tool == want
}

// term must already be lower-cased.
func matchSearch(f model.Finding, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(f.Message), term) ||
		strings.Contains(strings.ToLower(f.File), term)
}

// ToolOptions lists the values offered by the tool filter: model.All first,
// then each distinct tool in the order it first appears.
func ToolOptions(findings []model.Finding) []string {
	seen := make(map[string]struct{}, len(findings))
	out := []string{model.All}
	for _, f := range findings {
		if _, ok := seen[f.Tool]; ok {
			continue
		}
		seen[f.Tool] = struct{}{}
		out = append(out, f.Tool)
	}
	return out
}

// SeverityOptions lists the values offered by the severity filter.
func SeverityOptions() []string {
	out := []string{model.All}
	for _, s := range model.Severities() {
		out = append(out, string(s))
	}
	return out
}
