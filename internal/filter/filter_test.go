package filter

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sena-ops/sentrius/internal/model"
)

func scenario() []model.Finding {
	return []model.Finding{
		{ID: "1", Tool: "Trivy", Severity: model.SevHigh, Message: "Vulnerability CVE-2023-1234 in dependency abc", File: "package.json", Line: 0},
		{ID: "2", Tool: "Semgrep", Severity: model.SevMedium, Message: "SQL injection risk", File: "src/db.js", Line: 42},
	}
}

func mixed() []model.Finding {
	return []model.Finding{
		{ID: "a", Tool: "trivy", Severity: model.SevCritical, Message: "Outdated openssl", File: "Dockerfile"},
		{ID: "b", Tool: "semgrep", Severity: model.SevHigh, Message: "Hardcoded password", File: "config/app.go", Line: 12},
		{ID: "c", Tool: "gitleaks", Severity: model.SevHigh, Message: "AWS key", File: "deploy/SQL/seed.sql", Line: 3},
		{ID: "d", Tool: "trivy", Severity: "UNKNOWN", Message: "weird", File: ""},
		{ID: "e", Tool: "semgrep", Severity: model.SevLow, Message: "Use of sql.Open without ping", File: "db.go", Line: 7},
		{ID: "f", Tool: "kics", Severity: model.SevInfo, Message: "Missing label", File: "k8s/pod.yaml", Line: 1},
	}
}

func ids(fs []model.Finding) []string {
	out := make([]string, 0, len(fs))
	for _, f := range fs {
		out = append(out, f.ID)
	}
	return out
}

func TestApply_Scenarios(t *testing.T) {
	tests := []struct {
		name string
		spec model.FilterSpec
		want []string
	}{
		{"severity high", model.FilterSpec{Severity: "HIGH", Tool: model.All}, []string{"1"}},
		{"search sql is case-insensitive", model.FilterSpec{Severity: model.All, Tool: model.All, Search: "sql"}, []string{"2"}},
		{"search matches file", model.FilterSpec{Severity: model.All, Tool: model.All, Search: "PACKAGE"}, []string{"1"}},
		{"tool exact match", model.FilterSpec{Severity: model.All, Tool: "Semgrep"}, []string{"2"}},
		{"tool is case-sensitive", model.FilterSpec{Severity: model.All, Tool: "semgrep"}, []string{}},
		{"severity is case-sensitive", model.FilterSpec{Severity: "high", Tool: model.All}, []string{}},
		{"unknown severity matches nothing", model.FilterSpec{Severity: "BOGUS", Tool: model.All}, []string{}},
		{"predicates are ANDed", model.FilterSpec{Severity: "HIGH", Tool: "Semgrep"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(scenario(), tt.spec)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestApply_IdentitySpec(t *testing.T) {
	in := mixed()
	got := Apply(in, model.DefaultFilter())
	assert.Equal(t, in, got)
}

func TestApply_EmptyInput(t *testing.T) {
	got := Apply(nil, model.FilterSpec{Severity: "HIGH", Tool: model.All})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func specs() []model.FilterSpec {
	var out []model.FilterSpec
	sevs := append(SeverityOptions(), "UNKNOWN", "bogus")
	tools := []string{model.All, "trivy", "semgrep", "gitleaks", "kics", "Trivy"}
	searches := []string{"", "sql", "SQL", "go", "zzz", "/"}
	for _, s := range sevs {
		for _, tl := range tools {
			for _, q := range searches {
				out = append(out, model.FilterSpec{Severity: s, Tool: tl, Search: q})
			}
		}
	}
	return out
}

func TestApply_Properties(t *testing.T) {
	in := mixed()
	for _, spec := range specs() {
		t.Run(fmt.Sprintf("%s/%s/%q", spec.Severity, spec.Tool, spec.Search), func(t *testing.T) {
			got := Apply(in, spec)

			// Membership equals independent predicate evaluation.
			var want []string
			for _, f := range in {
				if Match(f, spec) {
					want = append(want, f.ID)
				}
			}
			if want == nil {
				want = []string{}
			}
			require.Equal(t, want, ids(got))

			// Idempotent.
			assert.Equal(t, got, Apply(got, spec))

			// Order preserved: positions in the input are strictly increasing.
			last := -1
			for _, f := range got {
				pos := -1
				for i, orig := range in {
					if orig.ID == f.ID {
						pos = i
						break
					}
				}
				require.Greater(t, pos, last)
				last = pos
			}
		})
	}
}

func TestToolOptions(t *testing.T) {
	assert.Equal(t, []string{model.All}, ToolOptions(nil))
	assert.Equal(t, []string{model.All, "trivy", "semgrep", "gitleaks", "kics"}, ToolOptions(mixed()))
	assert.Equal(t, []string{model.All, "Trivy", "Semgrep"}, ToolOptions(scenario()))
}

func TestSeverityOptions(t *testing.T) {
	assert.Equal(t, []string{"ALL", "CRITICAL", "HIGH", "MEDIUM", "LOW", "INFO"}, SeverityOptions())
}
