package adapters

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/Sena-ops/sentrius/internal/model"
)

type gitleaksFinding struct {
	Description string `json:"Description"`
	File        string `json:"File"`
	StartLine   int    `json:"StartLine"`
	RuleID      string `json:"RuleID"`
	Fingerprint string `json:"Fingerprint"`
}

// ParseGitleaksBytes reads a gitleaks JSON report. Every leak is reported as
// HIGH; the secret itself is never copied into the finding.
func ParseGitleaksBytes(b []byte) ([]model.Finding, error) {
	if len(strings.TrimSpace(string(b))) == 0 {
		return []model.Finding{}, nil
	}

	var doc []gitleaksFinding
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}

	out := make([]model.Finding, 0, len(doc))
	for _, g := range doc {
		id := g.Fingerprint
		if id == "" {
			id = newID()
		}
		out = append(out, model.Finding{
			ID:       id,
			Tool:     "gitleaks",
			RuleID:   g.RuleID,
			Severity: model.SevHigh,
			Message:  firstNonEmpty(g.Description, "Hardcoded secret"),
			File:     filepath.ToSlash(g.File),
			Line:     safeLine(g.StartLine),
		})
	}
	return out, nil
}
