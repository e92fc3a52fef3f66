package adapters

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/Sena-ops/sentrius/internal/model"
)

type semgrepJSON struct {
	Results []struct {
		CheckID string `json:"check_id"`
		Path    string `json:"path"`
		Start   struct {
			Line int `json:"line"`
		} `json:"start"`
		Extra struct {
			Message  string `json:"message"`
			Severity string `json:"severity"` // INFO|WARNING|ERROR
			Metadata struct {
				Cwe  interface{} `json:"cwe"`  // string | []string | null
				Refs []string    `json:"refs"` // links
			} `json:"metadata"`
		} `json:"extra"`
	} `json:"results"`
}

func ParseSemgrepBytes(b []byte) ([]model.Finding, error) {
	var doc semgrepJSON
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}

	out := make([]model.Finding, 0, len(doc.Results))
	for _, r := range doc.Results {
		out = append(out, model.Finding{
			ID:       newID(),
			Tool:     "semgrep",
			RuleID:   r.CheckID,
			Severity: semgrepSeverity(r.Extra.Severity),
			Message:  firstNonEmpty(r.Extra.Message, r.CheckID),
			File:     filepath.ToSlash(r.Path),
			Line:     safeLine(r.Start.Line),
			HelpURI:  first(r.Extra.Metadata.Refs),
			CWE:      toCwe(r.Extra.Metadata.Cwe),
		})
	}
	return out, nil
}

func semgrepSeverity(s string) model.Severity {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return model.SevHigh
	case "WARNING":
		return model.SevMedium
	default:
		return model.SevInfo
	}
}

func toCwe(v interface{}) []string {
	switch t := v.(type) {
	case string:
		if t != "" {
			return []string{t}
		}
	case []interface{}:
		out := []string{}
		for _, e := range t {
			if s, ok := e.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
