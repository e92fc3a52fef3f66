package adapters

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Sena-ops/sentrius/internal/model"
)

// WireFinding is a finding as produced by the scan backend or written in a
// findings file. The backend emits title/description and lowercase
// severities; hand-written files use message and uppercase ones.
type WireFinding struct {
	ID          string `json:"id" yaml:"id"`
	Tool        string `json:"tool" yaml:"tool"`
	Severity    string `json:"severity" yaml:"severity"`
	RuleID      string `json:"rule_id" yaml:"rule_id"`
	Message     string `json:"message" yaml:"message"`
	Title       string `json:"title" yaml:"title"`
	Description any    `json:"description" yaml:"description"` // string | list | null
	File        string `json:"file" yaml:"file"`
	Line        int    `json:"line" yaml:"line"`
}

// WireResponse is the scan result envelope.
type WireResponse struct {
	Repo     string        `json:"repo" yaml:"repo"`
	Branch   string        `json:"branch" yaml:"branch"`
	Findings []WireFinding `json:"findings" yaml:"findings"`
}

// Normalize converts wire findings into model findings: severity upper-cased,
// message taken from message, title or description, ids filled in.
func Normalize(in []WireFinding) []model.Finding {
	out := make([]model.Finding, 0, len(in))
	for _, w := range in {
		desc, _ := w.Description.(string)
		id := w.ID
		if id == "" {
			id = newID()
		}
		out = append(out, model.Finding{
			ID:       id,
			Tool:     w.Tool,
			Severity: model.NormalizeSeverity(w.Severity),
			Message:  firstNonEmpty(w.Message, w.Title, desc, w.RuleID),
			File:     w.File,
			Line:     safeLine(w.Line),
			RuleID:   w.RuleID,
		})
	}
	return out
}

// ParseFindingsBytes reads a findings document, either an envelope with a
// findings key or a bare list, in JSON or YAML.
func ParseFindingsBytes(b []byte) ([]model.Finding, error) {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 {
		return []model.Finding{}, nil
	}

	switch trimmed[0] {
	case '{':
		var env WireResponse
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("decode findings json: %w", err)
		}
		return Normalize(env.Findings), nil
	case '[':
		var list []WireFinding
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("decode findings json: %w", err)
		}
		return Normalize(list), nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal(trimmed, &node); err != nil {
		return nil, fmt.Errorf("decode findings yaml: %w", err)
	}
	if len(node.Content) > 0 && node.Content[0].Kind == yaml.SequenceNode {
		var list []WireFinding
		if err := node.Decode(&list); err != nil {
			return nil, fmt.Errorf("decode findings yaml: %w", err)
		}
		return Normalize(list), nil
	}
	var env WireResponse
	if err := node.Decode(&env); err != nil {
		return nil, fmt.Errorf("decode findings yaml: %w", err)
	}
	return Normalize(env.Findings), nil
}

// Formats accepted by ParseFile.
const (
	FormatFindings = "findings"
	FormatTrivy    = "trivy"
	FormatSemgrep  = "semgrep"
	FormatKICS     = "kics"
	FormatGitleaks = "gitleaks"
)

var parsers = map[string]func([]byte) ([]model.Finding, error){
	FormatFindings: ParseFindingsBytes,
	FormatTrivy:    ParseTrivyBytes,
	FormatSemgrep:  ParseSemgrepBytes,
	FormatKICS:     ParseKICSBytes,
	FormatGitleaks: ParseGitleaksBytes,
}

// ParseBytes dispatches to the parser registered for format. An empty format
// or FormatAuto detects it from b.
func ParseBytes(format string, b []byte) ([]model.Finding, error) {
	fn, ok := parsers[resolveFormat(format, b)]
	if !ok {
		return nil, fmt.Errorf("unsupported report format %q", format)
	}
	return fn(b)
}

func ParseFile(format, path string) ([]model.Finding, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	return ParseBytes(format, b)
}
