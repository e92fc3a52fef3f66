package adapters

import (
	"bytes"
	"encoding/json"
	"strings"
)

// FormatAuto asks ParseBytes to sniff the report format from its content.
const FormatAuto = "auto"

// DetectFormat guesses which scanner wrote b by looking at its top-level
// keys. Anything unrecognised, YAML included, is treated as a findings
// document.
func DetectFormat(b []byte) string {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 {
		return FormatFindings
	}

	switch trimmed[0] {
	case '[':
		var items []map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil || len(items) == 0 {
			return FormatFindings
		}
		if hasAny(items[0], "Fingerprint", "StartLine", "Secret") {
			return FormatGitleaks
		}
	case '{':
		var doc map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return FormatFindings
		}
		switch {
		case hasAny(doc, "findings"):
			return FormatFindings
		case hasAny(doc, "SchemaVersion", "ArtifactName", "Results"):
			return FormatTrivy
		case hasAny(doc, "kics_version", "queries", "Queries"):
			return FormatKICS
		case hasAny(doc, "results") && semgrepResults(doc["results"]):
			return FormatSemgrep
		}
	}
	return FormatFindings
}

func hasAny(m map[string]json.RawMessage, keys ...string) bool {
	for _, k := range keys {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}

func semgrepResults(raw json.RawMessage) bool {
	var rs []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &rs); err != nil {
		return false
	}
	return len(rs) == 0 || hasAny(rs[0], "check_id")
}

func resolveFormat(format string, b []byte) string {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" || format == FormatAuto {
		return DetectFormat(b)
	}
	return format
}
