package model

import "strings"

type Severity string

const (
	SevCritical Severity = "CRITICAL"
	SevHigh     Severity = "HIGH"
	SevMedium   Severity = "MEDIUM"
	SevLow      Severity = "LOW"
	SevInfo     Severity = "INFO"
)

// All is the filter sentinel that matches every severity or tool.
const All = "ALL"

var severities = []Severity{SevCritical, SevHigh, SevMedium, SevLow, SevInfo}

// Severities returns the closed enumeration, most severe first.
func Severities() []Severity {
	out := make([]Severity, len(severities))
	copy(out, severities)
	return out
}

// Index returns the position of s in Severities, or -1 when s is not part of
// the enumeration.
func (s Severity) Index() int {
	for i, v := range severities {
		if v == s {
			return i
		}
	}
	return -1
}

func (s Severity) Known() bool { return s.Index() >= 0 }

func (s Severity) String() string { return string(s) }

// NormalizeSeverity trims and upper-cases a raw severity. Values outside the
// enumeration are kept so downstream code can ignore them.
func NormalizeSeverity(raw string) Severity {
	return Severity(strings.ToUpper(strings.TrimSpace(raw)))
}

type Finding struct {
	ID       string   `json:"id" yaml:"id"`
	Tool     string   `json:"tool" yaml:"tool"`         // case-sensitive scanner name
	Severity Severity `json:"severity" yaml:"severity"` // normalized at ingestion
	Message  string   `json:"message" yaml:"message"`
	File     string   `json:"file" yaml:"file"` // empty for non-file findings
	Line     int      `json:"line" yaml:"line"` // 0 = not applicable
	RuleID   string   `json:"rule_id,omitempty" yaml:"rule_id,omitempty"`
	HelpURI  string   `json:"help_uri,omitempty" yaml:"help_uri,omitempty"`
	CWE      []string `json:"cwe,omitempty" yaml:"cwe,omitempty"`
}
