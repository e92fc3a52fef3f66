package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Sena-ops/sentrius/internal/model"
)

const (
	sarifVersion = "2.1.0"
	sarifSchema  = "https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json"
)

type SarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []SarifRun `json:"runs"`
}

type SarifRun struct {
	Tool    SarifTool     `json:"tool"`
	Results []SarifResult `json:"results"`
}

type SarifTool struct {
	Driver SarifDriver `json:"driver"`
}

type SarifDriver struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type SarifResult struct {
	RuleID    string          `json:"ruleId"`
	Message   SarifMessage    `json:"message"`
	Level     string          `json:"level"` // error, warning, note
	Locations []SarifLocation `json:"locations"`
	// Properties keep the originating scanner so runs can be merged.
	Properties map[string]string `json:"properties,omitempty"`
}

type SarifMessage struct {
	Text string `json:"text"`
}

type SarifLocation struct {
	PhysicalLocation SarifPhysicalLocation `json:"physicalLocation"`
}

type SarifPhysicalLocation struct {
	ArtifactLocation SarifArtifactLocation `json:"artifactLocation"`
	Region           SarifRegion           `json:"region"`
}

type SarifArtifactLocation struct {
	URI string `json:"uri"`
}

type SarifRegion struct {
	StartLine int `json:"startLine"`
}

// Sarif converts findings into a single-run SARIF 2.1.0 log.
func Sarif(findings []model.Finding, toolName, toolVersion string) SarifLog {
	results := make([]SarifResult, 0, len(findings))
	for _, f := range findings {
		fileURI := toURI(f.File)
		if fileURI == "" {
			fileURI = "UNKNOWN"
		}
		start := f.Line
		if start <= 0 {
			start = 1
		}
		ruleID := f.RuleID
		if ruleID == "" {
			ruleID = f.Tool
		}

		results = append(results, SarifResult{
			RuleID:  ruleID,
			Level:   sevToLevel(f.Severity),
			Message: SarifMessage{Text: strings.TrimSpace(f.Message)},
			Locations: []SarifLocation{
				{
					PhysicalLocation: SarifPhysicalLocation{
						ArtifactLocation: SarifArtifactLocation{URI: fileURI},
						Region:           SarifRegion{StartLine: start},
					},
				},
			},
			Properties: map[string]string{"tool": f.Tool, "severity": string(f.Severity)},
		})
	}

	return SarifLog{
		Version: sarifVersion,
		Schema:  sarifSchema,
		Runs: []SarifRun{
			{
				Tool:    SarifTool{Driver: SarifDriver{Name: toolName, Version: toolVersion}},
				Results: results,
			},
		},
	}
}

// WriteSarif encodes Sarif(findings, ...) as indented JSON.
func WriteSarif(w io.Writer, findings []model.Finding, toolName, toolVersion string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Sarif(findings, toolName, toolVersion)); err != nil {
		return fmt.Errorf("marshal sarif: %w", err)
	}
	return nil
}

// SarifFile writes outDir/fileBase.sarif and returns its path.
func SarifFile(findings []model.Finding, outDir, fileBase, toolName, toolVersion string) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create sarif dir: %w", err)
	}
	outPath := filepath.Join(outDir, fileBase+".sarif")

	f, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("create sarif file: %w", err)
	}
	defer f.Close()

	if err := WriteSarif(f, findings, toolName, toolVersion); err != nil {
		return "", err
	}
	return outPath, nil
}

// SortFindings orders findings by file, line and rule for stable reports. The
// engine itself never re-sorts; callers opt in.
func SortFindings(fs []model.Finding) {
	sort.SliceStable(fs, func(i, j int) bool {
		if fs[i].File == fs[j].File {
			if fs[i].Line == fs[j].Line {
				return fs[i].RuleID < fs[j].RuleID
			}
			return fs[i].Line < fs[j].Line
		}
		return fs[i].File < fs[j].File
	})
}

func sevToLevel(s model.Severity) string {
	switch s {
	case model.SevCritical, model.SevHigh:
		return "error"
	case model.SevMedium:
		return "warning"
	default:
		return "note"
	}
}

func toURI(p string) string {
	p = strings.TrimSpace(p)
	p = filepath.ToSlash(p)
	for strings.HasPrefix(p, "../") {
		p = strings.TrimPrefix(p, "../")
	}
	return strings.TrimPrefix(p, "./")
}
