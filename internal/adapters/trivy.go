package adapters

import (
	"encoding/json"
	"path/filepath"

	"github.com/Sena-ops/sentrius/internal/model"
)

// Covers both `trivy fs` (Vulnerabilities) and `trivy config` (Misconfigurations).
type trivyJSON struct {
	Results []struct {
		Target          string `json:"Target"`
		Vulnerabilities []struct {
			VulnerabilityID  string   `json:"VulnerabilityID"`
			PkgName          string   `json:"PkgName"`
			InstalledVersion string   `json:"InstalledVersion"`
			FixedVersion     string   `json:"FixedVersion"`
			Title            string   `json:"Title"`
			Description      string   `json:"Description"`
			Severity         string   `json:"Severity"`
			PrimaryURL       string   `json:"PrimaryURL"`
			References       []string `json:"References"`
			CweIDs           []string `json:"CweIDs"`
		} `json:"Vulnerabilities"`
		Misconfigurations []struct {
			ID            string   `json:"ID"`
			Title         string   `json:"Title"`
			Description   string   `json:"Description"`
			Severity      string   `json:"Severity"`
			PrimaryURL    string   `json:"PrimaryURL"`
			References    []string `json:"References"`
			CauseMetadata struct {
				StartLine int `json:"StartLine"`
			} `json:"CauseMetadata"`
		} `json:"Misconfigurations"`
	} `json:"Results"`
}

func ParseTrivyBytes(b []byte) ([]model.Finding, error) {
	var doc trivyJSON
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}

	out := []model.Finding{}
	for _, r := range doc.Results {
		target := filepath.ToSlash(r.Target)
		for _, v := range r.Vulnerabilities {
			title := firstNonEmpty(v.Title, v.PkgName, "Vulnerability")
			out = append(out, model.Finding{
				ID:       newID(),
				Tool:     "trivy",
				RuleID:   v.VulnerabilityID,
				Severity: model.NormalizeSeverity(firstNonEmpty(v.Severity, "UNKNOWN")),
				Message:  vulnMessage(v.VulnerabilityID, title, v.PkgName),
				File:     target,
				HelpURI:  firstNonEmpty(v.PrimaryURL, first(v.References)),
				CWE:      v.CweIDs,
			})
		}
		for _, m := range r.Misconfigurations {
			out = append(out, model.Finding{
				ID:       newID(),
				Tool:     "trivy",
				RuleID:   m.ID,
				Severity: model.NormalizeSeverity(firstNonEmpty(m.Severity, "UNKNOWN")),
				Message:  firstNonEmpty(m.Description, m.Title, m.ID),
				File:     target,
				Line:     safeLine(m.CauseMetadata.StartLine),
				HelpURI:  firstNonEmpty(m.PrimaryURL, first(m.References)),
			})
		}
	}
	return out, nil
}

func vulnMessage(id, title, pkg string) string {
	msg := title
	if id != "" {
		msg = "Vulnerability " + id + ": " + title
	}
	if pkg != "" && pkg != title {
		msg += " in dependency " + pkg
	}
	return msg
}

func first(vals []string) string {
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}
