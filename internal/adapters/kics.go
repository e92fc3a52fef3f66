package adapters

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/Sena-ops/sentrius/internal/model"
)

type kicsQuery struct {
	QueryName   string `json:"query_name"`
	QueryID     string `json:"query_id"`
	QueryURL    string `json:"query_url"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
	CWE         string `json:"cwe"`
	Files       []struct {
		FileName string `json:"file_name"`
		Line     int    `json:"line"`
	} `json:"files"`
}

type kicsJSON struct {
	Queries []kicsQuery `json:"queries"`
}

// Older KICS builds emit "Queries".
type kicsJSONUpper struct {
	Queries []kicsQuery `json:"Queries"`
}

func ParseKICSBytes(b []byte) ([]model.Finding, error) {
	var doc kicsJSON
	err := json.Unmarshal(b, &doc)
	if err != nil || len(doc.Queries) == 0 {
		var up kicsJSONUpper
		if e2 := json.Unmarshal(b, &up); e2 == nil && len(up.Queries) > 0 {
			doc.Queries = up.Queries
			err = nil
		}
	}
	if err != nil {
		return nil, err
	}

	out := []model.Finding{}
	for _, q := range doc.Queries {
		msg := firstNonEmpty(strings.TrimSpace(q.Description), q.QueryName, q.QueryID)
		var cwe []string
		if strings.TrimSpace(q.CWE) != "" {
			cwe = []string{q.CWE}
		}
		for _, f := range q.Files {
			out = append(out, model.Finding{
				ID:       newID(),
				Tool:     "kics",
				RuleID:   q.QueryID,
				Severity: model.NormalizeSeverity(q.Severity),
				Message:  msg,
				File:     kicsPath(f.FileName),
				Line:     safeLine(f.Line),
				HelpURI:  q.QueryURL,
				CWE:      cwe,
			})
		}
	}
	return out, nil
}

// kicsPath strips the container mount prefixes (../../scan/..., ./, scan/).
func kicsPath(p string) string {
	fp := filepath.ToSlash(p)
	for strings.HasPrefix(fp, "../") {
		fp = strings.TrimPrefix(fp, "../")
	}
	fp = strings.TrimPrefix(fp, "./")
	fp = strings.TrimPrefix(fp, "/scan/")
	return strings.TrimPrefix(fp, "scan/")
}
