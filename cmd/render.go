package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Sena-ops/sentrius/internal/aggregate"
	"github.com/Sena-ops/sentrius/internal/export"
	"github.com/Sena-ops/sentrius/internal/model"
	"github.com/Sena-ops/sentrius/internal/session"
)

const (
	toolName    = "Sentrius"
	toolVersion = "0.1.0"
)

var outputFormats = []string{"table", "csv", "json", "markdown", "sarif"}

type view struct {
	Repo      string              `json:"repo,omitempty"`
	Filter    model.FilterSpec    `json:"filter"`
	Histogram aggregate.Histogram `json:"histogram"`
	Findings  []model.Finding     `json:"findings"`
}

// render writes the filtered view of c in format. The histogram always
// describes exactly the findings printed.
func render(w io.Writer, format string, c *session.Controller, sorted bool) error {
	findings := c.Filtered()
	if sorted {
		export.SortFindings(findings)
	}

	switch strings.ToLower(format) {
	case "", "table":
		return renderTable(w, c.Histogram(), findings)
	case "csv":
		if err := export.WriteTable(w, findings); err != nil {
			return err
		}
		_, err := fmt.Fprintln(w)
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(view{Repo: c.RepoRef(), Filter: c.Filter(), Histogram: c.Histogram(), Findings: findings})
	case "markdown":
		return renderMarkdown(w, c.RepoRef(), c.Histogram(), findings)
	case "sarif":
		return export.WriteSarif(w, findings, toolName, toolVersion)
	}
	return fmt.Errorf("unknown output format %q (want one of %s)", format, strings.Join(outputFormats, ", "))
}

func renderTable(w io.Writer, h aggregate.Histogram, findings []model.Finding) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEVERITY\tTOOL\tFILE\tLINE\tMESSAGE")
	for _, f := range findings {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", f.Severity, f.Tool, f.File, f.Line, f.Message)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%s\n", summary(h))
	return err
}

func renderMarkdown(w io.Writer, repo string, h aggregate.Histogram, findings []model.Finding) error {
	var b strings.Builder
	b.WriteString("## Sentrius findings")
	if repo != "" {
		fmt.Fprintf(&b, " for %s", repo)
	}
	b.WriteString("\n\n| Severity | Count |\n|---|---|\n")
	for _, bk := range h.Buckets() {
		fmt.Fprintf(&b, "| %s | %d |\n", bk.Severity, bk.Count)
	}
	b.WriteString("\n| Severity | Tool | File | Line | Message |\n|---|---|---|---|---|\n")
	for _, f := range findings {
		fmt.Fprintf(&b, "| %s | %s | %s | %d | %s |\n", f.Severity, f.Tool, mdEscape(f.File), f.Line, mdEscape(f.Message))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func summary(h aggregate.Histogram) string {
	parts := make([]string, 0, len(h.Buckets()))
	for _, bk := range h.Buckets() {
		parts = append(parts, fmt.Sprintf("%s:%d", bk.Severity, bk.Count))
	}
	return fmt.Sprintf("%d findings (%s)", h.Total(), strings.Join(parts, " "))
}

func mdEscape(s string) string {
	return strings.NewReplacer("|", `\|`, "\n", " ").Replace(s)
}
