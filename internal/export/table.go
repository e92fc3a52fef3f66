// Package export serialises findings for consumers outside the engine.
package export

import (
	"io"
	"strconv"
	"strings"

	"github.com/Sena-ops/sentrius/internal/model"
)

// TableHeader is the fixed column order of the tabular export.
var TableHeader = []string{"Tool", "Severity", "Message", "File", "Line"}

// Table renders findings as CSV text: the header row, then one row per finding
// in input order. Every field is double-quoted and embedded quotes are doubled
// (RFC 4180). Rows are separated by "\n" with no trailing newline.
func Table(findings []model.Finding) string {
	var b strings.Builder
	writeRow(&b, TableHeader)
	for _, f := range findings {
		b.WriteByte('\n')
		writeRow(&b, row(f))
	}
	return b.String()
}

// WriteTable writes Table(findings) to w.
func WriteTable(w io.Writer, findings []model.Finding) error {
	_, err := io.WriteString(w, Table(findings))
	return err
}

func row(f model.Finding) []string {
	return []string{f.Tool, string(f.Severity), f.Message, f.File, strconv.Itoa(f.Line)}
}

func writeRow(b *strings.Builder, fields []string) {
	for i, v := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(v, `"`, `""`))
		b.WriteByte('"')
	}
}
