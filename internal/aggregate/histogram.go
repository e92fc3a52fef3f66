// Package aggregate counts findings per severity.
package aggregate

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/Sena-ops/sentrius/internal/model"
)

// Histogram holds one counter per severity of model.Severities. The zero value
// is a valid all-zero histogram.
type Histogram struct {
	counts [5]int
}

type Bucket struct {
	Severity model.Severity `json:"severity"`
	Count    int            `json:"count"`
}

// Count tallies findings by severity. Findings whose severity is outside the
// enumeration are skipped.
func Count(findings []model.Finding) Histogram {
	var h Histogram
	for _, f := range findings {
		if i := f.Severity.Index(); i >= 0 {
			h.counts[i]++
		}
	}
	return h
}

// Of returns the count for one severity; unknown severities count zero.
func (h Histogram) Of(s model.Severity) int {
	if i := s.Index(); i >= 0 {
		return h.counts[i]
	}
	return 0
}

func (h Histogram) Total() int {
	total := 0
	for _, c := range h.counts {
		total += c
	}
	return total
}

// Buckets returns every severity with its count in enumeration order.
func (h Histogram) Buckets() []Bucket {
	sevs := model.Severities()
	out := make([]Bucket, len(sevs))
	for i, s := range sevs {
		out[i] = Bucket{Severity: s, Count: h.counts[i]}
	}
	return out
}

// MarshalJSON encodes the histogram as an object whose keys follow the
// severity order instead of Go's sorted map order.
func (h Histogram) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, b := range h.Buckets() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(b.Severity))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(b.Count))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
