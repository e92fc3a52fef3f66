// Package sink delivers export payloads to remote ingestion systems.
package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Sena-ops/sentrius/internal/export"
	"github.com/Sena-ops/sentrius/internal/model"
)

// HTTP posts the payload as JSON to an ingestion endpoint, typically the scan
// service's /export_splunk route which forwards to a Splunk HEC.
type HTTP struct {
	URL string
	// SourceType and Source override the payload metadata when set.
	SourceType string
	Source     string

	client *http.Client
	log    *zap.SugaredLogger
}

func NewHTTP(url string, timeout time.Duration, client *http.Client, log *zap.SugaredLogger) *HTTP {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &HTTP{URL: url, client: client, log: log}
}

func (s *HTTP) Send(ctx context.Context, p export.Payload) error {
	p = withMeta(p, s.SourceType, s.Source)

	body, err := json.Marshal(p)
	if err != nil {
		return &model.TransportError{Op: "export", URL: s.URL, Err: fmt.Errorf("encode payload: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
	if err != nil {
		return &model.TransportError{Op: "export", URL: s.URL, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return &model.TransportError{Op: "export", URL: s.URL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		detail := strings.TrimSpace(string(msg))
		if detail == "" {
			detail = http.StatusText(resp.StatusCode)
		}
		return &model.TransportError{Op: "export", URL: s.URL, StatusCode: resp.StatusCode, Err: errors.New(detail)}
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	s.log.Debugw("export delivered", "sink", "http", "url", s.URL, "findings", len(p.Findings), "status", resp.StatusCode)
	return nil
}

func withMeta(p export.Payload, sourceType, source string) export.Payload {
	if sourceType != "" {
		p.SourceType = sourceType
	}
	if source != "" {
		p.Source = source
	}
	return p
}
