package backend

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

	"github.com/cenkalti/backoff"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Sena-ops/sentrius/internal/adapters"
	"github.com/Sena-ops/sentrius/internal/model"
)

const maxResponseBytes = 32 << 20

var (
	ErrNoTarget          = errors.New("repository url or local path required")
	ErrInvalidRepository = errors.New("invalid repository reference")
)

type HTTPConfig struct {
	BaseURL string
	Timeout time.Duration
	// Retries bounds the extra attempts made after network errors and 5xx
	// responses. 4xx and undecodable bodies are never retried.
	Retries uint64
	// RPS paces outgoing requests, retries included. Zero disables pacing.
	RPS float64
}

// HTTP talks to the scan service: POST {BaseURL}/scan.
type HTTP struct {
	scanURL    string
	client     *http.Client
	limiter    *rate.Limiter
	retries    uint64
	newBackOff func() backoff.BackOff
	log        *zap.SugaredLogger
}

func NewHTTP(cfg HTTPConfig, client *http.Client, log *zap.SugaredLogger) *HTTP {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}
	return &HTTP{
		scanURL: strings.TrimRight(cfg.BaseURL, "/") + "/scan",
		client:  client,
		limiter: rate.NewLimiter(limit, 1),
		retries: cfg.Retries,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			b.MaxElapsedTime = time.Minute
			return b
		},
		log: log,
	}
}

func (c *HTTP) Fetch(ctx context.Context, req Request) ([]model.Finding, error) {
	repo, err := validateRequest(req)
	if err != nil {
		return nil, &model.TransportError{Op: "scan", URL: c.scanURL, Err: err}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, &model.TransportError{Op: "scan", URL: c.scanURL, Err: fmt.Errorf("encode request: %w", err)}
	}

	var (
		findings  []model.Finding
		permanent error
		attempt   int
	)
	operation := func() error {
		attempt++
		if err := c.limiter.Wait(ctx); err != nil {
			permanent = &model.TransportError{Op: "scan", URL: c.scanURL, Err: err}
			return nil
		}
		f, err := c.post(ctx, body)
		if err != nil {
			if retryable(err) {
				c.log.Debugw("scan request failed, retrying", "repo", repo, "attempt", attempt, "err", err)
				return err
			}
			permanent = err
			return nil
		}
		findings = f
		return nil
	}

	b := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), c.retries), ctx)
	if err := backoff.Retry(operation, b); err != nil {
		return nil, err
	}
	if permanent != nil {
		return nil, permanent
	}

	c.log.Debugw("scan response decoded", "repo", repo, "findings", len(findings), "attempts", attempt)
	return findings, nil
}

func (c *HTTP) post(ctx context.Context, body []byte) ([]model.Finding, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.scanURL, bytes.NewReader(body))
	if err != nil {
		return nil, &model.TransportError{Op: "scan", URL: c.scanURL, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, &model.TransportError{Op: "scan", URL: c.scanURL, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &model.TransportError{Op: "scan", URL: c.scanURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &model.TransportError{Op: "scan", URL: c.scanURL, StatusCode: resp.StatusCode, Err: errors.New(snippet(data))}
	}

	var env adapters.WireResponse
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &model.TransportError{Op: "scan", URL: c.scanURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return adapters.Normalize(env.Findings), nil
}

// retryable is true for network failures and 5xx responses.
func retryable(err error) bool {
	var te *model.TransportError
	if !errors.As(err, &te) {
		return false
	}
	return te.StatusCode == 0 || te.StatusCode >= 500
}

// validateRequest checks the repository reference and returns it with any
// credentials stripped, for logging.
func validateRequest(req Request) (string, error) {
	if req.RepoURL == "" {
		if req.LocalPath == "" {
			return "", ErrNoTarget
		}
		return req.LocalPath, nil
	}

	ep, err := transport.NewEndpoint(req.RepoURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRepository, err)
	}
	switch ep.Protocol {
	case "http", "https", "ssh", "git":
	default:
		return "", fmt.Errorf("%w: unsupported protocol %q", ErrInvalidRepository, ep.Protocol)
	}
	if ep.Host == "" {
		return "", fmt.Errorf("%w: missing host", ErrInvalidRepository)
	}
	ep.Password = ""
	return ep.String(), nil
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	if s == "" {
		s = "empty response body"
	}
	return s
}
