// Package notify posts short alerts to chat webhooks.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Sena-ops/sentrius/internal/model"
)

const defaultTimeout = 15 * time.Second

// Status reports what happened to one channel.
type Status struct {
	Channel string
	Skipped bool
	Code    int
	Err     error
}

type Notifier struct {
	SlackWebhook   string
	DiscordWebhook string

	client *http.Client
	log    *zap.SugaredLogger
}

func New(slack, discord string, client *http.Client, log *zap.SugaredLogger) *Notifier {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Notifier{SlackWebhook: slack, DiscordWebhook: discord, client: client, log: log}
}

// Format prefixes message with the product tag and the upper-cased level.
func Format(message, level string) string {
	return fmt.Sprintf("[Sentrius][%s] %s", strings.ToUpper(level), message)
}

func (n *Notifier) Slack(ctx context.Context, message, level string) Status {
	return n.post(ctx, "slack", n.SlackWebhook, map[string]string{"text": Format(message, level)})
}

func (n *Notifier) Discord(ctx context.Context, message, level string) Status {
	return n.post(ctx, "discord", n.DiscordWebhook, map[string]string{"content": Format(message, level)})
}

// Broadcast sends message to every configured channel. Failures are logged
// and reported in the result, never returned as an error.
func (n *Notifier) Broadcast(ctx context.Context, message, level string) []Status {
	return []Status{
		n.Slack(ctx, message, level),
		n.Discord(ctx, message, level),
	}
}

// ScanAlert broadcasts a critical alert when findings holds any HIGH or
// CRITICAL entry. It returns false when nothing was worth sending.
func (n *Notifier) ScanAlert(ctx context.Context, repo, branch string, findings []model.Finding) ([]Status, bool) {
	high := 0
	for _, f := range findings {
		if f.Severity == model.SevHigh || f.Severity == model.SevCritical {
			high++
		}
	}
	if high == 0 {
		return nil, false
	}
	msg := fmt.Sprintf("%d high/critical findings in %s (%s)", high, repo, branch)
	return n.Broadcast(ctx, msg, "critical"), true
}

func (n *Notifier) post(ctx context.Context, channel, webhook string, body any) Status {
	st := Status{Channel: channel}
	if webhook == "" {
		st.Skipped = true
		return st
	}

	data, err := json.Marshal(body)
	if err != nil {
		st.Err = err
		return st
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhook, bytes.NewReader(data))
	if err != nil {
		st.Err = &model.TransportError{Op: "notify", URL: channel, Err: err}
		n.log.Warnw("notification failed", "channel", channel, "err", st.Err)
		return st
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		// webhook urls carry secrets; report the channel only
		var ue *url.Error
		if errors.As(err, &ue) {
			err = ue.Err
		}
		st.Err = &model.TransportError{Op: "notify", URL: channel, Err: err}
		n.log.Warnw("notification failed", "channel", channel, "err", st.Err)
		return st
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	st.Code = resp.StatusCode
	if resp.StatusCode >= 300 {
		st.Err = &model.TransportError{Op: "notify", URL: channel, StatusCode: resp.StatusCode, Err: fmt.Errorf("webhook returned %s", resp.Status)}
		n.log.Warnw("notification rejected", "channel", channel, "status", resp.StatusCode)
		return st
	}
	n.log.Debugw("notification sent", "channel", channel, "status", resp.StatusCode)
	return st
}
