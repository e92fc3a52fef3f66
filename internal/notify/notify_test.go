package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Sena-ops/sentrius/internal/model"
)

func hook(t *testing.T, status int, got *map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(got))
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "[Sentrius][CRITICAL] 2 findings", Format("2 findings", "critical"))
}

func TestBroadcast(t *testing.T) {
	var slack, discord map[string]string
	s := hook(t, http.StatusOK, &slack)
	d := hook(t, http.StatusNoContent, &discord)

	n := New(s.URL, d.URL, nil, zaptest.NewLogger(t).Sugar())
	res := n.Broadcast(context.Background(), "hello", "info")

	require.Len(t, res, 2)
	for _, st := range res {
		assert.NoError(t, st.Err)
		assert.False(t, st.Skipped)
	}
	assert.Equal(t, "[Sentrius][INFO] hello", slack["text"])
	assert.Equal(t, "[Sentrius][INFO] hello", discord["content"])
}

func TestBroadcast_SkipsUnconfigured(t *testing.T) {
	n := New("", "", nil, nil)
	for _, st := range n.Broadcast(context.Background(), "x", "info") {
		assert.True(t, st.Skipped)
		assert.NoError(t, st.Err)
	}
}

func TestBroadcast_FailureIsReported(t *testing.T) {
	var body map[string]string
	s := hook(t, http.StatusForbidden, &body)

	n := New(s.URL, "http://127.0.0.1:0/unreachable", nil, zaptest.NewLogger(t).Sugar())
	res := n.Broadcast(context.Background(), "x", "info")

	assert.Equal(t, http.StatusForbidden, res[0].Code)
	assert.True(t, model.IsTransport(res[0].Err))
	assert.True(t, model.IsTransport(res[1].Err))
	assert.NotContains(t, res[1].Err.Error(), "unreachable", "webhook url is not leaked")
}

func TestScanAlert(t *testing.T) {
	var slack map[string]string
	s := hook(t, http.StatusOK, &slack)
	n := New(s.URL, "", nil, nil)

	findings := []model.Finding{
		{Severity: model.SevCritical},
		{Severity: model.SevHigh},
		{Severity: model.SevLow},
	}
	_, sent := n.ScanAlert(context.Background(), "https://github.com/org/app", "main", findings)
	require.True(t, sent)
	assert.Equal(t, "[Sentrius][CRITICAL] 2 high/critical findings in https://github.com/org/app (main)", slack["text"])

	_, sent = n.ScanAlert(context.Background(), "r", "main", findings[2:])
	assert.False(t, sent)
}
