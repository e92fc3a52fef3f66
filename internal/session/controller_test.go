package session

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Sena-ops/sentrius/internal/aggregate"
	"github.com/Sena-ops/sentrius/internal/backend"
	"github.com/Sena-ops/sentrius/internal/export"
	"github.com/Sena-ops/sentrius/internal/model"
)

type mockBackend struct{ mock.Mock }

func (m *mockBackend) Fetch(ctx context.Context, req backend.Request) ([]model.Finding, error) {
	args := m.Called(ctx, req)
	var out []model.Finding
	if v := args.Get(0); v != nil {
		out = v.([]model.Finding)
	}
	return out, args.Error(1)
}

type mockSink struct{ mock.Mock }

func (m *mockSink) Send(ctx context.Context, p export.Payload) error {
	return m.Called(ctx, p).Error(0)
}

func ptr(s string) *string { return &s }

func newDemo(t *testing.T, opts ...Option) *Controller {
	opts = append(opts, WithLogger(zaptest.NewLogger(t).Sugar()))
	c := New(backend.Demo{}, opts...)
	require.NoError(t, c.Scan(context.Background(), "https://github.com/org/app"))
	return c
}

func counts(h aggregate.Histogram) map[model.Severity]int {
	out := map[model.Severity]int{}
	for _, b := range h.Buckets() {
		out[b.Severity] = b.Count
	}
	return out
}

func TestController_InitialState(t *testing.T) {
	c := New(backend.Demo{})
	assert.Empty(t, c.Findings())
	assert.Empty(t, c.Filtered())
	assert.Equal(t, 0, c.Histogram().Total())
	assert.Equal(t, model.DefaultFilter(), c.Filter())
	assert.Equal(t, []string{model.All}, c.ToolOptions())
}

func TestController_ScanDemo(t *testing.T) {
	c := newDemo(t)
	assert.Len(t, c.Findings(), 2)
	assert.Equal(t, c.Findings(), c.Filtered())
	assert.Equal(t, "https://github.com/org/app", c.RepoRef())
	assert.Equal(t, []string{model.All, "Trivy", "Semgrep"}, c.ToolOptions())
	assert.Equal(t, 1, c.Histogram().Of(model.SevHigh))
	assert.Equal(t, 1, c.Histogram().Of(model.SevMedium))
}

func TestController_SeverityFilterScenario(t *testing.T) {
	c := newDemo(t)
	c.SetFilter(model.FilterPatch{Severity: ptr("HIGH")})

	got := c.Filtered()
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, map[model.Severity]int{
		model.SevCritical: 0, model.SevHigh: 1, model.SevMedium: 0, model.SevLow: 0, model.SevInfo: 0,
	}, counts(c.Histogram()))
}

func TestController_SearchScenario(t *testing.T) {
	c := newDemo(t)
	c.SetFilter(model.FilterPatch{Search: ptr("sql")})

	got := c.Filtered()
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].ID)
	assert.Equal(t, model.FilterSpec{Severity: model.All, Tool: model.All, Search: "sql"}, c.Filter())
}

func TestController_SetFilterMerges(t *testing.T) {
	c := newDemo(t)
	c.SetFilter(model.FilterPatch{Tool: ptr("Semgrep")})
	c.SetFilter(model.FilterPatch{Search: ptr("DB.JS")})

	assert.Equal(t, model.FilterSpec{Severity: model.All, Tool: "Semgrep", Search: "DB.JS"}, c.Filter())
	assert.Len(t, c.Filtered(), 1)

	c.ResetFilter()
	assert.Equal(t, model.DefaultFilter(), c.Filter())
	assert.Len(t, c.Filtered(), 2)
}

func TestController_ClearAllKeepsFilter(t *testing.T) {
	c := newDemo(t)
	c.SetFilter(model.FilterPatch{Severity: ptr("HIGH"), Search: ptr("cve")})
	spec := c.Filter()

	c.ClearAll()

	assert.Empty(t, c.Findings())
	assert.Empty(t, c.Filtered())
	assert.Equal(t, 0, c.Histogram().Total())
	for _, b := range c.Histogram().Buckets() {
		assert.Equal(t, 0, b.Count)
	}
	assert.Equal(t, spec, c.Filter())
	assert.Equal(t, "", c.RepoRef())
	assert.Equal(t, []string{model.All}, c.ToolOptions())
}

func TestController_LoadReplacesAndRecomputes(t *testing.T) {
	c := newDemo(t)
	c.SetFilter(model.FilterPatch{Tool: ptr("gitleaks")})
	assert.Empty(t, c.Filtered())

	c.Load([]model.Finding{
		{ID: "g1", Tool: "gitleaks", Severity: model.SevHigh, Message: "AWS key", File: "env.sh", Line: 3},
		{ID: "g2", Tool: "gitleaks", Severity: "UNKNOWN", Message: "odd", File: "x"},
	})

	assert.Len(t, c.Findings(), 2, "load replaces, never merges")
	assert.Len(t, c.Filtered(), 2)
	assert.Equal(t, 1, c.Histogram().Total(), "unknown severities are not counted")
	assert.Equal(t, []string{model.All, "gitleaks"}, c.ToolOptions())
}

func TestController_FilteredNeverStale(t *testing.T) {
	c := newDemo(t)
	c.Load([]model.Finding{{ID: "x", Tool: "kics", Severity: model.SevLow, Message: "m"}})

	ids := map[string]bool{}
	for _, f := range c.Findings() {
		ids[f.ID] = true
	}
	for _, f := range c.Filtered() {
		assert.True(t, ids[f.ID], "filtered finding %s not in store", f.ID)
	}
}

func TestController_ScanFailureKeepsState(t *testing.T) {
	b := &mockBackend{}
	b.On("Fetch", mock.Anything, mock.Anything).Return(backend.DemoFindings(), nil).Once()
	transportErr := &model.TransportError{Op: "scan", URL: "http://backend/scan", StatusCode: 502}
	b.On("Fetch", mock.Anything, mock.Anything).Return(nil, transportErr).Once()

	c := New(b, WithLogger(zaptest.NewLogger(t).Sugar()))
	require.NoError(t, c.Scan(context.Background(), "https://github.com/org/app"))
	c.SetFilter(model.FilterPatch{Severity: ptr("MEDIUM")})
	before := c.Filtered()

	err := c.Scan(context.Background(), "https://github.com/org/other")
	require.Error(t, err)
	assert.True(t, model.IsTransport(err))

	assert.Len(t, c.Findings(), 2)
	assert.Equal(t, before, c.Filtered())
	assert.Equal(t, "https://github.com/org/app", c.RepoRef())
	b.AssertExpectations(t)
}

func TestController_ScanSendsRequestDefaults(t *testing.T) {
	b := &mockBackend{}
	want := backend.Request{RepoURL: "https://github.com/org/app", Branch: "develop", Token: "t"}
	b.On("Fetch", mock.Anything, want).Return([]model.Finding{}, nil).Once()

	c := New(b, WithRequestDefaults(backend.Request{Branch: "develop", Token: "t"}))
	require.NoError(t, c.Scan(context.Background(), "https://github.com/org/app"))
	b.AssertExpectations(t)
}

func TestController_ExportTable(t *testing.T) {
	c := newDemo(t)
	c.SetFilter(model.FilterPatch{Severity: ptr("HIGH")})

	filtered := strings.Split(c.ExportTable(ScopeFiltered), "\n")
	assert.Len(t, filtered, 2)
	assert.Equal(t, `"Tool","Severity","Message","File","Line"`, filtered[0])
	assert.Contains(t, filtered[1], `"Trivy"`)

	all := strings.Split(c.ExportTable(ScopeAll), "\n")
	assert.Len(t, all, 3)
}

func TestController_ExportRemote(t *testing.T) {
	s := &mockSink{}
	s.On("Send", mock.Anything, mock.MatchedBy(func(p export.Payload) bool {
		return len(p.Findings) == 1 && p.Findings[0].ID == "2"
	})).Return(nil).Once()

	c := newDemo(t, WithSink(s))
	c.SetFilter(model.FilterPatch{Tool: ptr("Semgrep")})

	require.NoError(t, c.ExportRemote(context.Background(), ScopeFiltered))
	s.AssertExpectations(t)
}

func TestController_ExportRemoteFailureKeepsState(t *testing.T) {
	s := &mockSink{}
	sendErr := &model.TransportError{Op: "export", URL: "http://backend/export_splunk", Err: errors.New("connection refused")}
	s.On("Send", mock.Anything, mock.Anything).Return(sendErr).Once()

	c := newDemo(t, WithSink(s))
	findings, filtered, hist := c.Findings(), c.Filtered(), c.Histogram()

	err := c.ExportRemote(context.Background(), ScopeAll)
	require.Error(t, err)
	assert.True(t, model.IsTransport(err))

	assert.Equal(t, findings, c.Findings())
	assert.Equal(t, filtered, c.Filtered())
	assert.Equal(t, hist, c.Histogram())
	s.AssertNumberOfCalls(t, "Send", 1)
}

func TestController_ExportRemoteWithoutSink(t *testing.T) {
	c := newDemo(t)
	assert.ErrorIs(t, c.ExportRemote(context.Background(), ScopeAll), export.ErrNoSink)
}

func TestParseScope(t *testing.T) {
	s, err := ParseScope("all")
	require.NoError(t, err)
	assert.Equal(t, ScopeAll, s)

	s, err = ParseScope("")
	require.NoError(t, err)
	assert.Equal(t, ScopeFiltered, s)
	assert.Equal(t, "filtered", s.String())

	_, err = ParseScope("visible")
	assert.Error(t, err)
}
