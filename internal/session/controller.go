// Package session ties the findings store, the filter spec and the derived
// views together. Every mutating call finishes with an explicit recompute so
// the filtered view and histogram always describe the current store.
package session

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Sena-ops/sentrius/internal/aggregate"
	"github.com/Sena-ops/sentrius/internal/backend"
	"github.com/Sena-ops/sentrius/internal/export"
	"github.com/Sena-ops/sentrius/internal/filter"
	"github.com/Sena-ops/sentrius/internal/model"
	"github.com/Sena-ops/sentrius/internal/store"
)

// Scope selects which findings an export covers.
type Scope int

const (
	// ScopeFiltered exports the current filtered view, matching the histogram.
	ScopeFiltered Scope = iota
	// ScopeAll exports the whole store regardless of the filter.
	ScopeAll
)

func ParseScope(s string) (Scope, error) {
	switch s {
	case "", "filtered":
		return ScopeFiltered, nil
	case "all":
		return ScopeAll, nil
	}
	return ScopeFiltered, fmt.Errorf("unknown export scope %q (want filtered or all)", s)
}

func (s Scope) String() string {
	if s == ScopeAll {
		return "all"
	}
	return "filtered"
}

// Controller is not safe for concurrent use; callers drive it from one
// logical user action at a time.
type Controller struct {
	store   *store.Store
	backend backend.Backend
	sink    export.Sink
	base    backend.Request
	log     *zap.SugaredLogger

	spec      model.FilterSpec
	repoRef   string
	filtered  []model.Finding
	histogram aggregate.Histogram
}

type Option func(*Controller)

// WithSink sets the remote export sink.
func WithSink(s export.Sink) Option {
	return func(c *Controller) { c.sink = s }
}

// WithRequestDefaults sets branch, token or local path sent with every scan.
func WithRequestDefaults(r backend.Request) Option {
	return func(c *Controller) { c.base = r }
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

func New(b backend.Backend, opts ...Option) *Controller {
	c := &Controller{
		store:   store.New(),
		backend: b,
		log:     zap.NewNop().Sugar(),
		spec:    model.DefaultFilter(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.recompute()
	return c
}

// Scan replaces the store with the findings fetched for repoRef. On failure
// the store, filter and derived views are left exactly as they were and the
// transport error is returned.
func (c *Controller) Scan(ctx context.Context, repoRef string) error {
	req := c.base
	req.RepoURL = repoRef

	c.log.Infow("scan requested", "repo", repoRef)
	findings, err := c.backend.Fetch(ctx, req)
	if err != nil {
		c.log.Errorw("scan failed; keeping previous findings", "repo", repoRef, "kept", c.store.Len(), "err", err)
		return fmt.Errorf("scan %s: %w", repoRef, err)
	}

	c.repoRef = repoRef
	c.store.Load(findings)
	c.recompute()
	c.log.Infow("scan loaded", "repo", repoRef, "findings", len(findings), "visible", len(c.filtered))
	return nil
}

// Load replaces the store with an already parsed collection.
func (c *Controller) Load(findings []model.Finding) {
	c.store.Load(findings)
	c.recompute()
	c.log.Debugw("findings loaded", "findings", len(findings), "visible", len(c.filtered))
}

// ClearAll empties the store and forgets the repository reference. The
// filter spec is kept.
func (c *Controller) ClearAll() {
	c.store.Clear()
	c.repoRef = ""
	c.recompute()
	c.log.Debugw("session cleared")
}

// SetFilter merges patch into the current filter spec.
func (c *Controller) SetFilter(patch model.FilterPatch) {
	c.spec = c.spec.Merge(patch)
	c.recompute()
	c.log.Debugw("filter updated", "severity", c.spec.Severity, "tool", c.spec.Tool, "search", c.spec.Search, "visible", len(c.filtered))
}

// ResetFilter restores the pass-everything spec.
func (c *Controller) ResetFilter() {
	c.spec = model.DefaultFilter()
	c.recompute()
}

// ExportTable renders the findings of scope as CSV text.
func (c *Controller) ExportTable(scope Scope) string {
	return export.Table(c.scoped(scope))
}

// ExportRemote sends the findings of scope to the configured sink once. A
// failure is returned as is and never touches session state.
func (c *Controller) ExportRemote(ctx context.Context, scope Scope) error {
	findings := c.scoped(scope)
	if err := export.Remote(ctx, c.sink, findings); err != nil {
		c.log.Errorw("remote export failed", "scope", scope.String(), "findings", len(findings), "err", err)
		return err
	}
	c.log.Infow("remote export sent", "scope", scope.String(), "findings", len(findings))
	return nil
}

func (c *Controller) Findings() []model.Finding { return c.store.Current() }

// Filtered returns a copy of the current filtered view.
func (c *Controller) Filtered() []model.Finding {
	out := make([]model.Finding, len(c.filtered))
	copy(out, c.filtered)
	return out
}

// Histogram counts the filtered view, not the whole store.
func (c *Controller) Histogram() aggregate.Histogram { return c.histogram }

func (c *Controller) Filter() model.FilterSpec { return c.spec }

// ToolOptions is derived from the store on every call.
func (c *Controller) ToolOptions() []string { return filter.ToolOptions(c.store.Current()) }

func (c *Controller) RepoRef() string { return c.repoRef }

func (c *Controller) scoped(scope Scope) []model.Finding {
	if scope == ScopeAll {
		return c.store.Current()
	}
	return c.Filtered()
}

func (c *Controller) recompute() {
	c.filtered = filter.Apply(c.store.Current(), c.spec)
	c.histogram = aggregate.Count(c.filtered)
}
