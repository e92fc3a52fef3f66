package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Sena-ops/sentrius/internal/adapters"
	"github.com/Sena-ops/sentrius/internal/backend"
	"github.com/Sena-ops/sentrius/internal/export"
	"github.com/Sena-ops/sentrius/internal/model"
	"github.com/Sena-ops/sentrius/internal/notify"
	"github.com/Sena-ops/sentrius/internal/session"
	"github.com/Sena-ops/sentrius/internal/sink"
)

// demoRepo labels scans run without a repository in demo mode.
const demoRepo = "demo"

// sourceFlags says where a command's findings come from: a scan of a
// repository through the backend, or a report file on disk.
type sourceFlags struct {
	repo      string
	branch    string
	localPath string
	from      string
	format    string
}

func (s *sourceFlags) register(fs *pflag.FlagSet, withRepo bool) {
	if withRepo {
		fs.StringVar(&s.repo, "repo", "", "Repository URL to scan")
	}
	fs.StringVarP(&s.branch, "branch", "b", "", "Branch to scan (default from config)")
	fs.StringVar(&s.localPath, "local-path", "", "Path on the scan service host to scan instead of a repository")
	fs.StringVar(&s.from, "from", "", "Load findings from a report file instead of scanning")
	fs.StringVar(&s.format, "format", adapters.FormatAuto, "Report format for --from: auto, findings, trivy, semgrep, kics, gitleaks")
}

type filterFlags struct {
	severity string
	tool     string
	search   string
}

func (f *filterFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.severity, "severity", "s", "", "Only show this severity (CRITICAL, HIGH, MEDIUM, LOW, INFO or ALL)")
	fs.StringVarP(&f.tool, "tool", "t", "", "Only show findings reported by this tool (exact name or ALL)")
	fs.StringVarP(&f.search, "search", "q", "", "Case-insensitive text to look for in message and file")
}

// patch only carries the flags the user set, leaving the rest of the spec
// untouched.
func (f *filterFlags) patch(cmd *cobra.Command) model.FilterPatch {
	var p model.FilterPatch
	if cmd.Flags().Changed("severity") {
		p.Severity = &f.severity
	}
	if cmd.Flags().Changed("tool") {
		p.Tool = &f.tool
	}
	if cmd.Flags().Changed("search") {
		p.Search = &f.search
	}
	return p
}

func (a *app) newBackend() (backend.Backend, error) {
	mode, err := backend.ParseMode(a.cfg.Mode)
	if err != nil {
		return nil, err
	}
	if mode == backend.ModeDemo {
		a.log.Debugw("using demo dataset")
		return backend.Demo{}, nil
	}
	return backend.NewHTTP(backend.HTTPConfig{
		BaseURL: a.cfg.Backend.URL,
		Timeout: a.cfg.Backend.Timeout,
		Retries: a.cfg.Backend.Retries,
		RPS:     a.cfg.Backend.RPS,
	}, nil, a.log), nil
}

func (a *app) newSink(ctx context.Context) (export.Sink, error) {
	meta := a.cfg.Export
	switch meta.Sink {
	case "sqs":
		s, err := sink.NewSQS(ctx, meta.SQS.Region, meta.SQS.QueueURL, a.log)
		if err != nil {
			return nil, err
		}
		s.SourceType, s.Source = meta.SourceType, meta.Source
		return s, nil
	default:
		s := sink.NewHTTP(a.cfg.SinkURL(), a.cfg.Backend.Timeout, nil, a.log)
		s.SourceType, s.Source = meta.SourceType, meta.Source
		return s, nil
	}
}

func (a *app) newNotifier() *notify.Notifier {
	return notify.New(a.cfg.Notify.SlackWebhook, a.cfg.Notify.DiscordWebhook, nil, a.log)
}

func (a *app) newController(src sourceFlags, opts ...session.Option) (*session.Controller, error) {
	b, err := a.newBackend()
	if err != nil {
		return nil, err
	}
	req := backend.Request{
		Branch:    a.cfg.Backend.Branch,
		LocalPath: src.localPath,
		Token:     a.cfg.Backend.Token,
	}
	if src.branch != "" {
		req.Branch = src.branch
	}
	opts = append(opts, session.WithRequestDefaults(req), session.WithLogger(a.log))
	return session.New(b, opts...), nil
}

// populate fills c from the report file or from a scan, as src asks.
func (a *app) populate(ctx context.Context, c *session.Controller, src sourceFlags) error {
	if src.from != "" {
		findings, err := adapters.ParseFile(src.format, src.from)
		if err != nil {
			return err
		}
		a.log.Infow("report loaded", "file", src.from, "format", src.format, "findings", len(findings))
		c.Load(findings)
		return nil
	}

	repo := src.repo
	if repo == "" && src.localPath == "" {
		if mode, _ := backend.ParseMode(a.cfg.Mode); mode != backend.ModeDemo {
			return fmt.Errorf("%w: pass a repository or --local-path", backend.ErrNoTarget)
		}
		repo = demoRepo
	}
	return c.Scan(ctx, repo)
}
