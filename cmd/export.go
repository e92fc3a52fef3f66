package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Sena-ops/sentrius/internal/export"
	"github.com/Sena-ops/sentrius/internal/session"
)

const (
	targetCSV    = "csv"
	targetSarif  = "sarif"
	targetRemote = "remote"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		src     sourceFlags
		filters filterFlags
		scope   string
		out     string
	)

	cmd := &cobra.Command{
		Use:   "export <csv|sarif|remote>",
		Short: "Export findings as CSV, SARIF or to the remote ingestion sink",
		Long: `Export gathers findings from a scan (--repo) or a report file (--from),
applies the filter flags and exports either the filtered view or, with
--scope all, every finding. Remote export sends the findings once to the
configured sink; a failure is reported and nothing is retried.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{targetCSV, targetSarif, targetRemote},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.ToLower(args[0])
			sc, err := session.ParseScope(scope)
			if err != nil {
				return err
			}

			var opts []session.Option
			if target == targetRemote {
				s, err := a.newSink(cmd.Context())
				if err != nil {
					return err
				}
				opts = append(opts, session.WithSink(s))
			}

			c, err := a.newController(src, opts...)
			if err != nil {
				return err
			}
			c.SetFilter(filters.patch(cmd))
			if err := a.populate(cmd.Context(), c, src); err != nil {
				return err
			}

			switch target {
			case targetCSV:
				return writeCSV(cmd, c, sc, out)
			case targetSarif:
				return writeSarif(cmd, c, sc, out)
			case targetRemote:
				if err := c.ExportRemote(cmd.Context(), sc); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "exported %s findings to %s sink\n", sc, a.cfg.Export.Sink)
				return nil
			}
			return fmt.Errorf("unknown export target %q (want csv, sarif or remote)", args[0])
		},
	}

	src.register(cmd.Flags(), true)
	filters.register(cmd.Flags())
	cmd.Flags().StringVar(&scope, "scope", session.ScopeFiltered.String(), "Which findings to export: filtered or all")
	cmd.Flags().StringVar(&out, "out", "", "Write csv or sarif to this file instead of stdout")
	return cmd
}

func writeCSV(cmd *cobra.Command, c *session.Controller, sc session.Scope, out string) error {
	data := c.ExportTable(sc)
	if out == "" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), data)
		return err
	}
	if err := os.WriteFile(out, []byte(data), 0o644); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "csv written to %s\n", out)
	return nil
}

func writeSarif(cmd *cobra.Command, c *session.Controller, sc session.Scope, out string) error {
	findings := c.Filtered()
	if sc == session.ScopeAll {
		findings = c.Findings()
	}
	export.SortFindings(findings)

	if out == "" {
		return export.WriteSarif(cmd.OutOrStdout(), findings, toolName, toolVersion)
	}
	path, err := export.SarifFile(findings, filepath.Dir(out), strings.TrimSuffix(filepath.Base(out), ".sarif"), toolName, toolVersion)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "sarif written to %s\n", path)
	return nil
}
