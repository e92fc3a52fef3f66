package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Sena-ops/sentrius/internal/adapters"
)

func newLoadCmd(a *app) *cobra.Command {
	var (
		src     sourceFlags
		filters filterFlags
		output  string
		sorted  bool
	)

	cmd := &cobra.Command{
		Use:   "load <report-file>",
		Short: "Load findings from a scanner report and show them",
		Example: `  sentrius load findings.json
  sentrius load trivy.json --format trivy --severity HIGH
  sentrius load results.json --format semgrep -o sarif > semgrep.sarif`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src.from = args[0]
			c, err := a.newController(src)
			if err != nil {
				return err
			}
			c.SetFilter(filters.patch(cmd))
			if err := a.populate(cmd.Context(), c, src); err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), output, c, sorted)
		},
	}

	cmd.Flags().StringVar(&src.format, "format", adapters.FormatAuto, "Report format: auto, findings, trivy, semgrep, kics, gitleaks")
	filters.register(cmd.Flags())
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table, csv, json, markdown, sarif")
	cmd.Flags().BoolVar(&sorted, "sort", false, "Sort output by file, line and rule")
	return cmd
}
