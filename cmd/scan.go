package cmd

import (
	"github.com/spf13/cobra"
)

func newScanCmd(a *app) *cobra.Command {
	var (
		src      sourceFlags
		filters  filterFlags
		output   string
		sorted   bool
		noNotify bool
	)

	cmd := &cobra.Command{
		Use:   "scan [repo-url]",
		Short: "Scan a repository through the scan service and show its findings",
		Long: `Scan asks the configured backend for the findings of a repository, applies
the filter flags and prints the filtered view with its severity counts. In demo
mode the built-in dataset is returned and the repository may be omitted.
High and critical findings are announced on the configured chat webhooks.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				src.repo = args[0]
			}
			c, err := a.newController(src)
			if err != nil {
				return err
			}
			c.SetFilter(filters.patch(cmd))
			if err := a.populate(cmd.Context(), c, src); err != nil {
				return err
			}

			if !noNotify && src.from == "" {
				branch := src.branch
				if branch == "" {
					branch = a.cfg.Backend.Branch
				}
				a.newNotifier().ScanAlert(cmd.Context(), c.RepoRef(), branch, c.Findings())
			}
			return render(cmd.OutOrStdout(), output, c, sorted)
		},
	}

	src.register(cmd.Flags(), false)
	filters.register(cmd.Flags())
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table, csv, json, markdown, sarif")
	cmd.Flags().BoolVar(&sorted, "sort", false, "Sort output by file, line and rule")
	cmd.Flags().BoolVar(&noNotify, "no-notify", false, "Do not send chat notifications")
	return cmd
}
