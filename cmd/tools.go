package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sena-ops/sentrius/internal/filter"
)

func newToolsCmd(a *app) *cobra.Command {
	var (
		src        sourceFlags
		severities bool
	)

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the values accepted by --tool (or --severity)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := filter.SeverityOptions()
			if !severities {
				c, err := a.newController(src)
				if err != nil {
					return err
				}
				if err := a.populate(cmd.Context(), c, src); err != nil {
					return err
				}
				opts = c.ToolOptions()
			}
			for _, o := range opts {
				fmt.Fprintln(cmd.OutOrStdout(), o)
			}
			return nil
		},
	}

	src.register(cmd.Flags(), true)
	cmd.Flags().BoolVar(&severities, "severities", false, "List severity options instead of tools")
	return cmd
}
