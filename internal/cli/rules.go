package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/xab-mack/nexeth/internal/plugins"
)

func newRulesCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "rules", Short: "Inspect the built-in detectors"}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List built-in detectors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := plugins.NewRegistry()
			reg.RegisterBuiltin()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSEVERITY\tTITLE")
			for _, d := range reg.Detectors() {
				m := d.Meta()
				fmt.Fprintf(tw, "%s\t%s\t%s\n", m.ID, m.Severity, m.Title)
			}
			return tw.Flush()
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Describe one detector",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := plugins.NewRegistry()
			reg.RegisterBuiltin()
			d, ok := reg.Lookup(args[0])
			if !ok {
				return fmt.Errorf("unknown detector %q", args[0])
			}
			m := d.Meta()
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n%s\n\n%s\n", m.ID, m.Severity, m.Title, m.Description)
			return nil
		},
	})
	return cmd
}
