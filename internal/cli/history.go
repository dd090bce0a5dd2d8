package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/xab-mack/nexeth/internal/report"
	"github.com/xab-mack/nexeth/internal/store"
)

func newHistoryCmd() *cobra.Command {
	var (
		dsn    string
		limit  int
		format string
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded analysis runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dsn == "" {
				cfg, _, err := loadConfig(".")
				if err != nil {
					return err
				}
				dsn = cfg.Store
			}
			if dsn == "" {
				return errors.New("no store configured (use --store or set store in the config file)")
			}
			s, err := store.Open(dsn)
			if err != nil {
				return err
			}
			defer s.Close()

			runs, err := s.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if format == report.FormatJSON {
				return report.RenderJSON(cmd.OutOrStdout(), runs)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RUN\tWHEN\tFILE\tVIOLATIONS\tFAILED")
			for _, r := range runs {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\n", r.ID, r.CreatedAt.Local().Format(time.DateTime), r.File, r.Total, r.Failed)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&dsn, "store", "", "Database holding the runs (sqlite path or postgres DSN)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Number of runs to show (0 for all)")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text|json")
	return cmd
}
