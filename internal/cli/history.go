package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newHistoryCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent searches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := a.openCache()
			if err != nil {
				return err
			}
			defer cache.Detach()

			records, err := cache.RecentSearches(limit)
			if err != nil {
				return systemError{err}
			}

			out := a.printer(cmd.OutOrStdout())
			if out.structured() {
				return out.encode(records)
			}
			if len(records) == 0 {
				fmt.Fprintln(out.w, "No searches yet.")
				return nil
			}
			now := time.Now()
			tw := tabwriter.NewWriter(out.w, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "WHEN\tRESULTS\tQUERY")
			for _, rec := range records {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", humanize.RelTime(rec.SearchedAt, now, "ago", "from now"), humanize.Comma(int64(rec.Total)), rec.Query)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of searches to show (0 for all)")
	return cmd
}
