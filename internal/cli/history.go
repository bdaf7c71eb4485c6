package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/southerncoder/my-Trading-Agents-sub007/config"
	"github.com/southerncoder/my-Trading-Agents-sub007/internal/storage"
)

func newHistoryCmd(cfg *config.Config) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [TICKER]",
		Short: "Show past runs from the run log",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.Open(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open run log: %w", err)
			}
			defer store.Close()

			var runs []storage.RunWithMeta
			if len(args) == 1 {
				runs, err = store.RunsForTicker(cmd.Context(), args[0], limit)
			} else {
				runs, err = store.RecentRuns(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("no runs recorded yet")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TICKER\tDATE\tACTION\tSIGNAL\tRISK\tAGENTS\tTIME\tRECORDED")
			for _, r := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%dms\t%s\n",
					r.Ticker, r.TradeDate, r.Action, r.Signal, r.RiskLevel,
					r.AgentsExecuted, r.ExecutionTimeMs, r.CreatedAt)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum runs to list")
	return cmd
}
