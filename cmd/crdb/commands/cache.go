package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/teranos/crdb/display"
	"github.com/teranos/crdb/logger"
)

func newCacheCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local response cache",
		Long: `Manage the local response cache.

Server responses are kept in a SQLite database (cache.path) and reused
until they are older than cache.max_age_days.

Examples:
  crdb cache stats
  crdb cache clear`,
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, database, err := a.openStore(logger.Logger.Named("crdb.cache"))
			if err != nil {
				return err
			}
			defer database.Close()

			st, err := store.Stats(contextOf(cmd))
			if err != nil {
				return err
			}
			if display.ShouldOutputJSON(cmd) {
				return display.WriteJSON(cmd.OutOrStdout(), st)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Cache Path:  %s\n", a.cfg.Cache.Path)
			fmt.Fprintf(out, "Max Age:     %s\n", store.MaxAge())
			fmt.Fprintf(out, "Entries:     %d (%d stale)\n", st.Entries, st.Stale)
			fmt.Fprintf(out, "Lines:       %d\n", st.Lines)
			fmt.Fprintf(out, "Size:        %.1f kB\n", float64(st.Bytes)/1e3)
			if st.Entries > 0 {
				fmt.Fprintf(out, "Oldest:      %s\n", st.Oldest.Format(time.DateTime))
				fmt.Fprintf(out, "Newest:      %s\n", st.Newest.Format(time.DateTime))
			}
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every cached response",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, database, err := a.openStore(logger.Logger.Named("crdb.cache"))
			if err != nil {
				return err
			}
			defer database.Close()

			n, err := store.Clear(contextOf(cmd))
			if err != nil {
				return err
			}
			if display.ShouldOutputJSON(cmd) {
				return display.WriteJSON(cmd.OutOrStdout(), map[string]int64{"deleted": n})
			}
			status(cmd.OutOrStdout(), "deleted %d cached responses", n)
			return nil
		},
	}

	cmd.AddCommand(stats, clearCmd)
	return cmd
}
