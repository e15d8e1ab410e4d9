package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teranos/crdb/display"
	"github.com/teranos/crdb/errors"
	"github.com/teranos/crdb/logger"
	"github.com/teranos/crdb/query"
	"github.com/teranos/crdb/table"
)

func newQueryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query QUANTITY [QUANTITY...]",
		Short: "Query the server and print the response",
		Long: `Query the CRDB server.

By default the server response is printed unchanged, in the requested
--format. With --table, --parquet or --json the response is decoded and
the rows of all quantities are concatenated in argument order.

Examples:
  crdb query B/C
  crdb query B/C --format usine --energy_type EKN
  crdb query H He C --table --max-rows 20
  crdb query e-+e+ --parquet leptons.parquet`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runQuery(cmd, args)
		},
	}
	addQueryFlags(cmd)
	cmd.Flags().Bool("table", false, "Decode the response and print a table")
	cmd.Flags().Int("max-rows", 50, "Rows shown with --table, 0 for all")
	cmd.Flags().String("parquet", "", "Write the decoded rows to a Parquet file")
	return cmd
}

func (a *app) runQuery(cmd *cobra.Command, args []string) error {
	opts := a.queryOptions(cmd)
	asTable, _ := cmd.Flags().GetBool("table")
	parquet, _ := cmd.Flags().GetString("parquet")
	asJSON := display.ShouldOutputJSON(cmd)

	s, err := a.newSession(nil)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := contextOf(cmd)
	out := cmd.OutOrStdout()

	if !asTable && !asJSON && parquet == "" {
		for _, q := range args {
			lines, err := s.client.QueryRaw(ctx, opts.WithQuantity(q))
			if err != nil {
				return err
			}
			fmt.Fprintln(out, strings.Join(lines, "\n"))
		}
		return nil
	}

	t, err := s.client.Query(ctx, opts, args...)
	if err != nil {
		return err
	}
	if parquet != "" {
		if err := writeParquet(parquet, t); err != nil {
			return err
		}
		logger.Infow("parquet written", logger.FieldPath, parquet, logger.FieldRows, t.Len())
		if !asTable && !asJSON {
			status(cmd.ErrOrStderr(), "%d rows written to %s", t.Len(), parquet)
			return nil
		}
	}
	if asJSON {
		return display.WriteJSON(out, t)
	}
	maxRows, _ := cmd.Flags().GetInt("max-rows")
	return display.RenderTable(out, t, maxRows)
}

func writeParquet(path string, t table.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	// WriteParquet closes f
	if err := table.WriteParquet(f, t); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "failed to write %s", path)
	}
	if err := f.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		return errors.Wrapf(err, "failed to close %s", path)
	}
	return nil
}

func newURLCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "url QUANTITY",
		Short: "Print the request URL without contacting the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := query.BuildURL(a.queryOptions(cmd).WithQuantity(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), u)
			return nil
		},
	}
	addQueryFlags(cmd)
	return cmd
}
