package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/crdb/display"
	"github.com/teranos/crdb/logger"
)

type allSummary struct {
	Rows       int    `json:"rows"`
	Quantities int    `json:"quantities"`
	SubExps    int    `json:"sub_exps"`
	References int    `json:"references"`
	Parquet    string `json:"parquet,omitempty"`
}

func newAllCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "all",
		Short: "Download the whole database",
		Long: `Download the bulk export of the whole database and summarize it.

The export is cached like any other response. Use --parquet to keep a
columnar copy.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.newSession(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.Close()

			t, err := s.client.All(contextOf(cmd))
			if err != nil {
				return err
			}

			sum := allSummary{
				Rows:       t.Len(),
				Quantities: len(t.Quantities()),
				SubExps:    len(t.SubExps()),
				References: len(t.ADSKeys()),
			}
			if path, _ := cmd.Flags().GetString("parquet"); path != "" {
				if err := writeParquet(path, t); err != nil {
					return err
				}
				logger.Infow("parquet written", logger.FieldPath, path, logger.FieldRows, t.Len())
				sum.Parquet = path
			}

			if display.ShouldOutputJSON(cmd) {
				return display.WriteJSON(cmd.OutOrStdout(), sum)
			}
			out := cmd.OutOrStdout()
			status(out, "%d rows, %d quantities, %d sub-experiments, %d references",
				sum.Rows, sum.Quantities, sum.SubExps, sum.References)
			if sum.Parquet != "" {
				status(out, "written to %s", sum.Parquet)
			}
			return nil
		},
	}
	cmd.Flags().String("parquet", "", "Write the export to a Parquet file")
	return cmd
}
