package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/teranos/crdb/display"
	"github.com/teranos/crdb/energy"
	"github.com/teranos/crdb/experiment"
	"github.com/teranos/crdb/table"
)

// fetch queries the quantities in args with the flags of cmd.
func (a *app) fetch(cmd *cobra.Command, args []string) (table.Table, error) {
	opts := a.queryOptions(cmd)
	s, err := a.newSession(nil)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.client.Query(contextOf(cmd), opts, args...)
}

func newExperimentsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "experiments QUANTITY [QUANTITY...]",
		Short: "Count rows per experiment",
		Long: `Group the rows of a query by experiment and count them.

Sub-experiments such as "AMS02(2011/05-2016/05)" are grouped under the
experiment name before the parenthesis, or under a known prefix such as
"Voyager" for labels like "Voyager1-HET-Aend(2012/10-2012/12)". Extra
prefixes can be given with --combine.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.fetch(cmd, args)
			if err != nil {
				return err
			}
			extra, _ := cmd.Flags().GetStringSlice("combine")
			masks := experiment.Masks(t, append(experiment.DefaultCombine(), extra...))

			counts := make([]display.Count, 0, len(masks))
			for _, label := range experiment.Labels(masks) {
				counts = append(counts, display.Count{Label: label, Rows: masks[label].Count()})
			}
			if display.ShouldOutputJSON(cmd) {
				return display.WriteJSON(cmd.OutOrStdout(), counts)
			}
			return display.RenderCounts(cmd.OutOrStdout(), "experiment", counts)
		},
	}
	addQueryFlags(cmd)
	cmd.Flags().StringSlice("combine", nil, "Additional experiment prefixes to group by")
	return cmd
}

func newConvertCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert QUANTITY [QUANTITY...]",
		Short: "Query and convert the energy basis",
		Long: `Query and convert energies and fluxes to another energy basis.

Rows that cannot be converted are dropped: ratios, leptons without a
nucleon number, bases other than R, EK and EKN. With --exact, rows whose
conversion needs a mean nucleon number (elements rather than isotopes)
are dropped too.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			to, _ := cmd.Flags().GetString("to")
			exact, _ := cmd.Flags().GetBool("exact")

			t, err := a.fetch(cmd, args)
			if err != nil {
				return err
			}
			converted, err := energy.Convert(t, to, !exact)
			if err != nil {
				return err
			}
			if display.ShouldOutputJSON(cmd) {
				return display.WriteJSON(cmd.OutOrStdout(), converted)
			}
			if dropped := t.Len() - converted.Len(); dropped > 0 {
				status(cmd.ErrOrStderr(), "%d of %d rows could not be converted to %s", dropped, t.Len(), to)
			}
			maxRows, _ := cmd.Flags().GetInt("max-rows")
			return display.RenderTable(cmd.OutOrStdout(), converted, maxRows)
		},
	}
	addQueryFlags(cmd)
	cmd.Flags().String("to", energy.EKN, "Target basis: R, EK or EKN")
	cmd.Flags().Bool("exact", false, "Drop rows converted with a mean nucleon number")
	cmd.Flags().Int("max-rows", 50, "Rows shown, 0 for all")
	return cmd
}

func newRefsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refs QUANTITY [QUANTITY...]",
		Short: "List the publications behind a query",
		Long: `List the ADS links of the publications behind the rows of a query.

With --bibtex the entries are fetched from the ADS export API, which needs
an API token (bibliography.ads_token or ADS_API_TOKEN).`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bibtex, _ := cmd.Flags().GetBool("bibtex")
			asJSON := display.ShouldOutputJSON(cmd)
			out := cmd.OutOrStdout()
			opts := a.queryOptions(cmd)

			s, err := a.newSession(nil)
			if err != nil {
				return err
			}
			defer s.Close()
			ctx := contextOf(cmd)
			t, err := s.client.Query(ctx, opts, args...)
			if err != nil {
				return err
			}

			if !bibtex {
				urls := t.ReferenceURLs()
				if asJSON {
					return display.WriteJSON(out, urls)
				}
				for _, u := range urls {
					fmt.Fprintln(out, u)
				}
				return nil
			}

			entries, err := s.client.Bibliography(ctx, t)
			if err != nil {
				return err
			}
			if asJSON {
				return display.WriteJSON(out, entries)
			}
			keys := make([]string, 0, len(entries))
			for k := range entries {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintln(out, entries[k])
			}
			return nil
		},
	}
	addQueryFlags(cmd)
	cmd.Flags().Bool("bibtex", false, "Fetch BibTeX entries from ADS")
	return cmd
}
