// Package commands implements the crdb command tree.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/crdb/am"
	"github.com/teranos/crdb/errors"
	"github.com/teranos/crdb/logger"
	"github.com/teranos/crdb/version"
)

// app carries state shared by every command of one invocation.
type app struct {
	cfg *am.Config
}

// NewRootCmd builds the crdb command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "crdb",
		Short: "Query the Cosmic-Ray DataBase",
		Long: `crdb - query the Cosmic-Ray DataBase (CRDB) at lpsc.in2p3.fr

Every query parameter understood by the service is a flag. Defaults come
from the configuration cascade (see 'crdb am show --sources').

Examples:
  crdb query B/C                        # raw server response
  crdb query H He --table               # decoded rows of two quantities
  crdb query B/C --energy_type EKN --parquet bc.parquet
  crdb url H --energy_start 10          # print the request URL only
  crdb experiments B/C                  # rows per experiment
  crdb convert H --to EKN               # convert the energy basis
  crdb refs B/C --bibtex                # BibTeX of the references
  crdb all --parquet crdb.parquet       # bulk export of the whole database`,
		Version:       version.Get().Banner(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := am.Load()
			if err != nil {
				return errors.Wrap(err, "failed to load configuration")
			}
			a.cfg = cfg

			verbosity, _ := cmd.Flags().GetCount("verbose")
			jsonLogs, _ := cmd.Flags().GetBool("json-logs")
			if cfg.Log.Theme != "" {
				logger.SetTheme(cfg.Log.Theme)
			}
			if err := logger.Initialize(jsonLogs || cfg.Log.JSON, verbosity); err != nil {
				return errors.Wrap(err, "failed to initialize logger")
			}
			return nil
		},
	}
	root.SetVersionTemplate("{{.Version}}\n")

	root.PersistentFlags().CountP("verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	root.PersistentFlags().Bool("json", false, "Print results as JSON")
	root.PersistentFlags().Bool("json-logs", false, "Write logs to stderr as JSON")

	root.AddCommand(
		newQueryCmd(a),
		newURLCmd(a),
		newAllCmd(a),
		newExperimentsCmd(a),
		newConvertCmd(a),
		newRefsCmd(a),
		newNamesCmd(a),
		newCacheCmd(a),
		newAmCmd(a),
		newVersionCmd(),
	)
	return root
}
