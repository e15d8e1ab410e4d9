package commands

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/crdb/am"
	"github.com/teranos/crdb/display"
	"github.com/teranos/crdb/errors"
)

func newAmCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "am",
		Short: "Manage crdb configuration",
		Long: `am - Manage crdb configuration ("I am")

Configuration sources (in order of precedence):
1. Command line flags
2. Environment variables (CRDB_* prefix, ADS_API_TOKEN)
3. Project config (./am.toml or ./crdb.toml, searched upwards)
4. User config (~/.crdb/am.toml)
5. System config (/etc/crdb/am.toml)
6. Default values

Examples:
  crdb am show                    # Show current configuration
  crdb am show --format json      # Show configuration as JSON
  crdb am show --sources          # Show where every value comes from
  crdb am validate                # Validate current configuration
  crdb am validate --file am.toml # Check a file for unknown keys
  crdb am init                    # Write ~/.crdb/am.toml with defaults`,
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if sources, _ := cmd.Flags().GetBool("sources"); sources {
				return runAmSources(cmd)
			}
			format, _ := cmd.Flags().GetString("format")
			if display.ShouldOutputJSON(cmd) {
				format = "json"
			}
			redacted := a.cfg.Redacted()
			data, err := am.Marshal(&redacted, format)
			if err != nil {
				return err
			}
			if format != "json" {
				fmt.Fprintln(cmd.OutOrStdout(), "# crdb configuration")
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	show.Flags().String("format", "toml", "Output format: toml, json, yaml")
	show.Flags().Bool("sources", false, "Show the source of every setting")

	validate := &cobra.Command{
		Use:   "validate",
		Short: "Validate current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if path, _ := cmd.Flags().GetString("file"); path != "" {
				if err := am.CheckFile(path); err != nil {
					return err
				}
				cfg, err := am.LoadFromFile(path)
				if err != nil {
					return err
				}
				if err := cfg.Validate(); err != nil {
					return errors.Wrapf(err, "configuration validation failed for %s", path)
				}
				fmt.Fprintln(cmd.OutOrStdout(), pterm.Success.Sprintf("%s is valid", path))
				return nil
			}
			if err := a.cfg.Validate(); err != nil {
				return errors.Wrap(err, "configuration validation failed")
			}
			fmt.Fprintln(cmd.OutOrStdout(), pterm.Success.Sprint("Configuration is valid"))
			return nil
		},
	}
	validate.Flags().String("file", "", "Check this TOML file instead of the loaded configuration")

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a user configuration file with the current values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("path")
			if path == "" {
				path = am.UserConfigPath()
			}
			force, _ := cmd.Flags().GetBool("force")
			if _, err := os.Stat(path); err == nil && !force {
				return errors.WithHint(errors.Newf("%s already exists", path),
					"use --force to overwrite it; the old file is kept as .back1")
			}
			// The token stays in the environment, never in the file.
			cfg := *a.cfg
			cfg.Bibliography.ADSToken = ""
			if err := am.WriteFile(&cfg, path); err != nil {
				return err
			}
			status(cmd.OutOrStdout(), "wrote %s", path)
			return nil
		},
	}
	initCmd.Flags().String("path", "", "File to write (default ~/.crdb/am.toml)")
	initCmd.Flags().Bool("force", false, "Overwrite an existing file")

	cmd.AddCommand(show, validate, initCmd)
	return cmd
}

func runAmSources(cmd *cobra.Command) error {
	settings, err := am.GetConfigIntrospection()
	if err != nil {
		return errors.Wrap(err, "failed to get config introspection")
	}
	if display.ShouldOutputJSON(cmd) {
		return display.WriteJSON(cmd.OutOrStdout(), settings)
	}

	data := pterm.TableData{{"key", "value", "source", "from"}}
	for _, s := range settings {
		value := fmt.Sprintf("%v", s.Value)
		// Truncate long values
		if len(value) > 50 {
			value = value[:47] + "..."
		}
		data = append(data, []string{s.Key, value, string(s.Source), s.SourcePath})
	}
	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
