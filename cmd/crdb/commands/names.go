package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/teranos/crdb/display"
	"github.com/teranos/crdb/names"
)

func newNamesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "names",
		Short: "List recognized quantity names",
		Long: `List the quantity names the server accepts.

--elements prints the chemical elements with their atomic number.
--discover downloads the bulk export and lists the names that actually
occur in it; this is informational, validation uses the built-in list.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			elements, _ := cmd.Flags().GetBool("elements")
			discover, _ := cmd.Flags().GetBool("discover")
			asJSON := display.ShouldOutputJSON(cmd)
			out := cmd.OutOrStdout()

			switch {
			case elements:
				z := names.Elements()
				if asJSON {
					return display.WriteJSON(out, z)
				}
				keys := make([]string, 0, len(z))
				for k := range z {
					keys = append(keys, k)
				}
				sort.Slice(keys, func(i, j int) bool { return z[keys[i]] < z[keys[j]] })
				for _, k := range keys {
					fmt.Fprintf(out, "%3d %s\n", z[k], k)
				}
				return nil

			case discover:
				s, err := a.newSession(cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				defer s.Close()
				found, err := s.client.ValidNames(contextOf(cmd))
				if err != nil {
					return err
				}
				return printNames(cmd, found)

			default:
				return printNames(cmd, names.Valid)
			}
		},
	}
	cmd.Flags().Bool("elements", false, "List chemical elements with Z")
	cmd.Flags().Bool("discover", false, "List names present in the bulk export")
	return cmd
}

func printNames(cmd *cobra.Command, list []string) error {
	if display.ShouldOutputJSON(cmd) {
		return display.WriteJSON(cmd.OutOrStdout(), list)
	}
	for _, n := range list {
		fmt.Fprintln(cmd.OutOrStdout(), n)
	}
	return nil
}
