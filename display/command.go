package display

import (
	"github.com/spf13/cobra"
)

// ShouldOutputJSON reports whether cmd was asked for JSON output, either by
// its own --json flag or by the root's persistent one.
func ShouldOutputJSON(cmd *cobra.Command) bool {
	if cmd == nil {
		return false
	}

	// An explicit local flag wins over the global one
	if f := cmd.Flags().Lookup("json"); f != nil && f.Changed {
		v, _ := cmd.Flags().GetBool("json")
		return v
	}

	if globalFlag, _ := cmd.Root().PersistentFlags().GetBool("json"); globalFlag {
		return true
	}
	return false
}
