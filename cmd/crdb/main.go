package main

import (
	"fmt"
	"os"

	"github.com/teranos/crdb/cmd/crdb/commands"
	"github.com/teranos/crdb/errors"
	"github.com/teranos/crdb/logger"
)

func main() {
	err := commands.NewRootCmd().Execute()
	logger.Cleanup()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintln(os.Stderr, "Hint:", hint)
		}
		os.Exit(1)
	}
}
