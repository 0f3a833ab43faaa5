package main

import (
	"os"

	"github.com/kubedo8/web-ui/cmd"
)

func main() {
	rootCmd := cmd.NewRootCommand()

	rootCmd.AddCommand(cmd.NewFilterCommand())
	rootCmd.AddCommand(cmd.NewReconcileKanbanCommand())
	rootCmd.AddCommand(cmd.NewVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
