package main

import (
	"fmt"
	"os"

	"github.com/chroniclehq/feedgen/cmd/configure/commands"
	"github.com/spf13/cobra"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "feedgen-configure",
		Short: "Configuration tool for the feedgen service",
		Long:  "CLI tool for managing content type toggles, user preferences, and cooldowns",
	}

	rootCmd.AddCommand(commands.NewContentTypesCmd())
	rootCmd.AddCommand(commands.NewPrefsCmd())
	rootCmd.AddCommand(commands.NewCooldownsCmd())
	rootCmd.AddCommand(commands.NewUsersCmd())
	rootCmd.AddCommand(commands.NewTestCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
