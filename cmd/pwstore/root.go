package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pwstore",
	Short: "Shared password storage server",
	Long: `pwstore stores passwords owned by one user, shares them with other
users and sorts them into groups.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}
