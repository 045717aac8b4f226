package main

import (
	"fmt"

	"github.com/aretw0/metro"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of metro",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "metro v%s\n", metro.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
