package main

import (
	"github.com/spf13/cobra"
)

var stateCmd = &cobra.Command{
	Use:   "state <asset>",
	Short: "Print the service state as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openSession(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer svc.Close()

		return printJSON(cmd.OutOrStdout(), map[string]any{
			"component": svc.ComponentType(),
			"state":     svc.State(),
		})
	},
}

func init() {
	rootCmd.AddCommand(stateCmd)
}
