package main

import (
	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear <asset>",
	Short: "Remove the asset's metadata keys from the property store",
	Long:  `Remove every key under the metadata namespace. Other keys of the store are kept.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svc, err := openSession(ctx, args[0])
		if err != nil {
			return err
		}
		defer svc.Close()

		if err := svc.ClearStore(ctx); err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), "cleared metadata of %s", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(clearCmd)
}
