package main

import (
	"github.com/spf13/cobra"
)

var (
	injectFromSidecar bool
	injectJSON        bool
)

var injectCmd = &cobra.Command{
	Use:   "inject <asset>",
	Short: "Write the record into the property store",
	Long: `Write the asset's record into the configured property store and print the
flat payload. With --from-sidecar the asset's sidecar document is imported first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svc, err := openSession(ctx, args[0])
		if err != nil {
			return err
		}
		defer svc.Close()

		if injectFromSidecar {
			report, err := svc.LoadSidecar(args[0])
			if err != nil {
				return err
			}
			printUnrecognized(cmd.ErrOrStderr(), report.Unrecognized)
		}

		payload, err := svc.InjectIntoStore(ctx)
		if err != nil {
			return err
		}
		if injectJSON {
			return printJSON(cmd.OutOrStdout(), payload)
		}
		printProperties(cmd.OutOrStdout(), payload)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(injectCmd)
	injectCmd.Flags().BoolVar(&injectFromSidecar, "from-sidecar", false, "Import the asset's sidecar before injecting")
	injectCmd.Flags().BoolVar(&injectJSON, "json", false, "Output in JSON format")
}
