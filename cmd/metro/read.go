package main

import (
	"github.com/aretw0/metro/pkg/codec"
	"github.com/spf13/cobra"
)

var (
	readAsset string
	readJSON  bool
)

var readCmd = &cobra.Command{
	Use:   "read <source>",
	Short: "Map external metadata onto the record",
	Long: `Read external metadata and merge it into the asset's record.

The source is a JSON or YAML object, or a .gltf file whose asset block and
default scene extras are read. Keys that match no alias are kept as
unrecognized entries and listed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		raw, err := readExternal(args[0])
		if err != nil {
			return err
		}
		asset := readAsset
		if asset == "" {
			asset = args[0]
		}

		svc, err := openSession(ctx, asset)
		if err != nil {
			return err
		}
		defer svc.Close()

		partial, report, err := svc.ReadFromExternalSource(raw)
		if err != nil {
			return err
		}
		if err := saveSession(ctx, svc); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if readJSON {
			return printJSON(out, map[string]any{
				"record":       codec.Encode(partial),
				"unrecognized": report.Unrecognized,
				"warnings":     report.Warnings,
			})
		}
		printUnrecognized(out, report.Unrecognized)
		printWarnings(cmd.ErrOrStderr(), report.Warnings)
		printSuccess(out, "read %d keys from %s", len(raw), args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(readCmd)
	readCmd.Flags().StringVar(&readAsset, "asset", "", "Asset the record belongs to (default: the source file)")
	readCmd.Flags().BoolVar(&readJSON, "json", false, "Output in JSON format")
}
