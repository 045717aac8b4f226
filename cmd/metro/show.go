package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/metro/pkg/codec"
	"github.com/aretw0/metro/pkg/core"
	"github.com/spf13/cobra"
)

var showJSON bool

var showCmd = &cobra.Command{
	Use:   "show <asset>",
	Short: "Print the asset's record and its validation warnings",
	Long: `Print the asset's record as a sidecar document. When the property store
holds nothing for the asset, its sidecar document is read instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svc, err := openSession(ctx, args[0])
		if err != nil {
			return err
		}
		defer svc.Close()

		rec, ok := svc.Record()
		if !ok {
			if _, err := svc.LoadSidecar(args[0]); err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return &core.Error{Kind: core.ErrNoRecord, Key: args[0]}
				}
				return err
			}
			rec, _ = svc.Record()
		}

		doc := codec.Encode(rec)
		out := cmd.OutOrStdout()
		if showJSON {
			return printJSON(out, doc)
		}

		data, err := codec.NewYAMLSerializer().Serialize(doc)
		if err != nil {
			return err
		}
		if _, err := out.Write(data); err != nil {
			return err
		}
		if rec.Core.Format != nil {
			dimColor.Fprintf(out, "# mime: %s\n", rec.Core.Format.MIME())
		}

		warnings, err := svc.Validate()
		if err != nil {
			return err
		}
		printWarnings(cmd.ErrOrStderr(), warnings)
		if len(warnings) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), successColor.Sprint("✓ valid"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Output in JSON format")
}
