package main

import (
	"fmt"

	"github.com/aretw0/metro/pkg/adapters/gltf"
	"github.com/aretw0/metro/pkg/engine"
	"github.com/spf13/cobra"
)

var (
	importSource string
	importGLTF   string
)

var importCmd = &cobra.Command{
	Use:   "import <asset>",
	Short: "Replace the record with a persisted one",
	Long: `Replace the asset's record with the one held by its sidecar document
(--from sidecar) or by the reserved extras block of a .gltf file (--from extras).
A malformed or newer document is reported and the current record is kept.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		asset := args[0]

		svc, err := openSession(ctx, asset)
		if err != nil {
			return err
		}
		defer svc.Close()

		var report engine.Report
		switch importSource {
		case "sidecar":
			report, err = svc.LoadSidecar(asset)
		case "extras":
			var path string
			path, err = gltfTarget(asset, importGLTF)
			if err != nil {
				return err
			}
			var doc *gltf.Document
			doc, err = gltf.Load(path)
			if err != nil {
				return err
			}
			var extras map[string]any
			extras, err = doc.SceneExtras()
			if err != nil {
				return err
			}
			report, err = svc.ImportExtras(extras)
		default:
			return fmt.Errorf("unknown import source %q (sidecar, extras)", importSource)
		}
		if err != nil {
			return err
		}

		if err := saveSession(ctx, svc); err != nil {
			return err
		}
		printUnrecognized(cmd.ErrOrStderr(), report.Unrecognized)
		printSuccess(cmd.OutOrStdout(), "imported record from %s", importSource)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringVar(&importSource, "from", "sidecar", "Import source: sidecar, extras")
	importCmd.Flags().StringVar(&importGLTF, "gltf", "", "glTF file holding the extras (default: the asset)")
}
