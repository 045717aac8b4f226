package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	extractAsset    string
	extractJSON     bool
	extractMetadata bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <scene-file>",
	Short: "Extract technical metadata from a scene description",
	Long: `Measure a YAML or JSON scene description and store the technical fields
(triangle and vertex counts, bounds, LOD levels, material facts) in the
asset's record. The scene's metadata block is read as external metadata.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		doc, sc, err := loadScene(args[0])
		if err != nil {
			return err
		}
		asset := extractAsset
		if asset == "" {
			asset = args[0]
		}

		svc, err := openSession(ctx, asset)
		if err != nil {
			return err
		}
		defer svc.Close()

		snap, warnings := svc.ExtractFromScene(sc)
		if extractMetadata && len(doc.Metadata) > 0 {
			_, report, err := svc.ReadFromExternalSource(doc.Metadata)
			if err != nil {
				return err
			}
			warnings = append(warnings, report.Warnings...)
			printUnrecognized(cmd.ErrOrStderr(), report.Unrecognized)
		}
		if err := saveSession(ctx, svc); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if extractJSON {
			return printJSON(out, snap)
		}
		fmt.Fprintf(out, "Scene:      %s\n", sc.Name())
		fmt.Fprintf(out, "Triangles:  %d\n", snap.TriangleCount)
		fmt.Fprintf(out, "Vertices:   %d\n", snap.VertexCount)
		fmt.Fprintf(out, "LOD levels: %d\n", snap.LODLevels)
		fmt.Fprintf(out, "Bounds:     %v .. %v\n", snap.BBoxMin, snap.BBoxMax)
		fmt.Fprintf(out, "Materials:  %d (textures: %t, pbr: %t)\n", snap.MaterialCount, snap.TexturePresent, snap.PBRSupported)
		printWarnings(cmd.ErrOrStderr(), warnings)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringVar(&extractAsset, "asset", "", "Asset the record belongs to (default: the scene file)")
	extractCmd.Flags().BoolVar(&extractJSON, "json", false, "Output in JSON format")
	extractCmd.Flags().BoolVar(&extractMetadata, "metadata", true, "Also read the scene's metadata block")
}
