package main

import (
	"fmt"

	"github.com/aretw0/metro/pkg/adapters/gltf"
	"github.com/aretw0/metro/pkg/codec"
	"github.com/spf13/cobra"
)

var (
	exportTarget string
	exportFormat string
	exportGLTF   string
)

var exportCmd = &cobra.Command{
	Use:   "export <asset>",
	Short: "Export the record as a sidecar or glTF extras",
	Long: `Export the asset's record.

  --to sidecar   write <asset>.metro.json (or .metro.yaml with --format yaml)
  --to stdout    print the sidecar document
  --to extras    store the record under the reserved key of a .gltf file's
                 default scene extras, keeping every other key`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		asset := args[0]
		ext, err := sidecarExt(exportFormat)
		if err != nil {
			return err
		}

		svc, err := openSession(ctx, asset)
		if err != nil {
			return err
		}
		defer svc.Close()

		out := cmd.OutOrStdout()
		switch exportTarget {
		case "sidecar":
			path, err := svc.WriteSidecar(asset, ext)
			if err != nil {
				return err
			}
			printSuccess(out, "wrote %s", path)

		case "stdout":
			doc, err := svc.ExportSidecar()
			if err != nil {
				return err
			}
			data, err := codec.SerializerForExt(ext).Serialize(doc)
			if err != nil {
				return err
			}
			if _, err := out.Write(data); err != nil {
				return err
			}

		case "extras":
			path, err := gltfTarget(asset, exportGLTF)
			if err != nil {
				return err
			}
			doc, err := gltf.Load(path)
			if err != nil {
				return err
			}
			extras, err := doc.SceneExtras()
			if err != nil {
				return err
			}
			extras, err = svc.ExportExtras(extras)
			if err != nil {
				return err
			}
			if err := doc.SetSceneExtras(extras); err != nil {
				return err
			}
			if err := doc.Save(path); err != nil {
				return err
			}
			printSuccess(out, "embedded metadata in %s", path)

		default:
			return fmt.Errorf("unknown export target %q (sidecar, stdout, extras)", exportTarget)
		}

		// Exporting may have generated the lineage id.
		return saveSession(ctx, svc)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportTarget, "to", "sidecar", "Export target: sidecar, stdout, extras")
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "Sidecar format: json, yaml")
	exportCmd.Flags().StringVar(&exportGLTF, "gltf", "", "glTF file receiving the extras (default: the asset)")
}
