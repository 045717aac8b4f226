package main

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/aretw0/metro/pkg/adapters/fs"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
)

var (
	batchFormat      string
	batchIncremental bool
	batchIndex       string
)

var batchCmd = &cobra.Command{
	Use:   "batch <pattern>",
	Short: "Extract and export every scene file matching a glob",
	Long: `Run extract and a sidecar export for every scene file matching pattern.
Patterns support ** (for example "assets/**/*.scene.yaml"). A failing file is
reported and the run continues; the command fails if any file failed.

With --incremental, scene files whose modification time matches the index
and whose sidecar still exists are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ext, err := sidecarExt(batchFormat)
		if err != nil {
			return err
		}
		matches, err := doublestar.FilepathGlob(args[0], doublestar.WithFilesOnly())
		if err != nil {
			return fmt.Errorf("invalid pattern %q: %w", args[0], err)
		}
		matches = slices.DeleteFunc(matches, func(path string) bool {
			return fs.IsSidecar(path) || filepath.Base(path) == filepath.Base(batchIndex)
		})
		if len(matches) == 0 {
			return fmt.Errorf("no scene files match %q", args[0])
		}

		var index *fs.Index
		if batchIncremental {
			if index, err = fs.OpenIndex(batchIndex); err != nil {
				return err
			}
			index.Prune(func(scene string) bool {
				_, err := os.Stat(scene)
				return err == nil
			})
		}

		out := cmd.OutOrStdout()
		failed, skipped := 0, 0
		for _, path := range matches {
			info, err := os.Stat(path)
			if err != nil {
				failed++
				printError(cmd.ErrOrStderr(), err)
				continue
			}
			if index != nil {
				if _, ok := index.Fresh(path, info.ModTime()); ok {
					skipped++
					dimColor.Fprintf(out, "- %s unchanged\n", path)
					continue
				}
			}

			entry, err := processScene(cmd, path, ext)
			if err != nil {
				failed++
				if index != nil {
					index.Delete(path)
				}
				printError(cmd.ErrOrStderr(), fmt.Errorf("%s: %w", path, err))
				continue
			}
			if index != nil {
				entry.LastModified = info.ModTime()
				index.Set(path, entry)
			}
			printSuccess(out, "%s → %s", path, filepath.Base(entry.Sidecar))
		}

		if index != nil {
			if err := index.Save(); err != nil {
				return err
			}
			cliLogger().Debug("saved batch index", "state", index.State())
		}

		fmt.Fprintf(out, "%d processed, %d skipped, %d failed\n", len(matches)-failed-skipped, skipped, failed)
		if failed > 0 {
			return fmt.Errorf("%d of %d files failed", failed, len(matches))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().StringVar(&batchFormat, "format", "json", "Sidecar format: json, yaml")
	batchCmd.Flags().BoolVar(&batchIncremental, "incremental", false, "Skip scene files unchanged since the last run")
	batchCmd.Flags().StringVar(&batchIndex, "index", fs.DefaultIndexFile, "Index file used by --incremental")
}

func processScene(cmd *cobra.Command, path, ext string) (fs.IndexEntry, error) {
	ctx := cmd.Context()
	doc, sc, err := loadScene(path)
	if err != nil {
		return fs.IndexEntry{}, err
	}

	svc, err := openSession(ctx, path)
	if err != nil {
		return fs.IndexEntry{}, err
	}
	defer svc.Close()

	snap, warnings := svc.ExtractFromScene(sc)
	printWarnings(cmd.ErrOrStderr(), warnings)
	if len(doc.Metadata) > 0 {
		if _, _, err := svc.ReadFromExternalSource(doc.Metadata); err != nil {
			return fs.IndexEntry{}, err
		}
	}

	sidecar, err := svc.WriteSidecar(path, ext)
	if err != nil {
		return fs.IndexEntry{}, err
	}
	if err := saveSession(ctx, svc); err != nil {
		return fs.IndexEntry{}, err
	}
	return fs.IndexEntry{Sidecar: sidecar, TriangleCount: snap.TriangleCount}, nil
}
