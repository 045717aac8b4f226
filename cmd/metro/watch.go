package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/aretw0/lifecycle/pkg/core/supervisor"
	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/aretw0/metro/pkg/adapters/fs"
	lcadapter "github.com/aretw0/metro/pkg/adapters/lifecycle"
	"github.com/spf13/cobra"
)

var (
	watchPattern  string
	watchFormat   string
	watchDebounce time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Re-extract scene files whenever they change",
	Long: `Watch a directory tree and run extract plus a sidecar export for every scene
file that is created or modified, until interrupted. The watcher is restarted
if it fails.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) == 1 {
			root = args[0]
		}
		ext, err := sidecarExt(watchFormat)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		events := make(chan fs.SceneEvent)
		cfg := fs.WatchConfig{
			Root:     root,
			Pattern:  watchPattern,
			Debounce: watchDebounce,
			Logger:   cliLogger(),
			ErrorHandler: func(err error) {
				printError(cmd.ErrOrStderr(), err)
			},
		}

		sup := supervisor.New("metro-watch", supervisor.StrategyOneForOne, supervisor.Spec{
			Name: "scene-watcher",
			Type: string(worker.TypeGoroutine),
			Factory: func() (worker.Worker, error) {
				return fs.NewSceneWatcher(cfg, events), nil
			},
			Backoff: supervisor.Backoff{
				InitialInterval: 100 * time.Millisecond,
				MaxInterval:     5 * time.Second,
				Multiplier:      2,
				ResetDuration:   time.Minute,
				MaxRestarts:     5,
				MaxDuration:     10 * time.Minute,
			},
			RestartPolicy: supervisor.RestartOnFailure,
		})
		if err := sup.Start(ctx); err != nil {
			return fmt.Errorf("failed to start watcher: %w", err)
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = sup.Stop(stopCtx)
		}()

		src := lcadapter.NewSource(events)
		if err := src.Start(ctx); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "watching %s (%s)\n", root, cfg.Pattern)
		for ev := range src.Events() {
			e, ok := ev.(fs.SceneEvent)
			if !ok {
				continue
			}
			cliLogger().Debug("scene event", "event", e.String())
			if e.Op == fs.OpRemove {
				dimColor.Fprintf(out, "- %s removed\n", e.Path)
				continue
			}
			entry, err := processScene(cmd, e.Path, ext)
			if err != nil {
				printError(cmd.ErrOrStderr(), fmt.Errorf("%s: %w", e.Path, err))
				continue
			}
			printSuccess(out, "%s → %s", e.Path, filepath.Base(entry.Sidecar))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchPattern, "pattern", fs.DefaultScenePattern, "Scene files to watch, relative to dir")
	watchCmd.Flags().StringVar(&watchFormat, "format", "json", "Sidecar format: json, yaml")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 50*time.Millisecond, "Quiet period before a change is processed")
}
