package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"misterlister/internal/store"
	"misterlister/internal/watcher"
)

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [dirs...]",
		Short: "Add files as they are dropped into directories",
		Long: `Watch directories and add each new file to the table once it stops
changing. Partial downloads and temporary files are ignored. With no
directories, files.default_dir is watched. Stop with Ctrl+C.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dirs := args
			if len(dirs) == 0 {
				if a.cfg.Files.DefaultDir == "" {
					return fmt.Errorf("no directories given and files.default_dir is not set")
				}
				dirs = []string{a.cfg.Files.DefaultDir}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.watch(ctx, dirs)
		},
	}
}

// watch runs until ctx is done.
func (a *app) watch(ctx context.Context, dirs []string) error {
	o, err := a.open(ctx)
	if err != nil {
		return err
	}

	wcfg := watcher.DefaultWatchConfig()
	wcfg.Debounce = a.cfg.DebounceDuration()
	wcfg.StableThreshold = a.cfg.StabilityDuration()
	wcfg.Filter = a.scanOptions().Filter

	w := watcher.New(wcfg, o.WatchHandler(a.ingestOptions()), a.logger)
	if err := w.Start(ctx, dirs); err != nil {
		return err
	}
	a.out.Info("Watching %s (Ctrl+C to stop)", strings.Join(dirs, ", "))
	a.out.Verbose("Ignoring %s", strings.Join(wcfg.Filter.Patterns(), " "))

	<-ctx.Done()
	summary := w.Stop()

	detail := fmt.Sprintf("%d added, %d for review, %d skipped, %d failed in %s",
		summary.FilesAdded, summary.FilesReviewed, summary.FilesSkipped, summary.FilesFailed,
		summary.Duration.Round(time.Second))
	if summary.Total() > 0 {
		if _, err := a.st.Record(context.WithoutCancel(ctx), store.ActionWatch, detail); err != nil {
			a.logger.Warn("failed to journal watch session", zap.Error(err))
		}
	}
	a.out.Info("Stopped watching: %s", detail)
	return nil
}
