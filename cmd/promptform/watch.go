package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-promptform/pkg/render"
)

const defaultWatchDelay = 250 * time.Millisecond

func watchCmd(a *app) *cobra.Command {
	var (
		format, output string
		delay          time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-render the prompt whenever the input file changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			path := args[0]
			refresh := func() error {
				out, err := a.synthesizeFile(ctx, cmd, path, format)
				if err != nil {
					// a half-written file is expected while editing
					cmd.PrintErrln(err)
					return nil
				}
				return writeOutput(cmd, output, out)
			}
			if err := refresh(); err != nil {
				return err
			}
			return watchFile(ctx, path, delay, a.log(), refresh)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", render.FormatParagraph, "prompt format: json, paragraph, bullet, markdown or html")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().DurationVar(&delay, "delay", defaultWatchDelay, "quiet period before re-rendering")
	return cmd
}

// watchFile calls fn once per burst of writes to path until ctx is done. The
// parent directory is watched so editors that replace the file by rename are
// still seen.
func watchFile(ctx context.Context, path string, delay time.Duration, logger *zap.Logger, fn func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer watcher.Close()

	target, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}
	logger.Debug("watching", zap.String("path", target))

	timer := time.NewTimer(delay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			logger.Debug("input changed", zap.String("op", event.Op.String()))
			timer.Reset(delay)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", zap.Error(err))
		case <-timer.C:
			if err := fn(); err != nil {
				return err
			}
		}
	}
}
