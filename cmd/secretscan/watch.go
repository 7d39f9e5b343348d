package main

import (
	"context"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/nself-org/secretscan/pkg/classify"
	"github.com/nself-org/secretscan/pkg/policy"
	"github.com/nself-org/secretscan/pkg/report"
	"github.com/nself-org/secretscan/pkg/rules"
	"github.com/nself-org/secretscan/pkg/scan"
	"github.com/nself-org/secretscan/pkg/walker"
)

// rescanDebounce coalesces editor save bursts into one rescan.
const rescanDebounce = 500 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Rescan on file changes (local development)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := initLogger(); err != nil {
		return err
	}
	defer logger.Sync()

	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	registry := rules.NewRegistry()
	scanner := &scan.Scanner{
		Root:        root,
		Registry:    registry,
		Environment: classify.EnvDevelopment,
		Policy:      policy.Config{Mode: policy.BlockNever},
		WalkOptions: walker.Options{UseGitIgnore: true, Logger: logger},
		Version:     AppVersion,
		Logger:      logger,
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := addWatchDirs(watcher, root); err != nil {
		return err
	}

	rescan := func() {
		result, err := scanner.Run(context.Background())
		if err != nil {
			logger.Errorw("rescan failed", "error", err)
			return
		}
		_ = report.Text(result, os.Stdout, isTTY())
	}

	rescan()
	logger.Infof("watching %s for changes", root)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	var timer *time.Timer
	timerC := make(chan struct{}, 1)

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			// New directories need watching too.
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = addWatchDirs(watcher, ev.Name)
				}
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(rescanDebounce, func() {
				select {
				case timerC <- struct{}{}:
				default:
				}
			})

		case <-timerC:
			rescan()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnw("watch error", "error", err)

		case <-sigCh:
			logger.Info("stopping watch")
			return nil
		}
	}
}

// addWatchDirs registers root and every subdirectory, skipping the same
// dependency/VCS trees the walker skips.
func addWatchDirs(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		name := d.Name()
		if name == ".git" || name == "node_modules" || name == "vendor" || strings.HasPrefix(name, ".") && path != root {
			return fs.SkipDir
		}
		return watcher.Add(path)
	})
}
