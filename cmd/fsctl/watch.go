package main

import (
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/huangjl/fibersched/config"
)

// newWatchCommand demonstrates the config registry's live-listener
// contract end to end: it loads a YAML file into the registry, adds a
// listener on "fiber.stack_size", then reloads on every write to the
// file, printing old -> new whenever the value actually changes.
// Grounded on recera-vango/cmd/vango/dev.go's devServer.watchFiles, the
// pack's only fsnotify consumer.
func newWatchCommand() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "reload a config YAML file on change and report listener callbacks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(path)
		},
	}
	cmd.Flags().StringVar(&path, "file", "", "YAML config file to watch (required)")
	cmd.MarkFlagRequired("file")
	return cmd
}

func runWatch(path string) error {
	stackSize := config.Lookup("fiber.stack_size", uint32(128*1024), "fiber stack size in bytes")
	if stackSize == nil {
		fmt.Fprintln(os.Stderr, "fsctl watch: \"fiber.stack_size\" is already registered with a different type, no listener installed")
	} else {
		stackSize.AddListener(func(old, new uint32) {
			if old != new {
				fmt.Printf("fiber.stack_size: %d -> %d\n", old, new)
			}
		})
	}

	if err := reloadConfig(path); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsctl watch: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("fsctl watch: watch %s: %w", path, err)
	}

	fmt.Printf("watching %s for changes (ctrl-c to stop)\n", path)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := reloadConfig(path); err != nil {
				fmt.Fprintf(os.Stderr, "reload failed: %v\n", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
		}
	}
}

func reloadConfig(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return config.LoadYAML(f)
}
