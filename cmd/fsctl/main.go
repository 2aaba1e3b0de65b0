// Command fsctl is the human-facing demonstration harness for
// fibersched: it runs each of the scenarios the core's test suite
// asserts against as a standalone, no-flags-required process (the CLI
// surface described in spec.md §6), and offers a watch subcommand that
// exercises the config registry's live-reload/listener contract end to
// end against a YAML file on disk.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/huangjl/fibersched/fiberrt"
	"github.com/huangjl/fibersched/logx"
)

func main() {
	fiberrt.SetDiagnostics(logx.AsDiagnostics(logx.Root()))

	rootCmd := &cobra.Command{
		Use:   "fsctl",
		Short: "fsctl drives the fibersched fiber scheduler",
		Long: `fsctl is a demonstration and verification CLI for fibersched,
a user-space M:N cooperative fiber scheduler: stackful coroutines with
symmetric context switching, affinity-aware dispatch, and counting-
semaphore/mutex/spinlock synchronization primitives.`,
	}

	rootCmd.AddCommand(newDemoCommand())
	rootCmd.AddCommand(newWatchCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
