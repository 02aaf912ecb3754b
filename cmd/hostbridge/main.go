package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	verrors "github.com/vango-dev/hostbridge/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		verrors.Printer{Color: true}.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hostbridge",
		Short: "Drive native backends from element trees",
		Long: `hostbridge mounts element trees onto native backend nodes.

Each demo ships a small backend whose nodes print their side effects.
While a demo runs, the inspector serves the live node tree, metrics and
a websocket feed of render snapshots.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		runCmd(),
		demosCmd(),
		versionCmd(),
	)
	return cmd
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}
