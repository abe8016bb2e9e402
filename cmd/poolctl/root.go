package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/poolkit/pool"
)

var (
	// Global flags
	verbose bool
	jsonOut bool
)

// logger discards everything unless --verbose enables it.
var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

var rootCmd = &cobra.Command{
	Use:   "poolctl",
	Short: "Inspect and exercise fixed-size block pool allocators",
	Long: `poolctl computes page layouts and runs allocation workloads against
the poolkit fixed-size block allocator, printing layout offsets and usage
statistics for a given configuration.`,
	Version: "0.1.0",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}))
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// parseHeaderKind maps the --header flag value onto a pool.HeaderInfo.
func parseHeaderKind(name string, extra int) (pool.HeaderInfo, error) {
	switch name {
	case "none", "":
		return pool.Header(pool.HeaderNone, 0), nil
	case "basic":
		return pool.Header(pool.HeaderBasic, 0), nil
	case "extended":
		return pool.Header(pool.HeaderExtended, extra), nil
	case "external":
		return pool.Header(pool.HeaderExternal, 0), nil
	default:
		return pool.HeaderInfo{}, fmt.Errorf("unknown header kind %q (want none, basic, extended, or external)", name)
	}
}
