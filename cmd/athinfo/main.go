// Command athinfo inspects AthenaK binary snapshots and exports slices
// and radial profiles as CSV.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/robert-malhotra/go-athenak/athenak"
	"github.com/robert-malhotra/go-athenak/units"
)

var (
	// Global flags
	verbose   bool
	unitsPath string
	loop      bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "athinfo",
	Short: "Inspect and export AthenaK binary snapshots",
	Long: `athinfo reads AthenaK .bin snapshot dumps without converting them.

It can print snapshot metadata, extract 2D slices of primitive or derived
fields stitched across AMR meshblocks, and bin volumetric data into radial
profiles. All exports are CSV.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	SilenceUsage: true,
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&unitsPath, "units", "", "YAML unit-system file (defaults to built-in galactic units)")
	rootCmd.PersistentFlags().BoolVar(&loop, "loop", false, "treat the argument as a directory and process every *.bin in it")

	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(sliceCmd)
	rootCmd.AddCommand(profileCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadUnits returns the configured unit system, from YAML when --units is
// given.
func loadUnits() (*units.System, error) {
	if unitsPath == "" {
		return units.Default(), nil
	}
	sys, err := units.Load(unitsPath)
	if err != nil {
		return nil, fmt.Errorf("loading unit system: %w", err)
	}
	logger.Debug("loaded unit system", zap.String("path", unitsPath))
	return sys, nil
}

// resolveInputs expands the single positional argument into the list of
// snapshot paths to process. In loop mode the argument is a directory
// whose *.bin files are processed in dump-number order; any file whose
// name does not parse aborts the run.
func resolveInputs(arg string) ([]string, error) {
	if !loop {
		return []string{arg}, nil
	}

	paths, err := filepath.Glob(filepath.Join(arg, "*.bin"))
	if err != nil {
		return nil, fmt.Errorf("globbing %s: %w", arg, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no *.bin files in %s", arg)
	}

	numbers := make(map[string]int, len(paths))
	for _, p := range paths {
		n, err := athenak.SliceNumber(filepath.Base(p))
		if err != nil {
			return nil, fmt.Errorf("cannot order %s: %w", p, err)
		}
		numbers[p] = n
	}
	sort.Slice(paths, func(i, j int) bool { return numbers[paths[i]] < numbers[paths[j]] })
	return paths, nil
}
