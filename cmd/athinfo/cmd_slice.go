package main

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/robert-malhotra/go-athenak/analysis"
	"github.com/robert-malhotra/go-athenak/athenak"
	"github.com/robert-malhotra/go-athenak/units"
)

var (
	sliceField     string
	sliceDirection string
	sliceLocation  float64
	sliceScale     float64
	sliceOut       string
)

var sliceCmd = &cobra.Command{
	Use:   "slice [snapshot]",
	Short: "Extract a 2D slice and export it as CSV",
	Long: `Extracts the slice plane from every intersecting meshblock, stitches
the blocks into one dense grid and writes it as a CSV value grid. Cells not
covered by any block are written as NaN.

Derived fields are requested with a "derived:" prefix, e.g. derived:temp.`,
	Args: cobra.ExactArgs(1),
	RunE: runSlice,
}

func init() {
	sliceCmd.Flags().StringVarP(&sliceField, "field", "f", "dens", "field to extract (primitive name or derived:<name>)")
	sliceCmd.Flags().StringVarP(&sliceDirection, "dir", "d", "", "slice normal: x, y, z or empty for auto")
	sliceCmd.Flags().Float64VarP(&sliceLocation, "loc", "l", 0, "slice coordinate along the normal")
	sliceCmd.Flags().Float64Var(&sliceScale, "scale", 1, "multiply extents before stitching")
	sliceCmd.Flags().StringVarP(&sliceOut, "out", "o", "", "output CSV path (loop mode: output directory)")
}

func runSlice(cmd *cobra.Command, args []string) error {
	paths, err := resolveInputs(args[0])
	if err != nil {
		return err
	}
	spec, err := athenak.ParseFieldSpec(sliceField)
	if err != nil {
		return err
	}
	dir, err := athenak.ParseDirection(sliceDirection)
	if err != nil {
		return err
	}
	sys, err := loadUnits()
	if err != nil {
		return err
	}

	for _, path := range paths {
		out := outputPath(path, sliceOut, sliceField)
		if err := exportSlice(path, out, spec, dir, sys); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		logger.Info("wrote slice", zap.String("snapshot", path), zap.String("out", out))
	}
	return nil
}

func exportSlice(path, out string, spec athenak.FieldSpec, dir athenak.Direction, sys *units.System) error {
	f, err := athenak.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := f.ExtractSlice(spec, athenak.SliceOptions{
		Direction: dir,
		Location:  sliceLocation,
		Units:     sys,
	})
	if err != nil {
		return err
	}

	st, err := analysis.Stitch(res, analysis.StitchOptions{AxesScale: sliceScale, Fill: math.NaN()})
	if err != nil {
		return err
	}
	logger.Debug("stitched slice",
		zap.Int("blocks", res.NumBlocks),
		zap.Int("rows", st.Rows),
		zap.Int("cols", st.Cols))

	return writeGridCSV(out, st)
}

// outputPath derives the CSV path for one snapshot. A non-loop --out wins
// as-is; in loop mode --out names the output directory.
func outputPath(input, out, field string) string {
	if out != "" && !loop {
		return out
	}
	base := strings.TrimSuffix(filepath.Base(input), ".bin")
	name := base + "." + sanitizeField(field) + ".csv"
	if out != "" {
		return filepath.Join(out, name)
	}
	return filepath.Join(filepath.Dir(input), name)
}

// sanitizeField makes a field spec safe for use in a filename.
func sanitizeField(field string) string {
	return strings.ReplaceAll(field, ":", "_")
}

// writeGridCSV writes the stitched grid as rows of values in increasing
// row-coordinate order.
func writeGridCSV(path string, st *analysis.StitchedField) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	record := make([]string, st.Cols)
	for r := 0; r < st.Rows; r++ {
		for c := 0; c < st.Cols; c++ {
			record[c] = strconv.FormatFloat(st.At(r, c), 'g', -1, 64)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}
