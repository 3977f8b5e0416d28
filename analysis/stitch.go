// Package analysis assembles extracted meshblock data into global arrays,
// 1D cuts and radial profiles for downstream plotting.
package analysis

import (
	"fmt"
	"math"

	"github.com/robert-malhotra/go-athenak/athenak"
)

// StitchOptions configures meshblock stitching.
type StitchOptions struct {
	// AxesScale multiplies all extents before placement (for unit
	// relabeling, e.g. pc to kpc). Zero means 1.
	AxesScale float64

	// Fill initializes cells not covered by any block.
	Fill float64
}

// DefaultStitchOptions returns unscaled stitching with NaN fill.
func DefaultStitchOptions() StitchOptions {
	return StitchOptions{AxesScale: 1.0, Fill: math.NaN()}
}

// StitchedField is one global dense 2D array covering the union of all
// contributing block extents on a uniform grid.
type StitchedField struct {
	Data []float64
	Rows int
	Cols int

	// Extent is the scaled bounding box of the stitched grid.
	Extent athenak.Extent2D
}

// At returns the element at row r, column c.
func (s *StitchedField) At(r, c int) float64 {
	return s.Data[r*s.Cols+c]
}

// Stitch assembles per-block 2D slices into one global array. Per-cell
// resolution is inferred from the first block; every block must share it,
// which holds because AMR blocks have a fixed cell count at every level.
// Blocks are placed by nearest-integer rounding of their scaled origin;
// overlapping blocks overwrite in iteration order.
func Stitch(res *athenak.SliceResult, opts StitchOptions) (*StitchedField, error) {
	if res == nil || res.NumBlocks == 0 {
		return nil, fmt.Errorf("no blocks to stitch")
	}
	scale := opts.AxesScale
	if scale == 0 {
		scale = 1.0
	}

	rows, cols := res.BlockShape[0], res.BlockShape[1]
	for i, b := range res.Blocks {
		if b.Rows != rows || b.Cols != cols {
			return nil, fmt.Errorf("block %d has shape (%d, %d), expected (%d, %d)",
				i, b.Rows, b.Cols, rows, cols)
		}
	}

	// Scaled global bounding extent.
	first := res.Extents[0]
	xMin, xMax := first.X0*scale, first.X1*scale
	yMin, yMax := first.Y0*scale, first.Y1*scale
	for _, e := range res.Extents[1:] {
		xMin = math.Min(xMin, e.X0*scale)
		xMax = math.Max(xMax, e.X1*scale)
		yMin = math.Min(yMin, e.Y0*scale)
		yMax = math.Max(yMax, e.Y1*scale)
	}

	// Per-cell resolution from the first block.
	resX := (first.X1 - first.X0) * scale / float64(cols)
	resY := (first.Y1 - first.Y0) * scale / float64(rows)
	if resX <= 0 || resY <= 0 {
		return nil, fmt.Errorf("degenerate block extent %+v", first)
	}

	nxTotal := int(math.Round((xMax - xMin) / resX))
	nyTotal := int(math.Round((yMax - yMin) / resY))

	out := &StitchedField{
		Data:   make([]float64, nyTotal*nxTotal),
		Rows:   nyTotal,
		Cols:   nxTotal,
		Extent: athenak.Extent2D{X0: xMin, X1: xMax, Y0: yMin, Y1: yMax},
	}
	for i := range out.Data {
		out.Data[i] = opts.Fill
	}

	for i, b := range res.Blocks {
		e := res.Extents[i]
		ixStart := int(math.Round((e.X0*scale - xMin) / resX))
		iyStart := int(math.Round((e.Y0*scale - yMin) / resY))
		if ixStart < 0 || iyStart < 0 || ixStart+cols > nxTotal || iyStart+rows > nyTotal {
			return nil, fmt.Errorf("block %d extends outside the stitched grid; non-uniform resolution?", i)
		}
		for r := 0; r < rows; r++ {
			dst := out.Data[(iyStart+r)*nxTotal+ixStart:]
			copy(dst[:cols], b.Data[r*cols:(r+1)*cols])
		}
	}

	return out, nil
}
