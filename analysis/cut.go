package analysis

import (
	"fmt"
	"math"

	"github.com/robert-malhotra/go-athenak/athenak"
)

// Cut is a 1D profile concatenated across meshblocks: paired coordinates
// and values, in block iteration order.
type Cut struct {
	Coords []float64
	Values []float64
}

// VerticalCut extracts the column nearest to x from every block whose
// horizontal extent covers x, concatenating values against their vertical
// coordinates. Used for profiles across the jet axis.
func VerticalCut(res *athenak.SliceResult, x float64) Cut {
	var cut Cut
	for i, b := range res.Blocks {
		e := res.Extents[i]
		if x < e.X0 || x > e.X1 {
			continue
		}
		xs := cellCoords(e.X0, e.X1, b.Cols)
		ys := cellCoords(e.Y0, e.Y1, b.Rows)
		ix := nearestIndex(xs, x)
		for r := 0; r < b.Rows; r++ {
			cut.Coords = append(cut.Coords, ys[r])
			cut.Values = append(cut.Values, b.At(r, ix))
		}
	}
	return cut
}

// HorizontalCut extracts the row nearest to y from every block whose
// vertical extent covers y, concatenating values against their horizontal
// coordinates. Used for profiles along the jet axis.
func HorizontalCut(res *athenak.SliceResult, y float64) Cut {
	var cut Cut
	for i, b := range res.Blocks {
		e := res.Extents[i]
		if y < e.Y0 || y > e.Y1 {
			continue
		}
		xs := cellCoords(e.X0, e.X1, b.Cols)
		ys := cellCoords(e.Y0, e.Y1, b.Rows)
		iy := nearestIndex(ys, y)
		for c := 0; c < b.Cols; c++ {
			cut.Coords = append(cut.Coords, xs[c])
			cut.Values = append(cut.Values, b.At(iy, c))
		}
	}
	return cut
}

// Peak returns the coordinate and value of the cut's maximum, skipping
// NaN values. ok is false for an empty or all-NaN cut.
func Peak(cut Cut) (coord, value float64, ok bool) {
	value = math.Inf(-1)
	for i, v := range cut.Values {
		if math.IsNaN(v) {
			continue
		}
		if v > value {
			coord, value, ok = cut.Coords[i], v, true
		}
	}
	if !ok {
		return 0, 0, false
	}
	return coord, value, true
}

// cellCoords returns n coordinates linearly spaced across [lo, hi].
func cellCoords(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = lo
		return out
	}
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

// nearestIndex returns the index of the coordinate closest to v.
func nearestIndex(coords []float64, v float64) int {
	best, bestDist := 0, math.Inf(1)
	for i, c := range coords {
		if d := math.Abs(c - v); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// VectorField bundles two stitched velocity components on a shared grid,
// the form streamline rendering consumes.
type VectorField struct {
	U *StitchedField
	V *StitchedField
}

// StitchVector stitches two component slices with the same options and
// verifies they landed on the same grid.
func StitchVector(u, v *athenak.SliceResult, opts StitchOptions) (*VectorField, error) {
	su, err := Stitch(u, opts)
	if err != nil {
		return nil, fmt.Errorf("stitching u component: %w", err)
	}
	sv, err := Stitch(v, opts)
	if err != nil {
		return nil, fmt.Errorf("stitching v component: %w", err)
	}
	if su.Rows != sv.Rows || su.Cols != sv.Cols {
		return nil, fmt.Errorf("component grids differ: (%d, %d) vs (%d, %d)",
			su.Rows, su.Cols, sv.Rows, sv.Cols)
	}
	return &VectorField{U: su, V: sv}, nil
}
