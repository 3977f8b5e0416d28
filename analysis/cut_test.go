package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-athenak/athenak"
)

func twoBlockSlice() *athenak.SliceResult {
	return &athenak.SliceResult{
		Blocks: []athenak.Slice2D{makeSlice(0), makeSlice(100)},
		Extents: []athenak.Extent2D{
			{X0: -1, X1: 0, Y0: 0, Y1: 1},
			{X0: 0, X1: 1, Y0: 0, Y1: 1},
		},
		NumBlocks:  2,
		BlockShape: [2]int{2, 2},
	}
}

func TestVerticalCut(t *testing.T) {
	// x=-0.9 is inside block 0 only, nearest its first column.
	cut := VerticalCut(twoBlockSlice(), -0.9)
	require.Len(t, cut.Values, 2)
	assert.Equal(t, []float64{0, 10}, cut.Values)
	assert.Equal(t, []float64{0, 1}, cut.Coords)

	// x=0 touches both blocks; the cut concatenates their columns.
	cut = VerticalCut(twoBlockSlice(), 0)
	assert.Len(t, cut.Values, 4)

	// x outside every block gives an empty cut.
	cut = VerticalCut(twoBlockSlice(), 3)
	assert.Empty(t, cut.Values)
}

func TestHorizontalCut(t *testing.T) {
	// y=0.9 picks the top row of both blocks.
	cut := HorizontalCut(twoBlockSlice(), 0.9)
	require.Len(t, cut.Values, 4)
	assert.Equal(t, []float64{10, 11, 110, 111}, cut.Values)
	assert.Equal(t, []float64{-1, 0, 0, 1}, cut.Coords)
}

func TestPeak(t *testing.T) {
	coord, value, ok := Peak(Cut{
		Coords: []float64{0, 1, 2, 3},
		Values: []float64{5, math.NaN(), 9, 2},
	})
	require.True(t, ok)
	assert.Equal(t, 2.0, coord)
	assert.Equal(t, 9.0, value)

	_, _, ok = Peak(Cut{})
	assert.False(t, ok)

	_, _, ok = Peak(Cut{Coords: []float64{0}, Values: []float64{math.NaN()}})
	assert.False(t, ok)
}

func TestStitchVector(t *testing.T) {
	u, v := twoBlockSlice(), twoBlockSlice()

	vf, err := StitchVector(u, v, DefaultStitchOptions())
	require.NoError(t, err)
	assert.Equal(t, vf.U.Rows, vf.V.Rows)
	assert.Equal(t, vf.U.Cols, vf.V.Cols)
	assert.Equal(t, vf.U.At(0, 3), vf.V.At(0, 3))

	// Components extracted from different geometries are rejected.
	w := twoBlockSlice()
	w.Blocks = w.Blocks[:1]
	w.Extents = w.Extents[:1]
	w.NumBlocks = 1
	_, err = StitchVector(u, w, DefaultStitchOptions())
	assert.Error(t, err)
}
