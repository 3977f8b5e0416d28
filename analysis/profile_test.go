package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-athenak/athenak"
)

// makeVolume builds a single 2x2x2 block over [0,1]^3 with cell values
// from fn(k, j, i).
func makeVolume(fn func(k, j, i int) float64) *athenak.VolumeResult {
	b := athenak.Block3D{
		Data:   make([]float64, 8),
		NX:     2, NY: 2, NZ: 2,
		X:      []float64{0, 1},
		Y:      []float64{0, 1},
		Z:      []float64{0, 1},
		Extent: [6]float64{0, 1, 0, 1, 0, 1},
	}
	for k := 0; k < 2; k++ {
		for j := 0; j < 2; j++ {
			for i := 0; i < 2; i++ {
				b.Data[(k*2+j)*2+i] = fn(k, j, i)
			}
		}
	}
	return &athenak.VolumeResult{
		Blocks:     []athenak.Block3D{b},
		NumBlocks:  1,
		BlockShape: [3]int{2, 2, 2},
	}
}

func TestRadialProfileCountConservation(t *testing.T) {
	vol := makeVolume(func(k, j, i int) float64 { return 5 })

	bins, err := RadialProfile(vol, nil, ProfileOptions{NumBins: 3})
	require.NoError(t, err)

	// Every cell, including the one at the maximum radius, lands in
	// exactly one shell.
	total := 0
	for _, b := range bins {
		assert.Greater(t, b.Count, 0, "empty bins must be dropped")
		total += b.Count
	}
	assert.Equal(t, 8, total)

	// Radii from the origin are 0, 1 (x3), sqrt(2) (x3) and sqrt(3).
	require.Len(t, bins, 3)
	assert.Equal(t, 1, bins[0].Count)
	assert.Equal(t, 3, bins[1].Count)
	assert.Equal(t, 4, bins[2].Count)
}

func TestRadialProfileUniformField(t *testing.T) {
	vol := makeVolume(func(k, j, i int) float64 { return 5 })

	bins, err := RadialProfile(vol, nil, ProfileOptions{NumBins: 2})
	require.NoError(t, err)
	for _, b := range bins {
		assert.InDelta(t, 5.0, b.Mean, 1e-12)
		assert.InDelta(t, 0.0, b.Std, 1e-12)
		// Cell volume is 0.125, so the weighted sum is count*0.625.
		assert.InDelta(t, float64(b.Count)*0.125*5, b.WeightedSum, 1e-12)
	}
}

func TestRadialProfileMassWeightingUniformDensity(t *testing.T) {
	vol := makeVolume(func(k, j, i int) float64 { return float64(k + 2*j + 4*i) })
	rho := makeVolume(func(k, j, i int) float64 { return 2 })

	volWeighted, err := RadialProfile(vol, nil, ProfileOptions{NumBins: 3})
	require.NoError(t, err)
	massWeighted, err := RadialProfile(vol, rho, ProfileOptions{NumBins: 3, Weighting: WeightMass})
	require.NoError(t, err)

	// Uniform density makes mass weighting degenerate to volume weighting.
	require.Equal(t, len(volWeighted), len(massWeighted))
	for i := range volWeighted {
		assert.InDelta(t, volWeighted[i].Mean, massWeighted[i].Mean, 1e-12)
		assert.Equal(t, volWeighted[i].Count, massWeighted[i].Count)
	}
}

func TestRadialProfileCenterOffset(t *testing.T) {
	vol := makeVolume(func(k, j, i int) float64 { return 1 })

	// Centering on a corner cell gives one cell at radius zero.
	bins, err := RadialProfile(vol, nil, ProfileOptions{
		Center:  [3]float64{1, 1, 1},
		NumBins: 3,
	})
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(3)/6, bins[0].Radius, 1e-12)
	assert.Equal(t, 1, bins[0].Count)
}

func TestRadialProfileSkipsNonFiniteRadii(t *testing.T) {
	vol := makeVolume(func(k, j, i int) float64 { return 1 })
	vol.Blocks[0].X[1] = math.NaN()

	bins, err := RadialProfile(vol, nil, ProfileOptions{NumBins: 2})
	require.NoError(t, err)

	total := 0
	for _, b := range bins {
		total += b.Count
	}
	assert.Equal(t, 4, total)
}

func TestRadialProfileErrors(t *testing.T) {
	vol := makeVolume(func(k, j, i int) float64 { return 1 })

	_, err := RadialProfile(nil, nil, ProfileOptions{NumBins: 2})
	assert.Error(t, err)

	_, err = RadialProfile(vol, nil, ProfileOptions{NumBins: 0})
	assert.Error(t, err)

	_, err = RadialProfile(vol, nil, ProfileOptions{NumBins: 2, Weighting: WeightMass})
	assert.Error(t, err, "mass weighting without density must fail")

	rho := makeVolume(func(k, j, i int) float64 { return 1 })
	rho.NumBlocks = 2
	_, err = RadialProfile(vol, rho, ProfileOptions{NumBins: 2, Weighting: WeightMass})
	assert.Error(t, err)
}
