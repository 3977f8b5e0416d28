package analysis

import (
	"fmt"
	"math"

	"github.com/robert-malhotra/go-athenak/athenak"
)

// Weighting selects how radial shell averages are weighted.
type Weighting int

const (
	// WeightVolume weights each cell by its volume.
	WeightVolume Weighting = iota
	// WeightMass weights each cell by density times volume.
	WeightMass
)

// ProfileOptions configures radial binning.
type ProfileOptions struct {
	// Center is the (x, y, z) point radii are measured from.
	Center [3]float64

	// NumBins is the number of equal-width radial shells.
	NumBins int

	Weighting Weighting
}

// RadialBin is one radial shell's statistics.
type RadialBin struct {
	// Radius is the shell's center radius.
	Radius float64

	// Mean is the weighted mean of the field in the shell.
	Mean float64

	// Std is the unweighted standard deviation of the raw values.
	Std float64

	// Count is the number of cells in the shell.
	Count int

	// WeightedSum is the sum of weight*value over the shell.
	WeightedSum float64
}

// RadialProfile bins every cell of a volumetric extraction by Euclidean
// distance from a center point into equal-width shells spanning the
// observed radius range. Mass weighting requires a density extraction
// with the same block structure. Shells with no cells are dropped; the
// maximum-radius cell is included in the last shell.
func RadialProfile(vol *athenak.VolumeResult, density *athenak.VolumeResult, opts ProfileOptions) ([]RadialBin, error) {
	if vol == nil || vol.NumBlocks == 0 {
		return nil, fmt.Errorf("no blocks to profile")
	}
	if opts.NumBins <= 0 {
		return nil, fmt.Errorf("number of bins must be positive, got %d", opts.NumBins)
	}
	if opts.Weighting == WeightMass {
		if density == nil {
			return nil, fmt.Errorf("mass weighting requires a density extraction")
		}
		if density.NumBlocks != vol.NumBlocks {
			return nil, fmt.Errorf("density extraction has %d blocks, field has %d",
				density.NumBlocks, vol.NumBlocks)
		}
	}

	radii, values, weights, err := gatherCells(vol, density, opts)
	if err != nil {
		return nil, err
	}
	if len(radii) == 0 {
		return nil, fmt.Errorf("no cells with finite radius")
	}

	rMin, rMax := radii[0], radii[0]
	for _, r := range radii[1:] {
		rMin = math.Min(rMin, r)
		rMax = math.Max(rMax, r)
	}

	width := (rMax - rMin) / float64(opts.NumBins)
	counts := make([]int, opts.NumBins)
	weightSums := make([]float64, opts.NumBins)
	weightedValueSums := make([]float64, opts.NumBins)
	valueSums := make([]float64, opts.NumBins)
	valueSqSums := make([]float64, opts.NumBins)

	for i, r := range radii {
		var bin int
		if width > 0 {
			bin = int((r - rMin) / width)
			// The exact maximum radius falls on the last bin's right
			// edge; keep it in the last bin.
			if bin >= opts.NumBins {
				bin = opts.NumBins - 1
			}
		}
		v, w := values[i], weights[i]
		counts[bin]++
		weightSums[bin] += w
		weightedValueSums[bin] += w * v
		valueSums[bin] += v
		valueSqSums[bin] += v * v
	}

	var bins []RadialBin
	for i := 0; i < opts.NumBins; i++ {
		if counts[i] == 0 {
			continue
		}
		n := float64(counts[i])
		mean := valueSums[i] / n
		variance := valueSqSums[i]/n - mean*mean
		if variance < 0 {
			variance = 0
		}
		bins = append(bins, RadialBin{
			Radius:      rMin + (float64(i)+0.5)*width,
			Mean:        weightedValueSums[i] / weightSums[i],
			Std:         math.Sqrt(variance),
			Count:       counts[i],
			WeightedSum: weightedValueSums[i],
		})
	}
	return bins, nil
}

// gatherCells flattens all blocks into (radius, value, weight) triples,
// skipping cells with non-finite radius.
func gatherCells(vol, density *athenak.VolumeResult, opts ProfileOptions) (radii, values, weights []float64, err error) {
	cx, cy, cz := opts.Center[0], opts.Center[1], opts.Center[2]

	for bi := range vol.Blocks {
		b := &vol.Blocks[bi]

		var rhoBlock *athenak.Block3D
		if opts.Weighting == WeightMass {
			rhoBlock = &density.Blocks[bi]
			if len(rhoBlock.Data) != len(b.Data) {
				return nil, nil, nil, fmt.Errorf("block %d: density has %d cells, field has %d",
					bi, len(rhoBlock.Data), len(b.Data))
			}
		}

		cellVolume := blockCellVolume(b)
		for k := 0; k < b.NZ; k++ {
			dz := b.Z[k] - cz
			for j := 0; j < b.NY; j++ {
				dy := b.Y[j] - cy
				for i := 0; i < b.NX; i++ {
					dx := b.X[i] - cx
					r := math.Sqrt(dx*dx + dy*dy + dz*dz)
					if math.IsNaN(r) || math.IsInf(r, 0) {
						continue
					}
					w := cellVolume
					if rhoBlock != nil {
						w = rhoBlock.At(k, j, i) * cellVolume
					}
					radii = append(radii, r)
					values = append(values, b.At(k, j, i))
					weights = append(weights, w)
				}
			}
		}
	}
	return radii, values, weights, nil
}

// blockCellVolume returns the volume of one cell of a block, constant
// within the block.
func blockCellVolume(b *athenak.Block3D) float64 {
	dx := (b.Extent[1] - b.Extent[0]) / float64(b.NX)
	dy := (b.Extent[3] - b.Extent[2]) / float64(b.NY)
	dz := (b.Extent[5] - b.Extent[4]) / float64(b.NZ)
	return dx * dy * dz
}
