package athenak

import "fmt"

// Block3D is one meshblock's full volumetric data for a single field,
// with cell-center coordinate arrays spanning the block's extent.
type Block3D struct {
	// Data holds the (nz, ny, nx) row-major cell values.
	Data       []float64
	NX, NY, NZ int

	// X, Y, Z are per-axis cell coordinates, linearly spaced across the
	// block's physical extent.
	X, Y, Z []float64

	// Extent is (x_min, x_max, y_min, y_max, z_min, z_max).
	Extent [6]float64

	Logical BlockLogical
}

// At returns the cell value at z index k, y index j, x index i.
func (b *Block3D) At(k, j, i int) float64 {
	return b.Data[(k*b.NY+j)*b.NX+i]
}

// VolumeResult holds one field's full 3D data for every meshblock in the
// snapshot.
type VolumeResult struct {
	Blocks    []Block3D
	NumBlocks int

	// BlockShape is the common (nz, ny, nx) shape taken from the first
	// block.
	BlockShape [3]int
}

// ExtractVolume reads every meshblock's full 3D volume for one field.
// No slice selection happens: all blocks are returned, for volumetric
// analysis such as radial profiling.
func (f *File) ExtractVolume(spec FieldSpec) (*VolumeResult, error) {
	if f.closed {
		return nil, ErrClosed
	}
	if spec.Derived != DerivedNone {
		return nil, fmt.Errorf("%w: derived volumes require ExtractDerivedVolume", ErrUnknownDerived)
	}
	return f.extractFieldVolume(spec.Name)
}

func (f *File) extractFieldVolume(name string) (*VolumeResult, error) {
	h := f.header
	varIdx, err := h.FieldIndex(name)
	if err != nil {
		return nil, err
	}

	r := f.reader.At(h.dataStart)
	nghost := int32(h.NGhost)
	res := &VolumeResult{}

	for r.Pos() < h.fileSize {
		b, err := readBlockHeader(r, nghost)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", res.NumBlocks, err)
		}

		lims, err := r.ReadLocations(6)
		if err != nil {
			return nil, fmt.Errorf("block %d: reading extents: %w", res.NumBlocks, err)
		}

		payload := f.payloadSize(&b)
		cellStart := r.Pos()
		r.Seek(cellStart + int64(varIdx)*payload)
		data, err := r.ReadVariables(b.Cells())
		if err != nil {
			return nil, fmt.Errorf("block %d: reading field %q: %w", res.NumBlocks, name, err)
		}
		r.Seek(cellStart + int64(h.NumFields())*payload)

		blk := Block3D{
			Data:    data,
			NX:      b.NX(),
			NY:      b.NY(),
			NZ:      b.NZ(),
			X:       linspace(lims[0], lims[1], b.NX()),
			Y:       linspace(lims[2], lims[3], b.NY()),
			Z:       linspace(lims[4], lims[5], b.NZ()),
			Logical: b.Logical,
		}
		copy(blk.Extent[:], lims)

		if res.NumBlocks == 0 {
			res.BlockShape = [3]int{blk.NZ, blk.NY, blk.NX}
		}
		res.Blocks = append(res.Blocks, blk)
		res.NumBlocks++
	}

	return res, nil
}

// linspace returns n evenly spaced values from lo to hi inclusive.
func linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = lo
		return out
	}
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}
