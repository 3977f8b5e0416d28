package athenak

import (
	"fmt"
	"strings"

	"github.com/robert-malhotra/go-athenak/units"
)

// Direction selects the slice axis, or DirAuto to infer it from the
// first block's extents.
type Direction int

const (
	DirAuto Direction = iota
	DirX
	DirY
	DirZ
)

// ParseDirection parses a slice direction string. Accepted spellings are
// "x"/"y"/"z", the AthenaK axis names "x1"/"x2"/"x3", the bare axis
// numbers "1"/"2"/"3", and "" or "none" for automatic inference.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return DirAuto, nil
	case "x", "x1", "1":
		return DirX, nil
	case "y", "x2", "2":
		return DirY, nil
	case "z", "x3", "3":
		return DirZ, nil
	}
	return DirAuto, fmt.Errorf("%w: unrecognized direction %q", ErrBadGeometry, s)
}

func (d Direction) String() string {
	switch d {
	case DirX:
		return "x"
	case DirY:
		return "y"
	case DirZ:
		return "z"
	}
	return "auto"
}

func (d Direction) axis() Axis {
	switch d {
	case DirX:
		return AxisX
	case DirY:
		return AxisY
	default:
		return AxisZ
	}
}

// SliceOptions configures a 2D slice extraction.
type SliceOptions struct {
	// Direction is the slice axis; DirAuto infers it from block extents.
	Direction Direction

	// Location is the physical coordinate of the slice plane along the
	// slice axis. Locations at or outside the domain bounds clamp to the
	// first or last plane.
	Location float64

	// Units supplies the constant tables for derived fields.
	// Nil means units.Default(). Ignored for primitive fields.
	Units *units.System
}

// Extent2D is the physical bounding box of a 2D array, in the slice
// plane's own coordinates.
type Extent2D struct {
	X0, X1 float64
	Y0, Y1 float64
}

// Slice2D is a dense row-major 2D array.
type Slice2D struct {
	Data []float64
	Rows int
	Cols int
}

// At returns the element at row r, column c.
func (s Slice2D) At(r, c int) float64 {
	return s.Data[r*s.Cols+c]
}

// SliceResult holds one extracted 2D slice: a per-block array and extent
// for every meshblock whose slice-axis range contains the slice plane.
type SliceResult struct {
	Blocks  []Slice2D
	Extents []Extent2D

	// NumBlocks is the number of blocks that intersect the slice.
	NumBlocks int

	// BlockShape is the common (rows, cols) shape of every block array.
	// AMR blocks carry the same cell count at every level, so the shape
	// is uniform even when physical sizes differ.
	BlockShape [2]int
}

// ExtractSlice reads a single field's 2D slice from every intersecting
// meshblock. Derived field specs decompose into multiple primitive
// extractions, each an independent scan of the file.
func (f *File) ExtractSlice(spec FieldSpec, opts SliceOptions) (*SliceResult, error) {
	if f.closed {
		return nil, ErrClosed
	}
	if spec.Derived != DerivedNone {
		return f.extractDerivedSlice(spec, opts)
	}
	return f.extractFieldSlice(spec.Name, opts)
}

func (f *File) extractFieldSlice(name string, opts SliceOptions) (*SliceResult, error) {
	h := f.header
	varIdx, err := h.FieldIndex(name)
	if err != nil {
		return nil, err
	}

	r := f.reader.At(h.dataStart)
	nghost := int32(h.NGhost)

	var lctr *locator
	res := &SliceResult{}

	blockNum := 0
	for r.Pos() < h.fileSize {
		b, err := readBlockHeader(r, nghost)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", blockNum, err)
		}
		blockNum++

		dir := opts.Direction
		if dir == DirAuto {
			dir, err = inferDirection(&b)
			if err != nil {
				return nil, err
			}
		}
		axis := dir.axis()

		rows, cols, err := planeShape(&b, axis)
		if err != nil {
			return nil, err
		}

		if lctr == nil {
			domainMin, err := h.DomainMin(axis)
			if err != nil {
				return nil, fmt.Errorf("reading domain bounds: %w", err)
			}
			domainMax, err := h.DomainMax(axis)
			if err != nil {
				return nil, fmt.Errorf("reading domain bounds: %w", err)
			}
			rootBlocks, err := h.RootBlocks(axis)
			if err != nil {
				return nil, fmt.Errorf("reading meshblock layout: %w", err)
			}
			lctr = newLocator(opts.Location, domainMin, domainMax, rootBlocks, b.cellsAlong(axis))
		}

		li := lctr.resolve(b.Logical.Level)
		if int(b.logicalAlong(axis)) != li.block {
			// Not on the slice plane at this level: seek past the whole
			// record without reading extents or payload.
			r.Skip(f.restSize(&b))
			continue
		}

		lims, err := r.ReadLocations(6)
		if err != nil {
			return nil, fmt.Errorf("block %d: reading extents: %w", blockNum-1, err)
		}
		res.Extents = append(res.Extents, planeExtent(lims, axis))

		payload := f.payloadSize(&b)
		cellStart := r.Pos()
		r.Seek(cellStart + int64(varIdx)*payload)
		data, err := r.ReadVariables(b.Cells())
		if err != nil {
			return nil, fmt.Errorf("block %d: reading field %q: %w", blockNum-1, name, err)
		}
		res.Blocks = append(res.Blocks, extractPlane(data, &b, axis, li.cell))

		// Resynchronize at the next block record regardless of which
		// field payload was read.
		r.Seek(cellStart + int64(h.NumFields())*payload)

		if res.NumBlocks == 0 {
			res.BlockShape = [2]int{rows, cols}
		}
		res.NumBlocks++
	}

	return res, nil
}

// inferDirection picks a slice axis from a block's extents when none was
// requested: z when the data spans x and y, otherwise whichever axis the
// data has no need for. Files with fewer than two extended axes cannot be
// sliced.
func inferDirection(b *BlockHeader) (Direction, error) {
	nx, ny, nz := b.NX(), b.NY(), b.NZ()
	switch {
	case nx > 1 && ny > 1:
		return DirZ, nil
	case nx > 1 && nz > 1:
		return DirY, nil
	case ny > 1 && nz > 1:
		return DirX, nil
	}
	return DirAuto, fmt.Errorf("%w: file only contains 1D data", ErrBadGeometry)
}

// planeShape returns the (rows, cols) shape of a slice orthogonal to the
// given axis, or ErrBadGeometry if either in-plane axis is degenerate.
func planeShape(b *BlockHeader, axis Axis) (rows, cols int, err error) {
	nx, ny, nz := b.NX(), b.NY(), b.NZ()
	switch axis {
	case AxisX:
		if ny == 1 || nz == 1 {
			return 0, 0, fmt.Errorf("%w: x slice needs extent in y and z", ErrBadGeometry)
		}
		return nz, ny, nil
	case AxisY:
		if nx == 1 || nz == 1 {
			return 0, 0, fmt.Errorf("%w: y slice needs extent in x and z", ErrBadGeometry)
		}
		return nz, nx, nil
	default:
		if nx == 1 || ny == 1 {
			return 0, 0, fmt.Errorf("%w: z slice needs extent in x and y", ErrBadGeometry)
		}
		return ny, nx, nil
	}
}

// planeExtent picks the in-plane bounding box from a block's six physical
// extents (x_min, x_max, y_min, y_max, z_min, z_max).
func planeExtent(lims []float64, axis Axis) Extent2D {
	switch axis {
	case AxisX:
		return Extent2D{X0: lims[2], X1: lims[3], Y0: lims[4], Y1: lims[5]}
	case AxisY:
		return Extent2D{X0: lims[0], X1: lims[1], Y0: lims[4], Y1: lims[5]}
	default:
		return Extent2D{X0: lims[0], X1: lims[1], Y0: lims[2], Y1: lims[3]}
	}
}

// extractPlane indexes the plane orthogonal to the slice axis out of a
// block's (nz, ny, nx) row-major payload at in-block cell index ci.
func extractPlane(data []float64, b *BlockHeader, axis Axis, ci int) Slice2D {
	nx, ny, nz := b.NX(), b.NY(), b.NZ()
	var out Slice2D
	switch axis {
	case AxisX:
		out = Slice2D{Data: make([]float64, nz*ny), Rows: nz, Cols: ny}
		for z := 0; z < nz; z++ {
			for y := 0; y < ny; y++ {
				out.Data[z*ny+y] = data[(z*ny+y)*nx+ci]
			}
		}
	case AxisY:
		out = Slice2D{Data: make([]float64, nz*nx), Rows: nz, Cols: nx}
		for z := 0; z < nz; z++ {
			copy(out.Data[z*nx:(z+1)*nx], data[(z*ny+ci)*nx:(z*ny+ci)*nx+nx])
		}
	default:
		out = Slice2D{Data: make([]float64, ny*nx), Rows: ny, Cols: nx}
		copy(out.Data, data[ci*ny*nx:(ci+1)*ny*nx])
	}
	return out
}
