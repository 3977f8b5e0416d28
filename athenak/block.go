package athenak

import (
	"fmt"

	"github.com/robert-malhotra/go-athenak/internal/binary"
)

// BlockLogical locates a meshblock in the AMR octree.
type BlockLogical struct {
	I, J, K int32
	Level   int32
}

// BlockHeader is the decoded leading portion of one meshblock record:
// the ghost-subtracted interior index range and the AMR logical address.
// The physical extents and payload follow it in the file.
type BlockHeader struct {
	// Interior is the ghost-subtracted cell index range,
	// (i_lo, i_hi, j_lo, j_hi, k_lo, k_hi) inclusive.
	Interior [6]int32
	Logical  BlockLogical
}

// NX returns the interior cell count along x.
func (b *BlockHeader) NX() int { return int(b.Interior[1] - b.Interior[0] + 1) }

// NY returns the interior cell count along y.
func (b *BlockHeader) NY() int { return int(b.Interior[3] - b.Interior[2] + 1) }

// NZ returns the interior cell count along z.
func (b *BlockHeader) NZ() int { return int(b.Interior[5] - b.Interior[4] + 1) }

// Cells returns the interior cell count of the block.
func (b *BlockHeader) Cells() int { return b.NX() * b.NY() * b.NZ() }

// cellsAlong returns the interior cell count along the given axis.
func (b *BlockHeader) cellsAlong(a Axis) int {
	switch a {
	case AxisX:
		return b.NX()
	case AxisY:
		return b.NY()
	default:
		return b.NZ()
	}
}

// logicalAlong returns the block's logical index along the given axis.
func (b *BlockHeader) logicalAlong(a Axis) int32 {
	switch a {
	case AxisX:
		return b.Logical.I
	case AxisY:
		return b.Logical.J
	default:
		return b.Logical.K
	}
}

// readBlockHeader decodes the two integer groups that start every block
// record, subtracting the ghost-cell count from the raw index range.
func readBlockHeader(r *binary.Reader, nghost int32) (BlockHeader, error) {
	raw, err := r.ReadInt32s(6)
	if err != nil {
		return BlockHeader{}, fmt.Errorf("reading block index range: %w", err)
	}
	logical, err := r.ReadInt32s(4)
	if err != nil {
		return BlockHeader{}, fmt.Errorf("reading block logical address: %w", err)
	}

	var b BlockHeader
	for i, v := range raw {
		b.Interior[i] = v - nghost
	}
	b.Logical = BlockLogical{I: logical[0], J: logical[1], K: logical[2], Level: logical[3]}

	if b.NX() < 1 || b.NY() < 1 || b.NZ() < 1 {
		return BlockHeader{}, fmt.Errorf("%w: non-positive block dimensions %v", ErrBadFormat, b.Interior)
	}
	return b, nil
}

// payloadSize returns the byte size of one field's cell data for a block.
func (f *File) payloadSize(b *BlockHeader) int64 {
	return int64(b.Cells()) * int64(f.header.VariableSize)
}

// restSize returns the byte size of everything following a block's two
// integer groups: the physical extents plus all field payloads. Skipping
// this many bytes resynchronizes the cursor at the next block record.
func (f *File) restSize(b *BlockHeader) int64 {
	return int64(6*f.header.LocationSize) + int64(f.header.NumFields())*f.payloadSize(b)
}

// NumBlocks counts the meshblock records in the snapshot by scanning block
// headers and seeking over extents and payloads.
func (f *File) NumBlocks() (int, error) {
	if f.closed {
		return 0, ErrClosed
	}
	r := f.reader.At(f.header.dataStart)
	nghost := int32(f.header.NGhost)

	count := 0
	for r.Pos() < f.header.fileSize {
		b, err := readBlockHeader(r, nghost)
		if err != nil {
			return 0, fmt.Errorf("block %d: %w", count, err)
		}
		r.Skip(f.restSize(&b))
		count++
	}
	return count, nil
}
