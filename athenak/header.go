package athenak

import (
	"fmt"

	"github.com/robert-malhotra/go-athenak/internal/params"
)

// Axis identifies one of the three mesh axes.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	}
	return fmt.Sprintf("Axis(%d)", int(a))
}

// paramName returns the 1-based axis suffix used in parameter keys
// (x1*, nx1 for x; x2*, nx2 for y; x3*, nx3 for z).
func (a Axis) paramName() string {
	return fmt.Sprintf("%d", int(a)+1)
}

// Header holds the snapshot metadata parsed from the ASCII preamble and
// the embedded parameter block. It is immutable after Open.
type Header struct {
	// FieldNames lists the cell variables stored per block, in file order.
	FieldNames []string

	// LocationSize and VariableSize are the float widths (4 or 8 bytes)
	// for block extents and cell data respectively.
	LocationSize int
	VariableSize int

	// NGhost is the ghost-cell count included in raw block index ranges.
	NGhost int

	// Params exposes the embedded input-parameter block.
	Params *params.Params

	dataStart int64 // byte offset of the first block record
	fileSize  int64
}

// NumFields returns the number of cell variables stored per block.
func (h *Header) NumFields() int {
	return len(h.FieldNames)
}

// FieldIndex returns the file-order index of a field name.
func (h *Header) FieldIndex(name string) (int, error) {
	for i, n := range h.FieldNames {
		if n == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q (file has %v)", ErrFieldNotFound, name, h.FieldNames)
}

// HasField reports whether the snapshot stores the named field.
func (h *Header) HasField(name string) bool {
	_, err := h.FieldIndex(name)
	return err == nil
}

// DomainMin returns the domain lower bound along the given axis.
func (h *Header) DomainMin(a Axis) (float64, error) {
	return h.Params.Float("mesh", "x"+a.paramName()+"min")
}

// DomainMax returns the domain upper bound along the given axis.
func (h *Header) DomainMax(a Axis) (float64, error) {
	return h.Params.Float("mesh", "x"+a.paramName()+"max")
}

// RootBlocks returns the number of root-level meshblocks along the given
// axis: the global cell count divided by the per-meshblock cell count.
func (h *Header) RootBlocks(a Axis) (int, error) {
	meshCells, err := h.Params.Int("mesh", "nx"+a.paramName())
	if err != nil {
		return 0, err
	}
	blockCells, err := h.Params.Int("meshblock", "nx"+a.paramName())
	if err != nil {
		return 0, err
	}
	if blockCells <= 0 {
		return 0, fmt.Errorf("meshblock nx%s must be positive, got %d", a.paramName(), blockCells)
	}
	return meshCells / blockCells, nil
}
