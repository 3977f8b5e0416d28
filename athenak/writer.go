package athenak

import (
	"fmt"
	"os"
	"strings"

	"github.com/robert-malhotra/go-athenak/internal/binary"
)

// MeshConfig describes the root mesh written into a snapshot's parameter
// block: domain bounds, global cell counts and the ghost-cell count.
type MeshConfig struct {
	X1Min, X1Max float64
	X2Min, X2Max float64
	X3Min, X3Max float64
	NX1, NX2, NX3 int
	NGhost        int
}

// WriterConfig configures a snapshot writer.
type WriterConfig struct {
	// LocationSize and VariableSize are the float widths (4 or 8).
	LocationSize int
	VariableSize int

	// FieldNames lists the cell variables each block carries, in order.
	FieldNames []string

	Mesh MeshConfig

	// MeshBlock is the interior cell count per meshblock (nx1, nx2, nx3).
	MeshBlock [3]int

	// Time and Cycle fill the informational preamble lines.
	Time  float64
	Cycle int
}

// BlockRecord is one meshblock to be written: its AMR logical address,
// physical extents and one payload per configured field.
type BlockRecord struct {
	Logical BlockLogical

	// Extent is (x_min, x_max, y_min, y_max, z_min, z_max).
	Extent [6]float64

	// NX, NY, NZ are the interior cell counts.
	NX, NY, NZ int

	// Fields holds one payload per field in WriterConfig.FieldNames
	// order, each of NX*NY*NZ values in (z, y, x) row-major order.
	Fields [][]float64
}

// Writer emits AthenaK binary snapshots, byte-compatible with the files
// the simulation writes. Its main use is synthesizing snapshots for tests
// and round-trip verification.
type Writer struct {
	file   *os.File
	w      *binary.Writer
	cfg    WriterConfig
	closed bool
}

// Create creates a snapshot file and writes its preamble and parameter
// block. Blocks are then appended with WriteBlock.
func Create(path string, cfg WriterConfig) (*Writer, error) {
	if len(cfg.FieldNames) == 0 {
		return nil, fmt.Errorf("writer config has no field names")
	}
	if cfg.MeshBlock[0] <= 0 || cfg.MeshBlock[1] <= 0 || cfg.MeshBlock[2] <= 0 {
		return nil, fmt.Errorf("meshblock cell counts must be positive, got %v", cfg.MeshBlock)
	}
	if cfg.LocationSize != 4 && cfg.LocationSize != 8 {
		return nil, binary.ErrInvalidSize
	}
	if cfg.VariableSize != 4 && cfg.VariableSize != 8 {
		return nil, binary.ErrInvalidSize
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating snapshot: %w", err)
	}

	w := binary.NewWriter(f, binary.Config{
		ByteOrder:    binary.DefaultConfig().ByteOrder,
		LocationSize: cfg.LocationSize,
		VariableSize: cfg.VariableSize,
	})

	paramText := buildParamBlock(cfg)

	var preamble strings.Builder
	preamble.WriteString(Signature + "\n")
	preamble.WriteString("  size of preheader=5\n")
	fmt.Fprintf(&preamble, "  time=%g\n", cfg.Time)
	fmt.Fprintf(&preamble, "  cycle=%d\n", cfg.Cycle)
	fmt.Fprintf(&preamble, "  size of location=%d\n", cfg.LocationSize)
	fmt.Fprintf(&preamble, "  size of variable=%d\n", cfg.VariableSize)
	fmt.Fprintf(&preamble, "  number of variables=%d\n", len(cfg.FieldNames))
	fmt.Fprintf(&preamble, "  variables:  %s\n", strings.Join(cfg.FieldNames, "  "))
	fmt.Fprintf(&preamble, "  header offset=%d\n", len(paramText))

	if err := w.WriteString(preamble.String()); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing preamble: %w", err)
	}
	if err := w.WriteString(paramText); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing parameter block: %w", err)
	}

	return &Writer{file: f, w: w, cfg: cfg}, nil
}

// buildParamBlock renders the embedded input-parameter text the reader
// needs: the mesh geometry and the per-meshblock cell counts.
func buildParamBlock(cfg WriterConfig) string {
	var b strings.Builder
	b.WriteString("<mesh>\n")
	fmt.Fprintf(&b, "nghost = %d\n", cfg.Mesh.NGhost)
	fmt.Fprintf(&b, "nx1    = %d\n", cfg.Mesh.NX1)
	fmt.Fprintf(&b, "nx2    = %d\n", cfg.Mesh.NX2)
	fmt.Fprintf(&b, "nx3    = %d\n", cfg.Mesh.NX3)
	fmt.Fprintf(&b, "x1min  = %g\n", cfg.Mesh.X1Min)
	fmt.Fprintf(&b, "x1max  = %g\n", cfg.Mesh.X1Max)
	fmt.Fprintf(&b, "x2min  = %g\n", cfg.Mesh.X2Min)
	fmt.Fprintf(&b, "x2max  = %g\n", cfg.Mesh.X2Max)
	fmt.Fprintf(&b, "x3min  = %g\n", cfg.Mesh.X3Min)
	fmt.Fprintf(&b, "x3max  = %g\n", cfg.Mesh.X3Max)
	b.WriteString("<meshblock>\n")
	fmt.Fprintf(&b, "nx1 = %d\n", cfg.MeshBlock[0])
	fmt.Fprintf(&b, "nx2 = %d\n", cfg.MeshBlock[1])
	fmt.Fprintf(&b, "nx3 = %d\n", cfg.MeshBlock[2])
	return b.String()
}

// WriteBlock appends one meshblock record. The raw index range is written
// ghost-inclusive, matching what the reader subtracts back out.
func (w *Writer) WriteBlock(rec BlockRecord) error {
	if w.closed {
		return ErrClosed
	}
	if len(rec.Fields) != len(w.cfg.FieldNames) {
		return fmt.Errorf("block has %d field payloads, config names %d fields",
			len(rec.Fields), len(w.cfg.FieldNames))
	}
	cells := rec.NX * rec.NY * rec.NZ
	if cells <= 0 {
		return fmt.Errorf("block dimensions must be positive, got (%d, %d, %d)", rec.NX, rec.NY, rec.NZ)
	}
	for i, payload := range rec.Fields {
		if len(payload) != cells {
			return fmt.Errorf("field %q payload has %d values, block has %d cells",
				w.cfg.FieldNames[i], len(payload), cells)
		}
	}

	g := int32(w.cfg.Mesh.NGhost)
	raw := []int32{
		g, g + int32(rec.NX) - 1,
		g, g + int32(rec.NY) - 1,
		g, g + int32(rec.NZ) - 1,
	}
	if err := w.w.WriteInt32s(raw); err != nil {
		return fmt.Errorf("writing block index range: %w", err)
	}
	logical := []int32{rec.Logical.I, rec.Logical.J, rec.Logical.K, rec.Logical.Level}
	if err := w.w.WriteInt32s(logical); err != nil {
		return fmt.Errorf("writing block logical address: %w", err)
	}
	if err := w.w.WriteLocations(rec.Extent[:]); err != nil {
		return fmt.Errorf("writing block extents: %w", err)
	}
	for i, payload := range rec.Fields {
		if err := w.w.WriteVariables(payload); err != nil {
			return fmt.Errorf("writing field %q: %w", w.cfg.FieldNames[i], err)
		}
	}
	return nil
}

// Close closes the snapshot file.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.file.Close()
}
