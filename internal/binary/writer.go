package binary

import (
	"encoding/binary"
	"io"
	"math"
)

// Writer provides methods for writing snapshot binary data with
// variable-width location and variable fields.
type Writer struct {
	w            io.WriterAt
	order        binary.ByteOrder
	locationSize int
	variableSize int
	pos          int64
}

// NewWriter creates a binary writer with the given configuration.
func NewWriter(w io.WriterAt, cfg Config) *Writer {
	return &Writer{
		w:            w,
		order:        cfg.ByteOrder,
		locationSize: cfg.LocationSize,
		variableSize: cfg.VariableSize,
		pos:          0,
	}
}

// At returns a new writer positioned at the given offset.
// The new writer shares the underlying io.WriterAt but has independent position.
func (w *Writer) At(offset int64) *Writer {
	return &Writer{
		w:            w.w,
		order:        w.order,
		locationSize: w.locationSize,
		variableSize: w.variableSize,
		pos:          offset,
	}
}

// Pos returns the current write position.
func (w *Writer) Pos() int64 {
	return w.pos
}

// WriteBytes writes the given bytes at the current position.
func (w *Writer) WriteBytes(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	n, err := w.w.WriteAt(data, w.pos)
	w.pos += int64(n)
	return err
}

// WriteString writes an ASCII string at the current position.
func (w *Writer) WriteString(s string) error {
	return w.WriteBytes([]byte(s))
}

// WriteInt32 writes a signed 32-bit integer.
func (w *Writer) WriteInt32(v int32) error {
	buf := make([]byte, 4)
	w.order.PutUint32(buf, uint32(v))
	return w.WriteBytes(buf)
}

// WriteInt32s writes consecutive signed 32-bit integers.
func (w *Writer) WriteInt32s(vals []int32) error {
	buf := make([]byte, 4*len(vals))
	for i, v := range vals {
		w.order.PutUint32(buf[4*i:], uint32(v))
	}
	return w.WriteBytes(buf)
}

// WriteLocations writes floats at the configured location width,
// narrowing to float32 when the width is 4.
func (w *Writer) WriteLocations(vals []float64) error {
	return w.writeFloats(vals, w.locationSize)
}

// WriteVariables writes floats at the configured variable width,
// narrowing to float32 when the width is 4.
func (w *Writer) WriteVariables(vals []float64) error {
	return w.writeFloats(vals, w.variableSize)
}

func (w *Writer) writeFloats(vals []float64, width int) error {
	buf := make([]byte, width*len(vals))
	switch width {
	case 4:
		for i, v := range vals {
			w.order.PutUint32(buf[4*i:], math.Float32bits(float32(v)))
		}
	case 8:
		for i, v := range vals {
			w.order.PutUint64(buf[8*i:], math.Float64bits(v))
		}
	default:
		return ErrInvalidSize
	}
	return w.WriteBytes(buf)
}
