// Package binary provides low-level binary I/O operations for AthenaK
// snapshot parsing and writing.
package binary

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
)

// ErrInvalidSize is returned when an invalid float width is specified.
var ErrInvalidSize = errors.New("invalid float width: must be 4 or 8")

// maxLineLength bounds ASCII preamble lines. AthenaK preamble lines are
// short; anything longer means the file is not a snapshot.
const maxLineLength = 4096

// Reader provides methods for reading snapshot binary data with
// variable-width location and variable (cell data) fields.
type Reader struct {
	r            io.ReaderAt
	order        binary.ByteOrder
	locationSize int
	variableSize int
	pos          int64
}

// Config holds reader configuration, typically derived from the preamble.
type Config struct {
	ByteOrder    binary.ByteOrder
	LocationSize int // 4 or 8 bytes
	VariableSize int // 4 or 8 bytes
}

// DefaultConfig returns a configuration suitable for initial preamble
// reading. AthenaK writes in the host's native byte order; the float
// widths are placeholders until the preamble declares them.
func DefaultConfig() Config {
	return Config{
		ByteOrder:    binary.NativeEndian,
		LocationSize: 8,
		VariableSize: 4,
	}
}

// NewReader creates a binary reader with the given configuration.
func NewReader(r io.ReaderAt, cfg Config) *Reader {
	return &Reader{
		r:            r,
		order:        cfg.ByteOrder,
		locationSize: cfg.LocationSize,
		variableSize: cfg.VariableSize,
		pos:          0,
	}
}

// At returns a new reader positioned at the given offset.
// The new reader shares the underlying io.ReaderAt but has independent position.
func (r *Reader) At(offset int64) *Reader {
	return &Reader{
		r:            r.r,
		order:        r.order,
		locationSize: r.locationSize,
		variableSize: r.variableSize,
		pos:          offset,
	}
}

// WithSizes returns a new reader with updated location and variable widths.
// This is used after parsing the preamble, which declares both.
func (r *Reader) WithSizes(locationSize, variableSize int) (*Reader, error) {
	if !validWidth(locationSize) || !validWidth(variableSize) {
		return nil, ErrInvalidSize
	}
	return &Reader{
		r:            r.r,
		order:        r.order,
		locationSize: locationSize,
		variableSize: variableSize,
		pos:          r.pos,
	}, nil
}

func validWidth(n int) bool { return n == 4 || n == 8 }

// Pos returns the current read position.
func (r *Reader) Pos() int64 {
	return r.pos
}

// Seek sets the read position to an absolute offset.
func (r *Reader) Seek(offset int64) {
	r.pos = offset
}

// Skip advances the position by n bytes without reading.
func (r *Reader) Skip(n int64) {
	r.pos += n
}

// ReadBytes reads exactly n bytes from the current position.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n <= 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	_, err := r.r.ReadAt(buf, r.pos)
	if err != nil {
		return nil, err
	}
	r.pos += int64(n)
	return buf, nil
}

// ReadLine reads an ASCII line up to the next newline, returning the line
// without the newline. The position advances past the newline.
func (r *Reader) ReadLine() (string, error) {
	buf := make([]byte, 256)
	var line []byte
	for len(line) < maxLineLength {
		n, err := r.r.ReadAt(buf, r.pos+int64(len(line)))
		if n > 0 {
			for i := 0; i < n; i++ {
				if buf[i] == '\n' {
					line = append(line, buf[:i]...)
					r.pos += int64(len(line)) + 1
					return string(line), nil
				}
			}
			line = append(line, buf[:n]...)
		}
		if err != nil {
			if err == io.EOF && len(line) > 0 {
				// Final line without trailing newline.
				r.pos += int64(len(line))
				return string(line), nil
			}
			return "", err
		}
	}
	return "", errors.New("line too long")
}

// ReadInt32 reads a signed 32-bit integer.
func (r *Reader) ReadInt32() (int32, error) {
	buf, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return int32(r.order.Uint32(buf)), nil
}

// ReadInt32s reads n consecutive signed 32-bit integers.
func (r *Reader) ReadInt32s(n int) ([]int32, error) {
	buf, err := r.ReadBytes(4 * n)
	if err != nil {
		return nil, err
	}
	vals := make([]int32, n)
	for i := range vals {
		vals[i] = int32(r.order.Uint32(buf[4*i:]))
	}
	return vals, nil
}

// ReadLocations reads n floats of the configured location width,
// widening float32 values to float64.
func (r *Reader) ReadLocations(n int) ([]float64, error) {
	return r.readFloats(n, r.locationSize)
}

// ReadVariables reads n floats of the configured variable width,
// widening float32 values to float64.
func (r *Reader) ReadVariables(n int) ([]float64, error) {
	return r.readFloats(n, r.variableSize)
}

func (r *Reader) readFloats(n, width int) ([]float64, error) {
	buf, err := r.ReadBytes(n * width)
	if err != nil {
		return nil, err
	}
	vals := make([]float64, n)
	switch width {
	case 4:
		for i := range vals {
			vals[i] = float64(math.Float32frombits(r.order.Uint32(buf[4*i:])))
		}
	case 8:
		for i := range vals {
			vals[i] = math.Float64frombits(r.order.Uint64(buf[8*i:]))
		}
	default:
		return nil, ErrInvalidSize
	}
	return vals, nil
}

// LocationSize returns the configured location width in bytes.
func (r *Reader) LocationSize() int {
	return r.locationSize
}

// VariableSize returns the configured variable width in bytes.
func (r *Reader) VariableSize() int {
	return r.variableSize
}

// ByteOrder returns the configured byte order.
func (r *Reader) ByteOrder() binary.ByteOrder {
	return r.order
}
