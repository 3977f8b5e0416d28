package athenak

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/robert-malhotra/go-athenak/internal/binary"
	"github.com/robert-malhotra/go-athenak/internal/params"
)

// Signature is the first line of every supported snapshot, without the
// trailing newline.
const Signature = "Athena binary output version=1.1"

// Fixed column offsets of the numeric payloads in the preamble lines.
const (
	sizeColumn   = 19 // "  size of location=" / "  size of variable="
	fieldsColumn = 12 // "  variables:"
	offsetColumn = 16 // "  header offset="
)

// File represents an open AthenaK binary snapshot.
type File struct {
	path   string
	file   *os.File
	reader *binary.Reader
	header *Header
	closed bool
}

// Open opens a snapshot file and parses its preamble and parameter block.
// After Open returns, the file is positioned for block iteration; all
// extraction methods seek independently and may be called in any order.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot: %w", err)
	}

	r := binary.NewReader(f, binary.DefaultConfig())
	header, err := parseHeader(r)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("reading header of %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat snapshot: %w", err)
	}
	header.fileSize = info.Size()

	r, err = r.WithSizes(header.LocationSize, header.VariableSize)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: bad float widths in %s", ErrBadFormat, path)
	}

	return &File{
		path:   path,
		file:   f,
		reader: r,
		header: header,
	}, nil
}

// parseHeader reads the fixed preamble lines and the parameter block.
// On success the reader is positioned at the first block record.
func parseHeader(r *binary.Reader) (*Header, error) {
	line, err := r.ReadLine()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFormat, err)
	}
	if line != Signature {
		return nil, fmt.Errorf("%w: signature %q", ErrBadFormat, line)
	}

	// Lines 2-4 (preheader size, time, cycle) are not interpreted.
	for i := 0; i < 3; i++ {
		if _, err := r.ReadLine(); err != nil {
			return nil, fmt.Errorf("%w: truncated preamble", ErrBadFormat)
		}
	}

	locationSize, err := intAtColumn(r, sizeColumn)
	if err != nil {
		return nil, err
	}
	variableSize, err := intAtColumn(r, sizeColumn)
	if err != nil {
		return nil, err
	}

	// Line 7 (number of variables) is implied by the name list.
	if _, err := r.ReadLine(); err != nil {
		return nil, fmt.Errorf("%w: truncated preamble", ErrBadFormat)
	}

	line, err = r.ReadLine()
	if err != nil || len(line) < fieldsColumn {
		return nil, fmt.Errorf("%w: missing variable names", ErrBadFormat)
	}
	fieldNames := strings.Fields(line[fieldsColumn:])
	if len(fieldNames) == 0 {
		return nil, fmt.Errorf("%w: empty variable list", ErrBadFormat)
	}

	headerOffset, err := intAtColumn(r, offsetColumn)
	if err != nil {
		return nil, err
	}

	paramText, err := r.ReadBytes(headerOffset)
	if err != nil {
		return nil, fmt.Errorf("%w: truncated parameter block", ErrBadFormat)
	}
	p, err := params.Parse(paramText)
	if err != nil {
		return nil, fmt.Errorf("parsing parameter block: %w", err)
	}

	nghost, err := p.Int("mesh", "nghost")
	if err != nil {
		return nil, fmt.Errorf("reading ghost cell count: %w", err)
	}

	return &Header{
		FieldNames:   fieldNames,
		LocationSize: locationSize,
		VariableSize: variableSize,
		NGhost:       nghost,
		Params:       p,
		dataStart:    r.Pos(),
	}, nil
}

// intAtColumn reads the next preamble line and parses the integer that
// starts at the given fixed column.
func intAtColumn(r *binary.Reader, col int) (int, error) {
	line, err := r.ReadLine()
	if err != nil || len(line) < col {
		return 0, fmt.Errorf("%w: short preamble line %q", ErrBadFormat, line)
	}
	n, err := strconv.Atoi(strings.TrimSpace(line[col:]))
	if err != nil {
		return 0, fmt.Errorf("%w: non-numeric preamble line %q", ErrBadFormat, line)
	}
	return n, nil
}

// Close closes the snapshot file.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	return f.file.Close()
}

// Header returns the parsed snapshot metadata.
func (f *File) Header() *Header {
	return f.header
}

// Path returns the file path.
func (f *File) Path() string {
	return f.path
}

var snapshotNumberRE = regexp.MustCompile(`\.(\d+)\.bin$`)

// SliceNumber extracts the snapshot sequence number from a filename of the
// form "name.NNNNN.bin". It is used to order and label files in loop mode.
func SliceNumber(name string) (int, error) {
	m := snapshotNumberRE.FindStringSubmatch(strings.TrimSpace(name))
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrFilenameParse, name)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrFilenameParse, name)
	}
	return n, nil
}
