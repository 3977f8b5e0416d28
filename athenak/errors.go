// Package athenak provides a pure Go reader for AthenaK binary snapshot files.
package athenak

import "errors"

// Common errors
var (
	ErrBadFormat      = errors.New("not an AthenaK binary snapshot")
	ErrFieldNotFound  = errors.New("field not found in snapshot")
	ErrBadGeometry    = errors.New("data has no extent in required dimensions")
	ErrFilenameParse  = errors.New("cannot parse snapshot number from filename")
	ErrUnknownDerived = errors.New("unknown derived field")
	ErrClosed         = errors.New("file is closed")
)
