package athenak

// levelIndex is a resolved slice position at one refinement level: which
// logical block index along the slice axis contains the slice plane, and
// which interior cell inside that block it falls in.
type levelIndex struct {
	block int
	cell  int
}

// locator resolves slice positions level by level as blocks are
// encountered in the stream. Resolution depends only on the domain
// geometry and the requested location, so resolved levels are cached:
// the same level recurs across many blocks.
type locator struct {
	location   float64
	domainMin  float64
	domainMax  float64
	rootBlocks int // root-level meshblocks along the slice axis
	blockCells int // interior cells per meshblock along the slice axis

	levels map[int32]levelIndex
}

func newLocator(location, domainMin, domainMax float64, rootBlocks, blockCells int) *locator {
	return &locator{
		location:   location,
		domainMin:  domainMin,
		domainMax:  domainMax,
		rootBlocks: rootBlocks,
		blockCells: blockCells,
		levels:     make(map[int32]levelIndex),
	}
}

// resolve returns the block and cell index for the slice location at the
// given refinement level. Locations at or outside the domain bounds clamp
// to the first or last block and cell.
func (l *locator) resolve(level int32) levelIndex {
	if li, ok := l.levels[level]; ok {
		return li
	}

	var li levelIndex
	switch {
	case l.location <= l.domainMin:
		li = levelIndex{block: 0, cell: 0}
	case l.location >= l.domainMax:
		li = levelIndex{block: l.rootBlocks - 1, cell: l.blockCells - 1}
	default:
		norm := (l.location - l.domainMin) / (l.domainMax - l.domainMin)
		// Total cells along the axis at this level.
		meshCells := l.blockCells * l.rootBlocks * (1 << uint(level))
		meshIndex := int(norm * float64(meshCells))
		li = levelIndex{
			block: meshIndex / l.blockCells,
			cell:  meshIndex % l.blockCells,
		}
	}
	l.levels[level] = li
	return li
}
