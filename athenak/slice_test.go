package athenak

import (
	"errors"
	"math"
	"testing"
)

func TestParseDirection(t *testing.T) {
	cases := []struct {
		in   string
		want Direction
	}{
		{"", DirAuto}, {"none", DirAuto},
		{"x", DirX}, {"x1", DirX}, {"1", DirX},
		{"y", DirY}, {"x2", DirY}, {"2", DirY},
		{"z", DirZ}, {"x3", DirZ}, {"3", DirZ},
		{" Z ", DirZ},
	}
	for _, c := range cases {
		got, err := ParseDirection(c.in)
		if err != nil || got != c.want {
			t.Errorf("ParseDirection(%q) = %v, %v; want %v", c.in, got, err, c.want)
		}
	}

	if _, err := ParseDirection("diagonal"); !errors.Is(err, ErrBadGeometry) {
		t.Errorf("expected ErrBadGeometry for bad direction, got %v", err)
	}
}

// The snapshot has two meshblocks along z: k=0 covering [-1, 0] and k=1
// covering [0, 1]. A slice at z=0.5 must come from block k=1 only.
func TestExtractSliceSelectsStraddlingBlock(t *testing.T) {
	f := openSnapshot(t, testConfig(), twoBlockRecords())

	res, err := f.ExtractSlice(Field("dens"), SliceOptions{Direction: DirZ, Location: 0.5})
	if err != nil {
		t.Fatalf("ExtractSlice failed: %v", err)
	}

	if res.NumBlocks != 1 {
		t.Fatalf("NumBlocks = %d, want 1", res.NumBlocks)
	}
	if res.BlockShape != [2]int{3, 4} {
		t.Errorf("BlockShape = %v, want [3 4]", res.BlockShape)
	}

	// Normalized location 0.75 of 8 cells -> global cell 6 -> block 1,
	// in-block cell 2. dens encodes 1000*block + 100*z + 10*y + x.
	sl := res.Blocks[0]
	if sl.Rows != 3 || sl.Cols != 4 {
		t.Fatalf("slice shape = (%d, %d), want (3, 4)", sl.Rows, sl.Cols)
	}
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			want := 1000 + float64(100*2+10*y+x)
			if got := sl.At(y, x); got != want {
				t.Errorf("slice[%d][%d] = %v, want %v", y, x, got, want)
			}
		}
	}

	e := res.Extents[0]
	if e != (Extent2D{X0: -1, X1: 1, Y0: -1, Y1: 1}) {
		t.Errorf("extent = %+v, want block 1's xy extent", e)
	}
}

func TestExtractSliceDomainBoundaries(t *testing.T) {
	f := openSnapshot(t, testConfig(), twoBlockRecords())

	// At the domain minimum: block 0, cell 0.
	res, err := f.ExtractSlice(Field("dens"), SliceOptions{Direction: DirZ, Location: -1})
	if err != nil {
		t.Fatalf("ExtractSlice at z=-1 failed: %v", err)
	}
	if res.NumBlocks != 1 {
		t.Fatalf("NumBlocks at z=-1 = %d, want 1", res.NumBlocks)
	}
	if got := res.Blocks[0].At(0, 0); got != 0 {
		t.Errorf("corner value at z=-1 = %v, want 0 (block 0, plane 0)", got)
	}

	// At the domain maximum: last block, last cell.
	res, err = f.ExtractSlice(Field("dens"), SliceOptions{Direction: DirZ, Location: 1})
	if err != nil {
		t.Fatalf("ExtractSlice at z=1 failed: %v", err)
	}
	if res.NumBlocks != 1 {
		t.Fatalf("NumBlocks at z=1 = %d, want 1", res.NumBlocks)
	}
	if got := res.Blocks[0].At(0, 0); got != 1300 {
		t.Errorf("corner value at z=1 = %v, want 1300 (block 1, plane 3)", got)
	}

	// Beyond the maximum clamps the same way.
	beyond, err := f.ExtractSlice(Field("dens"), SliceOptions{Direction: DirZ, Location: 5})
	if err != nil {
		t.Fatalf("ExtractSlice at z=5 failed: %v", err)
	}
	if beyond.Blocks[0].At(0, 0) != res.Blocks[0].At(0, 0) {
		t.Error("location beyond domain max should clamp to the last plane")
	}
}

// Repeated extraction with an identical header must select identical
// blocks and planes.
func TestExtractSliceIdempotent(t *testing.T) {
	f := openSnapshot(t, testConfig(), twoBlockRecords())
	opts := SliceOptions{Direction: DirZ, Location: 0.5}

	first, err := f.ExtractSlice(Field("dens"), opts)
	if err != nil {
		t.Fatal(err)
	}
	second, err := f.ExtractSlice(Field("dens"), opts)
	if err != nil {
		t.Fatal(err)
	}

	if first.NumBlocks != second.NumBlocks {
		t.Fatalf("block counts differ: %d vs %d", first.NumBlocks, second.NumBlocks)
	}
	for i := range first.Blocks {
		for j := range first.Blocks[i].Data {
			if first.Blocks[i].Data[j] != second.Blocks[i].Data[j] {
				t.Fatalf("block %d cell %d differs between extractions", i, j)
			}
		}
	}
}

func TestExtractSliceAutoDirection(t *testing.T) {
	f := openSnapshot(t, testConfig(), twoBlockRecords())

	// 3D data infers a z slice.
	auto, err := f.ExtractSlice(Field("dens"), SliceOptions{Location: 0.5})
	if err != nil {
		t.Fatalf("auto-direction extraction failed: %v", err)
	}
	explicit, err := f.ExtractSlice(Field("dens"), SliceOptions{Direction: DirZ, Location: 0.5})
	if err != nil {
		t.Fatal(err)
	}
	if auto.NumBlocks != explicit.NumBlocks || auto.BlockShape != explicit.BlockShape {
		t.Errorf("auto direction gave %+v blocks shape %v, explicit z gave %+v %v",
			auto.NumBlocks, auto.BlockShape, explicit.NumBlocks, explicit.BlockShape)
	}
}

func TestExtractSliceXDirection(t *testing.T) {
	f := openSnapshot(t, testConfig(), twoBlockRecords())

	// x slice at the domain center selects global cell 2 of 4.
	res, err := f.ExtractSlice(Field("dens"), SliceOptions{Direction: DirX, Location: 0.1})
	if err != nil {
		t.Fatalf("ExtractSlice failed: %v", err)
	}

	// One root block along x, so both z blocks intersect.
	if res.NumBlocks != 2 {
		t.Fatalf("NumBlocks = %d, want 2", res.NumBlocks)
	}
	// Rows span z, cols span y.
	if res.BlockShape != [2]int{4, 3} {
		t.Errorf("BlockShape = %v, want [4 3]", res.BlockShape)
	}
	// Normalized 0.55 of 4 cells -> cell 2. Block 0 value at (z, y) is
	// 100*z + 10*y + 2.
	sl := res.Blocks[0]
	for z := 0; z < 4; z++ {
		for y := 0; y < 3; y++ {
			want := float64(100*z + 10*y + 2)
			if got := sl.At(z, y); got != want {
				t.Errorf("x-slice[%d][%d] = %v, want %v", z, y, got, want)
			}
		}
	}
	// x slice extents are (y, z) bounds.
	if res.Extents[0] != (Extent2D{X0: -1, X1: 1, Y0: -1, Y1: 0}) {
		t.Errorf("extent = %+v", res.Extents[0])
	}
}

func TestExtractSliceOneDimensionalData(t *testing.T) {
	cfg := testConfig()
	cfg.Mesh.NX2 = 1
	cfg.Mesh.NX3 = 1
	cfg.MeshBlock = [3]int{4, 1, 1}

	payloads := uniformFields(4, 1, 1, map[string]float64{"dens": 1})
	blocks := []BlockRecord{{
		Logical: BlockLogical{},
		Extent:  [6]float64{-1, 1, -1, 1, -1, 1},
		NX:      4, NY: 1, NZ: 1,
		Fields: payloads,
	}}
	f := openSnapshot(t, cfg, blocks)

	if _, err := f.ExtractSlice(Field("dens"), SliceOptions{}); !errors.Is(err, ErrBadGeometry) {
		t.Errorf("expected ErrBadGeometry for 1D data, got %v", err)
	}
	// An explicit direction whose plane is degenerate also fails.
	if _, err := f.ExtractSlice(Field("dens"), SliceOptions{Direction: DirZ}); !errors.Is(err, ErrBadGeometry) {
		t.Errorf("expected ErrBadGeometry for degenerate plane, got %v", err)
	}
}

// A refined block at level 1 must be selected by its own level's block
// index, independently of the root-level resolution.
func TestExtractSliceRefinedLevel(t *testing.T) {
	cfg := testConfig()

	// Two root blocks along z plus two level-1 blocks subdividing the
	// upper root block's z range [0, 1] into [0, 0.5] and [0.5, 1].
	blocks := twoBlockRecords()
	for k := 2; k < 4; k++ {
		zMin := 0.0 + 0.5*float64(k-2)
		payloads := uniformFields(4, 3, 4, map[string]float64{"dens": float64(k) * 11})
		blocks = append(blocks, BlockRecord{
			Logical: BlockLogical{I: 0, J: 0, K: int32(k), Level: 1},
			Extent:  [6]float64{-1, 1, -1, 1, zMin, zMin + 0.5},
			NX:      4, NY: 3, NZ: 4,
			Fields: payloads,
		})
	}
	f := openSnapshot(t, cfg, blocks)

	// z=0.8: normalized 0.9. Level 0: cell 7 of 8 -> block 1. Level 1:
	// cell 14 of 16 -> block 3.
	res, err := f.ExtractSlice(Field("dens"), SliceOptions{Direction: DirZ, Location: 0.8})
	if err != nil {
		t.Fatalf("ExtractSlice failed: %v", err)
	}
	if res.NumBlocks != 2 {
		t.Fatalf("NumBlocks = %d, want 2 (root block 1 and refined block 3)", res.NumBlocks)
	}
	if got := res.Blocks[1].At(0, 0); got != 33 {
		t.Errorf("refined block value = %v, want 33", got)
	}
}

func TestExtractSliceFloat32Variables(t *testing.T) {
	cfg := testConfig()
	cfg.VariableSize = 4
	cfg.LocationSize = 4
	f := openSnapshot(t, cfg, twoBlockRecords())

	res, err := f.ExtractSlice(Field("dens"), SliceOptions{Direction: DirZ, Location: 0.5})
	if err != nil {
		t.Fatalf("ExtractSlice failed: %v", err)
	}
	// Test values are small integers, exactly representable in float32.
	if got := res.Blocks[0].At(1, 2); got != 1212 {
		t.Errorf("value = %v, want 1212", got)
	}
	if math.IsNaN(res.Extents[0].X1) || res.Extents[0].X1 != 1 {
		t.Errorf("extent = %+v", res.Extents[0])
	}
}
