package athenak

import (
	"bufio"
	"os"
	"strings"
	"testing"
)

func TestWriterPreambleLayout(t *testing.T) {
	path := writeSnapshot(t, testConfig(), nil)

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	var lines []string
	for len(lines) < 9 && scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if len(lines) < 9 {
		t.Fatalf("preamble has %d lines", len(lines))
	}

	if lines[0] != Signature {
		t.Errorf("line 1 = %q", lines[0])
	}
	// Numeric payloads sit at the fixed columns the reader expects.
	if !strings.HasPrefix(lines[4], "  size of location=") || lines[4][sizeColumn:] != "8" {
		t.Errorf("line 5 = %q", lines[4])
	}
	if lines[5][sizeColumn:] != "8" {
		t.Errorf("line 6 = %q", lines[5])
	}
	if !strings.HasPrefix(lines[7], "  variables:") {
		t.Errorf("line 8 = %q", lines[7])
	}
	if !strings.HasPrefix(lines[8], "  header offset=") {
		t.Errorf("line 9 = %q", lines[8])
	}
}

func TestWriterParameterRoundTrip(t *testing.T) {
	f := openSnapshot(t, testConfig(), twoBlockRecords())
	p := f.Header().Params

	nx3, err := p.Int("mesh", "nx3")
	if err != nil || nx3 != 8 {
		t.Errorf("mesh/nx3 = %d, %v; want 8", nx3, err)
	}
	mbNx3, err := p.Int("meshblock", "nx3")
	if err != nil || mbNx3 != 4 {
		t.Errorf("meshblock/nx3 = %d, %v; want 4", mbNx3, err)
	}
	x3max, err := p.Float("mesh", "x3max")
	if err != nil || x3max != 1 {
		t.Errorf("mesh/x3max = %v, %v; want 1", x3max, err)
	}
}

func TestWriterValidation(t *testing.T) {
	dir := t.TempDir()

	cfg := testConfig()
	cfg.FieldNames = nil
	if _, err := Create(dir+"/a.bin", cfg); err == nil {
		t.Error("expected error for empty field list")
	}

	cfg = testConfig()
	cfg.LocationSize = 6
	if _, err := Create(dir+"/b.bin", cfg); err == nil {
		t.Error("expected error for bad location width")
	}

	cfg = testConfig()
	w, err := Create(dir+"/c.bin", cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	rec := twoBlockRecords()[0]
	rec.Fields = rec.Fields[:2]
	if err := w.WriteBlock(rec); err == nil {
		t.Error("expected error for missing field payloads")
	}

	rec = twoBlockRecords()[0]
	rec.Fields[0] = rec.Fields[0][:5]
	if err := w.WriteBlock(rec); err == nil {
		t.Error("expected error for short payload")
	}
}

// The raw index range is written ghost-inclusive; reading must recover
// the interior counts exactly.
func TestWriterGhostOffsets(t *testing.T) {
	cfg := testConfig()
	cfg.Mesh.NGhost = 3
	f := openSnapshot(t, cfg, twoBlockRecords())

	res, err := f.ExtractVolume(Field("dens"))
	if err != nil {
		t.Fatalf("ExtractVolume failed: %v", err)
	}
	if res.BlockShape != [3]int{4, 3, 4} {
		t.Errorf("BlockShape = %v, want [4 3 4]", res.BlockShape)
	}
}
