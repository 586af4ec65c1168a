package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/SaFE-APIOpt/SaFE-APIOpt/pkg/types"
)

// --- corrupt destinations are never overwritten ---

func TestAppend_CorruptXLSXIsNotOverwritten(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "output.xlsx")
	garbage := []byte("this is not a zip archive")
	if err := os.WriteFile(dest, garbage, 0o644); err != nil {
		t.Fatal(err)
	}
	err := Append(sampleRow(1, true), dest)
	if !errors.Is(err, ErrCorruptTable) {
		t.Fatalf("err = %v, want ErrCorruptTable", err)
	}
	got, _ := os.ReadFile(dest)
	if string(got) != string(garbage) {
		t.Fatal("corrupt destination was modified")
	}
}

func TestAppend_RaggedCSVIsCorrupt(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "output.csv")
	if err := os.WriteFile(dest, []byte("api1,api2\na,b,c\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Append(sampleRow(1, true), dest); !errors.Is(err, ErrCorruptTable) {
		t.Fatalf("err = %v, want ErrCorruptTable", err)
	}
}

func TestLoad_DuplicateHeaderIsCorrupt(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "output.csv")
	if err := os.WriteFile(dest, []byte("api1,api1\na,b\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dest); !errors.Is(err, ErrCorruptTable) {
		t.Fatalf("err = %v, want ErrCorruptTable", err)
	}
}

func TestLoad_DirectoryIsCorrupt(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "output.csv")
	if err := os.Mkdir(dest, 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dest); !errors.Is(err, ErrCorruptTable) {
		t.Fatalf("err = %v, want ErrCorruptTable", err)
	}
}

func TestAppend_UnsupportedExtension(t *testing.T) {
	err := Append(sampleRow(1, true), filepath.Join(t.TempDir(), "output.json"))
	if !errors.Is(err, ErrUnsupportedTable) {
		t.Fatalf("err = %v, want ErrUnsupportedTable", err)
	}
}

// --- fixed schema per destination ---

func TestAppend_ScaleSetMismatchIsRejected(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "output.csv")
	if err := Append(sampleRow(1, true), dest); err != nil {
		t.Fatal(err)
	}
	before, _ := os.ReadFile(dest)

	other := sampleRow(2, false)
	other.Scales = types.ScaleSet{10, 100, 1000}
	err := Append(other, dest)
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("err = %v, want ErrSchemaMismatch", err)
	}
	after, _ := os.ReadFile(dest)
	if string(before) != string(after) {
		t.Fatal("destination changed after rejected append")
	}
}

func TestAppend_RowsWithoutScalesColumnAreAccepted(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "output.csv")
	if err := os.WriteFile(dest, []byte("api1,api2,package,description,substitutable\nx,y,z,legacy,No\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Append(sampleRow(1, true), dest); err != nil {
		t.Fatalf("Append: %v", err)
	}
	tbl, err := Load(dest)
	if err != nil {
		t.Fatal(err)
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("rows = %d", len(tbl.Rows))
	}
	if tbl.Columns[0] != types.ColAPI1 || tbl.Columns[5] != types.ColScales {
		t.Fatalf("columns = %v", tbl.Columns)
	}
	if tbl.Get(0, types.ColDescription) != "legacy" || tbl.Get(0, types.ColScales) != "" {
		t.Fatalf("legacy row changed: %+v", tbl.Rows[0])
	}
}

// --- read-modify-write is not safe against interleaving ---

func TestAppend_InterleavedWritersLoseRows(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "output.csv")
	if err := Append(sampleRow(0, true), dest); err != nil {
		t.Fatal(err)
	}
	// Two writers both read the one-row table before either writes back.
	first, err := Load(dest)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Load(dest)
	if err != nil {
		t.Fatal(err)
	}
	first.AppendRow(sampleRow(1, true).Values())
	second.AppendRow(sampleRow(2, true).Values())
	if err := Write(dest, first); err != nil {
		t.Fatal(err)
	}
	if err := Write(dest, second); err != nil {
		t.Fatal(err)
	}

	tbl, err := Load(dest)
	if err != nil {
		t.Fatal(err)
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("rows = %d; the unguarded cycle is expected to drop writer 1's row", len(tbl.Rows))
	}
	if tbl.Get(1, types.ColAPI1) != "api1_2" {
		t.Fatalf("surviving row = %q", tbl.Get(1, types.ColAPI1))
	}
}

// --- atomic replace ---

func TestWrite_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "output.xlsx")
	for i := 0; i < 2; i++ {
		if err := Append(sampleRow(i, true), dest); err != nil {
			t.Fatal(err)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}

func TestWrite_FailureKeepsOriginal(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "output.csv")
	if err := Append(sampleRow(0, true), dest); err != nil {
		t.Fatal(err)
	}
	before, _ := os.ReadFile(dest)

	// A destination path under a regular file cannot be created.
	blocked := filepath.Join(dest, "inner.csv")
	if err := Write(blocked, Table{Columns: []string{"a"}}); err == nil {
		t.Fatal("expected write under a file to fail")
	}
	after, _ := os.ReadFile(dest)
	if string(before) != string(after) {
		t.Fatal("original changed")
	}
}

func TestXLSX_TextThatLooksNumericRoundTrips(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "output.xlsx")
	tbl := Table{Columns: []string{"description", "score", "odd"}}
	tbl.AppendRow(map[string]string{"description": "0.50", "score": "12", "odd": "NaN"})
	if err := Write(dest, tbl); err != nil {
		t.Fatal(err)
	}
	got, err := Load(dest)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range tbl.Columns {
		if got.Get(0, c) != tbl.Get(0, c) {
			t.Errorf("%s = %q, want %q", c, got.Get(0, c), tbl.Get(0, c))
		}
	}
}
