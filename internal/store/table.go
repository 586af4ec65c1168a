package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrCorruptTable     = errors.New("corrupt result table")
	ErrUnsupportedTable = errors.New("unsupported table format")
)

// Table is an ordered set of named columns and rows. Cells missing from a
// row read as "".
type Table struct {
	Columns []string
	Rows    []map[string]string
}

// AddColumns extends the header with any unseen names, keeping first-seen order.
func (t *Table) AddColumns(cols ...string) {
	seen := make(map[string]struct{}, len(t.Columns))
	for _, c := range t.Columns {
		seen[c] = struct{}{}
	}
	for _, c := range cols {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		t.Columns = append(t.Columns, c)
	}
}

func (t *Table) AppendRow(values map[string]string) {
	row := make(map[string]string, len(values))
	for k, v := range values {
		row[k] = v
	}
	t.Rows = append(t.Rows, row)
}

func (t Table) Get(i int, col string) string {
	if i < 0 || i >= len(t.Rows) {
		return ""
	}
	return t.Rows[i][col]
}

// Matrix renders header plus rows as string cells in column order.
func (t Table) Matrix() [][]string {
	out := make([][]string, 0, len(t.Rows)+1)
	out = append(out, append([]string(nil), t.Columns...))
	for _, r := range t.Rows {
		line := make([]string, len(t.Columns))
		for j, c := range t.Columns {
			line[j] = r[c]
		}
		out = append(out, line)
	}
	return out
}

func fromMatrix(m [][]string) (Table, error) {
	if len(m) == 0 {
		return Table{}, nil
	}
	header := m[0]
	seen := make(map[string]struct{}, len(header))
	for i, c := range header {
		if strings.TrimSpace(c) == "" {
			return Table{}, fmt.Errorf("%w: empty column name at position %d", ErrCorruptTable, i+1)
		}
		if _, ok := seen[c]; ok {
			return Table{}, fmt.Errorf("%w: duplicate column %q", ErrCorruptTable, c)
		}
		seen[c] = struct{}{}
	}
	t := Table{Columns: append([]string(nil), header...), Rows: make([]map[string]string, 0, len(m)-1)}
	for i, line := range m[1:] {
		if len(line) > len(header) {
			return Table{}, fmt.Errorf("%w: row %d has %d cells for %d columns", ErrCorruptTable, i+1, len(line), len(header))
		}
		row := make(map[string]string, len(header))
		for j, v := range line {
			if v != "" {
				row[header[j]] = v
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

type codec interface {
	decode(r io.ReaderAt, size int64) ([][]string, error)
	encode(w io.Writer, m [][]string) error
}

func codecFor(path string) (codec, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return xlsxCodec{}, nil
	case ".csv":
		return csvCodec{}, nil
	default:
		return nil, fmt.Errorf("%w: %s (want .xlsx or .csv)", ErrUnsupportedTable, path)
	}
}

// Load reads the whole table at path. A missing file yields an error that
// matches fs.ErrNotExist; a zero-length file is an empty table.
func Load(path string) (Table, error) {
	c, err := codecFor(path)
	if err != nil {
		return Table{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return Table{}, err
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return Table{}, err
	}
	if fi.IsDir() {
		return Table{}, fmt.Errorf("%w: %s is a directory", ErrCorruptTable, path)
	}
	if fi.Size() == 0 {
		return Table{}, nil
	}
	m, err := c.decode(f, fi.Size())
	if err != nil {
		return Table{}, fmt.Errorf("%w: %s: %v", ErrCorruptTable, path, err)
	}
	return fromMatrix(m)
}

// Write replaces path with t. The table is written to a temporary file in the
// same directory and renamed into place, so readers never see a partial file.
func Write(path string, t Table) error {
	c, err := codecFor(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create table dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp table: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	if err := c.encode(tmp, t.Matrix()); err != nil {
		tmp.Close()
		return fmt.Errorf("encode table: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp table: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp table: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("chmod temp table: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replace table: %w", err)
	}
	committed = true
	return nil
}
