package store

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/gofrs/flock"

	"github.com/SaFE-APIOpt/SaFE-APIOpt/pkg/types"
)

// ErrSchemaMismatch is returned when a row's scale set differs from the one
// the destination table was built with.
var ErrSchemaMismatch = errors.New("result schema mismatch")

// Record is anything that can be flattened into one table row.
type Record interface {
	Columns() []string
	Values() map[string]string
}

// Append loads dest, adds rec after the existing rows and rewrites dest. A
// missing dest is created with rec as its only row. An unreadable or corrupt
// dest is never overwritten.
//
// Append performs an unguarded read-modify-write: two concurrent calls on the
// same dest can lose a row. Use AppendLocked when more than one writer exists.
func Append(rec Record, dest string) error {
	t, err := Load(dest)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", dest, err)
	}
	values := rec.Values()
	if err := checkSchema(t, values); err != nil {
		return err
	}
	t.AddColumns(rec.Columns()...)
	t.AppendRow(values)
	if err := Write(dest, t); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}
	return nil
}

// AppendLocked runs Append under an advisory lock on dest+".lock", giving
// cooperating processes single-writer access.
func AppendLocked(rec Record, dest string) (err error) {
	lock := flock.New(dest + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock %s: %w", dest, err)
	}
	defer func() {
		if uerr := lock.Unlock(); uerr != nil && err == nil {
			err = fmt.Errorf("unlock %s: %w", dest, uerr)
		}
	}()
	return Append(rec, dest)
}

// checkSchema rejects a row whose scales key differs from any existing row's.
// Rows with a blank key predate the scales column and match anything; records
// that carry no key at all are not result rows and are not checked. Result
// rows always carry a key, types.EmptyScalesKey for an empty set.
func checkSchema(t Table, values map[string]string) error {
	want := values[types.ColScales]
	if want == "" {
		return nil
	}
	for i, row := range t.Rows {
		got := row[types.ColScales]
		if got != "" && got != want {
			return fmt.Errorf("%w: row %d uses scales %q, new row uses %q", ErrSchemaMismatch, i+1, got, want)
		}
	}
	return nil
}

// MapRecord adapts a plain column/value map to Record.
type MapRecord struct {
	Cols []string
	Vals map[string]string
}

func (m MapRecord) Columns() []string         { return m.Cols }
func (m MapRecord) Values() map[string]string { return m.Vals }
