package store

import (
	"encoding/csv"
	"io"
)

type csvCodec struct{}

func (csvCodec) decode(r io.ReaderAt, size int64) ([][]string, error) {
	cr := csv.NewReader(io.NewSectionReader(r, 0, size))
	return cr.ReadAll()
}

func (csvCodec) encode(w io.Writer, m [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(m); err != nil {
		return err
	}
	return cw.Error()
}
