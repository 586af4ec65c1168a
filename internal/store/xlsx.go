package store

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/SaFE-APIOpt/SaFE-APIOpt/pkg/types"
)

const sheetName = "Sheet1"

type xlsxCodec struct{}

// decode reads the first sheet. Numeric cells are read raw and rendered in
// the same canonical form encode wrote them from, so a load/write cycle is
// lossless.
func (xlsxCodec) decode(r io.ReaderAt, size int64) ([][]string, error) {
	f, err := excelize.OpenReader(io.NewSectionReader(r, 0, size))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	sheet := sheets[0]
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		for j, v := range row {
			num, err := strconv.ParseFloat(v, 64)
			if err != nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return nil, err
			}
			ct, err := f.GetCellType(sheet, cell)
			if err != nil {
				return nil, err
			}
			if ct == excelize.CellTypeSharedString || ct == excelize.CellTypeInlineString {
				continue
			}
			rows[i][j] = types.FormatFloat(num)
		}
	}
	return rows, nil
}

func (xlsxCodec) encode(w io.Writer, m [][]string) error {
	f := excelize.NewFile()
	defer f.Close()
	for i, line := range m {
		cells := make([]any, len(line))
		for j, v := range line {
			cells[j] = cellValue(v, i == 0)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	_, err := f.WriteTo(w)
	return err
}

// cellValue stores canonical numbers as numeric cells so spreadsheets can
// compute on them; anything else, the header included, stays text.
func cellValue(v string, header bool) any {
	if header || v == "" {
		return v
	}
	num, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(num) || math.IsInf(num, 0) || types.FormatFloat(num) != v {
		return v
	}
	return num
}
