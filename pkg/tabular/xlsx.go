package tabular

import (
	"io"

	"github.com/xuri/excelize/v2"
)

// ReadXLSX parses the first sheet of a workbook. The first row is the header.
func ReadXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, ioErr("open workbook", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ioErr("read workbook", ErrMissingHeader)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, ioErr("read sheet "+sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, ioErr("read sheet "+sheets[0], ErrMissingHeader)
	}
	return New(normalizeHeader(rows[0]), rows[1:]), nil
}
