package tabular

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DetectFormat picks the parser for an upload. The filename extension wins;
// content is sniffed only when the extension says nothing.
func DetectFormat(name string, head []byte) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case "":
	default:
		return "", ErrUnsupportedFormat
	}

	mt := mimetype.Detect(head)
	switch {
	case mt.Is(xlsxMIME):
		return FormatXLSX, nil
	case mt.Is("text/csv"), mt.Is("text/plain"):
		return FormatCSV, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// Read loads a whole upload into a Table. name is only a hint used to pick
// between CSV and spreadsheet parsing.
func Read(name string, r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ioErr("read input", err)
	}
	format, err := DetectFormat(name, data)
	if err != nil {
		return nil, ioErr("detect format of "+filepath.Base(name), err)
	}
	switch format {
	case FormatXLSX:
		return ReadXLSX(bytes.NewReader(data))
	default:
		return ReadCSV(bytes.NewReader(data))
	}
}
