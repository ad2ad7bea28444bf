package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ReadCSV parses a CSV stream whose first record is the header. A leading
// UTF-8 or UTF-16 byte order mark is honoured and dropped.
func ReadCSV(r io.Reader) (*Table, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = false
	// scraped profile text often carries bare quotes inside unquoted cells
	cr.LazyQuotes = true

	header, err := readHeader(cr)
	if err != nil {
		return nil, ioErr("read csv", err)
	}

	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, ioErr("read csv", err)
		}
		rows = append(rows, rec)
	}
	return New(header, rows), nil
}

func readHeader(r *csv.Reader) ([]string, error) {
	h, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, ErrMissingHeader
		}
		return nil, err
	}
	return normalizeHeader(h), nil
}

// normalizeHeader trims names, labels blank ones and suffixes repeats with
// ".1", ".2", ... so that every column stays addressable by name.
func normalizeHeader(h []string) []string {
	out := make([]string, len(h))
	seen := make(map[string]bool, len(h))
	dups := make(map[string]int)
	for i, name := range h {
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		base := name
		for seen[name] {
			dups[base]++
			name = fmt.Sprintf("%s.%d", base, dups[base])
		}
		seen[name] = true
		out[i] = name
	}
	return out
}

// WriteCSV encodes t as UTF-8 CSV: one header row, then the data rows.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}
