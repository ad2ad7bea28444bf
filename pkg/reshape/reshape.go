package reshape

import (
	"errors"
	"sort"
	"strings"
	"time"

	gerrors "github.com/go-faster/errors"

	"github.com/iota-uz/org-reshape/pkg/tabular"
)

type options struct {
	includeLastGroup bool
	parseDates       bool
}

type Option func(*options)

// WithIncludeLastGroup processes groups 1..M instead of the legacy 1..M-1.
func WithIncludeLastGroup(v bool) Option {
	return func(o *options) { o.includeLastGroup = v }
}

// WithParsedDates orders organization_start chronologically ("yyyy.mm")
// rather than as plain strings.
func WithParsedDates(v bool) Option {
	return func(o *options) { o.parseDates = v }
}

// Stats describes one reshape run.
type Stats struct {
	Rows      int   `json:"rows"`
	Groups    []int `json:"groups"`
	Combined  int   `json:"combined"`
	Dropped   int   `json:"dropped"`
	Records   int   `json:"records"`
	LastGroup int   `json:"last_group"`
}

// ExtractGroup selects the person columns and the columns of group g, then
// renames the group columns to their canonical names.
func ExtractGroup(t *tabular.Table, g GroupDescriptor) (*tabular.Table, error) {
	cols := make([]string, 0, len(PersonColumns)+len(g.Columns))
	cols = append(cols, PersonColumns...)
	cols = append(cols, g.Columns...)

	sub, err := t.Select(cols)
	if err != nil {
		var cnf *tabular.ColumnNotFoundError
		if errors.As(err, &cnf) {
			se := &SchemaError{Kind: MissingColumn, Column: cnf.Column}
			if !isPersonColumn(cnf.Column) {
				se.Group = g.Index
			}
			return nil, se
		}
		return nil, err
	}
	sub.Rename(g.Renames())
	return sub, nil
}

// Reshape converts a wide export into the sorted long table. On error no
// table is returned.
func Reshape(t *tabular.Table, opts ...Option) (*tabular.Table, error) {
	out, _, err := ReshapeWithStats(t, opts...)
	return out, err
}

func ReshapeWithStats(t *tabular.Table, opts ...Option) (*tabular.Table, Stats, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	stats := Stats{Rows: t.NumRows()}
	indices, err := DetectGroupIndices(t.Columns)
	if err != nil {
		return nil, Stats{}, err
	}
	stats.LastGroup = indices[len(indices)-1]

	long := tabular.New(append(append([]string(nil), PersonColumns...), GroupFields...), nil)
	for g := range GroupDescriptors(indices, o.includeLastGroup) {
		sub, err := ExtractGroup(t, g)
		if err != nil {
			return nil, Stats{}, err
		}
		if err := long.Concat(sub); err != nil {
			return nil, Stats{}, gerrors.Wrapf(err, "group %d", g.Index)
		}
		stats.Groups = append(stats.Groups, g.Index)
	}
	stats.Combined = long.NumRows()

	orgIdx := long.ColumnIndex("organization")
	long = long.Filter(func(row []string) bool {
		return !tabular.IsEmpty(row[orgIdx])
	})
	stats.Dropped = stats.Combined - long.NumRows()

	out, err := long.Select(OutputColumns)
	if err != nil {
		return nil, Stats{}, gerrors.Wrap(err, "project output columns")
	}
	sortRecords(out, o.parseDates)
	stats.Records = out.NumRows()
	return out, stats, nil
}

// sortRecords orders by full_name, then organization_start, ascending.
// Empty values go last and ties keep their input order.
func sortRecords(t *tabular.Table, parseDates bool) {
	nameIdx := t.ColumnIndex("full_name")
	startIdx := t.ColumnIndex("organization_start")

	startLess := compareStrings
	if parseDates {
		startLess = compareDates
	}
	sort.SliceStable(t.Rows, func(i, j int) bool {
		a, b := t.Rows[i], t.Rows[j]
		if c := compareStrings(a[nameIdx], b[nameIdx]); c != 0 {
			return c < 0
		}
		return startLess(a[startIdx], b[startIdx]) < 0
	})
}

func compareStrings(a, b string) int {
	ae, be := tabular.IsEmpty(a), tabular.IsEmpty(b)
	switch {
	case ae && be:
		return 0
	case ae:
		return 1
	case be:
		return -1
	}
	return strings.Compare(a, b)
}

var startLayouts = []string{"2006.01", "2006.1", "2006-01", "2006-1", "2006"}

func parseStart(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	for _, layout := range startLayouts {
		if ts, err := time.Parse(layout, v); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func compareDates(a, b string) int {
	at, aok := parseStart(a)
	bt, bok := parseStart(b)
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return 1
	case !bok:
		return -1
	}
	return at.Compare(bt)
}

func isPersonColumn(name string) bool {
	for _, c := range PersonColumns {
		if c == name {
			return true
		}
	}
	return false
}
