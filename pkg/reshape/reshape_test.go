package reshape

import (
	"errors"
	"fmt"
	"iter"
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iota-uz/org-reshape/pkg/tabular"
)

type person struct {
	name string
	orgs map[int]org
}

type org struct {
	name  string
	title string
	start string
}

// buildExport lays out a wide export with groups 1..groups for people.
func buildExport(groups int, people ...person) *tabular.Table {
	cols := append([]string(nil), PersonColumns...)
	for i := 1; i <= groups; i++ {
		cols = append(cols, BuildGroupColumnNames(i)...)
	}
	rows := make([][]string, 0, len(people))
	for _, p := range people {
		row := make([]string, len(cols))
		row[0] = p.name
		for i := 1; i <= groups; i++ {
			o, ok := p.orgs[i]
			if !ok {
				continue
			}
			base := len(PersonColumns) + (i-1)*len(GroupFields)
			row[base] = o.name
			row[base+3] = o.title
			row[base+4] = o.start
		}
		rows = append(rows, row)
	}
	return tabular.New(cols, rows)
}

func column(t *testing.T, tbl *tabular.Table, name string) []string {
	t.Helper()
	c, ok := tbl.Column(name)
	require.True(t, ok, "column %s", name)
	return c
}

func TestDetectGroupIndices(t *testing.T) {
	cols := []string{"full_name", "organization_3", "organization_id_3", "organization_7", "organization_title_7", "position_description_7"}

	got, err := DetectGroupIndices(cols)
	require.NoError(t, err)
	require.Equal(t, []int{3, 7}, got)
}

func TestDetectGroupIndices_MultiDigit(t *testing.T) {
	got, err := DetectGroupIndices([]string{"organization_12", "organization_2", "organization_12"})
	require.NoError(t, err)
	require.Equal(t, []int{2, 12}, got)
}

func TestDetectGroupIndices_None(t *testing.T) {
	_, err := DetectGroupIndices([]string{"full_name", "organization", "organization_id_1", "organization_x"})
	require.ErrorIs(t, err, ErrNoOrganizationColumns)
}

func TestBuildGroupColumnNames(t *testing.T) {
	require.Equal(t, []string{
		"organization_4",
		"organization_id_4",
		"organization_url_4",
		"organization_title_4",
		"organization_start_4",
		"organization_end_4",
		"organization_description_4",
		"organization_location_4",
		"organization_website_4",
		"organization_domain_4",
		"position_description_4",
	}, BuildGroupColumnNames(4))
}

func TestGroupDescriptors_Range(t *testing.T) {
	indexes := func(gs iter.Seq[GroupDescriptor]) []int {
		out := []int{}
		for g := range gs {
			out = append(out, g.Index)
		}
		return out
	}
	require.Equal(t, []int{1, 2, 3, 4, 5, 6}, indexes(GroupDescriptors([]int{3, 7}, false)))
	require.Equal(t, []int{1, 2, 3, 4, 5, 6, 7}, indexes(GroupDescriptors([]int{3, 7}, true)))
	require.Empty(t, indexes(GroupDescriptors([]int{1}, false)))
	require.Equal(t, []int{1}, indexes(GroupDescriptors([]int{1}, true)))
}

func TestExtractGroup_RenamesGroupColumns(t *testing.T) {
	tbl := buildExport(2, person{name: "Alice", orgs: map[int]org{2: {name: "Globex", start: "2019.03"}}})

	sub, err := ExtractGroup(tbl, NewGroupDescriptor(2))
	require.NoError(t, err)
	require.Equal(t, append(append([]string(nil), PersonColumns...), GroupFields...), sub.Columns)
	require.Equal(t, 1, sub.NumRows())
	require.Equal(t, []string{"Globex"}, column(t, sub, "organization"))
	require.Equal(t, []string{"2019.03"}, column(t, sub, "organization_start"))
}

func TestExtractGroup_MissingGroupColumn(t *testing.T) {
	tbl := buildExport(1, person{name: "Alice"})
	idx := tbl.ColumnIndex("organization_url_1")
	tbl.Columns[idx] = "organization_link_1"

	_, err := ExtractGroup(tbl, NewGroupDescriptor(1))
	var se *SchemaError
	require.True(t, errors.As(err, &se))
	require.Equal(t, MissingColumn, se.Kind)
	require.Equal(t, "organization_url_1", se.Column)
	require.Equal(t, 1, se.Group)
	require.Contains(t, se.Error(), "'organization_url_1'")
}

func TestExtractGroup_MissingPersonColumn(t *testing.T) {
	tbl := buildExport(1, person{name: "Alice"})
	tbl.Columns[tbl.ColumnIndex("headline")] = "tagline"

	_, err := ExtractGroup(tbl, NewGroupDescriptor(1))
	require.ErrorIs(t, err, &SchemaError{Kind: MissingColumn, Column: "headline"})

	var se *SchemaError
	require.True(t, errors.As(err, &se))
	require.Zero(t, se.Group)
}

func TestReshape_Scenario(t *testing.T) {
	tbl := buildExport(2,
		person{name: "Alice Smith", orgs: map[int]org{
			1: {name: "Acme Corp", start: "2020.01"},
			2: {name: "Globex", start: "2018.05"},
		}},
		person{name: "Bob Lee", orgs: map[int]org{
			1: {name: ""},
			2: {name: "Initech", start: "2015.02"},
		}},
	)

	out, err := Reshape(tbl)
	require.NoError(t, err)
	require.Equal(t, OutputColumns, out.Columns)
	require.Equal(t, [][]string{{"Alice Smith", "Acme Corp", "", "2020.01", "", "", ""}}, out.Rows)
}

func TestReshape_LastGroupBoundary(t *testing.T) {
	full := map[int]org{
		1: {name: "G1"},
		2: {name: "G2"},
		3: {name: "G3"},
	}
	tbl := buildExport(3, person{name: "Alice", orgs: full}, person{name: "Bob", orgs: full})

	legacy, err := Reshape(tbl)
	require.NoError(t, err)
	require.NotContains(t, column(t, legacy, "organization"), "G3")
	require.Equal(t, 4, legacy.NumRows())

	fixed, err := Reshape(tbl, WithIncludeLastGroup(true))
	require.NoError(t, err)
	require.Contains(t, column(t, fixed, "organization"), "G3")
	require.Equal(t, 6, fixed.NumRows())
}

func TestReshape_DropsEmptyOrganizations(t *testing.T) {
	tbl := buildExport(4,
		person{name: "A", orgs: map[int]org{1: {name: "X"}, 2: {name: "  "}, 3: {name: "Y"}}},
		person{name: "B", orgs: map[int]org{2: {name: "Z"}}},
	)

	out, stats, err := ReshapeWithStats(tbl)
	require.NoError(t, err)
	require.Equal(t, []string{"X", "Y", "Z"}, column(t, out, "organization"))
	for _, v := range column(t, out, "organization") {
		require.False(t, tabular.IsEmpty(v))
	}
	require.Equal(t, []int{1, 2, 3}, stats.Groups)
	require.Equal(t, 6, stats.Combined)
	require.Equal(t, 3, stats.Dropped)
	require.Equal(t, 3, stats.Records)
	require.Equal(t, 4, stats.LastGroup)
}

func TestReshape_RowCountBound(t *testing.T) {
	const n, m = 5, 4
	var people []person
	for i := 0; i < n; i++ {
		orgs := map[int]org{}
		for g := 1; g <= m; g++ {
			orgs[g] = org{name: fmt.Sprintf("org-%d-%d", i, g)}
		}
		people = append(people, person{name: fmt.Sprintf("p%d", i), orgs: orgs})
	}

	out, err := Reshape(buildExport(m, people...))
	require.NoError(t, err)
	require.Equal(t, n*(m-1), out.NumRows())

	people[0].orgs[1] = org{}
	out, err = Reshape(buildExport(m, people...))
	require.NoError(t, err)
	require.Less(t, out.NumRows(), n*(m-1))
}

func TestReshape_SortOrder(t *testing.T) {
	tbl := buildExport(4,
		person{name: "Bob", orgs: map[int]org{1: {name: "B1", start: "2021.01"}, 2: {name: "B2", start: ""}, 3: {name: "B3", start: "2019.07"}}},
		person{name: "Alice", orgs: map[int]org{1: {name: "A1", start: "2020.01"}, 2: {name: "A2", start: "2010.12"}}},
		person{name: "", orgs: map[int]org{1: {name: "N1", start: "2000.01"}}},
	)

	out, err := Reshape(tbl)
	require.NoError(t, err)
	require.Equal(t, []string{"Alice", "Alice", "Bob", "Bob", "Bob", ""}, column(t, out, "full_name"))
	require.Equal(t, []string{"A2", "A1", "B3", "B1", "B2", "N1"}, column(t, out, "organization"))
}

func TestReshape_SortIsStableForEqualKeys(t *testing.T) {
	tbl := buildExport(3,
		person{name: "Alice", orgs: map[int]org{1: {name: "first", start: "2020.01"}, 2: {name: "second", start: "2020.01"}}},
	)

	out, err := Reshape(tbl)
	require.NoError(t, err)
	require.Equal(t, []string{"first", "second"}, column(t, out, "organization"))
}

func TestReshape_ParsedDates(t *testing.T) {
	tbl := buildExport(4,
		person{name: "Alice", orgs: map[int]org{
			1: {name: "late", start: "2020.10"},
			2: {name: "early", start: "2020.9"},
			3: {name: "unknown", start: "present"},
		}},
	)

	lexical, err := Reshape(tbl)
	require.NoError(t, err)
	require.Equal(t, []string{"late", "early", "unknown"}, column(t, lexical, "organization"))

	parsed, err := Reshape(tbl, WithParsedDates(true))
	require.NoError(t, err)
	require.Equal(t, []string{"early", "late", "unknown"}, column(t, parsed, "organization"))
}

func TestReshape_NoOrganizationColumns(t *testing.T) {
	tbl := tabular.New(PersonColumns, [][]string{{"Alice"}})

	out, err := Reshape(tbl)
	require.Nil(t, out)
	require.ErrorIs(t, err, ErrNoOrganizationColumns)
	require.Equal(t, "No organization columns found in the file. Please upload the correct file.", UserMessage(err))
}

func TestReshape_MissingColumnAbortsWholeRun(t *testing.T) {
	tbl := buildExport(3, person{name: "Alice", orgs: map[int]org{1: {name: "Acme"}}})
	tbl.Columns[tbl.ColumnIndex("organization_domain_2")] = "organization_domains_2"

	out, err := Reshape(tbl)
	require.Nil(t, out)
	require.ErrorIs(t, err, ErrMissingColumn)
	require.Equal(t, "Column not found: 'organization_domain_2'. Please make sure the columns match the expected format.", UserMessage(err))
}

func TestReshape_LargeStrayGroupIndex(t *testing.T) {
	cases := []struct {
		name        string
		stray       string
		includeLast bool
	}{
		{name: "date-like suffix", stray: "organization_20240101"},
		{name: "huge suffix", stray: "organization_4611686018427387904"},
		{name: "max int inclusive", stray: "organization_" + strconv.Itoa(math.MaxInt), includeLast: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tbl := buildExport(1, person{name: "Alice Smith", orgs: map[int]org{1: {name: "Acme Corp", start: "2020.01"}}})
			tbl.Columns = append(tbl.Columns, tc.stray)
			for i := range tbl.Rows {
				tbl.Rows[i] = append(tbl.Rows[i], "")
			}

			out, err := Reshape(tbl, WithIncludeLastGroup(tc.includeLast))
			require.Nil(t, out)
			var se *SchemaError
			require.True(t, errors.As(err, &se))
			require.Equal(t, MissingColumn, se.Kind)
			require.Equal(t, "organization_2", se.Column)
			require.Equal(t, 2, se.Group)
		})
	}
}

func TestGroupDescriptors_StopsAtMaxInt(t *testing.T) {
	var got []int
	for g := range GroupDescriptors([]int{math.MaxInt}, true) {
		got = append(got, g.Index)
		if len(got) == 3 {
			break
		}
	}
	require.Equal(t, []int{1, 2, 3}, got)
}

func TestReshape_SingleGroupLegacyIsEmpty(t *testing.T) {
	tbl := buildExport(1, person{name: "Alice", orgs: map[int]org{1: {name: "Acme"}}})

	out, err := Reshape(tbl)
	require.NoError(t, err)
	require.Equal(t, OutputColumns, out.Columns)
	require.Zero(t, out.NumRows())
}

func TestUserMessage_IOError(t *testing.T) {
	err := &tabular.IOError{Op: "read csv", Err: errors.New("bare \" in non-quoted field")}
	require.Equal(t, "Error processing file: read csv: bare \" in non-quoted field", UserMessage(err))
}
