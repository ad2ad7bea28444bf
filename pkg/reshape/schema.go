// Package reshape turns a wide person export, with one repeated column group
// per organization, into a long table with one row per person and
// organization.
package reshape

import (
	"fmt"
	"iter"
	"regexp"
	"sort"
	"strconv"
)

// PersonColumns are expected in every export regardless of group count.
var PersonColumns = []string{
	"full_name",
	"first_name",
	"last_name",
	"headline",
	"location_name",
	"summary",
	"current_company",
	"current_company_position",
}

// GroupFields are the canonical, unsuffixed names of one organization group.
var GroupFields = []string{
	"organization",
	"organization_id",
	"organization_url",
	"organization_title",
	"organization_start",
	"organization_end",
	"organization_description",
	"organization_location",
	"organization_website",
	"organization_domain",
	"position_description",
}

// OutputColumns is the projection written out after reshaping.
var OutputColumns = []string{
	"full_name",
	"organization",
	"organization_title",
	"organization_start",
	"organization_end",
	"position_description",
	"organization_location",
}

var groupColumnPattern = regexp.MustCompile(`^organization_(\d+)`)

// GroupDescriptor names the columns of one organization group.
type GroupDescriptor struct {
	Index   int
	Columns []string
}

func NewGroupDescriptor(i int) GroupDescriptor {
	return GroupDescriptor{Index: i, Columns: BuildGroupColumnNames(i)}
}

// Renames maps each suffixed column to its canonical name.
func (g GroupDescriptor) Renames() map[string]string {
	m := make(map[string]string, len(g.Columns))
	for i, c := range g.Columns {
		m[c] = GroupFields[i]
	}
	return m
}

// BuildGroupColumnNames returns the 11 column names of group i in fixed order.
func BuildGroupColumnNames(i int) []string {
	out := make([]string, len(GroupFields))
	for j, f := range GroupFields {
		out[j] = fmt.Sprintf("%s_%d", f, i)
	}
	return out
}

// DetectGroupIndices returns the distinct, ascending group indices found in
// column names of the form organization_<digits>.
func DetectGroupIndices(columns []string) ([]int, error) {
	seen := make(map[int]struct{})
	for _, c := range columns {
		m := groupColumnPattern.FindStringSubmatch(c)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			// digits overflowing int cannot name a real group
			continue
		}
		seen[n] = struct{}{}
	}
	if len(seen) == 0 {
		return nil, &SchemaError{Kind: NoOrganizationColumns}
	}
	out := make([]int, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Ints(out)
	return out, nil
}

// GroupDescriptors yields descriptors for groups 1..M-1, where M is the
// highest detected index. includeLast extends the range to 1..M.
// Descriptors are produced on demand, so a consumer that stops at the first
// missing group never pays for the rest of the range.
func GroupDescriptors(indices []int, includeLast bool) iter.Seq[GroupDescriptor] {
	last := 0
	for _, n := range indices {
		if n > last {
			last = n
		}
	}
	if !includeLast {
		last--
	}
	return func(yield func(GroupDescriptor) bool) {
		for i := 1; i <= last; i++ {
			if !yield(NewGroupDescriptor(i)) || i == last {
				return
			}
		}
	}
}
