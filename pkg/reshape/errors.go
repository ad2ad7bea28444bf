package reshape

import (
	"errors"
	"fmt"

	"github.com/iota-uz/org-reshape/pkg/tabular"
)

type SchemaErrorKind int

const (
	NoOrganizationColumns SchemaErrorKind = iota + 1
	MissingColumn
)

func (k SchemaErrorKind) String() string {
	switch k {
	case NoOrganizationColumns:
		return "no_organization_columns"
	case MissingColumn:
		return "missing_column"
	default:
		return "unknown"
	}
}

// SchemaError reports an input whose columns do not fit the export layout.
// Group is zero when the missing column is not tied to a group.
type SchemaError struct {
	Kind   SchemaErrorKind
	Column string
	Group  int
}

var (
	ErrNoOrganizationColumns = &SchemaError{Kind: NoOrganizationColumns}
	ErrMissingColumn         = &SchemaError{Kind: MissingColumn}
)

func (e *SchemaError) Error() string {
	switch e.Kind {
	case NoOrganizationColumns:
		return "No organization columns found in the file. Please upload the correct file."
	case MissingColumn:
		return fmt.Sprintf("Column not found: '%s'. Please make sure the columns match the expected format.", e.Column)
	default:
		return "schema error"
	}
}

// Is matches on Kind so callers can use errors.Is with the sentinels above.
func (e *SchemaError) Is(target error) bool {
	t, ok := target.(*SchemaError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Column == "" || t.Column == e.Column)
}

// UserMessage renders err the way it is shown to whoever supplied the file.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var se *SchemaError
	if errors.As(err, &se) {
		return se.Error()
	}
	var ie *tabular.IOError
	if errors.As(err, &ie) {
		return "Error processing file: " + ie.Error()
	}
	return "Error processing file: " + err.Error()
}
