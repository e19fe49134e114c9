package table

import (
	"fmt"
	"strings"
)

// MissingColumnError reports required columns absent from a table.
type MissingColumnError struct {
	Source  string
	Columns []string
}

func (e *MissingColumnError) Error() string {
	quoted := make([]string, len(e.Columns))
	for i, c := range e.Columns {
		quoted[i] = fmt.Sprintf("%q", c)
	}
	noun := "column"
	if len(e.Columns) > 1 {
		noun = "columns"
	}
	return fmt.Sprintf("table: %s: missing required %s %s", e.Source, noun, strings.Join(quoted, ", "))
}
