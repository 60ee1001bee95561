// Package transform applies the per-source column renames and date conversions to a
// fetched table.
package transform

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/spf13/cast"

	"github.com/tabulate/excel-pipeline/config"
	"github.com/tabulate/excel-pipeline/table"
)

// Error is returned when a transformation cannot be applied to a table. Row is the
// 1-based data row or 0 if the error is not specific to a row.
type Error struct {
	Column string
	Row    int
	Err    error
}

func (e *Error) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("column '%s', row %d: %v", e.Column, e.Row, e.Err)
	}

	return fmt.Sprintf("column '%s': %v", e.Column, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Apply renames the table columns and then converts the date columns, in place. Date
// columns are named after renaming. On error the table is left unchanged.
func Apply(t *table.Table, spec config.Transformations) error {
	if spec.IsEmpty() {
		return nil
	}

	header, err := rename(t.Header, spec.RenameColumns)
	if err != nil {
		return err
	}

	converted := map[int][]any{}
	for _, column := range spec.DateColumns {
		ix := indexOf(header, column)
		if ix < 0 {
			return &Error{Column: column, Err: fmt.Errorf("no such column")}
		}

		if _, ok := converted[ix]; ok {
			continue
		}

		cells, err := dates(t, ix, column)
		if err != nil {
			return err
		}

		converted[ix] = cells
	}

	if len(t.Kinds) != len(header) {
		t.Kinds = make([]table.Kind, len(header))
	}

	t.Header = header
	for ix, cells := range converted {
		for row, record := range t.Records {
			record[ix] = cells[row]
		}

		t.Kinds[ix] = table.Date
	}

	return nil
}

// rename computes the new header from the original one so that swapping two column
// names works. Unknown columns are ignored.
func rename(header []string, columns map[string]string) ([]string, error) {
	renamed := make([]string, len(header))
	seen := map[string]bool{}

	for i, h := range header {
		if v, ok := columns[h]; ok {
			renamed[i] = v
		} else {
			renamed[i] = h
		}

		if seen[renamed[i]] {
			return nil, &Error{Column: renamed[i], Err: fmt.Errorf("duplicate column name after rename")}
		}

		seen[renamed[i]] = true
	}

	return renamed, nil
}

func dates(t *table.Table, ix int, column string) ([]any, error) {
	cells := make([]any, len(t.Records))

	for row, record := range t.Records {
		switch v := record[ix].(type) {
		case nil:
			cells[row] = nil

		case time.Time:
			cells[row] = v

		case string:
			if strings.TrimSpace(v) == "" {
				cells[row] = nil
			} else if d, err := parse(v); err != nil {
				return nil, &Error{Column: column, Row: row + 1, Err: err}
			} else {
				cells[row] = d
			}

		case float64:
			if d, err := parse(cast.ToString(v)); err != nil {
				return nil, &Error{Column: column, Row: row + 1, Err: err}
			} else {
				cells[row] = d
			}

		default:
			return nil, &Error{Column: column, Row: row + 1, Err: fmt.Errorf("invalid date '%v'", v)}
		}
	}

	return cells, nil
}

func parse(s string) (time.Time, error) {
	d, err := dateparse.ParseIn(strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date '%s'", s)
	}

	return d.UTC(), nil
}

func indexOf(header []string, column string) int {
	for i, h := range header {
		if h == column {
			return i
		}
	}

	return -1
}
