package table

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Kind is the value kind of a column. Cells of a column of kind K hold either nil
// or a value of the corresponding Go type.
type Kind int

const (
	Text    Kind = iota // string
	Number              // float64
	Boolean             // bool
	Date                // time.Time
)

func (k Kind) String() string {
	switch k {
	case Number:
		return "number"
	case Boolean:
		return "boolean"
	case Date:
		return "date"
	default:
		return "text"
	}
}

// Table is an in-memory dataset with ordered columns and rows in source order.
type Table struct {
	Header  []string
	Kinds   []Kind
	Records [][]any
}

// New builds a table from a header and rows of cell values and sets the column kinds.
// Rows must have one cell per column.
func New(header []string, records [][]any) (*Table, error) {
	seen := map[string]bool{}
	for _, h := range header {
		if seen[h] {
			return nil, fmt.Errorf("Duplicate column name '%s'", h)
		}
		seen[h] = true
	}

	for i, record := range records {
		if len(record) != len(header) {
			return nil, fmt.Errorf("row %d has %d cells, expected %d", i+1, len(record), len(header))
		}
	}

	t := Table{
		Header:  append([]string{}, header...),
		Records: records,
	}

	t.resolve()

	return &t, nil
}

// Index returns the position of the named column or -1.
func (t *Table) Index(column string) int {
	for i, h := range t.Header {
		if h == column {
			return i
		}
	}

	return -1
}

// Rows returns the number of data rows.
func (t *Table) Rows() int {
	return len(t.Records)
}

// Column returns a copy of the cells of the named column.
func (t *Table) Column(column string) ([]any, error) {
	ix := t.Index(column)
	if ix < 0 {
		return nil, fmt.Errorf("no such column '%s'", column)
	}

	cells := make([]any, len(t.Records))
	for i, record := range t.Records {
		cells[i] = record[ix]
	}

	return cells, nil
}

// Values returns the table as a header row followed by one row per record, with every
// cell formatted as text.
func (t *Table) Values() [][]any {
	values := make([][]any, 0, len(t.Records)+1)

	header := make([]any, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}

	values = append(values, header)

	for _, record := range t.Records {
		row := make([]any, len(record))
		for i, v := range record {
			row[i] = Format(v)
		}

		values = append(values, row)
	}

	return values
}

// Format renders a cell value as text. Dates without a time of day are formatted as
// yyyy-mm-dd, other dates as RFC3339.
func Format(v any) string {
	switch value := v.(type) {
	case nil:
		return ""

	case time.Time:
		if value.Hour() == 0 && value.Minute() == 0 && value.Second() == 0 && value.Nanosecond() == 0 {
			return value.Format("2006-01-02")
		}
		return value.Format(time.RFC3339)

	default:
		return cast.ToString(value)
	}
}

// resolve sets the kind of every column from the cell values. Columns with mixed value
// types are coerced to text.
func (t *Table) resolve() {
	t.Kinds = make([]Kind, len(t.Header))

	for col := range t.Header {
		kind, mixed := Text, false
		first := true

		for _, record := range t.Records {
			k, ok := kindOf(record[col])
			if !ok {
				continue
			}

			if first {
				kind, first = k, false
			} else if k != kind {
				mixed = true
				break
			}
		}

		if mixed {
			for _, record := range t.Records {
				if record[col] != nil {
					record[col] = Format(record[col])
				}
			}
			kind = Text
		}

		t.Kinds[col] = kind
	}
}

func kindOf(v any) (Kind, bool) {
	switch v.(type) {
	case nil:
		return Text, false
	case float64:
		return Number, true
	case bool:
		return Boolean, true
	case time.Time:
		return Date, true
	default:
		return Text, true
	}
}

// FromRecords builds a table from a list of ordered records. The header is the union
// of the record keys in first-seen order and missing keys yield nil cells.
func FromRecords(records []Record) *Table {
	t := Table{
		Header:  []string{},
		Records: make([][]any, 0, len(records)),
	}

	index := map[string]int{}
	for _, record := range records {
		for _, field := range record {
			if _, ok := index[field.Key]; !ok {
				index[field.Key] = len(t.Header)
				t.Header = append(t.Header, field.Key)
			}
		}
	}

	for _, record := range records {
		row := make([]any, len(t.Header))
		for _, field := range record {
			row[index[field.Key]] = field.Value
		}

		t.Records = append(t.Records, row)
	}

	t.resolve()

	return &t
}

// Record is an ordered list of key/value pairs, i.e. one source row.
type Record []Field

type Field struct {
	Key   string
	Value any
}

func clean(v string) string {
	return strings.TrimSpace(v)
}
