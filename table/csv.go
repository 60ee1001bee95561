package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/spf13/cast"
)

// FromCSV decodes comma separated values with a header row. Columns in which every
// non-blank cell is a number (or true/false) are stored as numbers (or booleans),
// everything else as text. Short rows are padded with blanks but a row with more cells
// than the header is an error.
func FromCSV(f io.Reader) (*Table, error) {
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	// ... header
	index := map[string]int{}
	header := []string{}
	for i, v := range rows[0] {
		if i == 0 {
			v = strings.TrimPrefix(v, "\ufeff")
		}

		k := clean(v)
		if _, ok := index[k]; ok {
			return nil, fmt.Errorf("Duplicate column name '%s'", k)
		}

		index[k] = i
		header = append(header, k)
	}

	// ... records
	records := make([][]any, 0, len(rows)-1)
	for n, row := range rows[1:] {
		if len(row) > len(header) {
			return nil, fmt.Errorf("row %d has %d cells, expected at most %d", n+2, len(row), len(header))
		}

		record := make([]any, len(header))
		for i := range header {
			if i < len(row) && row[i] != "" {
				record[i] = row[i]
			}
		}

		records = append(records, record)
	}

	t := Table{
		Header:  header,
		Records: records,
	}

	for col := range header {
		coerce(&t, col)
	}

	t.resolve()

	return &t, nil
}

// coerce converts a text column to numbers or booleans if every non-blank cell parses.
func coerce(t *Table, col int) {
	numbers, booleans := true, true

	for _, record := range t.Records {
		s, ok := record[col].(string)
		if !ok {
			continue
		}

		if numbers {
			if _, ok := number(s); !ok {
				numbers = false
			}
		}

		if booleans {
			if _, ok := boolean(s); !ok {
				booleans = false
			}
		}

		if !numbers && !booleans {
			return
		}
	}

	for _, record := range t.Records {
		if s, ok := record[col].(string); ok {
			if numbers {
				record[col], _ = number(s)
			} else {
				record[col], _ = boolean(s)
			}
		}
	}
}

func number(s string) (float64, bool) {
	v, err := cast.ToFloat64E(strings.TrimSpace(s))
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}

	return v, true
}

func boolean(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}
