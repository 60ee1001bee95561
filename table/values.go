package table

import (
	"fmt"

	"github.com/spf13/cast"
)

// FromValues builds a table from a grid of cell values in which the first row is the
// header, e.g. the rows of a worksheet. Short rows are padded with empty cells and
// blank cells are stored as nil.
func FromValues(rows [][]any) (*Table, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("Empty sheet")
	}

	// .. build index
	index := map[string]int{}
	header := []string{}
	for i, v := range rows[0] {
		k := clean(cast.ToString(v))
		if k == "" {
			return nil, fmt.Errorf("Missing header for column %d", i+1)
		}

		if _, ok := index[k]; ok {
			return nil, fmt.Errorf("Duplicate column name '%s'", k)
		}

		index[k] = i
		header = append(header, k)
	}

	if len(header) == 0 {
		return nil, fmt.Errorf("Missing/invalid header row")
	}

	// ... records
	records := [][]any{}
	for _, row := range rows[1:] {
		record := make([]any, len(header))
		for i := range header {
			if i < len(row) {
				if v := cast.ToString(row[i]); v != "" {
					record[i] = v
				}
			}
		}

		records = append(records, record)
	}

	t := Table{
		Header:  header,
		Records: records,
	}

	t.resolve()

	return &t, nil
}
