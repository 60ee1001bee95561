package table

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteTSV writes the table to f as tab separated values, header first.
func WriteTSV(f io.Writer, t *Table) error {
	if t == nil {
		return fmt.Errorf("Missing table")
	}

	if len(t.Header) == 0 {
		return fmt.Errorf("Missing/invalid header row")
	}

	w := csv.NewWriter(f)
	w.Comma = '\t'

	if err := w.Write(t.Header); err != nil {
		return err
	}

	for _, record := range t.Records {
		row := make([]string, len(record))
		for i, v := range record {
			row[i] = Format(v)
		}

		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()

	return w.Error()
}
