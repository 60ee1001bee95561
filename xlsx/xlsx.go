// Package xlsx renders a dataset collection as an Excel workbook with one worksheet per
// dataset and reads rendered workbooks back.
package xlsx

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/tabulate/excel-pipeline/table"
)

const (
	dateFormat     = "yyyy-mm-dd"
	dateTimeFormat = "yyyy-mm-dd hh:mm:ss"
)

// Render writes the collection to a new workbook at path. Worksheets follow the
// collection order and row 1 of each worksheet holds the column names. Worksheet names
// are case insensitive and names that differ only by case are an error. A workbook for
// an empty collection keeps the default (empty) worksheet.
func Render(c *table.Collection, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	styles, err := newStyles(f)
	if err != nil {
		return err
	}

	first := f.GetSheetName(0)
	for i, name := range c.Names() {
		t, _ := c.Get(name)

		if i > 0 {
			if ix, err := f.GetSheetIndex(name); err != nil {
				return fmt.Errorf("unable to create worksheet '%s' (%w)", name, err)
			} else if ix != -1 {
				return fmt.Errorf("unable to create worksheet '%s' (worksheet names must differ by more than case)", name)
			}
		}

		if i == 0 {
			if err := f.SetSheetName(first, name); err != nil {
				return fmt.Errorf("unable to create worksheet '%s' (%w)", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("unable to create worksheet '%s' (%w)", name, err)
		}

		if err := write(f, name, t, styles); err != nil {
			return fmt.Errorf("unable to write worksheet '%s' (%w)", name, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("unable to save workbook '%s' (%w)", path, err)
	}

	return nil
}

type styles struct {
	date     int
	datetime int
}

func newStyles(f *excelize.File) (*styles, error) {
	date, datetime := dateFormat, dateTimeFormat

	d, err := f.NewStyle(&excelize.Style{CustomNumFmt: &date})
	if err != nil {
		return nil, err
	}

	dt, err := f.NewStyle(&excelize.Style{CustomNumFmt: &datetime})
	if err != nil {
		return nil, err
	}

	return &styles{date: d, datetime: dt}, nil
}

func write(f *excelize.File, sheet string, t *table.Table, s *styles) error {
	for col, h := range t.Header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}

		if err := f.SetCellStr(sheet, cell, h); err != nil {
			return err
		}
	}

	for row, record := range t.Records {
		for col, v := range record {
			if v == nil {
				continue
			}

			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return err
			}

			switch value := v.(type) {
			case time.Time:
				if err := f.SetCellValue(sheet, cell, value); err != nil {
					return err
				}

				style := s.datetime
				if value.Hour() == 0 && value.Minute() == 0 && value.Second() == 0 && value.Nanosecond() == 0 {
					style = s.date
				}

				if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
					return err
				}

			case string:
				if err := f.SetCellStr(sheet, cell, value); err != nil {
					return err
				}

			default:
				if err := f.SetCellValue(sheet, cell, value); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

// Read loads a workbook as a collection of text tables, one per worksheet. Cells hold
// the formatted cell values and empty worksheets yield empty tables.
func Read(path string) (*table.Collection, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open workbook '%s' (%w)", path, err)
	}

	defer f.Close()

	c := table.NewCollection()
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("unable to read worksheet '%s' (%w)", sheet, err)
		}

		if len(rows) == 0 {
			t, _ := table.New([]string{}, [][]any{})
			c.Put(sheet, t)
			continue
		}

		values := make([][]any, len(rows))
		for i, row := range rows {
			values[i] = make([]any, len(row))
			for j, v := range row {
				values[i][j] = v
			}
		}

		t, err := table.FromValues(values)
		if err != nil {
			return nil, fmt.Errorf("invalid worksheet '%s' (%w)", sheet, err)
		}

		c.Put(sheet, t)
	}

	return c, nil
}
