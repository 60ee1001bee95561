package publish

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/tabulate/excel-pipeline/table"
)

// Sheets writes datasets to the worksheets of an existing Google Sheets spreadsheet.
type Sheets struct {
	service *sheets.Service
}

func NewSheets(ctx context.Context, opts ...option.ClientOption) (*Sheets, error) {
	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create new Sheets client (%w)", err)
	}

	return &Sheets{
		service: service,
	}, nil
}

// Publish replaces the contents of one worksheet per dataset, adding the worksheets
// that do not exist yet. Worksheets not in the collection are left as is.
func (s *Sheets) Publish(ctx context.Context, spreadsheetID string, c *table.Collection) error {
	if c.Len() == 0 {
		return nil
	}

	spreadsheet, err := s.service.Spreadsheets.Get(spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to fetch spreadsheet (%w)", err)
	}

	if err := s.addSheets(ctx, spreadsheet, c.Names()); err != nil {
		return err
	}

	ranges := []string{}
	data := []*sheets.ValueRange{}

	for _, name := range c.Names() {
		t, _ := c.Get(name)

		ranges = append(ranges, quote(name))
		data = append(data, &sheets.ValueRange{
			Range:          fmt.Sprintf("%s!A1", quote(name)),
			MajorDimension: "ROWS",
			Values:         t.Values(),
		})
	}

	if err := s.clear(ctx, spreadsheet, ranges); err != nil {
		return fmt.Errorf("unable to clear worksheets (%w)", err)
	}

	rq := sheets.BatchUpdateValuesRequest{
		ValueInputOption: "USER_ENTERED",
		Data:             data,
	}

	if _, err := s.service.Spreadsheets.Values.BatchUpdate(spreadsheet.SpreadsheetId, &rq).Context(ctx).Do(); err != nil {
		return fmt.Errorf("unable to update worksheets (%w)", err)
	}

	return nil
}

func (s *Sheets) addSheets(ctx context.Context, spreadsheet *sheets.Spreadsheet, names []string) error {
	requests := []*sheets.Request{}
	for _, name := range names {
		if getSheet(spreadsheet, name) == nil {
			requests = append(requests, &sheets.Request{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{
						Title: name,
					},
				},
			})
		}
	}

	if len(requests) == 0 {
		return nil
	}

	rq := sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}

	if _, err := s.service.Spreadsheets.BatchUpdate(spreadsheet.SpreadsheetId, &rq).Context(ctx).Do(); err != nil {
		return fmt.Errorf("unable to add worksheets (%w)", err)
	}

	return nil
}

func (s *Sheets) clear(ctx context.Context, spreadsheet *sheets.Spreadsheet, ranges []string) error {
	rq := sheets.BatchClearValuesRequest{
		Ranges: ranges,
	}

	if _, err := s.service.Spreadsheets.Values.BatchClear(spreadsheet.SpreadsheetId, &rq).Context(ctx).Do(); err != nil {
		return err
	}

	return nil
}

func getSheet(spreadsheet *sheets.Spreadsheet, name string) *sheets.Sheet {
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && strings.EqualFold(strings.TrimSpace(sheet.Properties.Title), strings.TrimSpace(name)) {
			return sheet
		}
	}

	return nil
}

// quote returns a worksheet name as an A1 notation sheet reference.
func quote(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}
