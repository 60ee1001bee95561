package transform

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/tabulate/excel-pipeline/config"
	"github.com/tabulate/excel-pipeline/table"
)

func sample() *table.Table {
	t, _ := table.New(
		[]string{"id", "created", "name"},
		[][]any{
			{1.0, "2024-01-02", "alpha"},
			{2.0, "March 7, 2023", "beta"},
			{3.0, nil, "gamma"},
		})

	return t
}

func TestApplyEmpty(t *testing.T) {
	tbl := sample()
	expected := sample()

	if err := Apply(tbl, config.Transformations{}); err != nil {
		t.Fatalf("Unexpected error returned from Apply (%v)", err)
	}

	if !reflect.DeepEqual(tbl, expected) {
		t.Errorf("Empty transformation modified table\n   expected: %v\n   got:      %v\n", expected, tbl)
	}
}

func TestApplyRenameAndDates(t *testing.T) {
	tbl := sample()
	spec := config.Transformations{
		RenameColumns: map[string]string{"created": "Created At", "missing": "ignored"},
		DateColumns:   []string{"Created At"},
	}

	if err := Apply(tbl, spec); err != nil {
		t.Fatalf("Unexpected error returned from Apply (%v)", err)
	}

	header := []string{"id", "Created At", "name"}
	if !reflect.DeepEqual(tbl.Header, header) {
		t.Errorf("Incorrect header\n   expected: %v\n   got:      %v\n", header, tbl.Header)
	}

	cells, _ := tbl.Column("Created At")
	expected := []any{
		time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2023, time.March, 7, 0, 0, 0, 0, time.UTC),
		nil,
	}

	if !reflect.DeepEqual(cells, expected) {
		t.Errorf("Incorrect dates\n   expected: %v\n   got:      %v\n", expected, cells)
	}

	if tbl.Kinds[1] != table.Date {
		t.Errorf("Incorrect column kind - expected:%v, got:%v", table.Date, tbl.Kinds[1])
	}
}

func TestApplyRenameIsIdempotent(t *testing.T) {
	spec := config.Transformations{
		RenameColumns: map[string]string{"id": "ID", "name": "Name"},
	}

	once := sample()
	twice := sample()

	if err := Apply(once, spec); err != nil {
		t.Fatalf("Unexpected error returned from Apply (%v)", err)
	}

	for i := 0; i < 2; i++ {
		if err := Apply(twice, spec); err != nil {
			t.Fatalf("Unexpected error returned from Apply (%v)", err)
		}
	}

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Rename is not idempotent\n   once:  %v\n   twice: %v\n", once.Header, twice.Header)
	}
}

func TestApplyRenameSwap(t *testing.T) {
	tbl := sample()
	spec := config.Transformations{
		RenameColumns: map[string]string{"id": "name", "name": "id"},
	}

	if err := Apply(tbl, spec); err != nil {
		t.Fatalf("Unexpected error returned from Apply (%v)", err)
	}

	expected := []string{"name", "created", "id"}
	if !reflect.DeepEqual(tbl.Header, expected) {
		t.Errorf("Incorrect header\n   expected: %v\n   got:      %v\n", expected, tbl.Header)
	}
}

func TestApplyRenameWithDuplicate(t *testing.T) {
	tbl := sample()
	spec := config.Transformations{
		RenameColumns: map[string]string{"id": "name"},
	}

	err := Apply(tbl, spec)

	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("Expected transform.Error, got %v", err)
	}

	if e.Column != "name" {
		t.Errorf("Incorrect error column - expected:%v, got:%v", "name", e.Column)
	}

	if !reflect.DeepEqual(tbl.Header, []string{"id", "created", "name"}) {
		t.Errorf("Failed rename modified the table header (%v)", tbl.Header)
	}
}

func TestApplyWithInvalidDate(t *testing.T) {
	tbl := sample()
	tbl.Records[1][1] = "not a date"

	err := Apply(tbl, config.Transformations{DateColumns: []string{"created"}})

	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("Expected transform.Error, got %v", err)
	}

	if e.Column != "created" || e.Row != 2 {
		t.Errorf("Incorrect error location - expected:%v/%v, got:%v/%v", "created", 2, e.Column, e.Row)
	}

	if tbl.Records[0][1] != "2024-01-02" {
		t.Errorf("Failed conversion modified the table (%v)", tbl.Records[0][1])
	}
}

func TestApplyWithMissingDateColumn(t *testing.T) {
	err := Apply(sample(), config.Transformations{DateColumns: []string{"updated"}})

	var e *Error
	if !errors.As(err, &e) {
		t.Errorf("Expected transform.Error, got %v", err)
	}
}

func TestApplyWithNumericDates(t *testing.T) {
	tbl, _ := table.New([]string{"day"}, [][]any{{20240102.0}})

	if err := Apply(tbl, config.Transformations{DateColumns: []string{"day"}}); err != nil {
		t.Fatalf("Unexpected error returned from Apply (%v)", err)
	}

	if expected := time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC); tbl.Records[0][0] != expected {
		t.Errorf("Incorrect date - expected:%v, got:%v", expected, tbl.Records[0][0])
	}
}
