package source

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cast"

	"github.com/tabulate/excel-pipeline/config"
	"github.com/tabulate/excel-pipeline/table"
)

// Database reads the result set of a SQL query. Supported drivers are 'postgres' (or
// 'pgx') and 'sqlite3'.
type Database struct {
	Debug bool
}

func NewDatabase() *Database {
	return &Database{}
}

func (d *Database) Read(ctx context.Context, src config.Source) (*table.Table, error) {
	driver, err := driverName(src.Driver)
	if err != nil {
		return nil, &FetchError{Source: src.Name, Err: err}
	}

	db, err := sql.Open(driver, src.DSN)
	if err != nil {
		return nil, fetchError(src, "unable to open %v database (%w)", src.Driver, err)
	}

	defer db.Close()

	if d.Debug {
		debugf("%v: %v", src.Name, src.Query)
	}

	t, err := queryTable(ctx, db, src.Query)
	if err != nil {
		return nil, &FetchError{Source: src.Name, Err: err}
	}

	return t, nil
}

func driverName(driver string) (string, error) {
	switch strings.ToLower(driver) {
	case "postgres", "postgresql", "pgx":
		return "pgx", nil

	case "sqlite3", "sqlite":
		return "sqlite3", nil

	default:
		return "", fmt.Errorf("unsupported database driver '%s'", driver)
	}
}

func queryTable(ctx context.Context, db *sql.DB, query string) (*table.Table, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query failed (%w)", err)
	}

	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	records := [][]any{}
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}

		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("unable to scan row %d (%w)", len(records)+1, err)
		}

		record := make([]any, len(columns))
		for i, v := range values {
			record[i] = cell(v)
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return table.New(columns, records)
}

// cell converts a database value to one of the table cell types.
func cell(v any) any {
	switch value := v.(type) {
	case nil:
		return nil
	case string:
		return value
	case []byte:
		return string(value)
	case bool:
		return value
	case float64:
		return value
	case float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return cast.ToFloat64(value)
	case time.Time:
		return value.UTC()
	default:
		if s, err := cast.ToStringE(value); err == nil {
			return s
		}
		return fmt.Sprintf("%v", value)
	}
}
