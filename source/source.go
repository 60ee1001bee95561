// Package source implements the readers that fetch a single configured dataset from an
// HTTP API, an object storage bucket or a SQL database.
package source

import (
	"context"
	"fmt"
	"log"

	"github.com/tabulate/excel-pipeline/config"
	"github.com/tabulate/excel-pipeline/table"
)

// Reader fetches the dataset described by a source descriptor.
type Reader interface {
	Read(ctx context.Context, src config.Source) (*table.Table, error)
}

// FetchError is returned by a Reader when a source could not be fetched or decoded.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("unable to fetch source '%s' (%v)", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func fetchError(src config.Source, format string, args ...any) *FetchError {
	return &FetchError{
		Source: src.Name,
		Err:    fmt.Errorf(format, args...),
	}
}

func debugf(format string, args ...any) {
	log.Printf("%-5s %s", "DEBUG", fmt.Sprintf(format, args...))
}
