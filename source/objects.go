package source

import (
	"bytes"
	"context"
	"path"
	"strings"

	"github.com/tabulate/excel-pipeline/config"
	"github.com/tabulate/excel-pipeline/storage"
	"github.com/tabulate/excel-pipeline/table"
)

// ObjectStorage reads a CSV or JSON file from an object store. The file extension
// selects the decoder.
type ObjectStorage struct {
	store storage.ObjectStore
	Debug bool
}

func NewObjectStorage(store storage.ObjectStore) *ObjectStorage {
	return &ObjectStorage{
		store: store,
	}
}

func (o *ObjectStorage) Read(ctx context.Context, src config.Source) (*table.Table, error) {
	decode, err := decoder(src)
	if err != nil {
		return nil, err
	}

	if o.Debug {
		debugf("fetching %v", o.store.URL(src.Bucket, src.File))
	}

	b, err := o.store.Get(ctx, src.Bucket, src.File)
	if err != nil {
		return nil, &FetchError{Source: src.Name, Err: err}
	}

	t, err := decode(b)
	if err != nil {
		return nil, &FetchError{Source: src.Name, Err: err}
	}

	return t, nil
}

func decoder(src config.Source) (func([]byte) (*table.Table, error), error) {
	switch ext := strings.ToLower(path.Ext(src.File)); ext {
	case ".csv":
		return func(b []byte) (*table.Table, error) {
			return table.FromCSV(bytes.NewReader(b))
		}, nil

	case ".json":
		return func(b []byte) (*table.Table, error) {
			return table.FromJSON(b, src.DataKey)
		}, nil

	default:
		return nil, fetchError(src, "unsupported file format '%s'", ext)
	}
}
