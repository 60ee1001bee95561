// Package publish uploads rendered workbooks to object storage and Google Drive and
// copies the datasets into a Google Sheets spreadsheet.
package publish

import (
	"context"
	"fmt"
	"os"

	"github.com/tabulate/excel-pipeline/storage"
)

const XLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Uploader copies a local file to a bucket and returns the location of the uploaded
// object.
type Uploader interface {
	Upload(ctx context.Context, file string, bucket, key string) (string, error)
}

// ObjectUploader is an Uploader for an object store.
type ObjectUploader struct {
	store storage.ObjectStore
}

func NewObjectUploader(store storage.ObjectStore) *ObjectUploader {
	return &ObjectUploader{
		store: store,
	}
}

func (u *ObjectUploader) Upload(ctx context.Context, file string, bucket, key string) (string, error) {
	f, err := os.Open(file)
	if err != nil {
		return "", err
	}

	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}

	if err := u.store.Put(ctx, bucket, key, f, info.Size(), XLSX); err != nil {
		return "", fmt.Errorf("unable to upload %v (%w)", file, err)
	}

	return u.store.URL(bucket, key), nil
}
