// Package storage abstracts the object storage operations used to read source files
// and to publish rendered workbooks. Backends: Google Cloud Storage, S3/MinIO and a
// local directory tree.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/tabulate/excel-pipeline/config"
)

// ObjectStore is the minimal set of object storage operations needed by the pipeline.
type ObjectStore interface {
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Put(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) error
	URL(bucket, key string) string
}

type Code string

const (
	CodeBucketNotFound   Code = "BUCKET_NOT_FOUND"
	CodeObjectNotFound   Code = "OBJECT_NOT_FOUND"
	CodePermissionDenied Code = "PERMISSION_DENIED"
	CodeInvalidRequest   Code = "INVALID_REQUEST"
	CodeUnavailable      Code = "UNAVAILABLE"
)

// Error is a classified object storage error.
type Error struct {
	Code   Code
	Bucket string
	Key    string
	Err    error
}

func (e *Error) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s %s (%v)", e.Code, e.Bucket, e.Err)
	}

	return fmt.Sprintf("%s %s/%s (%v)", e.Code, e.Bucket, e.Key, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsCode returns true if err is a storage Error with the given code.
func IsCode(err error, code Code) bool {
	var e *Error

	return errors.As(err, &e) && e.Code == code
}

func wrapError(code Code, bucket, key string, err error) *Error {
	return &Error{
		Code:   code,
		Bucket: bucket,
		Key:    key,
		Err:    err,
	}
}

// New creates the object store for the configured backend. opts holds the Google API
// client options and is only used by the 'gcs' backend.
func New(ctx context.Context, cfg config.Storage, opts ...GoogleOption) (ObjectStore, error) {
	switch cfg.Backend {
	case "", "gcs":
		return NewGCS(ctx, opts...)

	case "s3", "minio":
		return NewS3(cfg)

	case "local":
		return NewLocalStore(cfg.Root), nil

	default:
		return nil, fmt.Errorf("unsupported storage backend '%s'", cfg.Backend)
	}
}
