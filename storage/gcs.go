package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gcs "google.golang.org/api/storage/v1"
)

type GoogleOption = option.ClientOption

// GCS is an ObjectStore backed by the Google Cloud Storage JSON API.
type GCS struct {
	service *gcs.Service
}

func NewGCS(ctx context.Context, opts ...GoogleOption) (*GCS, error) {
	service, err := gcs.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create new Cloud Storage client (%w)", err)
	}

	return &GCS{
		service: service,
	}, nil
}

func (g *GCS) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	if bucket == "" {
		return nil, wrapError(CodeBucketNotFound, bucket, key, fmt.Errorf("bucket is required"))
	}

	if key == "" {
		return nil, wrapError(CodeObjectNotFound, bucket, key, fmt.Errorf("object name is required"))
	}

	response, err := g.service.Objects.Get(bucket, key).Context(ctx).Download()
	if err != nil {
		return nil, classifyGoogleError(bucket, key, err)
	}

	defer response.Body.Close()

	b, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, wrapError(CodeUnavailable, bucket, key, err)
	}

	return b, nil
}

func (g *GCS) Put(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) error {
	if bucket == "" {
		return wrapError(CodeBucketNotFound, bucket, key, fmt.Errorf("bucket is required"))
	}

	if key == "" {
		return wrapError(CodeInvalidRequest, bucket, key, fmt.Errorf("object name is required"))
	}

	object := gcs.Object{
		Name:        key,
		ContentType: contentType,
	}

	if _, err := g.service.Objects.Insert(bucket, &object).
		Media(r, googleapi.ContentType(contentType)).
		Context(ctx).
		Do(); err != nil {
		return classifyGoogleError(bucket, key, err)
	}

	return nil
}

func (g *GCS) URL(bucket, key string) string {
	return fmt.Sprintf("gs://%s/%s", bucket, key)
}

func classifyGoogleError(bucket, key string, err error) *Error {
	var e *googleapi.Error
	if !errors.As(err, &e) {
		return wrapError(CodeUnavailable, bucket, key, err)
	}

	switch e.Code {
	case http.StatusNotFound:
		if strings.Contains(strings.ToLower(e.Message), "bucket") {
			return wrapError(CodeBucketNotFound, bucket, key, err)
		}
		return wrapError(CodeObjectNotFound, bucket, key, err)

	case http.StatusUnauthorized, http.StatusForbidden:
		return wrapError(CodePermissionDenied, bucket, key, err)

	case http.StatusBadRequest:
		return wrapError(CodeInvalidRequest, bucket, key, err)

	default:
		return wrapError(CodeUnavailable, bucket, key, err)
	}
}
