package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/tabulate/excel-pipeline/config"
)

// S3 is an ObjectStore backed by an S3 compatible service (AWS S3, MinIO).
type S3 struct {
	client *minio.Client
}

func NewS3(cfg config.Storage) (*S3, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("S3 endpoint is required")
	}

	u, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid S3 endpoint '%s' (%w)", cfg.Endpoint, err)
	}

	endpoint := u.Host
	if endpoint == "" {
		endpoint = cfg.Endpoint
	}

	secure := cfg.UseSSL || u.Scheme == "https"

	accessKey, secretKey := cfg.AccessKey, cfg.SecretKey
	if accessKey == "" && secretKey == "" {
		accessKey, secretKey = os.Getenv("S3_ACCESS_KEY"), os.Getenv("S3_SECRET_KEY")
	}

	var creds *credentials.Credentials
	if accessKey != "" || secretKey != "" {
		creds = credentials.NewStaticV4(accessKey, secretKey, "")
	} else {
		creds = credentials.NewEnvAWS()
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  creds,
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to create new S3 client (%w)", err)
	}

	return &S3{
		client: client,
	}, nil
}

func (s *S3) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	if bucket == "" {
		return nil, wrapError(CodeBucketNotFound, bucket, key, fmt.Errorf("bucket is required"))
	}

	if key == "" {
		return nil, wrapError(CodeObjectNotFound, bucket, key, fmt.Errorf("object key is required"))
	}

	object, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, classifyMinioError(bucket, key, err)
	}

	defer object.Close()

	b, err := io.ReadAll(object)
	if err != nil {
		return nil, classifyMinioError(bucket, key, err)
	}

	return b, nil
}

func (s *S3) Put(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) error {
	if bucket == "" {
		return wrapError(CodeBucketNotFound, bucket, key, fmt.Errorf("bucket is required"))
	}

	if key == "" {
		return wrapError(CodeInvalidRequest, bucket, key, fmt.Errorf("object key is required"))
	}

	if _, err := s.client.PutObject(ctx, bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		return classifyMinioError(bucket, key, err)
	}

	return nil
}

func (s *S3) URL(bucket, key string) string {
	return fmt.Sprintf("s3://%s/%s", bucket, key)
}

func classifyMinioError(bucket, key string, err error) *Error {
	var response minio.ErrorResponse
	if errors.As(err, &response) {
		switch response.Code {
		case "NoSuchBucket":
			return wrapError(CodeBucketNotFound, bucket, key, err)
		case "NoSuchKey":
			return wrapError(CodeObjectNotFound, bucket, key, err)
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return wrapError(CodePermissionDenied, bucket, key, err)
		}
	}

	message := strings.ToLower(err.Error())

	switch {
	case strings.Contains(message, "no such bucket"):
		return wrapError(CodeBucketNotFound, bucket, key, err)
	case strings.Contains(message, "no such key") || strings.Contains(message, "does not exist"):
		return wrapError(CodeObjectNotFound, bucket, key, err)
	case strings.Contains(message, "access denied"):
		return wrapError(CodePermissionDenied, bucket, key, err)
	default:
		return wrapError(CodeUnavailable, bucket, key, err)
	}
}
