package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps objects as files under root/bucket/key. It stands in for a cloud
// backend in tests and for local runs.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) *LocalStore {
	if root == "" {
		root = filepath.Join(os.TempDir(), "excel-pipeline")
	}

	return &LocalStore{
		root: root,
	}
}

func (s *LocalStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := s.path(bucket, key)
	if err != nil {
		return nil, err
	}

	if !s.exists(bucket) {
		return nil, wrapError(CodeBucketNotFound, bucket, key, os.ErrNotExist)
	}

	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, wrapError(CodeObjectNotFound, bucket, key, err)
	} else if os.IsPermission(err) {
		return nil, wrapError(CodePermissionDenied, bucket, key, err)
	} else if err != nil {
		return nil, wrapError(CodeUnavailable, bucket, key, err)
	}

	return b, nil
}

func (s *LocalStore) Put(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.path(bucket, key)
	if err != nil {
		return err
	}

	if !s.exists(bucket) {
		return wrapError(CodeBucketNotFound, bucket, key, os.ErrNotExist)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return wrapError(CodePermissionDenied, bucket, key, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return wrapError(CodePermissionDenied, bucket, key, err)
	}

	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return wrapError(CodeUnavailable, bucket, key, err)
	}

	return f.Close()
}

// MakeBucket creates the directory for a bucket. Put does not create buckets, the same as
// the cloud backends.
func (s *LocalStore) MakeBucket(bucket string) error {
	if !valid(bucket) {
		return wrapError(CodeInvalidRequest, bucket, "", fmt.Errorf("invalid bucket name"))
	}

	if err := os.MkdirAll(filepath.Join(s.root, bucket), 0o755); err != nil {
		return wrapError(CodePermissionDenied, bucket, "", err)
	}

	return nil
}

func (s *LocalStore) URL(bucket, key string) string {
	return "file://" + filepath.ToSlash(filepath.Join(s.root, bucket, filepath.FromSlash(key)))
}

func (s *LocalStore) path(bucket, key string) (string, error) {
	if !valid(bucket) {
		return "", wrapError(CodeBucketNotFound, bucket, key, fmt.Errorf("invalid bucket name"))
	}

	if key == "" {
		return "", wrapError(CodeInvalidRequest, bucket, key, fmt.Errorf("object key is required"))
	}

	base := filepath.Join(s.root, bucket)
	path := filepath.Join(base, filepath.FromSlash(key))

	if !strings.HasPrefix(path, base+string(filepath.Separator)) {
		return "", wrapError(CodeInvalidRequest, bucket, key, fmt.Errorf("object key escapes bucket"))
	}

	return path, nil
}

func (s *LocalStore) exists(bucket string) bool {
	info, err := os.Stat(filepath.Join(s.root, bucket))

	return err == nil && info.IsDir()
}

func valid(bucket string) bool {
	return bucket != "" && bucket != "." && bucket != ".." && !strings.ContainsAny(bucket, `/\`)
}
