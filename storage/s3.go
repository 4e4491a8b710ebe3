package storage

import (
	"context"
	"io"

	"github.com/melix/astro4j-sub008/apperrors"
)

// Client is the minimal S3-shaped interface this adapter drives, letting
// callers inject a real aws-sdk-go-v2 client or a test double without this
// package importing the AWS SDK directly.
type Client interface {
	PutObject(ctx context.Context, bucket, key string, body io.Reader, meta map[string]string) error
	GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	DeleteObject(ctx context.Context, bucket, key string) error
	HeadObject(ctx context.Context, bucket, key string) (bool, error)
}

// S3 is the Adapter backed by an S3-compatible object store.
type S3 struct {
	client        Client
	defaultBucket string
}

// NewS3 creates an S3 adapter. client must not be nil.
func NewS3(client Client, defaultBucket string) (*S3, error) {
	if client == nil {
		return nil, apperrors.New(apperrors.CategoryInput, "storage.s3.new", apperrors.ErrInvalidParameter)
	}
	return &S3{client: client, defaultBucket: defaultBucket}, nil
}

func (s *S3) bucketOf(key Key) string {
	if key.Bucket != "" {
		return key.Bucket
	}
	return s.defaultBucket
}

func (s *S3) Put(ctx context.Context, key Key, r io.Reader, meta map[string]string) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Wrap(apperrors.CategoryCancelled, "storage.s3.put", err)
	}
	if err := s.client.PutObject(ctx, s.bucketOf(key), key.Path, r, meta); err != nil {
		return apperrors.Transient("storage.s3.put", err)
	}
	return nil
}

func (s *S3) Get(ctx context.Context, key Key) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryCancelled, "storage.s3.get", err)
	}
	rc, err := s.client.GetObject(ctx, s.bucketOf(key), key.Path)
	if err != nil {
		return nil, apperrors.Transient("storage.s3.get", err)
	}
	return rc, nil
}

func (s *S3) Delete(ctx context.Context, key Key) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Wrap(apperrors.CategoryCancelled, "storage.s3.delete", err)
	}
	if err := s.client.DeleteObject(ctx, s.bucketOf(key), key.Path); err != nil {
		return apperrors.Wrap(apperrors.CategoryIO, "storage.s3.delete", err)
	}
	return nil
}

func (s *S3) Exists(ctx context.Context, key Key) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, apperrors.Wrap(apperrors.CategoryCancelled, "storage.s3.exists", err)
	}
	ok, err := s.client.HeadObject(ctx, s.bucketOf(key), key.Path)
	if err != nil {
		return false, apperrors.Wrap(apperrors.CategoryIO, "storage.s3.exists", err)
	}
	return ok, nil
}

var _ Adapter = (*S3)(nil)
