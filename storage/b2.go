package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/kurin/blazer/b2"
)

// B2Store stores files in a Backblaze B2 bucket.
type B2Store struct {
	client *b2.Client
	bucket *b2.Bucket
}

// NewB2Store authenticates against B2 and binds the bucket.
func NewB2Store(ctx context.Context, accountID, appKey, bucketName string) (*B2Store, error) {
	client, err := b2.NewClient(ctx, accountID, appKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create b2 client: %w", err)
	}

	bucket, err := client.Bucket(ctx, bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket: %w", err)
	}

	return &B2Store{client: client, bucket: bucket}, nil
}

func (s *B2Store) Upload(ctx context.Context, file *multipart.FileHeader, prefix string) (Object, error) {
	key := MakeKey(prefix, file.Filename)

	src, err := file.Open()
	if err != nil {
		return Object{}, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	obj := s.bucket.Object(key)
	w := obj.NewWriter(ctx)
	w.ContentType = file.Header.Get("Content-Type")

	if _, err := io.Copy(w, src); err != nil {
		w.Close()
		return Object{}, fmt.Errorf("failed to write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return Object{}, fmt.Errorf("failed to close writer: %w", err)
	}

	return Object{
		Name: file.Filename,
		URL:  fmt.Sprintf("%s/file/%s/%s", s.client.BaseURL(), s.bucket.Name(), key),
		Key:  key,
	}, nil
}

// Delete removes the newest version of key. A missing object is a benign
// no-op.
func (s *B2Store) Delete(ctx context.Context, key string) error {
	err := s.bucket.Object(key).Delete(ctx)
	if err != nil && !b2.IsNotExist(err) {
		return err
	}
	return nil
}
