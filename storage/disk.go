package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore keeps files on the local filesystem under a base directory and
// serves them from a public URL prefix. It is the development driver and
// the reference implementation of the Store contract.
type DiskStore struct {
	baseDir string
	baseURL string
}

// NewDiskStore creates the base directory if needed.
func NewDiskStore(baseDir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &DiskStore{
		baseDir: baseDir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

func (s *DiskStore) Upload(ctx context.Context, file *multipart.FileHeader, prefix string) (Object, error) {
	key := MakeKey(prefix, file.Filename)

	src, err := file.Open()
	if err != nil {
		return Object{}, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dstPath := filepath.Join(s.baseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return Object{}, fmt.Errorf("failed to create file directory: %w", err)
	}

	dst, err := os.Create(dstPath)
	if err != nil {
		return Object{}, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return Object{}, fmt.Errorf("failed to copy file: %w", err)
	}

	return Object{
		Name: file.Filename,
		URL:  s.baseURL + "/" + key,
		Key:  key,
	}, nil
}

// Delete removes the file for key. A missing file is a benign no-op.
func (s *DiskStore) Delete(ctx context.Context, key string) error {
	err := os.Remove(filepath.Join(s.baseDir, filepath.FromSlash(key)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
