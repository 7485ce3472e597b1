package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// BlobStore exposes LocalStorage as an opaque store addressed by URL.
// URLs are the configured public prefix followed by the storage key.
type BlobStore struct {
	files  *LocalStorage
	prefix string
}

// NewBlobStore wraps the local storage with a URL prefix.
func NewBlobStore(files *LocalStorage, prefix string) *BlobStore {
	if prefix == "" {
		prefix = "blob://"
	}
	return &BlobStore{files: files, prefix: prefix}
}

// Put stores the content under key and returns its URL.
func (b *BlobStore) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if key == "" {
		return "", fmt.Errorf("blob key required")
	}
	if _, err := b.files.SaveStream(key, r); err != nil {
		return "", fmt.Errorf("put blob (%s): %w", contentType, err)
	}
	return b.prefix + key, nil
}

// Delete removes the blob referenced by url. Missing blobs are not an error.
func (b *BlobStore) Delete(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key, err := b.Key(url)
	if err != nil {
		return err
	}
	return b.files.Delete(key)
}

// Open returns a read handle for the blob referenced by url.
func (b *BlobStore) Open(url string) (*os.File, error) {
	key, err := b.Key(url)
	if err != nil {
		return nil, err
	}
	return b.files.Open(key)
}

// Key strips the public prefix from url.
func (b *BlobStore) Key(url string) (string, error) {
	if !strings.HasPrefix(url, b.prefix) {
		return "", fmt.Errorf("url %q is not managed by this store", url)
	}
	key := strings.TrimPrefix(url, b.prefix)
	if key == "" {
		return "", fmt.Errorf("url %q has no key", url)
	}
	return key, nil
}
