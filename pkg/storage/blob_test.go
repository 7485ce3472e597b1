package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBlobStore(t *testing.T) (*BlobStore, string) {
	dir := t.TempDir()
	files, err := NewLocalStorage(dir)
	require.NoError(t, err)
	return NewBlobStore(files, "blob://achievements/"), dir
}

func TestBlobStorePutOpenDelete(t *testing.T) {
	store, dir := newTestBlobStore(t)
	ctx := context.Background()

	url, err := store.Put(ctx, "CSE002/evidence.pdf", bytes.NewReader([]byte("%PDF-1.4")), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "blob://achievements/CSE002/evidence.pdf", url)

	file, err := store.Open(url)
	require.NoError(t, err)
	content, err := io.ReadAll(file)
	require.NoError(t, err)
	require.NoError(t, file.Close())
	assert.Equal(t, "%PDF-1.4", string(content))

	require.NoError(t, store.Delete(ctx, url))
	_, err = os.Stat(filepath.Join(dir, "CSE002", "evidence.pdf"))
	assert.True(t, os.IsNotExist(err))

	// deleting twice is tolerated
	require.NoError(t, store.Delete(ctx, url))
}

func TestBlobStoreRejectsForeignAndTraversalKeys(t *testing.T) {
	store, _ := newTestBlobStore(t)
	ctx := context.Background()

	require.Error(t, store.Delete(ctx, "https://elsewhere/file.pdf"))
	_, err := store.Put(ctx, "../escape.pdf", bytes.NewReader(nil), "application/pdf")
	require.Error(t, err)
	_, err = store.Open("blob://achievements/")
	require.Error(t, err)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("client went away") }

func TestLocalStorageLeavesNothingBehindOnFailedWrite(t *testing.T) {
	dir := t.TempDir()
	files, err := NewLocalStorage(dir)
	require.NoError(t, err)

	_, err = files.SaveStream("CSE002/partial.pdf", failingReader{})
	require.Error(t, err)

	entries, err := os.ReadDir(filepath.Join(dir, "CSE002"))
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = files.Open("CSE002/partial.pdf")
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.ErrorIs(t, files.Delete("/etc/passwd"), ErrInvalidKey)
}
