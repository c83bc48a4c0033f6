package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/localnerve/brokerdb/internal/storage"
	"github.com/localnerve/brokerdb/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreSaveAndDelete(t *testing.T) {
	root := t.TempDir()
	store, err := storage.NewLocalStore(root)
	require.NoError(t, err)

	fh := testutil.FileHeaders(t, testutil.Image("images"))[0]
	rel, err := store.Save(context.Background(), storage.PropertyImagesDir, fh)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rel, "properties/"))
	assert.True(t, strings.HasSuffix(rel, ".png"))

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	assert.Equal(t, testutil.PNG, data)

	// names never collide
	other, err := store.Save(context.Background(), storage.PropertyImagesDir, fh)
	require.NoError(t, err)
	assert.NotEqual(t, rel, other)

	require.NoError(t, store.Delete(context.Background(), rel))
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
	assert.True(t, os.IsNotExist(err))

	// already gone
	assert.NoError(t, store.Delete(context.Background(), rel))
}

func TestLocalStoreStaysInsideRoot(t *testing.T) {
	root := t.TempDir()
	store, err := storage.NewLocalStore(filepath.Join(root, "media"))
	require.NoError(t, err)

	outside := filepath.Join(root, "keep.txt")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))

	require.NoError(t, store.Delete(context.Background(), "../keep.txt"))
	_, err = os.Stat(outside)
	assert.NoError(t, err)

	assert.Error(t, store.Delete(context.Background(), ""))
}

func TestLocalStoreCanceled(t *testing.T) {
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = store.Save(ctx, storage.ContractsDir, testutil.FileHeaders(t, testutil.Document("document"))[0])
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLocalStorePing(t *testing.T) {
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	assert.NoError(t, store.Ping())

	missing := &storage.LocalStore{Root: filepath.Join(t.TempDir(), "nope")}
	assert.Error(t, missing.Ping())
}

func TestCheckImage(t *testing.T) {
	tests := []struct {
		name  string
		file  testutil.FilePart
		valid bool
	}{
		{"png", testutil.Image("images"), true},
		{"declared text", testutil.FilePart{Field: "images", Filename: "a.png", ContentType: "text/plain", Data: testutil.PNG}, false},
		{"pdf posing as image", testutil.FilePart{Field: "images", Filename: "a.png", ContentType: "image/png", Data: testutil.PDF}, false},
		{"plain text", testutil.FilePart{Field: "images", Filename: "a.txt", ContentType: "image/jpeg", Data: []byte("hello")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := storage.CheckImage(testutil.FileHeaders(t, tt.file)[0])
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, storage.ErrInvalidFile)
			}
		})
	}
}

func TestCheckDocument(t *testing.T) {
	assert.NoError(t, storage.CheckDocument(testutil.FileHeaders(t, testutil.Document("document"))[0]))
	assert.NoError(t, storage.CheckDocument(testutil.FileHeaders(t, testutil.Image("document"))[0]))

	text := testutil.FilePart{Field: "document", Filename: "a.txt", ContentType: "text/plain", Data: []byte("just words")}
	assert.ErrorIs(t, storage.CheckDocument(testutil.FileHeaders(t, text)[0]), storage.ErrInvalidFile)

	empty := testutil.FilePart{Field: "document", Filename: "a.pdf", ContentType: "application/pdf", Data: []byte{}}
	assert.ErrorIs(t, storage.CheckDocument(testutil.FileHeaders(t, empty)[0]), storage.ErrInvalidFile)
}
