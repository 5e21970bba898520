package receipts

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndRemove(t *testing.T) {
	store, err := NewStorage(t.TempDir(), "/receipts/")
	require.NoError(t, err)

	url, err := store.Save(context.Background(), "領収書.jpg", strings.NewReader("fake image bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/receipts/"))
	assert.True(t, strings.HasSuffix(url, ".jpg"))

	data, err := os.ReadFile(filepath.Join(store.Dir(), filepath.Base(url)))
	require.NoError(t, err)
	assert.Equal(t, "fake image bytes", string(data))

	require.NoError(t, store.Remove(url))
	_, err = os.Stat(filepath.Join(store.Dir(), filepath.Base(url)))
	assert.True(t, os.IsNotExist(err))
}

func TestSaveRejectsUnknownExtension(t *testing.T) {
	store, err := NewStorage(t.TempDir(), "/receipts")
	require.NoError(t, err)

	_, err = store.Save(context.Background(), "evil.exe", strings.NewReader("x"))
	assert.Error(t, err)
}

func TestRemoveMissingFileIsNoop(t *testing.T) {
	store, err := NewStorage(t.TempDir(), "/receipts")
	require.NoError(t, err)
	assert.NoError(t, store.Remove("/receipts/nope.png"))
}
