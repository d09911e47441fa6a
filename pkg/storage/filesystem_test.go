package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	name, err := store.Save("doc-1/lampiran.pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)
	require.Equal(t, "doc-1/lampiran.pdf", name)

	data, err := store.Read(name)
	require.NoError(t, err)
	require.Equal(t, []byte("%PDF-1.4"), data)

	_, err = store.Save("doc-1/lampiran.pdf", []byte("%PDF-1.7 replaced"))
	require.NoError(t, err)
	file, err := store.Open(name)
	require.NoError(t, err)
	info, err := file.Stat()
	require.NoError(t, err)
	require.Equal(t, int64(len("%PDF-1.7 replaced")), info.Size())
	require.NoError(t, file.Close())

	require.NoError(t, store.Delete(name))
	require.NoError(t, store.Delete(name))
	_, err = store.Read(name)
	require.Error(t, err)
}

func TestLocalStorageRejectsEscapingNames(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"", "../etc/passwd", "/tmp/x.pdf", "a/../../x.pdf"} {
		_, err := store.Save(name, []byte("x"))
		require.True(t, errors.Is(err, ErrInvalidName), name)
	}
	_, err = store.Open("../x")
	require.ErrorIs(t, err, ErrInvalidName)
}

func TestLocalStorageCleanupOlderThan(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)

	_, err = store.Save("old.pdf", []byte("old"))
	require.NoError(t, err)
	_, err = store.Save("new.pdf", []byte("new"))
	require.NoError(t, err)
	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "old.pdf"), past, past))

	deleted, err := store.CleanupOlderThan(24 * time.Hour)
	require.NoError(t, err)
	require.Equal(t, []string{"old.pdf"}, deleted)

	_, err = store.Read("new.pdf")
	require.NoError(t, err)
}
