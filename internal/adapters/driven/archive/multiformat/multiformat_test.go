package multiformat

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forlandeivan/search-engine-sub011/internal/core/domain"
)

func writeTarGz(t *testing.T, name string, files map[string][]byte) string {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for entryName, data := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name: entryName,
			Mode: 0o644,
			Size: int64(len(data)),
		}))
		_, err := tw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestExtractTarGz(t *testing.T) {
	path := writeTarGz(t, "base.tar.gz", map[string][]byte{
		"docs/guide.md": []byte("# Guide\n\nbody"),
		"readme.txt":    []byte("plain text"),
	})

	entries, err := New().Extract(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byPath := make(map[string][]byte)
	for _, e := range entries {
		assert.False(t, e.Dir)
		byPath[e.Path] = e.Data
	}
	assert.Equal(t, []byte("# Guide\n\nbody"), byPath["docs/guide.md"])
	assert.Equal(t, []byte("plain text"), byPath["readme.txt"])
}

func TestExtractDirectoriesFlagged(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name:     "docs/",
		Mode:     0o755,
		Typeflag: tar.TypeDir,
	}))
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name: "docs/a.txt",
		Mode: 0o644,
		Size: 5,
	}))
	_, err := tw.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())

	path := filepath.Join(t.TempDir(), "tree.tar.gz")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	entries, err := New().Extract(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var dirs, files int
	for _, e := range entries {
		if e.Dir {
			dirs++
			assert.Empty(t, e.Data)
		} else {
			files++
			assert.Equal(t, []byte("hello"), e.Data)
		}
	}
	assert.Equal(t, 1, dirs)
	assert.Equal(t, 1, files)
}

func TestExtractUnrecognized(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noise.bin")
	require.NoError(t, os.WriteFile(path, []byte("definitely not an archive"), 0o644))

	_, err := New().Extract(context.Background(), path)
	assert.ErrorIs(t, err, domain.ErrArchiveUnreadable)
}

func TestExtractMissingFile(t *testing.T) {
	_, err := New().Extract(context.Background(), filepath.Join(t.TempDir(), "absent.tar.gz"))
	assert.ErrorIs(t, err, domain.ErrArchiveUnreadable)
}
