package exports

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	info, err := s.Put(ctx, "report_goa_rice_20240501-093000.txt", strings.NewReader("Crop Optimization Report\n"), PutOptions{
		ContentType: "text/plain; charset=utf-8",
		Metadata:    map[string]string{"region": "goa"},
	})
	require.NoError(t, err)
	assert.Equal(t, "report_goa_rice_20240501-093000.txt", info.Key)
	assert.Equal(t, int64(len("Crop Optimization Report\n")), info.Size)
	assert.NotEmpty(t, info.Location)

	_, err = s.Put(ctx, "report_goa_rice_20240501-093000.txt", strings.NewReader("again"), PutOptions{})
	assert.ErrorIs(t, err, ErrExists)

	got, rc, err := s.Get(ctx, "report_goa_rice_20240501-093000.txt")
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "Crop Optimization Report\n", string(body))
	assert.Equal(t, "text/plain; charset=utf-8", got.ContentType)
	assert.Equal(t, "goa", got.Metadata["region"])

	_, err = s.Put(ctx, "report_punjab_wheat_20240501-093000.txt", strings.NewReader("x"), PutOptions{})
	require.NoError(t, err)

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "report_goa_rice_20240501-093000.txt", all[0].Key)

	goa, err := s.List(ctx, "report_goa")
	require.NoError(t, err)
	assert.Len(t, goa, 1)

	_, _, err = s.Get(ctx, "missing.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory(t *testing.T) {
	s := NewMemory()
	assert.Equal(t, DriverMemory, s.Driver())
	exerciseStore(t, s)

	_, err := s.Put(context.Background(), " ", strings.NewReader("x"), PutOptions{})
	assert.Error(t, err)
}

func TestFilesystem(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFilesystem(dir)
	require.NoError(t, err)
	assert.Equal(t, DriverFilesystem, s.Driver())
	exerciseStore(t, s)

	data, err := os.ReadFile(filepath.Join(dir, "report_goa_rice_20240501-093000.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Crop Optimization Report\n", string(data))

	// Temp files are cleaned up.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".tmp-"), e.Name())
	}
}

func TestFilesystem_RejectsUnsafeKeys(t *testing.T) {
	s, err := NewFilesystem(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "../escape.txt", "/etc/passwd", "a/../../b"} {
		t.Run(key, func(t *testing.T) {
			_, err := s.Put(context.Background(), key, strings.NewReader("x"), PutOptions{})
			assert.Error(t, err)
			assert.False(t, errors.Is(err, ErrExists))
		})
	}
}

func TestFilesystem_NestedKey(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFilesystem(dir)
	require.NoError(t, err)

	_, err = s.Put(context.Background(), "2024/05/report.pdf", bytes.NewReader([]byte("%PDF-")), PutOptions{ContentType: "application/pdf"})
	require.NoError(t, err)

	list, err := s.List(context.Background(), "2024/")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "2024/05/report.pdf", list[0].Key)
}

func TestFilesystem_MetadataFailureReleasesKey(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFilesystem(dir)
	require.NoError(t, err)
	ctx := context.Background()

	key := "report_goa_rice_20240501-093000.txt"
	// A directory where the sidecar belongs makes the metadata write fail.
	metaDir := filepath.Join(dir, key+".meta")
	require.NoError(t, os.Mkdir(metaDir, 0o755))

	_, err = s.Put(ctx, key, strings.NewReader("report"), PutOptions{})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrExists))

	_, statErr := os.Stat(filepath.Join(dir, key))
	assert.True(t, errors.Is(statErr, os.ErrNotExist))

	require.NoError(t, os.Remove(metaDir))
	info, err := s.Put(ctx, key, strings.NewReader("report"), PutOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(len("report")), info.Size)

	infos, err := s.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, key, infos[0].Key)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Config{Driver: "memory"})
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, s.Driver())

	s, err = Open(ctx, Config{Dir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, DriverFilesystem, s.Driver())

	_, err = Open(ctx, Config{Driver: "s3"})
	assert.Error(t, err)

	_, err = Open(ctx, Config{Driver: "ftp"})
	assert.Error(t, err)
}
