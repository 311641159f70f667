package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suteetoe/tokokita/pkg/apperr"
)

func TestDirAuthorizer(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Downloads")

	require.NoError(t, DirAuthorizer{Dir: dir}.Authorize(context.Background()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDirAuthorizerNotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	err := DirAuthorizer{Dir: file}.Authorize(context.Background())
	assert.True(t, apperr.Is(err, apperr.KindStorageUnavailable))
}

func TestAllowDeny(t *testing.T) {
	assert.NoError(t, Allow().Authorize(context.Background()))
	assert.True(t, apperr.Is(Deny().Authorize(context.Background()), apperr.KindStorageUnavailable))
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteFile(dir, "Faktur_F1.pdf", []byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Faktur_F1.pdf"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data))

	_, err = WriteFile(filepath.Join(dir, "missing"), "x.pdf", []byte("x"))
	assert.True(t, apperr.Is(err, apperr.KindStorageUnavailable))
}
