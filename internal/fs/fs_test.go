package fs

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBytes(data []byte) func(io.Writer) error {
	return func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	}
}

func dirEntries(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return len(entries)
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blob")

	require.NoError(t, WriteFileAtomic(Default, path, 0o644, writeBytes([]byte("one"))))
	require.NoError(t, WriteFileAtomic(Default, path, 0o644, writeBytes([]byte("two"))))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(got))
	assert.Equal(t, 1, dirEntries(t, dir))
}

func TestWriteFileAtomic_Faults(t *testing.T) {
	faults := map[string]Fault{
		"write":  {FailAfterBytes: 4},
		"sync":   {FailAfterBytes: -1, FailOnSync: true},
		"close":  {FailAfterBytes: -1, FailOnClose: true},
		"rename": {FailAfterBytes: -1, FailOnRename: true},
	}

	for name, fault := range faults {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "blob")
			require.NoError(t, os.WriteFile(path, []byte("old"), 0o600))

			ffs := NewFaultyFS(nil)
			ffs.AddRule(".tmp-", fault)

			err := WriteFileAtomic(ffs, path, 0o644, writeBytes(bytes.Repeat([]byte{1}, 16)))
			require.ErrorIs(t, err, ErrInjected)

			got, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, "old", string(got))
			assert.Equal(t, 1, dirEntries(t, dir))
		})
	}
}

func TestFaultyFS_PassThrough(t *testing.T) {
	dir := t.TempDir()
	ffs := NewFaultyFS(nil)
	ffs.AddRule("other", Fault{FailOnSync: true})

	require.NoError(t, ffs.MkdirAll(filepath.Join(dir, "a", "b"), 0o755))
	path := filepath.Join(dir, "a", "b", "c")
	require.NoError(t, WriteFileAtomic(ffs, path, 0o644, writeBytes([]byte("ok"))))
	require.NoError(t, ffs.Remove(path))
	_, err := os.Stat(path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
