package filex

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) func() {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	return func() { _ = os.Chdir(old) }
}

func TestEnsureDir_CreatesDirectoryInCWD(t *testing.T) {
	tmp := t.TempDir()
	defer chdir(t, tmp)()

	got, err := EnsureDir("keys", 0o700)
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(filepath.Join(tmp, "keys"))
	require.NoError(t, err)
	gotResolved, err := filepath.EvalSymlinks(got)
	require.NoError(t, err)
	require.Equal(t, want, gotResolved)

	fi, err := os.Stat(got)
	require.NoError(t, err)
	require.True(t, fi.IsDir(), "should create a directory")

	if runtime.GOOS != "windows" {
		require.Equal(t, os.FileMode(0o700), fi.Mode().Perm()&0o700)
	}
}

func TestEnsureDir_Idempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	first, err := EnsureDir(dir, 0o700)
	require.NoError(t, err)

	second, err := EnsureDir(dir, 0o700)
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestEnsureDir_FailsIfFileWithSameNameExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	_, err := EnsureDir(path, 0o700)
	require.Error(t, err, "should fail when a file exists with the same name")
}

func TestWriteNew(t *testing.T) {
	path := filepath.Join(t.TempDir(), "private.pem")

	require.NoError(t, WriteNew(path, []byte("one"), 0o600, false))

	err := WriteNew(path, []byte("two"), 0o600, false)
	require.ErrorIs(t, err, ErrExists)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "one", string(b))

	require.NoError(t, WriteNew(path, []byte("three"), 0o644, true))
	b, err = os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "three", string(b))

	if runtime.GOOS != "windows" {
		fi, err := os.Stat(path)
		require.NoError(t, err)
		require.Equal(t, os.FileMode(0o644), fi.Mode().Perm())
	}
}
