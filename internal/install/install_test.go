package install

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite_CreatesParents(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "src", "components", "ui", "button.tsx")

	require.NoError(t, Write(Target{Path: path, Content: []byte("button v1")}))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "button v1", string(got))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, FileMode, info.Mode().Perm())
	}
}

func TestWrite_ReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "globals.css")
	require.NoError(t, os.WriteFile(path, []byte("a much longer original body"), 0o600))

	require.NoError(t, Write(Target{Path: path, Content: []byte("new")}))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestWrite_ParentIsFile(t *testing.T) {
	root := t.TempDir()
	blocker := filepath.Join(root, "src")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	err := Write(Target{Path: filepath.Join(blocker, "utils", "cn_tw_merger.ts"), Content: []byte("x")})
	assert.Error(t, err)
}

func TestEnsureDir_Idempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, EnsureDir(dir))
	require.NoError(t, EnsureDir(dir))
	assert.DirExists(t, dir)
}

func TestWrite_KeepsMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not preserved on windows")
	}
	path := filepath.Join(t.TempDir(), "tailwind.config.js")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o600))

	require.NoError(t, Write(Target{Path: path, Content: []byte("new")}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestWrite_FollowsSymlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	root := t.TempDir()
	shared := filepath.Join(root, "shared", "tailwind.config.js")
	require.NoError(t, os.MkdirAll(filepath.Dir(shared), 0o755))
	require.NoError(t, os.WriteFile(shared, []byte("old"), 0o644))

	link := filepath.Join(root, "app", "tailwind.config.js")
	require.NoError(t, os.MkdirAll(filepath.Dir(link), 0o755))
	require.NoError(t, os.Symlink(shared, link))

	require.NoError(t, Write(Target{Path: link, Content: []byte("new")}))

	info, err := os.Lstat(link)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink, "link replaced by a regular file")

	got, err := os.ReadFile(shared)
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))

	entries, err := os.ReadDir(filepath.Dir(link))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
