// Package install writes fetched files into the project tree.
package install

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// FileMode is the mode of newly created files.
	FileMode os.FileMode = 0644

	// DirMode is the mode of every created directory.
	DirMode os.FileMode = 0755
)

// Target is a file to write.
type Target struct {
	Path    string
	Content []byte
}

// EnsureDir creates path and any missing parents.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, DirMode); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}

// Write replaces the target file with its content.
// The content goes to a temp file in the same directory first, then is renamed
// over the destination, so readers never see a partial file. An existing
// destination keeps its permissions, and a symlink is followed so the link
// itself survives.
func Write(t Target) error {
	path, mode := resolve(t.Path)

	dir := filepath.Dir(path)
	if err := EnsureDir(dir); err != nil {
		return err
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	tmpPath := f.Name()

	_, err = f.Write(t.Content)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", t.Path, err)
	}

	if err := os.Chmod(tmpPath, mode); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set mode on %s: %w", t.Path, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to install %s: %w", t.Path, err)
	}

	return nil
}

// resolve returns the file Write should replace and the mode to give it.
func resolve(path string) (string, os.FileMode) {
	if real, err := filepath.EvalSymlinks(path); err == nil {
		path = real
	}
	if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
		return path, info.Mode().Perm()
	}
	return path, FileMode
}
