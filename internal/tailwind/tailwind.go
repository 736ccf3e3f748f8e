// Package tailwind keeps a project's Tailwind CSS content list in sync with
// installed components.
//
// The config file is read as data and never executed. The patcher follows
// the common layouts (ESM and CommonJS exports, defineConfig wrappers,
// TypeScript configs that export a declared constant, and JSON) to the
// root object's content array and rewrites only that array.
package tailwind

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/uicli-dev/uicli/internal/install"
)

// ConfigFiles are the config names probed in order when none is configured.
var ConfigFiles = []string{
	"tailwind.config.js",
	"tailwind.config.cjs",
	"tailwind.config.mjs",
	"tailwind.config.ts",
	"tailwind.config.json",
}

// Result is the outcome of a Patch.
type Result int

const (
	// ConfigMissing means no config file exists; nothing was written.
	ConfigMissing Result = iota

	// AlreadyPresent means the entry was already listed; nothing was written.
	AlreadyPresent

	// Updated means the entry was added and the file rewritten.
	Updated
)

// String returns the result as a metrics-friendly label.
func (r Result) String() string {
	switch r {
	case ConfigMissing:
		return "config_missing"
	case AlreadyPresent:
		return "already_present"
	case Updated:
		return "updated"
	default:
		return "unknown"
	}
}

// Locate returns the Tailwind config path for a project. A preferred path,
// relative to dir unless absolute, wins over probing. The bool is false if
// the file does not exist.
func Locate(dir, preferred string) (string, bool) {
	if preferred != "" {
		path := preferred
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		return path, isFile(path)
	}

	for _, name := range ConfigFiles {
		path := filepath.Join(dir, name)
		if isFile(path) {
			return path, true
		}
	}
	return "", false
}

// Patch adds entry to the content list of the config at path.
func Patch(path, entry string) (Result, error) {
	if path == "" {
		return ConfigMissing, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ConfigMissing, nil
		}
		return ConfigMissing, fmt.Errorf("failed to read %s: %w", path, err)
	}

	doc, err := Parse(data)
	if err != nil {
		return ConfigMissing, fmt.Errorf("%s: %w", path, err)
	}

	if !doc.AddContent(entry) {
		return AlreadyPresent, nil
	}

	if err := install.Write(install.Target{Path: path, Content: doc.Bytes()}); err != nil {
		return ConfigMissing, err
	}
	return Updated, nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
