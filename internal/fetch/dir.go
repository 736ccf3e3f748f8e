package fetch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// DirSource reads assets from a local checkout of the component library.
type DirSource struct {
	Root string
}

// Location returns the file path the asset is read from.
func (s *DirSource) Location(asset Asset) string {
	return filepath.Join(s.Root, filepath.FromSlash(asset.Path()))
}

// Fetch reads an asset from disk.
func (s *DirSource) Fetch(ctx context.Context, asset Asset) ([]byte, error) {
	path := s.Location(asset)
	if err := ctx.Err(); err != nil {
		return nil, &Error{Kind: KindNetwork, Asset: asset, URL: path, Err: err}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &Error{Kind: KindNotFound, Asset: asset, URL: path}
		}
		return nil, &Error{Kind: KindNetwork, Asset: asset, URL: path, Err: err}
	}
	return data, nil
}
