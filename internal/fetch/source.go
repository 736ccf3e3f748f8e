package fetch

import (
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"
)

// Options configures NewSource.
type Options struct {
	Timeout time.Duration

	// HTTPClient overrides the client used by HTTPSource.
	HTTPClient *http.Client

	S3 S3Options
}

// NewSource selects a Source implementation from the base URL scheme.
func NewSource(base string, opts Options) (Source, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse registry url %q: %w", base, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		src := NewHTTPSource(base, opts.Timeout)
		if opts.HTTPClient != nil {
			src.Client = opts.HTTPClient
		}
		return src, nil

	case "s3":
		if u.Host == "" {
			return nil, fmt.Errorf("registry url %q has no bucket", base)
		}
		s3opts := opts.S3
		if s3opts.Timeout == 0 {
			s3opts.Timeout = opts.Timeout
		}
		return NewS3Source(u.Host, u.Path, s3opts), nil

	case "file":
		if u.Path == "" {
			return nil, fmt.Errorf("registry url %q has no path", base)
		}
		return &DirSource{Root: filepath.FromSlash(u.Path)}, nil

	default:
		return nil, fmt.Errorf("unsupported registry scheme %q (use https, s3, or file)", u.Scheme)
	}
}
