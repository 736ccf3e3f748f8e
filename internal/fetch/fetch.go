package fetch

import (
	"context"
	"fmt"
	"regexp"
	"time"
)

// AssetType identifies a kind of file in the component library.
type AssetType string

const (
	Component        AssetType = "component"
	Stylesheet       AssetType = "stylesheet"
	Utility          AssetType = "utility"
	GlobalStylesheet AssetType = "global-stylesheet"
)

const (
	// UtilityName is the shared class-merge helper every component imports.
	UtilityName = "cn_tw_merger"

	// GlobalStylesheetName is the project-wide stylesheet.
	GlobalStylesheetName = "globals"
)

// Asset is a single remote file.
type Asset struct {
	Type AssetType
	Name string
}

// ComponentAsset returns the primary source file of a component.
func ComponentAsset(name string) Asset { return Asset{Type: Component, Name: name} }

// StylesheetAsset returns the optional stylesheet of a component.
func StylesheetAsset(name string) Asset { return Asset{Type: Stylesheet, Name: name} }

// UtilityAsset returns the shared utility module.
func UtilityAsset() Asset { return Asset{Type: Utility, Name: UtilityName} }

// GlobalStylesheetAsset returns the global stylesheet.
func GlobalStylesheetAsset() Asset { return Asset{Type: GlobalStylesheet, Name: GlobalStylesheetName} }

// Path returns the slash-separated location of the asset relative to a
// source base.
func (a Asset) Path() string {
	switch a.Type {
	case Stylesheet:
		return "styles/" + a.FileName()
	case Utility:
		return "utils/" + a.FileName()
	case GlobalStylesheet:
		return "app/" + a.FileName()
	default:
		return "components/" + a.FileName()
	}
}

// FileName returns the file name of the asset, which is also its local name.
func (a Asset) FileName() string {
	switch a.Type {
	case Stylesheet, GlobalStylesheet:
		return a.Name + ".css"
	case Utility:
		return a.Name + ".ts"
	default:
		return a.Name + ".tsx"
	}
}

// Label returns a human-readable description used in messages.
func (a Asset) Label() string {
	switch a.Type {
	case Stylesheet:
		return "Stylesheet " + a.Name
	case Utility:
		return "Utility module " + a.Name
	case GlobalStylesheet:
		return "Global stylesheet " + a.Name
	default:
		return "Component " + a.Name
	}
}

// Source fetches assets.
type Source interface {
	Fetch(ctx context.Context, asset Asset) ([]byte, error)
	// Location describes where an asset is fetched from, for messages.
	Location(asset Asset) string
}

// Kind classifies a fetch failure.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindRateLimited
	KindNetwork
	KindUnexpectedStatus
)

// String returns the kind as a metrics-friendly label.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindRateLimited:
		return "rate_limited"
	case KindNetwork:
		return "network"
	case KindUnexpectedStatus:
		return "unexpected_status"
	default:
		return "unknown"
	}
}

// ResetLayout formats rate-limit reset times for display.
const ResetLayout = "2006-01-02 15:04:05 MST"

// FormatReset renders a rate-limit reset time in local time.
func FormatReset(t time.Time) string {
	return t.Local().Format(ResetLayout)
}

// Error is a classified fetch failure.
type Error struct {
	Kind       Kind
	Asset      Asset
	URL        string
	StatusCode int
	// ResetAt is when the rate limit resets; zero if the host did not say.
	ResetAt time.Time
	Err     error
}

// Sentinels for errors.Is.
var (
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrRateLimited      = &Error{Kind: KindRateLimited}
	ErrNetwork          = &Error{Kind: KindNetwork}
	ErrUnexpectedStatus = &Error{Kind: KindUnexpectedStatus}
)

func (e *Error) Error() string {
	switch e.Kind {
	case KindNotFound:
		return fmt.Sprintf("%s not found in library", e.Asset.Label())
	case KindRateLimited:
		if e.ResetAt.IsZero() {
			return fmt.Sprintf("rate limit exceeded fetching %s", e.URL)
		}
		return fmt.Sprintf("rate limit exceeded fetching %s; resets at %s", e.URL, FormatReset(e.ResetAt))
	case KindUnexpectedStatus:
		return fmt.Sprintf("fetching %s: unexpected status %d", e.URL, e.StatusCode)
	default:
		if e.Err != nil {
			return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
		}
		return fmt.Sprintf("fetching %s failed", e.URL)
	}
}

// Unwrap returns the transport cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinels by Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Asset == (Asset{}) && t.URL == ""
}

// KindOf returns the Kind of err, or 0 if err is not a fetch error.
func KindOf(err error) Kind {
	for err != nil {
		if fe, ok := err.(*Error); ok {
			return fe.Kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return 0
		}
		err = u.Unwrap()
	}
	return 0
}

var versionRe = regexp.MustCompile(`(?m)^[ \t]*// @version (\d+\.\d+\.\d+)[ \t]*\r?$`)

// VersionTag extracts X.Y.Z from a "// @version X.Y.Z" line.
func VersionTag(content []byte) (string, bool) {
	m := versionRe.FindSubmatch(content)
	if m == nil {
		return "", false
	}
	return string(m[1]), true
}
