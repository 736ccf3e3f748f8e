package fetch

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Rate-limit headers sent by GitHub and compatible hosts.
const (
	HeaderRateLimitRemaining = "X-Ratelimit-Remaining"
	HeaderRateLimitReset     = "X-Ratelimit-Reset"
)

// HTTPSource fetches assets with plain GET requests.
type HTTPSource struct {
	// BaseURL is prefixed to every asset path.
	BaseURL string

	// Client performs requests. If nil, a client with Timeout is created.
	Client *http.Client

	// Timeout bounds each fetch. Zero means no deadline.
	Timeout time.Duration
}

// NewHTTPSource creates an HTTPSource with a per-fetch timeout.
func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		BaseURL: baseURL,
		Client:  newClient(timeout),
		Timeout: timeout,
	}
}

// newClient returns a client that does not follow redirects; a 3xx is
// reported as an unexpected status.
func newClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// Location returns the URL the asset is fetched from.
func (s *HTTPSource) Location(asset Asset) string {
	return strings.TrimRight(s.BaseURL, "/") + "/" + asset.Path()
}

// Fetch downloads an asset and returns its body.
func (s *HTTPSource) Fetch(ctx context.Context, asset Asset) ([]byte, error) {
	url := s.Location(asset)

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Asset: asset, URL: url, Err: err}
	}

	client := s.Client
	if client == nil {
		client = newClient(s.Timeout)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Asset: asset, URL: url, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, &Error{Kind: KindNetwork, Asset: asset, URL: url, Err: err}
		}
		return body, nil

	case resp.StatusCode == http.StatusNotFound:
		return nil, &Error{Kind: KindNotFound, Asset: asset, URL: url, StatusCode: resp.StatusCode}

	case resp.StatusCode == http.StatusForbidden && rateLimitExhausted(resp.Header):
		return nil, &Error{
			Kind:       KindRateLimited,
			Asset:      asset,
			URL:        url,
			StatusCode: resp.StatusCode,
			ResetAt:    rateLimitReset(resp.Header),
		}

	default:
		return nil, &Error{Kind: KindUnexpectedStatus, Asset: asset, URL: url, StatusCode: resp.StatusCode}
	}
}

func rateLimitExhausted(h http.Header) bool {
	return strings.TrimSpace(h.Get(HeaderRateLimitRemaining)) == "0"
}

// rateLimitReset parses the reset header as Unix epoch seconds.
func rateLimitReset(h http.Header) time.Time {
	v := strings.TrimSpace(h.Get(HeaderRateLimitReset))
	if v == "" {
		return time.Time{}
	}
	secs, err := strconv.ParseInt(v, 10, 64)
	if err != nil || secs <= 0 {
		return time.Time{}
	}
	return time.Unix(secs, 0)
}
