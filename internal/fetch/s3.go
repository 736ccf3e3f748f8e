package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the subset of the S3 client used by S3Source.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// DefaultS3Region is used when neither the options nor the AWS environment
// name a region.
const DefaultS3Region = "us-east-1"

// S3Options configures the S3 client built by NewS3Source.
type S3Options struct {
	// Region overrides the region from the AWS environment.
	Region string

	// Endpoint points the client at an S3-compatible store. Path-style
	// addressing is used when set.
	Endpoint string

	// Timeout bounds each fetch.
	Timeout time.Duration
}

// S3Source fetches assets from an S3 bucket.
type S3Source struct {
	Client  S3API
	Bucket  string
	Prefix  string
	Timeout time.Duration

	options   S3Options
	once      sync.Once
	clientErr error
}

// NewS3Source creates an S3Source. The client is built on first use from the
// standard AWS configuration chain (environment, shared config and
// credentials files, AWS_PROFILE, SSO, web identity, instance metadata).
// Requests are unsigned when that chain yields no credentials, which is what
// a public library bucket needs.
func NewS3Source(bucket, prefix string, opts S3Options) *S3Source {
	return &S3Source{
		Bucket:  bucket,
		Prefix:  strings.Trim(prefix, "/"),
		Timeout: opts.Timeout,
		options: opts,
	}
}

func (s *S3Source) client(ctx context.Context) (S3API, error) {
	s.once.Do(func() {
		if s.Client != nil {
			return
		}
		var c *s3.Client
		c, s.clientErr = newS3Client(ctx, s.options)
		if s.clientErr == nil {
			s.Client = c
		}
	})
	return s.Client, s.clientErr
}

func newS3Client(ctx context.Context, opts S3Options) (*s3.Client, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRetryMaxAttempts(1),
		awsconfig.WithHTTPClient(&http.Client{Timeout: opts.Timeout}),
	}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	if cfg.Region == "" {
		cfg.Region = DefaultS3Region
	}
	cfg.Credentials = resolveCredentials(ctx, cfg.Credentials)

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// resolveCredentials returns provider, or anonymous credentials when the
// provider is missing or cannot produce credentials.
func resolveCredentials(ctx context.Context, provider aws.CredentialsProvider) aws.CredentialsProvider {
	if provider == nil {
		return aws.AnonymousCredentials{}
	}
	if _, err := provider.Retrieve(ctx); err != nil {
		return aws.AnonymousCredentials{}
	}
	return provider
}

// Key returns the object key of an asset.
func (s *S3Source) Key(asset Asset) string {
	if s.Prefix == "" {
		return asset.Path()
	}
	return path.Join(s.Prefix, asset.Path())
}

// Location returns the s3:// URL of an asset.
func (s *S3Source) Location(asset Asset) string {
	return "s3://" + s.Bucket + "/" + s.Key(asset)
}

// Fetch downloads an object.
func (s *S3Source) Fetch(ctx context.Context, asset Asset) ([]byte, error) {
	loc := s.Location(asset)

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	client, err := s.client(ctx)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Asset: asset, URL: loc, Err: err}
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.Key(asset)),
	})
	if err != nil {
		return nil, classifyS3(err, asset, loc)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Asset: asset, URL: loc, Err: err}
	}
	return body, nil
}

// httpStatusError is implemented by SDK response errors.
type httpStatusError interface {
	HTTPStatusCode() int
}

func classifyS3(err error, asset Asset, loc string) error {
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return &Error{Kind: KindNotFound, Asset: asset, URL: loc, StatusCode: http.StatusNotFound, Err: err}
	}

	var status httpStatusError
	if errors.As(err, &status) {
		switch code := status.HTTPStatusCode(); code {
		case http.StatusNotFound:
			return &Error{Kind: KindNotFound, Asset: asset, URL: loc, StatusCode: code, Err: err}
		case http.StatusServiceUnavailable:
			// SlowDown carries no reset time.
			return &Error{Kind: KindRateLimited, Asset: asset, URL: loc, StatusCode: code, Err: err}
		default:
			return &Error{Kind: KindUnexpectedStatus, Asset: asset, URL: loc, StatusCode: code, Err: err}
		}
	}

	return &Error{Kind: KindNetwork, Asset: asset, URL: loc, Err: err}
}
