package fetch

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects map[string]string
	err     error
	keys    []string
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.keys = append(f.keys, aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key))
	if f.err != nil {
		return nil, f.err
	}
	body, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("missing")}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

type statusErr struct{ code int }

func (e statusErr) Error() string       { return "status" }
func (e statusErr) HTTPStatusCode() int { return e.code }

func TestS3Source_Fetch(t *testing.T) {
	fake := &fakeS3{objects: map[string]string{"lib/components/radio.tsx": "radio"}}
	src := &S3Source{Client: fake, Bucket: "ui", Prefix: "lib"}

	body, err := src.Fetch(context.Background(), ComponentAsset("radio"))
	require.NoError(t, err)
	assert.Equal(t, "radio", string(body))
	assert.Equal(t, []string{"ui/lib/components/radio.tsx"}, fake.keys)
	assert.Equal(t, "s3://ui/lib/components/radio.tsx", src.Location(ComponentAsset("radio")))

	_, err = src.Fetch(context.Background(), ComponentAsset("missing"))
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestS3Source_NoPrefix(t *testing.T) {
	src := &S3Source{Bucket: "ui"}
	assert.Equal(t, "app/globals.css", src.Key(GlobalStylesheetAsset()))
}

func TestS3Source_Classification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind Kind
	}{
		{"status 404", statusErr{404}, KindNotFound},
		{"slow down", statusErr{503}, KindRateLimited},
		{"access denied", statusErr{403}, KindUnexpectedStatus},
		{"transport", errors.New("dial tcp: no such host"), KindNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &S3Source{Client: &fakeS3{err: tt.err}, Bucket: "ui"}
			_, err := src.Fetch(context.Background(), ComponentAsset("button"))
			assert.Equal(t, tt.kind, KindOf(err))
		})
	}
}

// awsProfile points the AWS configuration chain at a shared config and
// credentials file pair that defines the "library" profile.
func awsProfile(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config")
	credsFile := filepath.Join(dir, "credentials")
	require.NoError(t, os.WriteFile(configFile, []byte("[profile library]\nregion = eu-central-1\n"), 0o600))
	require.NoError(t, os.WriteFile(credsFile, []byte("[library]\naws_access_key_id = AKIDLIBRARY\naws_secret_access_key = secret\n"), 0o600))

	for _, key := range []string{"AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY", "AWS_SESSION_TOKEN", "AWS_REGION", "AWS_DEFAULT_REGION"} {
		t.Setenv(key, "")
	}
	t.Setenv("AWS_CONFIG_FILE", configFile)
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", credsFile)
	t.Setenv("AWS_PROFILE", "library")
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
}

func TestNewS3Client_SharedProfile(t *testing.T) {
	awsProfile(t)
	ctx := context.Background()

	client, err := newS3Client(ctx, S3Options{Timeout: time.Second})
	require.NoError(t, err)

	opts := client.Options()
	assert.Equal(t, "eu-central-1", opts.Region)
	assert.Equal(t, 1, opts.RetryMaxAttempts)
	assert.False(t, opts.UsePathStyle)

	creds, err := opts.Credentials.Retrieve(ctx)
	require.NoError(t, err)
	assert.Equal(t, "AKIDLIBRARY", creds.AccessKeyID)
}

func TestNewS3Client_Overrides(t *testing.T) {
	awsProfile(t)

	client, err := newS3Client(context.Background(), S3Options{
		Region:   "ap-south-1",
		Endpoint: "http://127.0.0.1:9000",
	})
	require.NoError(t, err)

	opts := client.Options()
	assert.Equal(t, "ap-south-1", opts.Region)
	assert.Equal(t, "http://127.0.0.1:9000", aws.ToString(opts.BaseEndpoint))
	assert.True(t, opts.UsePathStyle)
}

func TestResolveCredentials(t *testing.T) {
	ctx := context.Background()

	assert.IsType(t, aws.AnonymousCredentials{}, resolveCredentials(ctx, nil))

	failing := aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
		return aws.Credentials{}, errors.New("no EC2 IMDS role found")
	})
	assert.IsType(t, aws.AnonymousCredentials{}, resolveCredentials(ctx, failing))

	static := aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
		return aws.Credentials{AccessKeyID: "AKID", SecretAccessKey: "s"}, nil
	})
	got := resolveCredentials(ctx, static)
	creds, err := got.Retrieve(ctx)
	require.NoError(t, err)
	assert.Equal(t, "AKID", creds.AccessKeyID)
}
