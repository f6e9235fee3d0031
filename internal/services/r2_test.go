package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"event-console/internal/config"
	"event-console/internal/logging"
)

type fakeObjectAPI struct {
	headErr   error
	deleteErr error
	listErr   error
	createErr error
	corsInput *s3.PutBucketCorsInput
	deleted   []string
}

func (f *fakeObjectAPI) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	return &s3.HeadObjectOutput{}, f.headErr
}

func (f *fakeObjectAPI) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(params.Key))
	return &s3.DeleteObjectOutput{}, f.deleteErr
}

func (f *fakeObjectAPI) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	return &s3.ListObjectsV2Output{}, f.listErr
}

func (f *fakeObjectAPI) CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	return &s3.CreateBucketOutput{}, f.createErr
}

func (f *fakeObjectAPI) PutBucketCors(ctx context.Context, params *s3.PutBucketCorsInput, optFns ...func(*s3.Options)) (*s3.PutBucketCorsOutput, error) {
	f.corsInput = params
	return &s3.PutBucketCorsOutput{}, nil
}

type fakeUploader struct {
	input *s3.PutObjectInput
	err   error
}

func (f *fakeUploader) Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	f.input = input
	if f.err != nil {
		return nil, f.err
	}
	return &manager.UploadOutput{Location: "https://bucket/" + aws.ToString(input.Key)}, nil
}

func newFakeR2(cfg config.R2Config) (*R2Service, *fakeObjectAPI, *fakeUploader) {
	api := &fakeObjectAPI{}
	up := &fakeUploader{}
	return &R2Service{client: api, uploader: up, config: cfg, logger: logging.Discard()}, api, up
}

func TestNewR2Service(t *testing.T) {
	tests := []struct {
		name    string
		config  config.R2Config
		wantErr bool
	}{
		{
			name: "valid config",
			config: config.R2Config{
				AccountID:       "test-account",
				AccessKeyID:     "test-key",
				SecretAccessKey: "test-secret",
				BucketName:      "test-bucket",
				Region:          "auto",
			},
		},
		{
			name:    "missing access key",
			config:  config.R2Config{AccountID: "test-account", SecretAccessKey: "test-secret", Region: "auto"},
			wantErr: true,
		},
		{
			name:    "missing secret key",
			config:  config.R2Config{AccountID: "test-account", AccessKeyID: "test-key", Region: "auto"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, err := NewR2Service(tt.config, logging.Discard())
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, service)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, service)
		})
	}
}

func TestR2Endpoint(t *testing.T) {
	assert.Equal(t, "https://acct.r2.cloudflarestorage.com", r2Endpoint(config.R2Config{AccountID: "acct"}))
	assert.Equal(t, "http://localhost:9000", r2Endpoint(config.R2Config{AccountID: "acct", Endpoint: "http://localhost:9000"}))
}

func TestR2Service_GetURL(t *testing.T) {
	withPublic, _, _ := newFakeR2(config.R2Config{AccountID: "acct", PublicURL: "https://media.example.com/"})
	assert.Equal(t, "https://media.example.com/layouts/a.png", withPublic.GetURL("/layouts/a.png"))

	withoutPublic, _, _ := newFakeR2(config.R2Config{AccountID: "acct"})
	assert.Equal(t, "https://pub-acct.r2.dev/layouts/a.png", withoutPublic.GetURL("layouts/a.png"))
}

func TestR2Service_Upload(t *testing.T) {
	service, _, up := newFakeR2(config.R2Config{BucketName: "media", PublicURL: "https://media.example.com"})

	url, err := service.Upload(context.Background(), "/signatures/s.png", strings.NewReader("png"), "image/png", 3)

	require.NoError(t, err)
	assert.Equal(t, "https://media.example.com/signatures/s.png", url)
	assert.Equal(t, "media", aws.ToString(up.input.Bucket))
	assert.Equal(t, "signatures/s.png", aws.ToString(up.input.Key))
	assert.Equal(t, "image/png", aws.ToString(up.input.ContentType))
	assert.Equal(t, int64(3), aws.ToInt64(up.input.ContentLength))

	up.err = errors.New("timeout")
	_, err = service.Upload(context.Background(), "k", strings.NewReader("x"), "text/plain", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to upload to R2")
}

func TestR2Service_Exists(t *testing.T) {
	tests := []struct {
		name    string
		headErr error
		want    bool
		wantErr bool
	}{
		{name: "found", want: true},
		{name: "not found", headErr: &types.NotFound{}},
		{name: "other failure", headErr: errors.New("forbidden"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, api, _ := newFakeR2(config.R2Config{BucketName: "media"})
			api.headErr = tt.headErr

			exists, err := service.Exists(context.Background(), "k")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, exists)
		})
	}
}

func TestR2Service_BucketSetup(t *testing.T) {
	service, api, _ := newFakeR2(config.R2Config{BucketName: "media"})
	ctx := context.Background()

	api.createErr = &types.BucketAlreadyOwnedByYou{}
	assert.NoError(t, service.CreateBucket(ctx))

	api.createErr = errors.New("denied")
	assert.Error(t, service.CreateBucket(ctx))

	require.NoError(t, service.SetBucketCORS(ctx, []string{"https://console.example.com"}))
	rules := api.corsInput.CORSConfiguration.CORSRules
	require.Len(t, rules, 1)
	assert.Equal(t, []string{"https://console.example.com"}, rules[0].AllowedOrigins)

	require.NoError(t, service.SetBucketCORS(ctx, nil))
	assert.Equal(t, []string{"*"}, api.corsInput.CORSConfiguration.CORSRules[0].AllowedOrigins)

	require.NoError(t, service.Delete(ctx, "/old.png"))
	assert.Equal(t, []string{"old.png"}, api.deleted)

	assert.NoError(t, service.HealthCheck(ctx))
	api.listErr = errors.New("no route")
	assert.Error(t, service.HealthCheck(ctx))
}
