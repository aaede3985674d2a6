package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cfg "github.com/templui/sneakerbase/internal/config"
)

func offlineS3Storage() *S3Storage {
	client := s3.New(s3.Options{
		Region:       "us-east-1",
		Credentials:  credentials.NewStaticCredentialsProvider("access", "secret", ""),
		BaseEndpoint: aws.String("http://localhost:9000"),
		UsePathStyle: true,
	})
	return &S3Storage{client: client, presignClient: s3.NewPresignClient(client), bucket: "sneakers"}
}

func TestS3PresignedURLs(t *testing.T) {
	s := offlineS3Storage()
	ctx := context.Background()

	putURL, err := s.PresignedPutURL(ctx, "sneakers/abc", 15*time.Minute)
	require.NoError(t, err)
	assert.Contains(t, putURL, "http://localhost:9000/sneakers/sneakers/abc")
	assert.Contains(t, putURL, "X-Amz-Signature=")
	assert.Contains(t, putURL, "X-Amz-Expires=900")

	getURL, err := s.PresignedGetURL(ctx, "sneakers/abc", time.Hour)
	require.NoError(t, err)
	assert.Contains(t, getURL, "X-Amz-Expires=3600")
}

func TestIsS3NotFound(t *testing.T) {
	assert.True(t, isS3NotFound(&types.NotFound{}))
	assert.True(t, isS3NotFound(fmt.Errorf("head: %w", &types.NoSuchKey{})))
	assert.True(t, isS3NotFound(&smithy.GenericAPIError{Code: "NotFound"}))
	assert.False(t, isS3NotFound(&smithy.GenericAPIError{Code: "AccessDenied"}))
	assert.False(t, isS3NotFound(errors.New("connection refused")))
}

func TestIsS3PreconditionFailed(t *testing.T) {
	assert.True(t, isS3PreconditionFailed(&smithy.GenericAPIError{Code: "PreconditionFailed"}))
	assert.True(t, isS3PreconditionFailed(fmt.Errorf("put: %w", &smithy.GenericAPIError{Code: "ConditionalRequestConflict"})))
	assert.False(t, isS3PreconditionFailed(&smithy.GenericAPIError{Code: "AccessDenied"}))
	assert.False(t, isS3PreconditionFailed(nil))
}

func TestIsMinioPreconditionFailed(t *testing.T) {
	assert.True(t, isMinioPreconditionFailed(minio.ErrorResponse{Code: "PreconditionFailed", StatusCode: http.StatusPreconditionFailed}))
	assert.True(t, isMinioPreconditionFailed(minio.ErrorResponse{StatusCode: http.StatusPreconditionFailed}))
	assert.False(t, isMinioPreconditionFailed(minio.ErrorResponse{Code: "NoSuchKey", StatusCode: http.StatusNotFound}))
	assert.False(t, isMinioPreconditionFailed(nil))
}

func TestMinioRequiresEndpoint(t *testing.T) {
	_, err := NewMinioStorage(MinioConfig{Bucket: "sneakers"})
	assert.Error(t, err)
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	_, err := New(&cfg.Config{StorageBackend: "ftp"})
	assert.EqualError(t, err, `unknown storage backend "ftp"`)
}
