package uploader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"
	"github.com/sethvargo/go-retry"
	"github.com/spf13/afero"
)

const defaultRetryDelay = 500 * time.Millisecond

type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 mirrors locally persisted artifacts into S3 buckets, keyed by the artifact's base name.
type S3 struct {
	client     ObjectPutter
	fs         afero.Fs
	retries    uint64
	retryDelay time.Duration
}

func NewS3(client ObjectPutter, fs afero.Fs, retries uint64, retryDelay time.Duration) *S3 {
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}

	return &S3{client: client, fs: fs, retries: retries, retryDelay: retryDelay}
}

// NewS3Client builds an S3 client from the default credential chain. A non-empty endpoint targets an
// S3-compatible store using path-style addressing.
func NewS3Client(ctx context.Context, region, endpoint string) (*s3.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("error loading aws config: %w", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Upload puts the artifact at path into bucket, overwriting any existing object with the same key.
func (u *S3) Upload(ctx context.Context, artifactPath string, bucket string) bool {
	key := path.Base(artifactPath)
	l := log.With().Str("path", artifactPath).Str("bucket", bucket).Str("key", key).Logger()

	data, err := afero.ReadFile(u.fs, artifactPath)
	if err != nil {
		l.Error().Err(err).Msg("could not read artifact for upload")
		return false
	}

	contentType := mimetype.Detect(data).String()

	backoff := retry.WithMaxRetries(u.retries, retry.NewExponential(u.retryDelay))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(contentType),
		})
		if err != nil {
			if isPermanent(err) {
				return err
			}
			l.Warn().Err(err).Msg("upload attempt failed")
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		l.Error().Err(err).Msg("upload failed")
		return false
	}

	l.Debug().Str("contentType", contentType).Int("bytes", len(data)).Msg("uploaded artifact")

	return true
}

func isPermanent(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}

	switch apiErr.ErrorCode() {
	case "NoSuchBucket", "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch", "InvalidBucketName":
		return true
	default:
		return false
	}
}
