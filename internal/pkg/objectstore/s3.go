// Package objectstore wraps the S3 bucket that holds generated reports.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"
	"github.com/yigit/resultsportal/internal/pkg/apperrors"
)

// ErrObjectNotFound is returned when the key is absent from the bucket
var ErrObjectNotFound = apperrors.NewCustomError(apperrors.ErrResourceNotFound, "File not found in S3")

// Object is a readable stored object. Callers must close Body.
type Object struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

// S3Config configures the S3 client
type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	UsePathStyle    bool
}

// S3Store reads and deletes report objects in one bucket
type S3Store struct {
	client  *s3.Client
	bucket  string
	locator Locator
	logger  zerolog.Logger
}

// NewS3Store builds an S3 client from static credentials when given,
// otherwise from the default AWS credential chain.
func NewS3Store(ctx context.Context, cfg S3Config, logger zerolog.Logger) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &S3Store{
		client:  client,
		bucket:  cfg.Bucket,
		locator: Locator{Bucket: cfg.Bucket, Region: cfg.Region, Endpoint: cfg.Endpoint},
		logger:  logger.With().Str("component", "objectstore").Str("bucket", cfg.Bucket).Logger(),
	}, nil
}

// Locator returns the key/URL converter bound to this bucket
func (s *S3Store) Locator() Locator {
	return s.locator
}

// Get opens the object stored under key
func (s *S3Store) Get(ctx context.Context, key string) (*Object, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(NormalizeKey(key)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrObjectNotFound
		}
		s.logger.Error().Err(err).Str("key", key).Msg("GetObject failed")
		return nil, fmt.Errorf("%w: get %s: %v", apperrors.ErrStorageUnavailable, key, err)
	}

	obj := &Object{
		Body:        out.Body,
		ContentType: aws.ToString(out.ContentType),
	}
	if out.ContentLength != nil {
		obj.ContentLength = *out.ContentLength
	}
	if obj.ContentType == "" {
		obj.ContentType = "application/octet-stream"
	}
	return obj, nil
}

// Exists checks the object with a HEAD request
func (s *S3Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(NormalizeKey(key)),
	})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("%w: head %s: %v", apperrors.ErrStorageUnavailable, key, err)
}

// Delete removes the object. Deleting an absent key is not an error on S3.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(NormalizeKey(key)),
	})
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("DeleteObject failed")
		return fmt.Errorf("%w: delete %s: %v", apperrors.ErrStorageUnavailable, key, err)
	}
	s.logger.Info().Str("key", key).Msg("Object deleted")
	return nil
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	var nf *types.NotFound
	if errors.As(err, &nsk) || errors.As(err, &nf) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}
