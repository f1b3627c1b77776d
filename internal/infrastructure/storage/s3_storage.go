// Package storage verifies review photos against S3-compatible object storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	reviewapp "github.com/cafecrawl/backend/internal/application/review"
	"github.com/cafecrawl/backend/internal/domain/shared"
	infraconfig "github.com/cafecrawl/backend/internal/infrastructure/config"
	"github.com/cafecrawl/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Ensure S3PhotoVerifier implements PhotoVerifier
var _ reviewapp.PhotoVerifier = (*S3PhotoVerifier)(nil)

// objectHeader is the subset of the S3 client used for verification
type objectHeader interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// S3PhotoVerifier checks that photo URLs pointing into the configured bucket
// reference an object that exists. It works with any S3-compatible storage
// (AWS S3, MinIO, RustFS, etc.)
type S3PhotoVerifier struct {
	client        objectHeader
	bucket        string
	publicBaseURL string
	logger        *zap.Logger
}

// S3PhotoVerifierOption is a functional option for configuring S3PhotoVerifier
type S3PhotoVerifierOption func(*S3PhotoVerifier)

// WithLogger sets a custom logger for S3PhotoVerifier
func WithLogger(logger *zap.Logger) S3PhotoVerifierOption {
	return func(v *S3PhotoVerifier) {
		v.logger = logger
	}
}

// NewS3PhotoVerifier creates a verifier from configuration. Static
// credentials are used when configured; otherwise the default AWS credential
// chain applies.
func NewS3PhotoVerifier(ctx context.Context, cfg *infraconfig.StorageConfig, opts ...S3PhotoVerifierOption) (*S3PhotoVerifier, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if (cfg.AccessKey == "") != (cfg.SecretKey == "") {
		return nil, errors.New("storage access key and secret key must be set together")
	}

	baseURL, err := normalizeBaseURL(cfg.PublicBaseURL)
	if err != nil {
		return nil, err
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	endpoint := endpointURL(cfg.Endpoint, cfg.UseSSL)
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	return newS3PhotoVerifier(client, cfg.Bucket, baseURL, opts...), nil
}

func newS3PhotoVerifier(client objectHeader, bucket, baseURL string, opts ...S3PhotoVerifierOption) *S3PhotoVerifier {
	v := &S3PhotoVerifier{
		client:        client,
		bucket:        bucket,
		publicBaseURL: baseURL,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// endpointURL adds a scheme to a bare host:port endpoint. An empty endpoint
// keeps the SDK's regional AWS endpoint.
func endpointURL(endpoint string, useSSL bool) string {
	if endpoint == "" {
		return ""
	}
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	if useSSL {
		return "https://" + endpoint
	}
	return "http://" + endpoint
}

func normalizeBaseURL(raw string) (string, error) {
	if raw == "" {
		return "", errors.New("storage public base URL is required")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("invalid storage public base URL %q", raw)
	}
	return strings.TrimSuffix(raw, "/") + "/", nil
}

// ObjectKey extracts the object key from a public photo URL. ok is false for
// URLs outside the bucket's public base URL.
func (v *S3PhotoVerifier) ObjectKey(photoURL string) (key string, ok bool) {
	rest, found := strings.CutPrefix(photoURL, v.publicBaseURL)
	if !found {
		return "", false
	}
	if i := strings.IndexAny(rest, "?#"); i >= 0 {
		rest = rest[:i]
	}
	key, err := url.PathUnescape(rest)
	if err != nil || key == "" {
		return "", false
	}
	return key, true
}

// VerifyPhoto implements PhotoVerifier. URLs outside the bucket are accepted
// as is; a missing object is a validation error.
func (v *S3PhotoVerifier) VerifyPhoto(ctx context.Context, photoURL string) error {
	key, ok := v.ObjectKey(photoURL)
	if !ok {
		return nil
	}

	ctx, span := telemetry.StartSpan(ctx, "photo.verify",
		telemetry.WithAttribute(telemetry.SpanAttrBucket, v.bucket),
		telemetry.WithAttribute(telemetry.SpanAttrKey, key),
	)
	defer span.End()

	_, err := v.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(v.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		telemetry.SetOK(span)
		return nil
	}

	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &notFound) || errors.As(err, &noSuchKey) {
		v.logger.Debug("Review photo not found in storage",
			zap.String("bucket", v.bucket),
			zap.String("key", key),
		)
		return shared.NewValidationError("photo_url does not reference an uploaded photo")
	}

	telemetry.RecordError(span, err)
	return fmt.Errorf("failed to check photo %s in bucket %s: %w", key, v.bucket, err)
}

// GetBucket returns the bucket name
func (v *S3PhotoVerifier) GetBucket() string {
	return v.bucket
}
