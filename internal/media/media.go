// Package media checks media references against the object store.
package media

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"campusboard/internal/apperr"
	"campusboard/internal/config"
	"campusboard/internal/oops"
)

type headObjectAPI interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// S3Checker accepts references to existing objects in the media bucket.
type S3Checker struct {
	client       headObjectAPI
	bucket       string
	baseURL      string
	maxBytes     int64
	contentTypes []string
}

// NewS3Checker builds a checker from the S3 settings in cfg.
func NewS3Checker(ctx context.Context, cfg *config.Config) (*S3Checker, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}
	if cfg.S3Endpoint != "" {
		opts = append(opts, awsconfig.WithEndpointResolver(aws.EndpointResolverFunc(func(service, region string) (aws.Endpoint, error) {
			return aws.Endpoint{URL: cfg.S3Endpoint}, nil
		})))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, oops.New(err, "failed to load S3 config")
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	policy := cfg.Policy
	if policy == nil {
		policy = config.DefaultPolicy()
	}
	return newS3Checker(client, cfg.S3Bucket, cfg.S3PublicBaseURL, policy.Media), nil
}

func newS3Checker(client headObjectAPI, bucket, baseURL string, media config.MediaConfig) *S3Checker {
	return &S3Checker{
		client:       client,
		bucket:       bucket,
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		maxBytes:     media.MaxBytes,
		contentTypes: media.ContentTypes,
	}
}

// CheckMedia returns a validation error unless ref points at an object in
// the bucket with an allowed size and content type.
func (c *S3Checker) CheckMedia(ctx context.Context, ref string) error {
	key, ok := strings.CutPrefix(ref, c.baseURL+"/")
	if !ok || key == "" {
		return apperr.Validation(fmt.Sprintf("media must be hosted under %s", c.baseURL))
	}
	if i := strings.IndexAny(key, "?#"); i >= 0 {
		key = key[:i]
	}

	head, err := c.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: &c.bucket,
		Key:    &key,
	})
	if err != nil {
		var apiError smithy.APIError
		if errors.As(err, &apiError) && (apiError.ErrorCode() == "NotFound" || apiError.ErrorCode() == "NoSuchKey") {
			return apperr.Validation(fmt.Sprintf("media %s does not exist", key))
		}
		return oops.New(err, "failed to check media object %s", key)
	}

	if c.maxBytes > 0 && head.ContentLength > c.maxBytes {
		return apperr.Validation(fmt.Sprintf("media %s exceeds %d bytes", key, c.maxBytes))
	}

	contentType := aws.ToString(head.ContentType)
	for _, prefix := range c.contentTypes {
		if strings.HasPrefix(contentType, prefix) {
			return nil
		}
	}
	return apperr.Validation(fmt.Sprintf("media %s has unsupported content type %q", key, contentType))
}
