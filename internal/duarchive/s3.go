package duarchive

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	s3aws "github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3Client is the narrow slice of the AWS SDK's S3 client this package uses,
// kept as an interface so tests can substitute a fake.
type s3Client interface {
	PutObject(ctx context.Context, params *s3aws.PutObjectInput, optFns ...func(*s3aws.Options)) (*s3aws.PutObjectOutput, error)
}

// S3 archives document content to a bucket, one object per document keyed by
// envelope/document id under prefix.
type S3 struct {
	client s3Client
	bucket string
	prefix string
}

// defaultPrefix is used when no archive prefix is configured.
const defaultPrefix = "documents"

// NewS3 loads the default AWS config (env vars, shared config, IAM role) and
// builds an S3 Archiver for bucket. An empty prefix falls back to
// defaultPrefix.
func NewS3(ctx context.Context, bucket, region, prefix string) (*S3, error) {
	if prefix == "" {
		prefix = defaultPrefix
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("duarchive: failed to load AWS config: %w", err)
	}
	return &S3{client: s3aws.NewFromConfig(cfg), bucket: bucket, prefix: prefix}, nil
}

// Put uploads content under key {prefix}/{envelopeID}/{documentID} and
// returns the locator s3://{bucket}/{key} (spec §4.8).
func (s *S3) Put(ctx context.Context, envelopeID, documentID string, content []byte) (string, error) {
	key := fmt.Sprintf("%s/%s/%s", s.prefix, envelopeID, documentID)
	_, err := s.client.PutObject(ctx, &s3aws.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String("application/octet-stream"),
	})
	if err != nil {
		return "", fmt.Errorf("duarchive: failed to archive document %s/%s: %w", envelopeID, documentID, err)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}
