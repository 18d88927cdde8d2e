package duarchive

import (
	"context"
	"errors"
	"io"
	"testing"

	s3aws "github.com/aws/aws-sdk-go-v2/service/s3"
)

// fakeS3Client is a narrow stand-in for the AWS SDK client, recording the
// last PutObjectInput it received.
type fakeS3Client struct {
	err        error
	lastBucket string
	lastKey    string
	lastBody   []byte
}

func (f *fakeS3Client) PutObject(ctx context.Context, params *s3aws.PutObjectInput, optFns ...func(*s3aws.Options)) (*s3aws.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastBucket = *params.Bucket
	f.lastKey = *params.Key
	f.lastBody, _ = io.ReadAll(params.Body)
	return &s3aws.PutObjectOutput{}, nil
}

func TestS3_PutUsesPrefixEnvelopeDocumentKeyAndReturnsLocator(t *testing.T) {
	fake := &fakeS3Client{}
	archiver := &S3{client: fake, bucket: "my-bucket", prefix: "documents"}

	locator, err := archiver.Put(context.Background(), "E1", "D1", []byte("hello"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fake.lastBucket != "my-bucket" {
		t.Fatalf("unexpected bucket: %q", fake.lastBucket)
	}
	if fake.lastKey != "documents/E1/D1" {
		t.Fatalf("unexpected key: %q", fake.lastKey)
	}
	if string(fake.lastBody) != "hello" {
		t.Fatalf("unexpected body: %q", fake.lastBody)
	}
	if locator != "s3://my-bucket/documents/E1/D1" {
		t.Fatalf("unexpected locator: %q", locator)
	}
}

func TestS3_PutWrapsClientError(t *testing.T) {
	fake := &fakeS3Client{err: errors.New("network unreachable")}
	archiver := &S3{client: fake, bucket: "my-bucket", prefix: "documents"}

	locator, err := archiver.Put(context.Background(), "E1", "D1", []byte("hello"))
	if err == nil {
		t.Fatal("expected error to propagate")
	}
	if locator != "" {
		t.Fatalf("expected empty locator on failure, got %q", locator)
	}
}
