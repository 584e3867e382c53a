// Package s3store uploads synthesized audio to S3 and hands out public URLs.
package s3store

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/steveyiyo/avatar-voice/internal/core/speech"
)

const keyPrefix = "audio/"

type putObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Store struct {
	client    putObjectAPI
	bucket    string
	publicURL string
}

// New loads credentials from the default AWS chain.
func New(ctx context.Context, bucket, region, publicURL string) (*Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewWithClient(s3.NewFromConfig(cfg), bucket, publicURL), nil
}

// NewWithClient uses client as is. An empty publicURL means the bucket's
// virtual-hosted address.
func NewWithClient(client putObjectAPI, bucket, publicURL string) *Store {
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.s3.amazonaws.com", bucket)
	}
	return &Store{client: client, bucket: bucket, publicURL: strings.TrimRight(publicURL, "/")}
}

func (s *Store) Put(ctx context.Context, key string, a *speech.Audio) (string, error) {
	objectKey := keyPrefix + key
	in := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
		Body:   bytes.NewReader(a.Data),
	}
	if a.ContentType != "" {
		in.ContentType = aws.String(a.ContentType)
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return "", fmt.Errorf("failed to put object '%s' to bucket '%s': %w", objectKey, s.bucket, err)
	}
	return s.publicURL + "/" + objectKey, nil
}
