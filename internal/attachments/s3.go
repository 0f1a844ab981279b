package attachments

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/uwdate/review-backend/internal/models"
)

// S3API is the subset of the S3 client used by S3Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Store keeps uploads as objects under prefix in a bucket.
type S3Store struct {
	client S3API
	bucket string
	prefix string
	now    func() time.Time
}

func NewS3Store(client S3API, bucket, prefix string) *S3Store {
	return &S3Store{client: client, bucket: bucket, prefix: prefix, now: time.Now}
}

// NewS3StoreFromEnv builds the client from the default AWS credential chain.
func NewS3StoreFromEnv(ctx context.Context, region, bucket, prefix string) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewS3Store(s3.NewFromConfig(cfg), bucket, prefix), nil
}

func (s *S3Store) key(name string) string {
	return path.Join(s.prefix, name)
}

func (s *S3Store) Save(ctx context.Context, up Upload) (models.Evidence, error) {
	src, err := up.Open()
	if err != nil {
		return models.Evidence{}, err
	}
	defer src.Close()

	body, err := io.ReadAll(io.LimitReader(src, MaxFileSize+1))
	if err != nil {
		return models.Evidence{}, err
	}
	if len(body) > MaxFileSize {
		return models.Evidence{}, &Error{File: up.OriginalName, Err: ErrFileTooLarge}
	}

	now := s.now()
	name := storedName(up.OriginalName, now)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key(name)),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(up.ContentType),
		Metadata:      map[string]string{"original-name": up.OriginalName},
	})
	if err != nil {
		return models.Evidence{}, fmt.Errorf("put object %s: %w", name, err)
	}

	return models.Evidence{
		Filename:     name,
		OriginalName: up.OriginalName,
		Size:         int64(len(body)),
		UploadDate:   now.UTC(),
	}, nil
}

func (s *S3Store) Open(ctx context.Context, filename string) (io.ReadCloser, error) {
	name, err := cleanName(filename)
	if err != nil {
		return nil, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", name, err)
	}
	return out.Body, nil
}
