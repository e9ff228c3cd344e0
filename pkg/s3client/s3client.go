package s3client

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const (
	_defaultConnAttempts = 10
	_defaultConnTimeout  = time.Second
	_defaultRegion       = "garage"
)

// S3Client is an S3 client bound to a single bucket.
type S3Client struct {
	connAttempts int
	connTimeout  time.Duration

	region       string
	pathStyle    bool
	createBucket bool

	Client *s3.Client
	Bucket string
}

func New(ctx context.Context, endpoint, accessKey, secretKey, bucket string, opts ...Option) (*S3Client, error) {
	s3c := &S3Client{
		connAttempts: _defaultConnAttempts,
		connTimeout:  _defaultConnTimeout,
		region:       _defaultRegion,
		pathStyle:    true,
		createBucket: true,
		Bucket:       bucket,
	}

	for _, opt := range opts {
		opt(s3c)
	}

	cfg, err := config.LoadDefaultConfig(
		ctx,
		config.WithRegion(s3c.region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("S3Client - New - config.LoadDefaultConfig: %w", err)
	}

	s3c.Client = s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = s3c.pathStyle
		o.BaseEndpoint = aws.String(endpoint)
	})

	for attempt := 1; ; attempt++ {
		err = s3c.probe(ctx)
		if err == nil {
			return s3c, nil
		}
		if attempt >= s3c.connAttempts {
			return nil, fmt.Errorf("S3Client - New - bucket %q unreachable after %d attempts: %w", bucket, attempt, err)
		}

		log.Printf("S3 bucket %q is not reachable yet, attempt %d/%d: %v", bucket, attempt, s3c.connAttempts, err)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("S3Client - New: %w", ctx.Err())
		case <-time.After(s3c.connTimeout):
		}
	}
}

// probe checks the bucket and creates it when allowed.
func (s *S3Client) probe(ctx context.Context) error {
	_, err := s.Client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.Bucket)})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	if !errors.As(err, &notFound) || !s.createBucket {
		return fmt.Errorf("S3Client - s.Client.HeadBucket: %w", err)
	}

	_, err = s.Client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.Bucket)})
	if err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &owned) {
			return nil
		}
		return fmt.Errorf("S3Client - s.Client.CreateBucket: %w", err)
	}

	return nil
}
