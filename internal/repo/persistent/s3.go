package persistent

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/andreyxaxa/ubl-sender/pkg/s3client"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type S3FileRepo struct {
	*s3client.S3Client
}

func NewS3FileRepo(s3c *s3client.S3Client) *S3FileRepo {
	return &S3FileRepo{s3c}
}

// Upload stores the object under key; the key itself is the file handle.
func (r *S3FileRepo) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := r.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("S3FileRepo - Upload - r.Client.PutObject: %w", err)
	}

	return key, nil
}

func (r *S3FileRepo) Download(ctx context.Context, fileID string) ([]byte, error) {
	result, err := r.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.Bucket),
		Key:    aws.String(fileID),
	})
	if err != nil {
		return nil, fmt.Errorf("S3FileRepo - Download - r.Client.GetObject: %w", err)
	}
	defer result.Body.Close()

	b, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("S3FileRepo - Download - io.ReadAll: %w", err)
	}

	return b, nil
}
