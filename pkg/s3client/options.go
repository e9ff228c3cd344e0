package s3client

import "time"

type Option func(c *S3Client)

// ConnAttempts bounds how many times New probes the bucket before giving up.
func ConnAttempts(attempts int) Option {
	return func(c *S3Client) {
		c.connAttempts = attempts
	}
}

// ConnTimeout is the pause between probes.
func ConnTimeout(timeout time.Duration) Option {
	return func(c *S3Client) {
		c.connTimeout = timeout
	}
}

func Region(region string) Option {
	return func(c *S3Client) {
		c.region = region
	}
}

// PathStyle switches between path-style (garage, minio) and virtual-hosted addressing.
func PathStyle(enabled bool) Option {
	return func(c *S3Client) {
		c.pathStyle = enabled
	}
}

// CreateBucket makes New create the bucket when the probe reports it missing.
func CreateBucket(enabled bool) Option {
	return func(c *S3Client) {
		c.createBucket = enabled
	}
}
