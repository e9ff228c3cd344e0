package azblobclient

import "time"

type Option func(c *AzBlobClient)

func ConnAttempts(attempts int) Option {
	return func(c *AzBlobClient) {
		c.connAttempts = attempts
	}
}

func ConnTimeout(timeout time.Duration) Option {
	return func(c *AzBlobClient) {
		c.connTimeout = timeout
	}
}
