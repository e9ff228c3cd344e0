package azblobclient

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

const (
	_defaultConnAttempts = 10
	_defaultConnTimeout  = time.Second
)

type AzBlobClient struct {
	connAttempts int
	connTimeout  time.Duration

	Client    *azblob.Client
	Container string
}

// New builds the client from a connection string and makes sure the container exists.
func New(ctx context.Context, connectionString, container string, opts ...Option) (*AzBlobClient, error) {
	c := &AzBlobClient{
		connAttempts: _defaultConnAttempts,
		connTimeout:  _defaultConnTimeout,
		Container:    container,
	}

	for _, opt := range opts {
		opt(c)
	}

	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("AzBlobClient - New - azblob.NewClientFromConnectionString: %w", err)
	}
	c.Client = client

	for attempt := 1; ; attempt++ {
		err = c.ensureContainer(ctx)
		if err == nil {
			return c, nil
		}
		if attempt >= c.connAttempts {
			return nil, fmt.Errorf("AzBlobClient - New - container %q unreachable after %d attempts: %w", container, attempt, err)
		}

		log.Printf("Azure container %q is not reachable yet, attempt %d/%d: %v", container, attempt, c.connAttempts, err)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("AzBlobClient - New: %w", ctx.Err())
		case <-time.After(c.connTimeout):
		}
	}
}

func (c *AzBlobClient) ensureContainer(ctx context.Context) error {
	_, err := c.Client.CreateContainer(ctx, c.Container, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return fmt.Errorf("AzBlobClient - c.Client.CreateContainer: %w", err)
	}

	return nil
}
