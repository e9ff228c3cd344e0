package persistent

import (
	"context"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/andreyxaxa/ubl-sender/pkg/azblobclient"
)

type AzureFileRepo struct {
	*azblobclient.AzBlobClient
}

func NewAzureFileRepo(c *azblobclient.AzBlobClient) *AzureFileRepo {
	return &AzureFileRepo{c}
}

func (r *AzureFileRepo) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := r.Client.UploadBuffer(ctx, r.Container, key, data, &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentType: &contentType,
		},
	})
	if err != nil {
		return "", fmt.Errorf("AzureFileRepo - Upload - r.Client.UploadBuffer: %w", err)
	}

	return key, nil
}

func (r *AzureFileRepo) Download(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := r.Client.DownloadStream(ctx, r.Container, fileID, nil)
	if err != nil {
		return nil, fmt.Errorf("AzureFileRepo - Download - r.Client.DownloadStream: %w", err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("AzureFileRepo - Download - io.ReadAll: %w", err)
	}

	return b, nil
}
