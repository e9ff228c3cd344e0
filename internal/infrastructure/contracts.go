package infrastructure

import (
	"context"

	"github.com/andreyxaxa/ubl-sender/internal/dto"
	"github.com/andreyxaxa/ubl-sender/internal/entity"
)

type (
	EventsSender interface {
		SendEvents(ctx context.Context, events []*entity.OutboxEvent) error
		Close() error
	}

	DocumentReader interface {
		Read(data []byte) (dto.Document, error)
	}

	BillSender interface {
		Send(ctx context.Context, serverURL, filename string, docType entity.DocumentType, data []byte) (dto.SendResult, error)
	}
)
