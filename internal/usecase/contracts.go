package usecase

import (
	"context"
	"time"

	"github.com/andreyxaxa/ubl-sender/internal/entity"
	"github.com/google/uuid"
)

type (
	DeliveryUseCase interface {
		ScheduleDelivery(ctx context.Context, data []byte, customID *string) (*entity.FileDelivery, error)
		GetByID(ctx context.Context, id uuid.UUID) (*entity.FileDelivery, error)
		// Deliver is safe to call more than once per record.
		Deliver(ctx context.Context, id uuid.UUID) error
		Reconcile(ctx context.Context) (int, error)
	}

	OutboxUseCase interface {
		ClaimPendingEvents(ctx context.Context, limit, maxRetries int) ([]*entity.OutboxEvent, error)
		MarkAsProcessedBatch(ctx context.Context, events []*entity.OutboxEvent) error
		IncrementRetryCountBatch(ctx context.Context, events []*entity.OutboxEvent) error
		MarkMaxRetriesAsFailed(ctx context.Context, maxRetries int) error
		ResetStaleProcessing(ctx context.Context, staleAfter time.Duration) error
		CleanupOutbox(ctx context.Context, retention time.Duration) error
	}

	FilenameUseCase interface {
		Derive(docType entity.DocumentType, taxpayerID, documentID string) (string, error)
	}
)
