package repo

import (
	"context"
	"time"

	"github.com/andreyxaxa/ubl-sender/internal/entity"
	"github.com/google/uuid"
)

type (
	// FileRepo is the blob store. Upload returns the opaque handle later passed to Download.
	FileRepo interface {
		Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
		Download(ctx context.Context, fileID string) ([]byte, error)
	}

	FileDeliveryRepo interface {
		Create(ctx context.Context, delivery *entity.FileDelivery) error
		GetByID(ctx context.Context, id uuid.UUID) (*entity.FileDelivery, error)
		// Claim moves a scheduled record to delivering and bumps attempts.
		// It returns false when the record is not in scheduled state.
		Claim(ctx context.Context, id uuid.UUID, now time.Time) (*entity.FileDelivery, bool, error)
		MarkDelivered(ctx context.Context, id uuid.UUID, ticket *string, now time.Time) error
		MarkFailed(ctx context.Context, id uuid.UUID, reason string, now time.Time) error
		Reschedule(ctx context.Context, id uuid.UUID, reason string, now time.Time) error
		// Release reschedules a delivering record and gives back the attempt Claim took.
		Release(ctx context.Context, id uuid.UUID, reason string, now time.Time) error
		ListStale(ctx context.Context, before time.Time, limit int) ([]*entity.FileDelivery, error)
		ResetStale(ctx context.Context, id uuid.UUID, before, now time.Time) (bool, error)
	}

	OutboxRepo interface {
		Create(ctx context.Context, event *entity.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit, maxRetries int, now time.Time) ([]*entity.OutboxEvent, error)
		MarkAsProcessingBatch(ctx context.Context, IDs uuid.UUIDs) error
		MarkAsProcessedBatch(ctx context.Context, IDs uuid.UUIDs) error
		IncrementRetryCountBatch(ctx context.Context, IDs uuid.UUIDs) error
		MarkMaxRetriesAsFailed(ctx context.Context, maxRetries int) (int64, error)
		ResetStaleProcessing(ctx context.Context, before time.Time) (int64, error)
		DeleteOldProcessedAndFailed(ctx context.Context, before time.Time) (int64, error)
	}

	Transactor interface {
		WithinTransaction(ctx context.Context, f func(ctx context.Context) error) error
	}
)
