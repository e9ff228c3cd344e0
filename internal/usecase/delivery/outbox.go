package delivery

import (
	"context"
	"fmt"
	"time"

	"github.com/andreyxaxa/ubl-sender/internal/entity"
	"github.com/andreyxaxa/ubl-sender/internal/metrics"
)

// ClaimPendingEvents locks due events and marks them processing in one transaction.
func (uc *UseCase) ClaimPendingEvents(ctx context.Context, limit, maxRetries int) ([]*entity.OutboxEvent, error) {
	var events []*entity.OutboxEvent

	err := uc.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error

		events, err = uc.outboxRepo.GetPendingEvents(ctx, limit, maxRetries, uc.now())
		if err != nil {
			return fmt.Errorf("UseCase - ClaimPendingEvents - uc.outboxRepo.GetPendingEvents: %w", err)
		}
		if len(events) == 0 {
			return nil
		}

		err = uc.outboxRepo.MarkAsProcessingBatch(ctx, eventIDs(events))
		if err != nil {
			return fmt.Errorf("UseCase - ClaimPendingEvents - uc.outboxRepo.MarkAsProcessingBatch: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("UseCase - ClaimPendingEvents - uc.transactor.WithinTransaction: %w", err)
	}

	for _, event := range events {
		event.Status = entity.OutboxProcessing
	}

	return events, nil
}

func (uc *UseCase) MarkAsProcessedBatch(ctx context.Context, events []*entity.OutboxEvent) error {
	err := uc.outboxRepo.MarkAsProcessedBatch(ctx, eventIDs(events))
	if err != nil {
		return fmt.Errorf("UseCase - MarkAsProcessedBatch - uc.outboxRepo.MarkAsProcessedBatch: %w", err)
	}

	metrics.OutboxPublishedTotal.Add(float64(len(events)))

	return nil
}

func (uc *UseCase) IncrementRetryCountBatch(ctx context.Context, events []*entity.OutboxEvent) error {
	metrics.OutboxPublishFailedTotal.Add(float64(len(events)))

	err := uc.outboxRepo.IncrementRetryCountBatch(ctx, eventIDs(events))
	if err != nil {
		return fmt.Errorf("UseCase - IncrementRetryCountBatch - uc.outboxRepo.IncrementRetryCountBatch: %w", err)
	}

	return nil
}

func (uc *UseCase) MarkMaxRetriesAsFailed(ctx context.Context, maxRetries int) error {
	count, err := uc.outboxRepo.MarkMaxRetriesAsFailed(ctx, maxRetries)
	if err != nil {
		return fmt.Errorf("UseCase - MarkMaxRetriesAsFailed - uc.outboxRepo.MarkMaxRetriesAsFailed: %w", err)
	}

	if count > 0 {
		uc.logger.Warn("outbox events marked failed, count = %d", count)
	}

	return nil
}

func (uc *UseCase) ResetStaleProcessing(ctx context.Context, staleAfter time.Duration) error {
	count, err := uc.outboxRepo.ResetStaleProcessing(ctx, uc.now().Add(-staleAfter))
	if err != nil {
		return fmt.Errorf("UseCase - ResetStaleProcessing - uc.outboxRepo.ResetStaleProcessing: %w", err)
	}

	if count > 0 {
		uc.logger.Warn("stale processing outbox events returned to pending, count = %d", count)
	}

	return nil
}

func (uc *UseCase) CleanupOutbox(ctx context.Context, retention time.Duration) error {
	count, err := uc.outboxRepo.DeleteOldProcessedAndFailed(ctx, uc.now().Add(-retention))
	if err != nil {
		return fmt.Errorf("UseCase - CleanupOutbox - uc.outboxRepo.DeleteOldProcessedAndFailed: %w", err)
	}

	if count > 0 {
		uc.logger.Info("deleted old events, count = %d", count)
	}

	return nil
}
