package delivery

import (
	"context"
	"errors"
	"fmt"

	"github.com/andreyxaxa/ubl-sender/internal/entity"
	"github.com/andreyxaxa/ubl-sender/internal/metrics"
	"github.com/andreyxaxa/ubl-sender/pkg/types/errs"
	"github.com/google/uuid"
)

// Deliver sends one scheduled document. A record that is not in
// scheduled state is left untouched, so redelivered triggers are no-ops.
func (uc *UseCase) Deliver(ctx context.Context, id uuid.UUID) error {
	// 1. забираем запись себе
	delivery, claimed, err := uc.deliveryRepo.Claim(ctx, id, uc.now())
	if err != nil {
		return fmt.Errorf("UseCase - Deliver - uc.deliveryRepo.Claim: %w", err)
	}
	if !claimed {
		uc.skip(ctx, id)
		return nil
	}

	// результат нужно записать, даже если нас уже останавливают
	recordCtx := context.WithoutCancel(ctx)

	// 2. скачиваем файл
	data, err := uc.fileRepo.Download(ctx, delivery.FileID)
	if err != nil {
		cause := fmt.Errorf("UseCase - Deliver - uc.fileRepo.Download: %w: %w", errs.ErrStorage, err)
		if interrupted(ctx) {
			return uc.release(recordCtx, delivery, cause)
		}
		return uc.retryLater(recordCtx, delivery, cause)
	}

	// 3. отправляем
	res, err := uc.sender.Send(ctx, delivery.ServerURL, delivery.Filename, delivery.DocumentType, data)
	switch {
	case err == nil:
		var ticket *string
		if res.Ticket != "" {
			ticket = &res.Ticket
		}
		if res.CDRError != "" {
			uc.logger.Warn("UseCase - Deliver - %s accepted with %s", delivery.Filename, res.CDRError)
		}

		err = uc.deliveryRepo.MarkDelivered(recordCtx, delivery.ID, ticket, uc.now())
		if err != nil {
			return fmt.Errorf("UseCase - Deliver - uc.deliveryRepo.MarkDelivered: %w", err)
		}
		metrics.DeliveriesTotal.WithLabelValues(metrics.OutcomeDelivered).Inc()

		return nil
	case errors.Is(err, errs.ErrDeliveryRejected):
		uc.logger.Warn("UseCase - Deliver - %s rejected: %v", delivery.Filename, err)

		err = uc.deliveryRepo.MarkFailed(recordCtx, delivery.ID, err.Error(), uc.now())
		if err != nil {
			return fmt.Errorf("UseCase - Deliver - uc.deliveryRepo.MarkFailed: %w", err)
		}
		metrics.DeliveriesTotal.WithLabelValues(metrics.OutcomeRejected).Inc()

		return nil
	case interrupted(ctx):
		return uc.release(recordCtx, delivery, fmt.Errorf("UseCase - Deliver - uc.sender.Send: %w", err))
	default:
		return uc.retryLater(recordCtx, delivery, fmt.Errorf("UseCase - Deliver - uc.sender.Send: %w", err))
	}
}

// interrupted is true when the worker was stopped, as opposed to the call timing out.
func interrupted(ctx context.Context) bool {
	return errors.Is(ctx.Err(), context.Canceled)
}

// release reschedules a delivery cut short by shutdown without spending an attempt.
func (uc *UseCase) release(ctx context.Context, delivery *entity.FileDelivery, cause error) error {
	now := uc.now()

	err := uc.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := uc.deliveryRepo.Release(ctx, delivery.ID, cause.Error(), now); err != nil {
			return fmt.Errorf("UseCase - release - uc.deliveryRepo.Release: %w", err)
		}

		event := uc.createOutboxEvent(delivery.ID, now, uc.settings.MessageDelay)
		if err := uc.outboxRepo.Create(ctx, event); err != nil {
			return fmt.Errorf("UseCase - release - uc.outboxRepo.Create: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("UseCase - release - uc.transactor.WithinTransaction: %w", err)
	}

	uc.logger.Info("UseCase - release - %s interrupted, rescheduled: %v", delivery.ID, cause)
	metrics.DeliveriesTotal.WithLabelValues(metrics.OutcomeRescheduled).Inc()

	return nil
}

// retryLater puts the record back to scheduled with a delayed trigger, or
// fails it once the attempts are used up.
func (uc *UseCase) retryLater(ctx context.Context, delivery *entity.FileDelivery, cause error) error {
	now := uc.now()

	if delivery.Attempts >= uc.settings.MaxAttempts {
		uc.logger.Error(cause, "UseCase - retryLater - attempts exhausted for %s", delivery.ID)

		err := uc.deliveryRepo.MarkFailed(ctx, delivery.ID, cause.Error(), now)
		if err != nil {
			return fmt.Errorf("UseCase - retryLater - uc.deliveryRepo.MarkFailed: %w", err)
		}
		metrics.DeliveriesTotal.WithLabelValues(metrics.OutcomeFailed).Inc()

		return nil
	}

	err := uc.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := uc.deliveryRepo.Reschedule(ctx, delivery.ID, cause.Error(), now); err != nil {
			return fmt.Errorf("UseCase - retryLater - uc.deliveryRepo.Reschedule: %w", err)
		}

		event := uc.createOutboxEvent(delivery.ID, now, uc.settings.RetryDelay)
		if err := uc.outboxRepo.Create(ctx, event); err != nil {
			return fmt.Errorf("UseCase - retryLater - uc.outboxRepo.Create: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("UseCase - retryLater - uc.transactor.WithinTransaction: %w", err)
	}

	uc.logger.Warn("UseCase - retryLater - %s rescheduled after attempt %d: %v", delivery.ID, delivery.Attempts, cause)
	metrics.DeliveriesTotal.WithLabelValues(metrics.OutcomeRescheduled).Inc()

	return nil
}

func (uc *UseCase) skip(ctx context.Context, id uuid.UUID) {
	metrics.DeliveriesTotal.WithLabelValues(metrics.OutcomeSkipped).Inc()

	delivery, err := uc.deliveryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, errs.ErrRecordNotFound) {
			uc.logger.Warn("UseCase - Deliver - trigger for unknown delivery %s", id)
			return
		}
		uc.logger.Error(err, "UseCase - Deliver - uc.deliveryRepo.GetByID")
		return
	}

	uc.logger.Debug("UseCase - Deliver - %s already %s, skipping", id, delivery.DeliveryStatus)
}
