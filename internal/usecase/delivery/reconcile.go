package delivery

import (
	"context"
	"errors"
	"fmt"
)

// Reconcile re-triggers deliveries stuck in scheduled or delivering with no
// live outbox event, e.g. after the relay gave up or a worker died mid-send.
func (uc *UseCase) Reconcile(ctx context.Context) (int, error) {
	now := uc.now()
	before := now.Add(-uc.settings.ReconcileGracePeriod)

	stale, err := uc.deliveryRepo.ListStale(ctx, before, uc.settings.ReconcileBatchSize)
	if err != nil {
		return 0, fmt.Errorf("UseCase - Reconcile - uc.deliveryRepo.ListStale: %w", err)
	}

	var (
		count   int
		errList []error
	)

	for _, delivery := range stale {
		var reset bool

		err := uc.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
			var err error

			// перепроверяем условие, запись могли взять в работу
			reset, err = uc.deliveryRepo.ResetStale(ctx, delivery.ID, before, now)
			if err != nil {
				return fmt.Errorf("uc.deliveryRepo.ResetStale: %w", err)
			}
			if !reset {
				return nil
			}

			event := uc.createOutboxEvent(delivery.ID, now, 0)
			if err := uc.outboxRepo.Create(ctx, event); err != nil {
				return fmt.Errorf("uc.outboxRepo.Create: %w", err)
			}

			return nil
		})
		if err != nil {
			errList = append(errList, fmt.Errorf("UseCase - Reconcile - %s: %w", delivery.ID, err))
			continue
		}

		if reset {
			count++
		}
	}

	if count > 0 {
		uc.logger.Info("stale deliveries re-triggered, count = %d", count)
	}

	return count, errors.Join(errList...)
}
