package outbox

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andreyxaxa/ubl-sender/internal/infrastructure"
	"github.com/andreyxaxa/ubl-sender/internal/usecase"
	"github.com/andreyxaxa/ubl-sender/pkg/logger"
)

type OutboxRelay struct {
	outbox usecase.OutboxUseCase
	es     infrastructure.EventsSender
	logger logger.Interface

	pollInterval        time.Duration
	cleanupInterval     time.Duration
	markFailedInterval  time.Duration
	processBatchTimeout time.Duration
	staleProcessing     time.Duration
	retention           time.Duration
	batchSize           int
	maxRetries          int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	started atomic.Bool
}

type Settings struct {
	PollInterval        time.Duration
	CleanupInterval     time.Duration
	MarkFailedInterval  time.Duration
	ProcessBatchTimeout time.Duration
	StaleProcessing     time.Duration
	Retention           time.Duration
	BatchSize           int
	MaxRetries          int
}

func New(
	outbox usecase.OutboxUseCase,
	es infrastructure.EventsSender,
	l logger.Interface,
	s Settings,
) *OutboxRelay {
	return &OutboxRelay{
		outbox:              outbox,
		es:                  es,
		logger:              l,
		pollInterval:        s.PollInterval,
		cleanupInterval:     s.CleanupInterval,
		markFailedInterval:  s.MarkFailedInterval,
		processBatchTimeout: s.ProcessBatchTimeout,
		staleProcessing:     s.StaleProcessing,
		retention:           s.Retention,
		batchSize:           s.BatchSize,
		maxRetries:          s.MaxRetries,
	}
}

func (r *OutboxRelay) Start(ctx context.Context) error {
	if !r.started.CompareAndSwap(false, true) {
		return fmt.Errorf("OutboxRelay - Start - worker already started")
	}

	r.ctx, r.cancel = context.WithCancel(ctx)

	// 1. воркер для отправки триггеров в очередь: за тик выгребаем весь накопившийся хвост
	r.worker(r.pollInterval, func() {
		for r.ctx.Err() == nil {
			batchCtx, batchCancel := context.WithTimeout(r.ctx, r.processBatchTimeout)
			full := r.processEventsBatch(batchCtx)
			batchCancel()

			if !full {
				return
			}
		}
	})

	// 2. воркер для пометки failed и возврата зависших processing
	r.worker(r.markFailedInterval, func() {
		err := r.outbox.MarkMaxRetriesAsFailed(r.ctx, r.maxRetries)
		if err != nil {
			r.logger.Error(err, "OutboxRelay - Start - worker - r.outbox.MarkMaxRetriesAsFailed")
		}

		err = r.outbox.ResetStaleProcessing(r.ctx, r.staleProcessing)
		if err != nil {
			r.logger.Error(err, "OutboxRelay - Start - worker - r.outbox.ResetStaleProcessing")
		}
	})

	// 3. воркер очистки failed/processed из outbox
	r.worker(r.cleanupInterval, func() {
		err := r.outbox.CleanupOutbox(r.ctx, r.retention)
		if err != nil {
			r.logger.Error(err, "OutboxRelay - Start - worker - r.outbox.CleanupOutbox")
		}
	})

	return nil
}

// processEventsBatch publishes one batch of due events. It reports whether the
// batch was full and published, meaning more due events may be waiting.
func (r *OutboxRelay) processEventsBatch(ctx context.Context) bool {
	// 1. забираем созревшие pending события, сразу помечая их processing
	events, err := r.outbox.ClaimPendingEvents(ctx, r.batchSize, r.maxRetries)
	if err != nil {
		r.logger.Error(err, "OutboxRelay - processEventsBatch - r.outbox.ClaimPendingEvents")

		return false
	}
	if len(events) == 0 {
		return false
	}

	// 2. пробуем их отправить
	err = r.es.SendEvents(ctx, events)
	if err != nil {
		r.logger.Error(err, "OutboxRelay - processEventsBatch - r.es.SendEvents")
		// 2.1 если не получилось - увеличиваем счетчик ретраев + возвращаем статус в pending
		incErr := r.outbox.IncrementRetryCountBatch(context.WithoutCancel(ctx), events)
		if incErr != nil {
			r.logger.Error(incErr, "OutboxRelay - processEventsBatch - r.outbox.IncrementRetryCountBatch")
		}

		return false
	}

	// 3. если удалось отправить - помечаем как processed
	err = r.outbox.MarkAsProcessedBatch(context.WithoutCancel(ctx), events)
	if err != nil {
		r.logger.Error(err, "OutboxRelay - processEventsBatch - r.outbox.MarkAsProcessedBatch")

		return false
	}

	r.logger.Debug("OutboxRelay - processEventsBatch - published %d trigger(s)", len(events))

	return len(events) == r.batchSize
}

func (r *OutboxRelay) worker(interval time.Duration, task func()) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-r.ctx.Done():
				return
			case <-ticker.C:
				task()
			}
		}
	}()
}

func (r *OutboxRelay) Shutdown(ctx context.Context) error {
	if !r.started.Load() {
		return nil
	}

	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})

	go func() {
		r.wg.Wait()
		if err := r.es.Close(); err != nil {
			r.logger.Error(err, "OutboxRelay - Shutdown - r.es.Close")
		}
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("OutboxRelay - Shutdown: %w", ctx.Err())
	}
}
