// Package reconcile re-triggers deliveries that lost their outbox event.
package reconcile

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andreyxaxa/ubl-sender/internal/usecase"
	"github.com/andreyxaxa/ubl-sender/pkg/logger"
)

type Sweeper struct {
	delivery usecase.DeliveryUseCase
	logger   logger.Interface

	interval time.Duration
	timeout  time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	started atomic.Bool
}

func New(delivery usecase.DeliveryUseCase, l logger.Interface, interval, timeout time.Duration) *Sweeper {
	return &Sweeper{
		delivery: delivery,
		logger:   l,
		interval: interval,
		timeout:  timeout,
	}
}

func (s *Sweeper) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return fmt.Errorf("Sweeper - Start - already started")
	}

	s.ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()

	return nil
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	_, err := s.delivery.Reconcile(ctx)
	if err != nil {
		s.logger.Error(err, "Sweeper - sweep - s.delivery.Reconcile")
	}
}

func (s *Sweeper) Shutdown(ctx context.Context) error {
	if !s.started.Load() {
		return nil
	}

	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("Sweeper - Shutdown: %w", ctx.Err())
	}
}
