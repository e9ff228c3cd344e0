package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	kafkapc "github.com/andreyxaxa/ubl-sender/internal/infrastructure/kafka"
	"github.com/andreyxaxa/ubl-sender/internal/usecase"
	"github.com/andreyxaxa/ubl-sender/pkg/logger"
	"github.com/segmentio/kafka-go"
)

const _readErrorBackoff = time.Second

type EventReader interface {
	ReadEvent(ctx context.Context) (kafka.Message, error)
	CommitEvent(ctx context.Context, event kafka.Message) error
	Close() error
}

type KafkaController struct {
	delivery usecase.DeliveryUseCase
	ec       EventReader
	logger   logger.Interface

	commitTimeout  time.Duration
	processTimeout time.Duration

	workers int
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	started atomic.Bool
}

func New(
	delivery usecase.DeliveryUseCase,
	ec EventReader,
	l logger.Interface,
	commitTimeout time.Duration,
	processTimeout time.Duration,
	workers int,
) *KafkaController {
	return &KafkaController{
		delivery:       delivery,
		ec:             ec,
		logger:         l,
		commitTimeout:  commitTimeout,
		processTimeout: processTimeout,
		workers:        workers,
	}
}

func (c *KafkaController) Start(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return fmt.Errorf("KafkaController - Start - controller already started")
	}

	c.ctx, c.cancel = context.WithCancel(ctx)

	// канал для задач
	tasks := make(chan kafka.Message, c.workers*2)

	// запускаем воркеры
	for i := 0; i < c.workers; i++ {
		c.wg.Add(1)
		go c.worker(tasks)
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer close(tasks)

		for {
			select {
			case <-c.ctx.Done():
				return
			default:
				// 1. читаем из кафки
				event, err := c.ec.ReadEvent(c.ctx)
				if err != nil {
					if errors.Is(err, context.Canceled) {
						continue
					}
					c.logger.Error(err, "KafkaController - Start - c.ec.ReadEvent")

					// брокер недоступен - не крутимся вхолостую
					select {
					case <-time.After(_readErrorBackoff):
					case <-c.ctx.Done():
						return
					}
					continue
				}

				// 2. отправляем в канал для воркеров
				select {
				case tasks <- event:
				case <-c.ctx.Done():
					return
				}
			}
		}
	}()

	return nil
}

func (c *KafkaController) processDelivery(event kafka.Message) error {
	trigger, err := kafkapc.ParseTrigger(event)
	if err != nil {
		// битое сообщение не станет лучше, коммитим и идем дальше
		c.logger.Error(err, "KafkaController - processDelivery - kafkapc.ParseTrigger")
		return nil
	}

	// 1. ждем, пока сообщение станет видимым
	if err := c.waitUntil(trigger.DeliverAt); err != nil {
		return fmt.Errorf("KafkaController - processDelivery - c.waitUntil: %w", err)
	}

	// 2. отправляем документ
	processCtx, processCancel := context.WithTimeout(c.ctx, c.processTimeout)
	defer processCancel()

	err = c.delivery.Deliver(processCtx, trigger.DeliveryID)
	if err != nil {
		return fmt.Errorf("KafkaController - processDelivery - c.delivery.Deliver: %w", err)
	}

	return nil
}

func (c *KafkaController) waitUntil(t time.Time) error {
	d := time.Until(t)
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	}
}

func (c *KafkaController) worker(tasks <-chan kafka.Message) {
	defer c.wg.Done()

	// читаем канал, пока не закроется
	for event := range tasks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					c.logger.Error(fmt.Errorf("panic %v", r), "KafkaController - worker - panic")
				}
			}()

			// выполняем обработку
			err := c.processDelivery(event)
			if err != nil {
				// без коммита: сообщение перечитается после ребаланса, запись подхватит сверка
				c.logger.Error(err, "KafkaController - worker - c.processDelivery")

				return
			}

			// коммитим после успешной обработки
			commitCtx, commitCancel := context.WithTimeout(context.WithoutCancel(c.ctx), c.commitTimeout)
			err = c.ec.CommitEvent(commitCtx, event)
			commitCancel()
			if err != nil {
				c.logger.Error(err, "KafkaController - worker - c.ec.CommitEvent")
			}
		}()
	}
}

func (c *KafkaController) Shutdown(ctx context.Context) error {
	if !c.started.Load() {
		return nil
	}

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})

	go func() {
		c.wg.Wait()
		if err := c.ec.Close(); err != nil {
			c.logger.Error(err, "KafkaController - Shutdown - c.ec.Close")
		}
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("KafkaController - Shutdown: %w", ctx.Err())
	}
}
