package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/andreyxaxa/ubl-sender/config"
	kafkactrl "github.com/andreyxaxa/ubl-sender/internal/controller/kafka"
	"github.com/andreyxaxa/ubl-sender/internal/controller/restapi"
	"github.com/andreyxaxa/ubl-sender/internal/controller/restapi/v1/validate"
	"github.com/andreyxaxa/ubl-sender/internal/controller/worker/outbox"
	"github.com/andreyxaxa/ubl-sender/internal/controller/worker/reconcile"
	infrakafka "github.com/andreyxaxa/ubl-sender/internal/infrastructure/kafka"
	"github.com/andreyxaxa/ubl-sender/internal/infrastructure/sunat"
	"github.com/andreyxaxa/ubl-sender/internal/infrastructure/ubl"
	"github.com/andreyxaxa/ubl-sender/internal/repo"
	"github.com/andreyxaxa/ubl-sender/internal/repo/persistent"
	"github.com/andreyxaxa/ubl-sender/internal/usecase/delivery"
	"github.com/andreyxaxa/ubl-sender/internal/usecase/filename"
	"github.com/andreyxaxa/ubl-sender/migrations"
	"github.com/andreyxaxa/ubl-sender/pkg/azblobclient"
	"github.com/andreyxaxa/ubl-sender/pkg/httpserver"
	"github.com/andreyxaxa/ubl-sender/pkg/kafka/consumer"
	"github.com/andreyxaxa/ubl-sender/pkg/kafka/producer"
	"github.com/andreyxaxa/ubl-sender/pkg/logger"
	"github.com/andreyxaxa/ubl-sender/pkg/postgres"
	"github.com/andreyxaxa/ubl-sender/pkg/s3client"
)

const _multipartOverhead = 64 * 1024

func Run(cfg *config.Config) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Logger
	l := logger.New(cfg.Log.Level)

	// Repository

	// blob storage
	fileRepo, err := newFileRepo(ctx, cfg)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - newFileRepo: %w", err))
	}

	// postgres
	if cfg.PG.Migrate {
		version, dirty, err := migrations.Up(cfg.PG.URL)
		if err != nil {
			l.Fatal(fmt.Errorf("app - Run - migrations.Up: %w", err))
		}
		l.Info("migrations applied, version = %d, dirty = %t", version, dirty)
	}

	pg, err := postgres.New(cfg.PG.URL,
		postgres.MaxPoolSize(cfg.PG.PoolMax),
		postgres.ConnMaxLifetime(cfg.PG.ConnMaxLifetime),
	)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - postgres.New: %w", err))
	}
	defer pg.Close()

	// Use-Case

	// filename use-case
	filenameUseCase, err := filename.New(cfg.Filename.InvoiceSeriesPattern, cfg.Filename.ReceiptSeriesPattern)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - filename.New: %w", err))
	}

	// delivery use-case
	deliveryUseCase := delivery.New(
		fileRepo,
		persistent.NewFileDeliveryRepo(pg),
		persistent.NewOutboxRepo(pg),
		pg,
		ubl.New(),
		filenameUseCase,
		sunat.New(cfg.SUNAT.Username, cfg.SUNAT.Password, cfg.SUNAT.Timeout),
		delivery.Settings{
			ServerURL:            cfg.Delivery.ServerURL,
			MessageDelay:         cfg.MessageDelay(),
			UploadTimeout:        cfg.Blob.UploadTimeout,
			MaxAttempts:          cfg.Delivery.MaxAttempts,
			RetryDelay:           cfg.Delivery.RetryDelay,
			ReconcileGracePeriod: cfg.Reconcile.GracePeriod,
			ReconcileBatchSize:   cfg.Reconcile.BatchSize,
		},
		l,
	)

	// Kafka Producer
	kafkaProducer, err := producer.New(ctx, cfg.Kafka.Brokers,
		producer.WriteTimeout(cfg.Kafka.WriteTimeout),
		producer.BatchTimeout(cfg.Kafka.BatchTimeout),
		producer.MaxAttempts(cfg.Kafka.MaxAttempts),
		producer.ReplicationFactor(cfg.Kafka.ReplicationFactor),
	)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - producer.New: %w", err))
	}

	if cfg.Kafka.CreateTopic {
		err = kafkaProducer.EnsureTopic(ctx, cfg.Kafka.Topic, cfg.Kafka.Partitions)
		if err != nil {
			l.Fatal(fmt.Errorf("app - Run - kafkaProducer.EnsureTopic: %w", err))
		}
	}

	// Outbox Relay Worker
	outboxRelayWorker := outbox.New(
		deliveryUseCase,
		infrakafka.NewEventProducer(kafkaProducer, cfg.Kafka.Topic),
		l,
		outbox.Settings{
			PollInterval:        cfg.OutboxRelay.PollInterval,
			CleanupInterval:     cfg.OutboxRelay.CleanupInterval,
			MarkFailedInterval:  cfg.OutboxRelay.MarkFailedInterval,
			ProcessBatchTimeout: cfg.OutboxRelay.ProcessBatchTimeout,
			StaleProcessing:     cfg.OutboxRelay.StaleProcessing,
			Retention:           cfg.OutboxRelay.Retention,
			BatchSize:           cfg.OutboxRelay.BatchSize,
			MaxRetries:          cfg.OutboxRelay.MaxRetries,
		},
	)

	// Reconcile Worker
	reconcileWorker := reconcile.New(deliveryUseCase, l, cfg.Reconcile.Interval, cfg.Reconcile.Timeout)

	// Kafka Consumer
	kafkaConsumer, err := consumer.New(ctx, cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.Topic)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - consumer.New: %w", err))
	}

	workers := cfg.KafkaController.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	// Kafka as Controller
	kafkaController := kafkactrl.New(
		deliveryUseCase,
		infrakafka.NewEventConsumer(kafkaConsumer),
		l,
		cfg.KafkaController.CommitTimeout,
		cfg.KafkaController.ProcessTimeout,
		workers,
	)

	// HTTP Server
	httpServer := httpserver.New(l,
		httpserver.Port(cfg.HTTP.Port),
		httpserver.Prefork(cfg.HTTP.UsePreforkMode),
		httpserver.ReadTimeout(cfg.HTTP.ReadTimeout),
		httpserver.WriteTimeout(cfg.HTTP.WriteTimeout),
		// multipart overhead on top of the largest accepted document
		httpserver.BodyLimit(int(validate.MaxFileSize)+_multipartOverhead),
	)
	restapi.NewRouter(httpServer.App, cfg, deliveryUseCase, l)

	// Start Components
	err = outboxRelayWorker.Start(ctx)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - outboxRelayWorker.Start: %w", err))
	}
	err = reconcileWorker.Start(ctx)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - reconcileWorker.Start: %w", err))
	}
	err = kafkaController.Start(ctx)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - kafkaController.Start: %w", err))
	}
	httpServer.Start()

	// Waiting Signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		l.Info("app - Run - signal: %s", s.String())
	case err = <-httpServer.Notify():
		l.Error(fmt.Errorf("app - Run - httpServer.Notify: %w", err))
	}

	// Shutdown
	err = httpServer.Shutdown()
	if err != nil {
		l.Error(fmt.Errorf("app - Run - httpServer.Shutdown: %w", err))
	}

	orlShutdownCtx, orlShutdownCancel := context.WithTimeout(ctx, cfg.OutboxRelay.ShutdownTimeout)
	defer orlShutdownCancel()
	err = outboxRelayWorker.Shutdown(orlShutdownCtx)
	if err != nil {
		l.Error(fmt.Errorf("app - Run - outboxRelayWorker.Shutdown: %w", err))
	}

	rcShutdownCtx, rcShutdownCancel := context.WithTimeout(ctx, cfg.OutboxRelay.ShutdownTimeout)
	defer rcShutdownCancel()
	err = reconcileWorker.Shutdown(rcShutdownCtx)
	if err != nil {
		l.Error(fmt.Errorf("app - Run - reconcileWorker.Shutdown: %w", err))
	}

	kcShutdownCtx, kcShutdownCancel := context.WithTimeout(ctx, cfg.KafkaController.ShutdownTimeout)
	defer kcShutdownCancel()
	err = kafkaController.Shutdown(kcShutdownCtx)
	if err != nil {
		l.Error(fmt.Errorf("app - Run - kafkaController.Shutdown: %w", err))
	}
}

func newFileRepo(ctx context.Context, cfg *config.Config) (repo.FileRepo, error) {
	switch cfg.Blob.Backend {
	case config.BlobBackendAzure:
		azCtx, azCancel := context.WithTimeout(ctx, cfg.Azure.InitTimeout)
		defer azCancel()

		azc, err := azblobclient.New(azCtx, cfg.Azure.ConnectionString, cfg.Azure.Container)
		if err != nil {
			return nil, fmt.Errorf("azblobclient.New: %w", err)
		}

		return persistent.NewAzureFileRepo(azc), nil
	default:
		s3Ctx, s3Cancel := context.WithTimeout(ctx, cfg.S3.CfgLoadTimeout)
		defer s3Cancel()

		s3c, err := s3client.New(s3Ctx,
			cfg.S3.Endpoint, cfg.S3.AccessKey, cfg.S3.SecretKey, cfg.S3.Bucket,
			s3client.Region(cfg.S3.Region),
		)
		if err != nil {
			return nil, fmt.Errorf("s3client.New: %w", err)
		}

		return persistent.NewS3FileRepo(s3c), nil
	}
}
