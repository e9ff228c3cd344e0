package config

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	BlobBackendS3    = "s3"
	BlobBackendAzure = "azure"
)

type (
	Config struct {
		HTTP            HTTP
		Log             Log
		PG              PG
		Blob            Blob
		S3              S3
		Azure           Azure
		OutboxRelay     OutboxRelay
		Reconcile       Reconcile
		Kafka           Kafka
		KafkaController KafkaController
		Delivery        Delivery
		Filename        Filename
		SUNAT           SUNAT
		Swagger         Swagger
	}

	HTTP struct {
		Port           string        `env:"HTTP_PORT,required"`
		UsePreforkMode bool          `env:"HTTP_USE_PREFORK_MODE" envDefault:"false"`
		ReadTimeout    time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
		WriteTimeout   time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"15s"`
	}

	Log struct {
		Level string `env:"LOG_LEVEL,required"`
	}

	PG struct {
		PoolMax         int           `env:"PG_POOL_MAX,required"`
		URL             string        `env:"PG_URL,required"`
		ConnMaxLifetime time.Duration `env:"PG_CONN_MAX_LIFETIME" envDefault:"1h"`
		Migrate         bool          `env:"PG_MIGRATE" envDefault:"true"`
	}

	Blob struct {
		Backend       string        `env:"BLOB_BACKEND" envDefault:"s3"` // s3, azure
		UploadTimeout time.Duration `env:"BLOB_UPLOAD_TIMEOUT" envDefault:"15s"`
	}

	S3 struct {
		Endpoint       string        `env:"S3_ENDPOINT"`
		AccessKey      string        `env:"S3_ACCESS_KEY"`
		SecretKey      string        `env:"S3_SECRET_KEY"`
		Bucket         string        `env:"S3_BUCKET"`
		Region         string        `env:"S3_REGION" envDefault:"garage"`
		CfgLoadTimeout time.Duration `env:"S3_LOAD_CFG_TIMEOUT" envDefault:"10s"`
	}

	Azure struct {
		ConnectionString string        `env:"AZURE_STORAGE_CONNECTION_STRING"`
		Container        string        `env:"AZURE_STORAGE_CONTAINER" envDefault:"documents"`
		InitTimeout      time.Duration `env:"AZURE_STORAGE_INIT_TIMEOUT" envDefault:"10s"`
	}

	Kafka struct {
		Brokers      []string      `env:"KAFKA_BROKERS,required"`
		GroupID      string        `env:"KAFKA_GROUP_ID,required"`
		Topic        string        `env:"KAFKA_TOPIC,required"` // queue the trigger messages go to
		WriteTimeout time.Duration `env:"KAFKA_WRITE_TIMEOUT" envDefault:"10s"`
		BatchTimeout time.Duration `env:"KAFKA_BATCH_TIMEOUT" envDefault:"50ms"`
		MaxAttempts  int           `env:"KAFKA_MAX_ATTEMPTS" envDefault:"3"`

		CreateTopic       bool `env:"KAFKA_CREATE_TOPIC" envDefault:"true"`
		Partitions        int  `env:"KAFKA_TOPIC_PARTITIONS" envDefault:"3"`
		ReplicationFactor int  `env:"KAFKA_TOPIC_REPLICATION_FACTOR" envDefault:"1"`
	}

	OutboxRelay struct {
		PollInterval        time.Duration `env:"OUTBOX_RELAY_POLL_INTERVAL" envDefault:"2s"`
		MarkFailedInterval  time.Duration `env:"OUTBOX_RELAY_MARK_FAILED_INTERVAL" envDefault:"2m"`
		CleanupInterval     time.Duration `env:"OUTBOX_RELAY_CLEANUP_INTERVAL" envDefault:"24h"`
		ProcessBatchTimeout time.Duration `env:"OUTBOX_RELAY_PROCESS_BATCH_TIMEOUT" envDefault:"15s"`
		ShutdownTimeout     time.Duration `env:"OUTBOX_RELAY_SHUTDOWN_TIMEOUT" envDefault:"5s"`
		StaleProcessing     time.Duration `env:"OUTBOX_RELAY_STALE_PROCESSING" envDefault:"5m"`
		Retention           time.Duration `env:"OUTBOX_RELAY_RETENTION" envDefault:"168h"`
		BatchSize           int           `env:"OUTBOX_RELAY_BATCH_SIZE" envDefault:"100"`
		MaxRetries          int           `env:"OUTBOX_RELAY_MAX_RETRIES" envDefault:"3"`
	}

	Reconcile struct {
		Interval    time.Duration `env:"RECONCILE_INTERVAL" envDefault:"1m"`
		GracePeriod time.Duration `env:"RECONCILE_GRACE_PERIOD" envDefault:"10m"`
		BatchSize   int           `env:"RECONCILE_BATCH_SIZE" envDefault:"100"`
		Timeout     time.Duration `env:"RECONCILE_TIMEOUT" envDefault:"30s"`
	}

	KafkaController struct {
		CommitTimeout   time.Duration `env:"KAFKA_CONTROLLER_COMMIT_TIMEOUT" envDefault:"2s"`
		ProcessTimeout  time.Duration `env:"KAFKA_CONTROLLER_PROCESS_TIMEOUT" envDefault:"60s"` // download, SOAP call and status update
		ShutdownTimeout time.Duration `env:"KAFKA_CONTROLLER_SHUTDOWN_TIMEOUT" envDefault:"5s"`
		Workers         int           `env:"KAFKA_CONTROLLER_WORKERS" envDefault:"0"` // 0 = runtime.NumCPU()
	}

	Delivery struct {
		ServerURL      string        `env:"DELIVERY_SERVER_URL"`
		MessageDelayMs int64         `env:"DELIVERY_MESSAGE_DELAY_MS" envDefault:"5000"`
		MaxAttempts    int           `env:"DELIVERY_MAX_ATTEMPTS" envDefault:"5"`
		RetryDelay     time.Duration `env:"DELIVERY_RETRY_DELAY" envDefault:"1m"`
	}

	Filename struct {
		InvoiceSeriesPattern string `env:"FILENAME_INVOICE_SERIES_PATTERN" envDefault:"^[Ff]"`
		ReceiptSeriesPattern string `env:"FILENAME_RECEIPT_SERIES_PATTERN" envDefault:"^[Bb]"`
	}

	SUNAT struct {
		URL      string        `env:"SUNAT_URL" envDefault:"https://e-beta.sunat.gob.pe/ol-ti-itcpfegem-beta/billService"`
		Username string        `env:"SUNAT_USERNAME"`
		Password string        `env:"SUNAT_PASSWORD"`
		Timeout  time.Duration `env:"SUNAT_TIMEOUT" envDefault:"30s"`
	}

	Swagger struct {
		Enabled bool `env:"SWAGGER_ENABLED" envDefault:"false"`
	}
)

func New() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	if cfg.Delivery.ServerURL == "" {
		cfg.Delivery.ServerURL = cfg.SUNAT.URL
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	return cfg, nil
}

// MessageDelay is the deferred visibility applied to every trigger message.
func (c *Config) MessageDelay() time.Duration {
	return time.Duration(c.Delivery.MessageDelayMs) * time.Millisecond
}

func (c *Config) validate() error {
	var errList []error

	if c.Delivery.MessageDelayMs < 0 {
		errList = append(errList, errors.New("DELIVERY_MESSAGE_DELAY_MS must be non-negative"))
	}
	if c.Delivery.MaxAttempts < 1 {
		errList = append(errList, errors.New("DELIVERY_MAX_ATTEMPTS must be at least 1"))
	}
	if c.Delivery.ServerURL == "" {
		errList = append(errList, errors.New("DELIVERY_SERVER_URL or SUNAT_URL is required"))
	}

	// a record still being sent must not look stale to the sweep
	if c.Reconcile.GracePeriod <= c.KafkaController.ProcessTimeout {
		errList = append(errList, fmt.Errorf("RECONCILE_GRACE_PERIOD (%s) must exceed KAFKA_CONTROLLER_PROCESS_TIMEOUT (%s)",
			c.Reconcile.GracePeriod, c.KafkaController.ProcessTimeout))
	}

	switch c.Blob.Backend {
	case BlobBackendS3:
		if c.S3.Endpoint == "" || c.S3.Bucket == "" {
			errList = append(errList, errors.New("S3_ENDPOINT and S3_BUCKET are required for s3 backend"))
		}
	case BlobBackendAzure:
		if c.Azure.ConnectionString == "" {
			errList = append(errList, errors.New("AZURE_STORAGE_CONNECTION_STRING is required for azure backend"))
		}
	default:
		errList = append(errList, fmt.Errorf("unknown BLOB_BACKEND %q", c.Blob.Backend))
	}

	if _, err := regexp.Compile(c.Filename.InvoiceSeriesPattern); err != nil {
		errList = append(errList, fmt.Errorf("FILENAME_INVOICE_SERIES_PATTERN: %w", err))
	}
	if _, err := regexp.Compile(c.Filename.ReceiptSeriesPattern); err != nil {
		errList = append(errList, fmt.Errorf("FILENAME_RECEIPT_SERIES_PATTERN: %w", err))
	}

	return errors.Join(errList...)
}
