package delivery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andreyxaxa/ubl-sender/internal/entity"
	"github.com/andreyxaxa/ubl-sender/internal/infrastructure"
	"github.com/andreyxaxa/ubl-sender/internal/metrics"
	"github.com/andreyxaxa/ubl-sender/internal/repo"
	"github.com/andreyxaxa/ubl-sender/internal/usecase"
	"github.com/andreyxaxa/ubl-sender/pkg/logger"
	"github.com/andreyxaxa/ubl-sender/pkg/types/errs"
	"github.com/google/uuid"
)

const xmlContentType = "application/xml"

type Settings struct {
	ServerURL            string
	MessageDelay         time.Duration
	UploadTimeout        time.Duration
	MaxAttempts          int
	RetryDelay           time.Duration
	ReconcileGracePeriod time.Duration
	ReconcileBatchSize   int
}

type UseCase struct {
	fileRepo     repo.FileRepo
	deliveryRepo repo.FileDeliveryRepo
	outboxRepo   repo.OutboxRepo
	transactor   repo.Transactor

	reader    infrastructure.DocumentReader
	filenames usecase.FilenameUseCase
	sender    infrastructure.BillSender

	settings Settings
	now      func() time.Time

	logger logger.Interface
}

var (
	_ usecase.DeliveryUseCase = (*UseCase)(nil)
	_ usecase.OutboxUseCase   = (*UseCase)(nil)
)

func New(
	fileRepo repo.FileRepo,
	deliveryRepo repo.FileDeliveryRepo,
	outboxRepo repo.OutboxRepo,
	transactor repo.Transactor,
	reader infrastructure.DocumentReader,
	filenames usecase.FilenameUseCase,
	sender infrastructure.BillSender,
	settings Settings,
	l logger.Interface,
) *UseCase {
	return &UseCase{
		fileRepo:     fileRepo,
		deliveryRepo: deliveryRepo,
		outboxRepo:   outboxRepo,
		transactor:   transactor,
		reader:       reader,
		filenames:    filenames,
		sender:       sender,
		settings:     settings,
		now:          time.Now,
		logger:       l,
	}
}

func (uc *UseCase) ScheduleDelivery(ctx context.Context, data []byte, customID *string) (*entity.FileDelivery, error) {
	// 1. разбираем документ
	doc, err := uc.reader.Read(data)
	if err != nil {
		uc.reject(err)
		return nil, fmt.Errorf("UseCase - ScheduleDelivery - uc.reader.Read: %w", err)
	}

	docType, ok := entity.DocumentTypeFromRoot(doc.Type)
	if !ok {
		err = &errs.UnsupportedTypeError{Type: doc.Type}
		uc.reject(err)
		return nil, fmt.Errorf("UseCase - ScheduleDelivery: %w", err)
	}

	// 2. куда отправлять
	serverURL := uc.resolveServerURL(docType)

	// 3. имя файла, оно же ключ в хранилище
	filename, err := uc.filenames.Derive(docType, doc.TaxpayerID, doc.DocumentID)
	if err != nil {
		uc.reject(err)
		return nil, fmt.Errorf("UseCase - ScheduleDelivery - uc.filenames.Derive: %w", err)
	}

	// 4. загружаем в хранилище до записи в бд
	fileID, err := uc.upload(ctx, filename, data)
	if err != nil {
		uc.reject(err)
		return nil, fmt.Errorf("UseCase - ScheduleDelivery - uc.upload: %w", err)
	}

	now := uc.now()
	delivery := &entity.FileDelivery{
		ID:             uuid.New(),
		FileID:         fileID,
		Filename:       filename,
		TaxpayerID:     doc.TaxpayerID,
		DocumentID:     doc.DocumentID,
		DocumentType:   docType,
		DeliveryStatus: entity.ScheduledToDeliver,
		ServerURL:      serverURL,
		CustomID:       customID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	// 5-6. запись и аутбокс в одной транзакции
	err = uc.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := uc.deliveryRepo.Create(ctx, delivery); err != nil {
			return fmt.Errorf("UseCase - ScheduleDelivery - uc.deliveryRepo.Create: %w", err)
		}

		event := uc.createOutboxEvent(delivery.ID, now, uc.settings.MessageDelay)
		if err := uc.outboxRepo.Create(ctx, event); err != nil {
			return fmt.Errorf("UseCase - ScheduleDelivery - uc.outboxRepo.Create: %w", err)
		}

		return nil
	})
	// блоб не удаляем: имя детерминировано, повторная загрузка его перезапишет
	if err != nil {
		metrics.ScheduleRejectedTotal.WithLabelValues("persist").Inc()
		return nil, fmt.Errorf("UseCase - ScheduleDelivery - uc.transactor.WithinTransaction: %w", err)
	}

	metrics.ScheduledTotal.WithLabelValues(string(docType)).Inc()

	return delivery, nil
}

func (uc *UseCase) GetByID(ctx context.Context, id uuid.UUID) (*entity.FileDelivery, error) {
	delivery, err := uc.deliveryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("UseCase - GetByID - uc.deliveryRepo.GetByID: %w", err)
	}

	return delivery, nil
}

// resolveServerURL is the routing point per document type. Every type goes
// to the same endpoint for now.
func (uc *UseCase) resolveServerURL(_ entity.DocumentType) string {
	return uc.settings.ServerURL
}

func (uc *UseCase) upload(ctx context.Context, key string, data []byte) (string, error) {
	if uc.settings.UploadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.settings.UploadTimeout)
		defer cancel()
	}

	fileID, err := uc.fileRepo.Upload(ctx, key, data, xmlContentType)
	if err != nil {
		return "", fmt.Errorf("UseCase - upload - uc.fileRepo.Upload: %w: %w", errs.ErrStorage, err)
	}
	if fileID == "" {
		return "", fmt.Errorf("UseCase - upload - empty file id: %w", errs.ErrStorage)
	}

	return fileID, nil
}

func (uc *UseCase) reject(err error) {
	var reason string

	switch {
	case errors.Is(err, errs.ErrMalformedInput):
		reason = "malformed"
	case errors.Is(err, errs.ErrUnsupportedType):
		reason = "unsupported_type"
	case errors.Is(err, errs.ErrSeriesDetection):
		reason = "series_detection"
	case errors.Is(err, errs.ErrStorage):
		reason = "storage"
	default:
		reason = "other"
	}

	metrics.ScheduleRejectedTotal.WithLabelValues(reason).Inc()
}
