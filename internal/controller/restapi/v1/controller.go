package v1

import (
	"github.com/andreyxaxa/ubl-sender/internal/usecase"
	"github.com/andreyxaxa/ubl-sender/pkg/logger"
)

type V1 struct {
	delivery usecase.DeliveryUseCase
	logger   logger.Interface
}
