package v1

import (
	"github.com/andreyxaxa/ubl-sender/internal/usecase"
	"github.com/andreyxaxa/ubl-sender/pkg/logger"
	"github.com/gofiber/fiber/v2"
)

func NewDocumentRoutes(apiV1Group fiber.Router, delivery usecase.DeliveryUseCase, l logger.Interface) {
	r := &V1{delivery: delivery, logger: l}

	{
		apiV1Group.Post("/documents", r.scheduleDelivery)
		apiV1Group.Get("/documents/:id", r.getDelivery)
	}
}
