package v1

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/andreyxaxa/ubl-sender/internal/controller/restapi/v1/response"
	"github.com/andreyxaxa/ubl-sender/internal/controller/restapi/v1/validate"
	"github.com/andreyxaxa/ubl-sender/pkg/types/errs"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// @Summary  	Schedule document delivery
// @Description Classifies the UBL document, stores it and schedules its delivery to SUNAT
// @Tags 		documents
// @Accept 		mpfd
// @Produce 	json
// @Param 		file 	 formData file   true  "UBL XML file"
// @Param 		customId formData string false "Caller correlation id"
// @Success 	201 {object} response.Delivery
// @Failure 	400 {object} response.Error "Empty file, malformed XML or unknown series"
// @Failure 	413 {object} response.Error "File too large"
// @Failure 	415 {object} response.Error "Unsupported extension"
// @Failure 	422 {object} response.Error "Unsupported document type"
// @Failure 	502 {object} response.Error "Storage unavailable"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/v1/documents [post]
func (r *V1) scheduleDelivery(ctx *fiber.Ctx) error {
	file, err := ctx.FormFile("file")
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "file is required")
	}

	// 1. валидация размера
	if file.Size == 0 {
		return errorResponse(ctx, http.StatusBadRequest, "file is empty")
	}

	if file.Size > validate.MaxFileSize {
		return errorResponse(ctx, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("file size cant be more than %d bytes", validate.MaxFileSize))
	}

	// 2. валидация расширения
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !validate.AllowedExtensions[ext] {
		return errorResponse(ctx, http.StatusUnsupportedMediaType, "unsupported file extension. Allowed: .xml")
	}

	// 3. customId
	var customID *string
	if v := strings.TrimSpace(ctx.FormValue("customId")); v != "" {
		if len(v) > validate.MaxCustomIDLen {
			return errorResponse(ctx, http.StatusBadRequest,
				fmt.Sprintf("customId cant be longer than %d", validate.MaxCustomIDLen))
		}
		customID = &v
	}

	// 4. читаем файл
	fileReader, err := file.Open()
	if err != nil {
		r.logger.Error(err, "restapi - v1 - scheduleDelivery")

		return errorResponse(ctx, http.StatusInternalServerError, "problems with opening the file")
	}
	defer fileReader.Close()

	data, err := io.ReadAll(fileReader)
	if err != nil {
		r.logger.Error(err, "restapi - v1 - scheduleDelivery")

		return errorResponse(ctx, http.StatusInternalServerError, "problems with reading the file")
	}

	// 5. планируем доставку
	delivery, err := r.delivery.ScheduleDelivery(ctx.UserContext(), data, customID)
	if err != nil {
		return r.scheduleError(ctx, err)
	}

	return ctx.Status(http.StatusCreated).JSON(response.NewDelivery(delivery))
}

func (r *V1) scheduleError(ctx *fiber.Ctx, err error) error {
	var unsupported *errs.UnsupportedTypeError

	switch {
	case errors.Is(err, errs.ErrMalformedInput):
		return errorResponse(ctx, http.StatusBadRequest, "malformed xml document")
	case errors.Is(err, errs.ErrSeriesDetection):
		return errorResponse(ctx, http.StatusBadRequest, errs.ErrSeriesDetection.Error())
	case errors.As(err, &unsupported):
		return errorResponse(ctx, http.StatusUnprocessableEntity, unsupported.Error())
	case errors.Is(err, errs.ErrStorage):
		r.logger.Error(err, "restapi - v1 - scheduleDelivery")

		return errorResponse(ctx, http.StatusBadGateway, "storage problems")
	default:
		r.logger.Error(err, "restapi - v1 - scheduleDelivery")

		return errorResponse(ctx, http.StatusInternalServerError, "internal problems")
	}
}

// @Summary 	Get delivery
// @Description Returns the delivery record and its current status
// @Tags 		documents
// @Produce 	json
// @Param 		id path string true "Delivery ID(uuid)"
// @Success 	200 {object} response.Delivery
// @Failure 	400 {object} response.Error "Invalid ID"
// @Failure 	404 {object} response.Error "Delivery not found"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/v1/documents/{id} [get]
func (r *V1) getDelivery(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "invalid id")
	}

	delivery, err := r.delivery.GetByID(ctx.UserContext(), id)
	if err != nil {
		if errors.Is(err, errs.ErrRecordNotFound) {
			return errorResponse(ctx, http.StatusNotFound, "delivery not found")
		}
		r.logger.Error(err, "restapi - v1 - getDelivery")

		return errorResponse(ctx, http.StatusInternalServerError, "storage problems")
	}

	return ctx.JSON(response.NewDelivery(delivery))
}
